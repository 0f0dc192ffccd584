package geometry

import (
	"fmt"
	"math"
)

// Epsilon Precision constant used for float64 comparisons and degenerate lengths.
const (
	Epsilon = 1e-9
)

// Vector3D represents a 3D vector or point in world space.
// Y is the vertical axis; steering math works on the XZ plane (see Flat).
type Vector3D struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

var (
	// Zero is the null vector.
	Zero = Vector3D{}
	// Up is the world up axis.
	Up = Vector3D{X: 0, Y: 1, Z: 0}
	// Forward is the world forward axis used when no heading is known.
	Forward = Vector3D{X: 0, Y: 0, Z: 1}
)

// NewVector creates a new Vector3D.
func NewVector(x, y, z float64) Vector3D {
	return Vector3D{X: x, Y: y, Z: z}
}

// String implements the fmt.Stringer interface.
func (v Vector3D) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// ---------------------------------------------------------------------
// Arithmetic Operations
// Value receivers returning new values, small struct copies are cheap.
// ---------------------------------------------------------------------

// Add adds two vectors and returns the result.
func (v Vector3D) Add(other Vector3D) Vector3D {
	return Vector3D{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub subtracts the other vector from the current vector.
func (v Vector3D) Sub(other Vector3D) Vector3D {
	return Vector3D{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Mul scales the vector by a scalar value.
func (v Vector3D) Mul(scalar float64) Vector3D {
	return Vector3D{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// Neg returns the opposite vector.
func (v Vector3D) Neg() Vector3D {
	return Vector3D{-v.X, -v.Y, -v.Z}
}

// ---------------------------------------------------------------------
// Vector Products
// ---------------------------------------------------------------------

// Dot calculates the dot product of two vectors.
func (v Vector3D) Dot(other Vector3D) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross calculates the cross product v × other.
func (v Vector3D) Cross(other Vector3D) Vector3D {
	return Vector3D{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// LenSqr calculates the squared magnitude of the vector.
// Use it for comparisons to avoid the square root.
func (v Vector3D) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Len calculates the magnitude (length) of the vector.
func (v Vector3D) Len() float64 {
	return math.Sqrt(v.LenSqr())
}

// Normalize returns a unit vector in the same direction.
// Returns a zero vector if the length is effectively zero.
func (v Vector3D) Normalize() Vector3D {
	l := v.Len()
	if l < Epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return Zero
	}
	return v.Mul(1 / l)
}

// ClampLength returns v scaled down so its length does not exceed maxLen.
func (v Vector3D) ClampLength(maxLen float64) Vector3D {
	if maxLen <= 0 {
		return Zero
	}
	if v.LenSqr() > maxLen*maxLen {
		return v.Normalize().Mul(maxLen)
	}
	return v
}

// IsZero reports whether every component is within Epsilon of zero.
func (v Vector3D) IsZero() bool {
	return v.Eq(Zero)
}

// Flat drops the vertical component.
func (v Vector3D) Flat() Vector3D {
	return Vector3D{X: v.X, Y: 0, Z: v.Z}
}

// ---------------------------------------------------------------------
// Geometric Utilities
// ---------------------------------------------------------------------

// DistanceTo calculates the Euclidean distance to another vector.
func (v Vector3D) DistanceTo(other Vector3D) float64 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo calculates the squared Euclidean distance to another vector.
func (v Vector3D) DistanceSquaredTo(other Vector3D) float64 {
	return v.Sub(other).LenSqr()
}

// Lerp (Linear Interpolate) calculates a point between v and target based on t.
// t is clamped to [0, 1].
func (v Vector3D) Lerp(target Vector3D, t float64) Vector3D {
	t = Clamp01(t)
	return v.Add(target.Sub(v).Mul(t))
}

// Slerp spherically interpolates between v and target: the heading rotates
// at constant angular speed while the magnitude is interpolated linearly.
// Degenerate inputs (a zero vector) fall back to Lerp.
func (v Vector3D) Slerp(target Vector3D, t float64) Vector3D {
	t = Clamp01(t)
	la, lb := v.Len(), target.Len()
	if la < Epsilon || lb < Epsilon {
		return v.Lerp(target, t)
	}
	a, b := v.Mul(1/la), target.Mul(1/lb)
	cos := math.Max(-1, math.Min(1, a.Dot(b)))
	theta := math.Acos(cos)
	length := la + (lb-la)*t
	if theta < Epsilon {
		return a.Lerp(b, t).Normalize().Mul(length)
	}

	axis := a.Cross(b)
	if axis.Len() < Epsilon {
		// Opposite headings: any axis perpendicular to a works.
		axis = a.Cross(Up)
		if axis.Len() < Epsilon {
			axis = a.Cross(Forward)
		}
	}
	return a.RotateAround(axis.Normalize(), theta*t).Mul(length)
}

// RotateAround rotates v around the unit axis by angle radians (Rodrigues).
func (v Vector3D) RotateAround(axis Vector3D, angle float64) Vector3D {
	c, s := math.Cos(angle), math.Sin(angle)
	return v.Mul(c).
		Add(axis.Cross(v).Mul(s)).
		Add(axis.Mul(axis.Dot(v) * (1 - c)))
}

// Reflect mirrors target about the line spanned by base:
// q = 2 (p·x) x − p with p and x the normalized inputs.
// With unit inputs the result is unit length, and Reflect(a, a) == a.
func Reflect(target, base Vector3D) Vector3D {
	p := target.Normalize()
	x := base.Normalize()
	cosTheta := p.Dot(x)
	return x.Mul(2 * cosTheta).Sub(p)
}

// ---------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------

// Eq checks if two vectors are approximately equal using the Epsilon constant.
func (v Vector3D) Eq(other Vector3D) bool {
	return v.EqWithin(other, Epsilon)
}

// EqWithin checks if two vectors are equal within tolerance on every component.
func (v Vector3D) EqWithin(other Vector3D, tolerance float64) bool {
	return math.Abs(v.X-other.X) <= tolerance &&
		math.Abs(v.Y-other.Y) <= tolerance &&
		math.Abs(v.Z-other.Z) <= tolerance
}

// Clamp01 clamps t to [0, 1].
func Clamp01(t float64) float64 {
	if t < 0 || math.IsNaN(t) {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// LerpFloat interpolates between a and b with t clamped to [0, 1].
func LerpFloat(a, b, t float64) float64 {
	return a + (b-a)*Clamp01(t)
}
