package geometry

// OrientedBox is a box aligned with a heading on the XZ plane.
// Its local frame has Z along Forward, X to the side and Y up; HalfExtents
// are expressed in that frame. Height is ignored for overlap tests because
// agents are vertical capsules standing on the ground.
type OrientedBox struct {
	Center      Vector3D
	Forward     Vector3D
	HalfExtents Vector3D
}

// NewOrientedBox builds a box of the given full size centred at center and
// facing forward. A zero forward falls back to world Forward.
func NewOrientedBox(center, forward, size Vector3D) OrientedBox {
	f := forward.Flat().Normalize()
	if f.IsZero() {
		f = Forward
	}
	return OrientedBox{
		Center:      center,
		Forward:     f,
		HalfExtents: size.Mul(0.5),
	}
}

// Side returns the box local X axis in world space.
func (b OrientedBox) Side() Vector3D {
	return Up.Cross(b.Forward)
}

// ToLocal expresses a world point in the box frame.
func (b OrientedBox) ToLocal(p Vector3D) Vector3D {
	return ToLocalFrame(p.Sub(b.Center), b.Forward)
}

// OverlapsCircle reports whether a disc of the given radius centred on p
// (projected on the ground) intersects the box footprint.
func (b OrientedBox) OverlapsCircle(p Vector3D, radius float64) bool {
	l := b.ToLocal(p)
	// Closest point of the footprint rectangle to the disc centre.
	cx := clampRange(l.X, -b.HalfExtents.X, b.HalfExtents.X)
	cz := clampRange(l.Z, -b.HalfExtents.Z, b.HalfExtents.Z)
	dx, dz := l.X-cx, l.Z-cz
	return dx*dx+dz*dz <= radius*radius
}

// BoundingRadius is the radius of the footprint's circumscribed circle.
func (b OrientedBox) BoundingRadius() float64 {
	return Vector3D{X: b.HalfExtents.X, Z: b.HalfExtents.Z}.Len()
}

// ToLocalFrame rotates a world-space offset into the frame whose Z axis is
// forward (flattened) and whose Y axis is world up.
func ToLocalFrame(offset, forward Vector3D) Vector3D {
	f := forward.Flat().Normalize()
	if f.IsZero() {
		f = Forward
	}
	side := Up.Cross(f)
	return Vector3D{
		X: offset.Dot(side),
		Y: offset.Y,
		Z: offset.Dot(f),
	}
}

// ClosestPointOnSegment returns the point of segment [a, b] closest to p.
func ClosestPointOnSegment(p, a, b Vector3D) Vector3D {
	ab := b.Sub(a)
	l := ab.LenSqr()
	if l < Epsilon {
		return a
	}
	t := Clamp01(p.Sub(a).Dot(ab) / l)
	return a.Add(ab.Mul(t))
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
