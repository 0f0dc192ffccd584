package geometry

import "math"

const ln2 = 0.69314718056

// DampAdjustmentImplicit returns the portion of the difference x that a
// critically damped spring with the given half-life closes during dt.
// After one half-life, half of x has been applied.
func DampAdjustmentImplicit(x Vector3D, halflife, dt float64) Vector3D {
	return x.Mul(1 - math.Exp(-(ln2*dt)/(halflife+1e-5)))
}
