package crowd

import (
	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/geometry"
)

// Wall is a vertical segment agents are pushed away from.
type Wall struct {
	A geometry.Vector3D `json:"a" yaml:"a"`
	B geometry.Vector3D `json:"b" yaml:"b"`
}

// WallRepulsion returns the push away from the nearest wall within radius,
// scaled linearly from 1 at contact to 0 at radius.
func WallRepulsion(pos geometry.Vector3D, walls []Wall, radius float64) geometry.Vector3D {
	if radius <= 0 {
		return geometry.Zero
	}
	p := pos.Flat()
	best, bestDist := geometry.Zero, radius
	for _, wall := range walls {
		closest := geometry.ClosestPointOnSegment(p, wall.A.Flat(), wall.B.Flat())
		d := p.DistanceTo(closest)
		if d < bestDist {
			bestDist = d
			best = p.Sub(closest).Normalize().Mul(1 - d/radius)
		}
	}
	return best
}
