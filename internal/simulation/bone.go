package simulation

import (
	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/geometry"
)

// TrailingBone stands in for an animated character root in headless runs.
// It replays the simulated velocity scaled by (1 - Drift), so without the
// engine's corrections it would fall behind its agent.
type TrailingBone struct {
	Drift float64

	pos geometry.Vector3D
	vel geometry.Vector3D
}

func NewTrailingBone(start geometry.Vector3D, drift float64) *TrailingBone {
	return &TrailingBone{Drift: drift, pos: start}
}

func (b *TrailingBone) Position() geometry.Vector3D { return b.pos }

func (b *TrailingBone) Velocity() geometry.Vector3D { return b.vel }

// SetPosAdjustment applies the correction right away.
func (b *TrailingBone) SetPosAdjustment(delta geometry.Vector3D) {
	b.pos = b.pos.Add(delta)
}

// Follow advances the bone by one animation step.
func (b *TrailingBone) Follow(velocity geometry.Vector3D, dt float64) {
	b.vel = velocity.Mul(1 - b.Drift)
	b.pos = b.pos.Add(b.vel.Mul(dt))
}
