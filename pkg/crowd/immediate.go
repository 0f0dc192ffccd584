package crowd

import (
	"math"

	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/geometry"
)

// nearlyAheadCos is cos(13°). A target closer than that to the heading
// uses world up for the lateral cross product.
const nearlyAheadCos = 0.9748

// AvoidanceDirection returns the unit lateral direction that steers an
// agent at pos heading dir around a target at targetPos.
func AvoidanceDirection(targetPos, pos, dir geometry.Vector3D) geometry.Vector3D {
	toTarget := targetPos.Sub(pos).Flat().Normalize()
	up := geometry.Up
	if toTarget.Dot(dir) < nearlyAheadCos {
		up = toTarget.Cross(dir)
	}
	return up.Cross(toTarget).Normalize()
}

// avoidanceReach is the distance at which the immediate avoidance force
// reaches zero: the far corner of the sensing volume plus two radii.
func avoidanceReach(cfg *Config) float64 {
	half := cfg.AvoidanceVolume.X / 2
	return math.Sqrt(half*half+cfg.AvoidanceVolume.Z*cfg.AvoidanceVolume.Z) + 2*cfg.AgentRadius
}

// avoidanceVolume is the sensing box, one unit ahead of the agent.
func (a *Agent) avoidanceVolume() geometry.OrientedBox {
	return geometry.NewOrientedBox(a.position.Add(a.direction), a.direction, a.cfg.AvoidanceVolume.Vector())
}

// updateImmediate is the periodic recompute of the immediate avoidance
// vector. Without a target the fade task owns the vector.
func (a *Agent) updateImmediate() {
	if a.avoidTarget == NoAgent {
		return
	}
	target := a.world.agent(a.avoidTarget)
	if target == nil {
		a.clearAvoidTarget()
		return
	}
	dir := AvoidanceDirection(target.position, a.position, a.direction)
	falloff := geometry.Clamp01(1 - target.position.DistanceTo(a.position)/avoidanceReach(a.cfg))
	a.immediateVec = dir.Mul(falloff)
}

func (a *Agent) setAvoidTarget(id AgentID) {
	if a.fadeTask != 0 {
		a.world.sched.Cancel(a.fadeTask)
		a.fadeTask = 0
	}
	if a.avoidTarget != id {
		a.world.log.Debugf("agent %d avoids %d", a.id, id)
	}
	a.avoidTarget = id
}

// clearAvoidTarget drops the target and fades the vector linearly to zero.
func (a *Agent) clearAvoidTarget() {
	a.world.log.Debugf("agent %d lost avoidance target %d", a.id, a.avoidTarget)
	a.avoidTarget = NoAgent
	if a.fadeTask != 0 {
		a.world.sched.Cancel(a.fadeTask)
		a.fadeTask = 0
	}
	if a.immediateVec.IsZero() {
		a.immediateVec = geometry.Zero
		return
	}
	from := a.immediateVec
	a.fadeTask = a.world.sched.EachTick(a.cfg.AvoidanceFadeDuration, func(progress float64) {
		a.immediateVec = from.Lerp(geometry.Zero, progress)
		if progress >= 1 {
			a.immediateVec = geometry.Zero
			a.fadeTask = 0
		}
	})
}

// senseAvoidanceVolume diffs the agents overlapping the sensing box
// against the previous tick. Exits of the current target clear it; enters
// are applied farthest first so the nearest newcomer wins.
func (a *Agent) senseAvoidanceVolume(nearby []*Agent) {
	box := a.avoidanceVolume()
	radius := a.cfg.AgentRadius

	current := make(map[AgentID]struct{}, len(a.inVolume))
	var entered []*Agent
	for _, other := range nearby {
		if other.id == a.id || !box.OverlapsCircle(other.position, radius) {
			continue
		}
		current[other.id] = struct{}{}
		if _, seen := a.inVolume[other.id]; !seen {
			entered = append(entered, other)
		}
	}

	if a.avoidTarget != NoAgent {
		if _, still := current[a.avoidTarget]; !still {
			a.clearAvoidTarget()
		}
	}

	sortByDistanceDesc(entered, a.position)
	for _, other := range entered {
		a.setAvoidTarget(other.id)
	}
	a.inVolume = current
}
