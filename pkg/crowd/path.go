package crowd

import (
	"math"

	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/geometry"
)

// backOffFactor scales the step away from the other agent while Colliding.
const backOffFactor = 0.3

// advance runs one PathFollower tick: predictions, authoritative step,
// goal check and simulation bone correction.
func (a *Agent) advance(dt float64) {
	for i, lookahead := range a.world.lookaheads {
		a.predictedPos[i], a.predictedDir[i], _ = a.simulate(lookahead, a.position, a.speed)
	}

	a.position, a.direction, a.speed = a.simulate(dt, a.position, a.speed)

	a.checkGoalProximity()
	a.adjustBone(dt)
	a.clampBone()
}

// simulate is the step function. It does not touch agent state, so the
// same call serves the authoritative step and every lookahead.
func (a *Agent) simulate(dt float64, pos geometry.Vector3D, speed float64) (geometry.Vector3D, geometry.Vector3D, float64) {
	cfg := a.cfg

	toGoal := a.goal.Sub(pos).Flat()
	distance := toGoal.Len()
	toGoal = toGoal.Normalize()

	// One-sided decay: the current speed is the lerp target.
	if distance < cfg.SlowingRadius {
		speed = geometry.LerpFloat(cfg.EffectiveMinSpeed(), speed, distance/cfg.SlowingRadius)
	}

	direction := toGoal.Mul(cfg.ToGoalWeight).
		Add(a.immediateVec.Mul(cfg.AvoidanceWeight)).
		Add(a.predictiveVec.Mul(cfg.AvoidNeighborWeight)).
		Add(a.wallVec.Mul(cfg.WallRepulsionWeight)).
		Flat().
		Normalize()

	next := pos.Add(direction.Mul(speed * dt))

	if a.state == Idle {
		return next, direction, speed
	}
	other := a.world.agent(a.collided)
	if other == nil {
		return next, direction, speed
	}

	offset := other.position.Sub(a.position)
	switch a.state {
	case Colliding:
		next = pos.Sub(offset.Mul(backOffFactor * dt))
	case Moving:
		if a.direction.Dot(other.direction) < 0 {
			direction = OpponentDirection(direction, a.direction, a.position, other.direction, other.position)
			next = pos.Add(direction.Mul(speed * dt))
		} else if offset.Dot(a.direction) > 0 {
			// The other agent is ahead: hold.
			next = pos
		}
	}
	return next, direction, speed
}

// OpponentDirection resolves the heading of an agent resuming after a
// collision with an agent walking the opposite way. When both headings lie
// on the same side of the line joining the agents they would meet again,
// so target is reflected about that line. Otherwise myDir is kept.
func OpponentDirection(target, myDir, myPos, otherDir, otherPos geometry.Vector3D) geometry.Vector3D {
	base := otherPos.Sub(myPos).Normalize()
	right := geometry.Up.Cross(base)
	mine, theirs := right.Dot(myDir), right.Dot(otherDir)
	if (mine > 0 && theirs > 0) || (mine < 0 && theirs < 0) {
		return geometry.Reflect(target, base)
	}
	return myDir
}

func (a *Agent) checkGoalProximity() {
	if a.position.Sub(a.goal).Flat().Len() >= a.cfg.GoalRadius {
		return
	}
	a.goalIndex = (a.goalIndex + 1) % len(a.path)
	a.goal = a.path[a.goalIndex]
	a.world.log.Debugf("agent %d reached goal, next waypoint %d", a.id, a.goalIndex)
	a.startSpeedRamp()
}

// startSpeedRamp eases speed back to InitialSpeed. A ramp still running
// from a previous arrival is cancelled first. The target and bounds are
// read from the current config on every step, so a Reconfigure during the
// ramp takes effect right away.
func (a *Agent) startSpeedRamp() {
	s := a.world.sched
	if a.rampTask != 0 {
		s.Cancel(a.rampTask)
	}
	from := a.speed
	a.rampTask = s.EachTick(a.cfg.SpeedRampDuration, func(progress float64) {
		to := a.cfg.InitialSpeed
		speed := geometry.LerpFloat(from, to, progress)
		a.speed = math.Max(a.cfg.EffectiveMinSpeed(), math.Min(to, speed))
		if progress >= 1 {
			a.rampTask = 0
		}
	})
}

// adjustBone pulls the bone toward the simulated position with a damped
// spring, limited by how fast the bone itself moves.
func (a *Agent) adjustBone(dt float64) {
	diff := a.position.Sub(a.bone.Position())
	adjustment := geometry.DampAdjustmentImplicit(diff, a.cfg.PositionAdjustmentHalflife, dt)
	maxLength := a.cfg.PositionMaxAdjustmentRatio * a.bone.Velocity().Len() * dt
	a.bone.SetPosAdjustment(adjustment.ClampLength(maxLength))
}

// clampBone keeps the bone within MaxBoneDistance of the simulated position.
func (a *Agent) clampBone() {
	bone := a.bone.Position()
	if a.position.DistanceTo(bone) <= a.cfg.MaxBoneDistance {
		return
	}
	clamped := bone.Sub(a.position).Normalize().Mul(a.cfg.MaxBoneDistance).Add(a.position)
	a.bone.SetPosAdjustment(clamped.Sub(bone))
}
