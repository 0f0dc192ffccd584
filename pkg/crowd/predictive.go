package crowd

import (
	"context"

	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/geometry"
	"golang.org/x/sync/errgroup"
)

// parallelThreshold is cos(45°), separating head-on, parallel and
// crossing encounters.
const parallelThreshold = 0.707

// Kinematic is the published state of an agent as read by neighbor scans.
type Kinematic struct {
	ID        AgentID
	Position  geometry.Vector3D
	Direction geometry.Vector3D
	Speed     float64
}

func (k Kinematic) Velocity() geometry.Vector3D { return k.Direction.Mul(k.Speed) }

// Threat is the neighbor selected by a predictive scan.
type Threat struct {
	Agent             Kinematic
	Time              float64
	Distance          float64
	PredictedPosition geometry.Vector3D
}

// NearestApproachTime is the time at which two linearly extrapolated
// agents are closest. Zero relative velocity yields 0.
func NearestApproachTime(self, other Kinematic) float64 {
	relVelocity := other.Velocity().Sub(self.Velocity())
	relSpeed := relVelocity.Len()
	if relSpeed == 0 {
		return 0
	}
	relTangent := relVelocity.Mul(1 / relSpeed)
	return relTangent.Dot(self.Position.Sub(other.Position)) / relSpeed
}

// NearestApproachPositions extrapolates both agents by t seconds and
// returns the distance between them.
func NearestApproachPositions(t float64, self, other Kinematic) (selfAt, otherAt geometry.Vector3D, distance float64) {
	selfAt = self.Position.Add(self.Velocity().Mul(t))
	otherAt = other.Position.Add(other.Velocity().Mul(t))
	return selfAt, otherAt, selfAt.DistanceTo(otherAt)
}

// SelectThreat runs a single greedy pass over candidates. A neighbor is
// accepted when 0 <= t < bound and its closest approach is nearer than
// danger; bound then tightens to t, so the most imminent qualifying
// neighbor wins regardless of candidate order.
func SelectThreat(self Kinematic, candidates []Kinematic, minTimeToCollision, danger float64) (Threat, bool) {
	var (
		threat Threat
		found  bool
		bound  = minTimeToCollision
	)
	for _, other := range candidates {
		if other.ID == self.ID {
			continue
		}
		t := NearestApproachTime(self, other)
		if t < 0 || t >= bound {
			continue
		}
		_, otherAt, distance := NearestApproachPositions(t, self, other)
		if distance < danger {
			bound = t
			threat = Threat{Agent: other, Time: t, Distance: distance, PredictedPosition: otherAt}
			found = true
		}
	}
	return threat, found
}

// SteerAwayFrom turns a selected threat into a lateral steering vector
// along cross(direction, up).
func SteerAwayFrom(self Kinematic, threat Threat) geometry.Vector3D {
	side := self.Direction.Cross(geometry.Up)
	other := threat.Agent
	parallelness := self.Direction.Dot(other.Direction)

	var sideDot float64
	switch {
	case parallelness < -parallelThreshold:
		// Head on: away from where the threat will be.
		sideDot = threat.PredictedPosition.Sub(self.Position).Dot(side)
	case parallelness > parallelThreshold:
		// Same way: away from where the threat is.
		sideDot = other.Position.Sub(self.Position).Dot(side)
	default:
		// Crossing: only the slower agent yields.
		if self.Speed > other.Speed {
			return geometry.Zero
		}
		sideDot = side.Dot(other.Direction)
	}

	steer := 1.0
	if sideDot > 0 {
		steer = -1.0
	}
	return side.Mul(steer)
}

// SteerToAvoidNeighbors is the predictive avoidance vector for self
// against candidates. No candidates or no threat yields zero.
func SteerToAvoidNeighbors(self Kinematic, candidates []Kinematic, minTimeToCollision, danger float64) geometry.Vector3D {
	threat, ok := SelectThreat(self, candidates, minTimeToCollision, danger)
	if !ok {
		return geometry.Zero
	}
	return SteerAwayFrom(self, threat)
}

// updatePredictive is the periodic predictive avoidance driver. An active
// immediate target forces the vector to zero; otherwise the agent is queued
// for this tick's parallel scan and resumes after the transition.
func (a *Agent) updatePredictive(now float64) (float64, bool) {
	if a.avoidTarget != NoAgent {
		a.cancelTween()
		a.predictiveVec = geometry.Zero
		return now + a.cfg.NeighborUpdatePeriod, true
	}
	a.world.pendingScans = append(a.world.pendingScans, a.id)
	return now + a.cfg.NeighborTransition + a.cfg.NeighborUpdatePeriod, true
}

func (a *Agent) cancelTween() {
	if a.tweenTask != 0 {
		a.world.sched.Cancel(a.tweenTask)
		a.tweenTask = 0
	}
}

// startTween slerps the predictive vector toward target over
// NeighborTransition, one step per tick.
func (a *Agent) startTween(target geometry.Vector3D) {
	a.cancelTween()
	from := a.predictiveVec
	a.tweenTask = a.world.sched.EachTick(a.cfg.NeighborTransition, func(progress float64) {
		a.predictiveVec = from.Slerp(target, progress)
		if progress >= 1 {
			a.predictiveVec = target
			a.tweenTask = 0
		}
	})
}

// runScans evaluates every queued predictive scan. Scans only read
// published agent state, so they run concurrently; results are applied
// afterwards in queue order.
func (w *World) runScans(ctx context.Context) error {
	pending := w.pendingScans
	w.pendingScans = w.pendingScans[:0]
	if len(pending) == 0 {
		return nil
	}

	agents := make([]*Agent, 0, len(pending))
	for _, id := range pending {
		if a := w.agent(id); a != nil {
			agents = append(agents, a)
		}
	}
	results := make([]geometry.Vector3D, len(agents))

	g, gctx := errgroup.WithContext(ctx)
	if w.cfg.ParallelScanWorkers > 0 {
		g.SetLimit(w.cfg.ParallelScanWorkers)
	}
	for i, a := range agents {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = SteerToAvoidNeighbors(a.kinematic(), w.candidates(a), a.cfg.MinTimeToCollision, a.cfg.CollisionDangerThreshold)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, a := range agents {
		a.startTween(results[i])
	}
	return nil
}
