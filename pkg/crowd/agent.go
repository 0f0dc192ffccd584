package crowd

import (
	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/geometry"
)

// AgentID is a stable, non-owning handle into the World registry.
// Handles of removed agents stay valid values but no longer resolve.
type AgentID int

// NoAgent is the zero handle.
const NoAgent AgentID = 0

// CollisionState is the phase of the social collision reaction.
type CollisionState int

const (
	Idle CollisionState = iota
	Colliding
	Moving
)

func (s CollisionState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Colliding:
		return "Colliding"
	case Moving:
		return "Moving"
	default:
		return "Unknown"
	}
}

// SimulationBone is the externally animated transform that trails the
// simulated position. The engine reads it and emits corrections through
// SetPosAdjustment; it never writes the transform itself.
type SimulationBone interface {
	Position() geometry.Vector3D
	Velocity() geometry.Vector3D
	SetPosAdjustment(delta geometry.Vector3D)
}

// AgentSpec describes an agent to spawn. Category names the group the
// agent belongs to; an empty category means no group.
type AgentSpec struct {
	Name     string
	Category string
	Path     []geometry.Vector3D
	Bone     SimulationBone
}

// Agent holds the steering state of one simulated character.
// All mutation happens inside World.Tick or World.Collide.
type Agent struct {
	id       AgentID
	name     string
	category string
	world    *World
	cfg      *Config
	bone     SimulationBone

	path      []geometry.Vector3D
	goalIndex int
	goal      geometry.Vector3D

	position  geometry.Vector3D
	direction geometry.Vector3D
	speed     float64

	immediateVec  geometry.Vector3D
	predictiveVec geometry.Vector3D
	wallVec       geometry.Vector3D

	state    CollisionState
	collided AgentID
	reaction *reaction

	avoidTarget AgentID
	inVolume    map[AgentID]struct{}
	fov         []AgentID

	predictedPos []geometry.Vector3D
	predictedDir []geometry.Vector3D

	immediateTask  TaskID
	predictiveTask TaskID
	rampTask       TaskID
	fadeTask       TaskID
	tweenTask      TaskID
}

func newAgent(id AgentID, w *World, spec AgentSpec) *Agent {
	path := make([]geometry.Vector3D, len(spec.Path))
	copy(path, spec.Path)
	a := &Agent{
		id:       id,
		name:     spec.Name,
		category: spec.Category,
		world:    w,
		cfg:      w.cfg,
		bone:     spec.Bone,
		path:     path,
		inVolume: make(map[AgentID]struct{}),
	}
	a.position = a.InitialPosition()
	a.direction = a.InitialDirection()
	a.speed = a.cfg.InitialSpeed
	a.goalIndex = 1
	a.goal = path[1]
	a.resizePredictions(len(w.lookaheads))
	return a
}

func (a *Agent) resizePredictions(n int) {
	a.predictedPos = make([]geometry.Vector3D, n)
	a.predictedDir = make([]geometry.Vector3D, n)
}

func (a *Agent) ID() AgentID { return a.id }
func (a *Agent) Name() string { return a.name }
func (a *Agent) Category() string { return a.category }

func (a *Agent) Position() geometry.Vector3D { return a.position }
func (a *Agent) Direction() geometry.Vector3D { return a.direction }
func (a *Agent) Speed() float64 { return a.speed }

// Velocity is direction scaled by speed.
func (a *Agent) Velocity() geometry.Vector3D { return a.direction.Mul(a.speed) }

func (a *Agent) GoalIndex() int { return a.goalIndex }
func (a *Agent) Goal() geometry.Vector3D { return a.goal }

// Path returns a copy of the waypoints.
func (a *Agent) Path() []geometry.Vector3D {
	out := make([]geometry.Vector3D, len(a.path))
	copy(out, a.path)
	return out
}

func (a *Agent) State() CollisionState { return a.state }

// Collided reports whether the agent is in a reaction cycle.
func (a *Agent) Collided() bool { return a.state != Idle }

// IsMoving reports whether the reaction reached its resume phase.
func (a *Agent) IsMoving() bool { return a.state == Moving }

// CollidedAgent is the other party of the current reaction, or NoAgent.
func (a *Agent) CollidedAgent() AgentID { return a.collided }

// AvoidanceTarget is the current immediate avoidance target, or NoAgent.
func (a *Agent) AvoidanceTarget() AgentID { return a.avoidTarget }

func (a *Agent) ImmediateAvoidance() geometry.Vector3D { return a.immediateVec }
func (a *Agent) PredictiveAvoidance() geometry.Vector3D { return a.predictiveVec }
func (a *Agent) WallRepulsion() geometry.Vector3D { return a.wallVec }

// VisibleAgents returns the agents seen in the field of view this tick.
func (a *Agent) VisibleAgents() []AgentID {
	out := make([]AgentID, len(a.fov))
	copy(out, a.fov)
	return out
}

// PredictedPositions returns the positions predicted for each lookahead,
// indexed like World.Lookaheads.
func (a *Agent) PredictedPositions() []geometry.Vector3D {
	out := make([]geometry.Vector3D, len(a.predictedPos))
	copy(out, a.predictedPos)
	return out
}

// PredictedDirections is parallel to PredictedPositions.
func (a *Agent) PredictedDirections() []geometry.Vector3D {
	out := make([]geometry.Vector3D, len(a.predictedDir))
	copy(out, a.predictedDir)
	return out
}

// InitialPosition is the first waypoint.
func (a *Agent) InitialPosition() geometry.Vector3D { return a.path[0] }

// InitialDirection points from the first waypoint to the second.
func (a *Agent) InitialDirection() geometry.Vector3D {
	return a.path[1].Sub(a.path[0]).Normalize()
}

func (a *Agent) kinematic() Kinematic {
	return Kinematic{ID: a.id, Position: a.position, Direction: a.direction, Speed: a.speed}
}

// cancelTasks drops every scheduled task owned by the agent.
func (a *Agent) cancelTasks() {
	s := a.world.sched
	for _, id := range []TaskID{a.immediateTask, a.predictiveTask, a.rampTask, a.fadeTask, a.tweenTask} {
		if id != 0 {
			s.Cancel(id)
		}
	}
	a.immediateTask, a.predictiveTask, a.rampTask, a.fadeTask, a.tweenTask = 0, 0, 0, 0, 0
}
