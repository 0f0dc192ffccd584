package crowd

import (
	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/geometry"
)

// AgentSnapshot is the published state of one agent.
type AgentSnapshot struct {
	ID              AgentID           `json:"id"`
	Name            string            `json:"name"`
	Category        string            `json:"category,omitempty"`
	Position        geometry.Vector3D `json:"position"`
	Direction       geometry.Vector3D `json:"direction"`
	Speed           float64           `json:"speed"`
	State           string            `json:"state"`
	CollidedWith    AgentID           `json:"collidedWith,omitempty"`
	GoalIndex       int               `json:"goalIndex"`
	AvoidanceTarget AgentID           `json:"avoidanceTarget,omitempty"`
}

// GroupSnapshot is the published state of one group.
type GroupSnapshot struct {
	Name      string            `json:"name"`
	Members   []AgentID         `json:"members"`
	Centroid  geometry.Vector3D `json:"centroid"`
	MaxSpread float64           `json:"maxSpread"`
	Cohesive  bool              `json:"cohesive"`
	Collider  bool              `json:"collider"`
	SharedFOV []AgentID         `json:"sharedFov,omitempty"`
}

// Snapshot is a read-only copy of the world after a tick.
type Snapshot struct {
	Tick   uint64          `json:"tick"`
	Time   float64         `json:"time"`
	Agents []AgentSnapshot `json:"agents"`
	Groups []GroupSnapshot `json:"groups"`
}

// Snapshot copies the published state of every agent and group.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Tick:   w.tick,
		Time:   w.Now(),
		Agents: make([]AgentSnapshot, 0, len(w.order)),
		Groups: make([]GroupSnapshot, 0, len(w.groupOrder)),
	}
	for _, a := range w.Agents() {
		s.Agents = append(s.Agents, AgentSnapshot{
			ID:              a.id,
			Name:            a.name,
			Category:        a.category,
			Position:        a.position,
			Direction:       a.direction,
			Speed:           a.speed,
			State:           a.state.String(),
			CollidedWith:    a.collided,
			GoalIndex:       a.goalIndex,
			AvoidanceTarget: a.avoidTarget,
		})
	}
	for _, g := range w.Groups() {
		s.Groups = append(s.Groups, GroupSnapshot{
			Name:      g.name,
			Members:   g.Members(),
			Centroid:  g.centroid,
			MaxSpread: g.maxSpread,
			Cohesive:  g.cohesive,
			Collider:  g.collider.Enabled,
			SharedFOV: g.SharedFOV(),
		})
	}
	return s
}
