package crowd

import (
	"slices"

	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/geometry"
)

// candidates builds the NeighborCandidateSet for a predictive scan
// according to NeighborScope. It only reads world state.
func (w *World) candidates(a *Agent) []Kinematic {
	var ids []AgentID
	switch a.cfg.NeighborScope {
	case ScopeFOV:
		ids = a.fov
	case ScopeGroup:
		ids = a.fov
		if g := w.groupOf(a); g != nil && g.cohesive {
			ids = g.sharedFOV
		}
	default:
		ids = w.order
	}

	out := make([]Kinematic, 0, len(ids))
	for _, id := range ids {
		if id == a.id {
			continue
		}
		if other := w.agent(id); other != nil {
			out = append(out, other.kinematic())
		}
	}
	return out
}

func (w *World) groupOf(a *Agent) *Group {
	if a.category == "" {
		return nil
	}
	return w.groups[a.category]
}

// sortByDistanceDesc orders agents farthest first from origin, ties by id.
func sortByDistanceDesc(agents []*Agent, origin geometry.Vector3D) {
	slices.SortFunc(agents, func(x, y *Agent) int {
		dx, dy := x.position.DistanceSquaredTo(origin), y.position.DistanceSquaredTo(origin)
		switch {
		case dx > dy:
			return -1
		case dx < dy:
			return 1
		}
		return int(x.id - y.id)
	})
}
