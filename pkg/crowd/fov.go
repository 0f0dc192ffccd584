package crowd

import (
	"slices"

	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/geometry"
)

// FOVQuery answers "which agents does self see". nearby holds the agents
// of the surrounding grid cells, self included.
type FOVQuery interface {
	Visible(self *Agent, nearby []*Agent) []AgentID
}

// FOVQueryFunc adapts a function to FOVQuery.
type FOVQueryFunc func(self *Agent, nearby []*Agent) []AgentID

func (f FOVQueryFunc) Visible(self *Agent, nearby []*Agent) []AgentID { return f(self, nearby) }

// BoxFOV sees every agent overlapping a box of FOVVolume placed in front
// of the agent, its rear face at the agent position.
type BoxFOV struct{}

func (BoxFOV) Visible(self *Agent, nearby []*Agent) []AgentID {
	box := fovVolume(self)
	var out []AgentID
	for _, other := range nearby {
		if other.id != self.id && box.OverlapsCircle(other.position, self.cfg.AgentRadius) {
			out = append(out, other.id)
		}
	}
	slices.Sort(out)
	return out
}

func fovVolume(a *Agent) geometry.OrientedBox {
	size := a.cfg.FOVVolume.Vector()
	forward := a.direction
	if forward.IsZero() {
		forward = geometry.Forward
	}
	return geometry.NewOrientedBox(a.position.Add(forward.Mul(size.Z/2)), forward, size)
}
