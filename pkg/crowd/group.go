package crowd

import (
	"math"
	"slices"

	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/geometry"
)

// GroupCollider is the shared bounding cylinder of a cohesive group.
type GroupCollider struct {
	Enabled bool
	Center  geometry.Vector3D
	Radius  float64
}

// Group aggregates the agents of one category.
type Group struct {
	name    string
	world   *World
	members []AgentID
	enabled bool

	centroid  geometry.Vector3D
	maxSpread float64
	cohesive  bool
	collider  GroupCollider
	sharedFOV []AgentID

	fovTask TaskID
}

func newGroup(w *World, name string) *Group {
	g := &Group{
		name:    name,
		world:   w,
		enabled: w.cfg.GroupColliderEnabled,
	}
	g.fovTask = w.sched.Schedule(w.sched.Now(), func(now float64) (float64, bool) {
		g.refreshSharedFOV()
		return now + g.world.cfg.GroupFOVUpdatePeriod, true
	})
	return g
}

func (g *Group) Name() string { return g.name }

// Members returns the member handles in join order.
func (g *Group) Members() []AgentID { return slices.Clone(g.members) }

func (g *Group) Centroid() geometry.Vector3D { return g.centroid }

// MaxSpread is the largest member to centroid distance of the last tick.
func (g *Group) MaxSpread() float64 { return g.maxSpread }

func (g *Group) Cohesive() bool { return g.cohesive }

func (g *Group) Collider() GroupCollider { return g.collider }

// SharedFOV is the cached union of the members' visible agents, minus the
// members themselves. It is empty while the group is not cohesive.
func (g *Group) SharedFOV() []AgentID { return slices.Clone(g.sharedFOV) }

// Enabled reports whether the group collider may switch on.
func (g *Group) Enabled() bool { return g.enabled }

// SetEnabled turns group level aggregation on or off. It takes effect on
// the next tick.
func (g *Group) SetEnabled(enabled bool) { g.enabled = enabled }

// Threshold is the cohesion distance, memberCount/2 in integer division.
// Removed agents no longer count as members.
func (g *Group) Threshold() float64 {
	return float64(len(g.members) / 2)
}

func (g *Group) isMember(id AgentID) bool {
	return slices.Contains(g.members, id)
}

// update recomputes centroid and cohesion. Called once per tick after
// every agent moved.
func (g *Group) update() {
	var (
		sum   geometry.Vector3D
		alive []*Agent
	)
	for _, id := range g.members {
		if a := g.world.agent(id); a != nil {
			alive = append(alive, a)
			sum = sum.Add(a.position)
		}
	}
	if len(alive) == 0 {
		g.centroid, g.maxSpread = geometry.Zero, 0
		g.disable()
		return
	}

	g.centroid = sum.Mul(1 / float64(len(alive)))
	g.maxSpread = 0
	for _, a := range alive {
		g.maxSpread = math.Max(g.maxSpread, a.position.DistanceTo(g.centroid))
	}

	if g.enabled && g.maxSpread <= g.Threshold() {
		if !g.cohesive {
			g.world.log.Debugf("group %s is cohesive (spread %.2f)", g.name, g.maxSpread)
		}
		g.cohesive = true
		g.collider = GroupCollider{
			Enabled: true,
			Center:  g.centroid,
			Radius:  g.maxSpread + g.world.cfg.AgentRadius,
		}
		return
	}
	g.disable()
}

func (g *Group) disable() {
	g.cohesive = false
	g.collider = GroupCollider{Center: g.centroid}
	g.sharedFOV = nil
}

func (g *Group) refreshSharedFOV() {
	if !g.cohesive {
		return
	}
	seen := make(map[AgentID]struct{})
	for _, id := range g.members {
		a := g.world.agent(id)
		if a == nil {
			continue
		}
		for _, v := range a.fov {
			if !g.isMember(v) {
				seen[v] = struct{}{}
			}
		}
	}
	shared := make([]AgentID, 0, len(seen))
	for id := range seen {
		shared = append(shared, id)
	}
	slices.Sort(shared)
	g.sharedFOV = shared
}
