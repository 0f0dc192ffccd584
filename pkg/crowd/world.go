package crowd

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/geometry"
	golog "github.com/tochemey/goakt/v3/log"
)

type gridKey struct {
	x, z int
}

type pairKey struct {
	a, b AgentID
}

// World is the agent registry and the single tick driver of the engine.
// It is not safe for concurrent use; internal/simulation serializes access
// through an actor.
type World struct {
	cfg        *Config
	log        golog.Logger
	hooks      SocialHooks
	fov        FOVQuery
	rng        *rand.Rand
	table      TrajectoryTable
	lookaheads []float64
	sched      *Scheduler

	agents map[AgentID]*Agent
	order  []AgentID
	nextID AgentID

	groups     map[string]*Group
	groupOrder []string

	walls []Wall

	// Optimization: Spatial Hashing on the ground plane
	grid     map[gridKey][]*Agent
	cellSize float64

	touching     map[pairKey]struct{}
	pendingScans []AgentID
	tick         uint64
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the engine logger. Defaults to golog.DiscardLogger.
func WithLogger(l golog.Logger) Option {
	return func(w *World) { w.log = l }
}

// WithHooks sets the social reaction collaborator.
func WithHooks(h SocialHooks) Option {
	return func(w *World) { w.hooks = h }
}

// WithFOV replaces the default BoxFOV query.
func WithFOV(q FOVQuery) Option {
	return func(w *World) { w.fov = q }
}

// WithRand sets the source for reaction times. Defaults to a PCG seeded
// from Config.Seed.
func WithRand(r *rand.Rand) Option {
	return func(w *World) { w.rng = r }
}

// WithTrajectoryTable sets the feature table used to derive lookaheads.
func WithTrajectoryTable(t TrajectoryTable) Option {
	return func(w *World) { w.table = t }
}

// NewWorld validates cfg and resolves the trajectory channels. A nil cfg
// uses DefaultConfig.
func NewWorld(cfg *Config, opts ...Option) (*World, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		cfg:      cfg,
		log:      golog.DiscardLogger,
		hooks:    NopHooks{},
		fov:      BoxFOV{},
		table:    DefaultTrajectoryTable(),
		sched:    NewScheduler(),
		agents:   make(map[AgentID]*Agent),
		groups:   make(map[string]*Group),
		grid:     make(map[gridKey][]*Agent),
		touching: make(map[pairKey]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.rng == nil {
		w.rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	}
	lookaheads, err := w.table.Lookaheads(cfg.TrajectoryPositionFeature, cfg.TrajectoryDirectionFeature)
	if err != nil {
		return nil, fmt.Errorf("trajectory setup: %w", err)
	}
	w.lookaheads = lookaheads
	w.cellSize = cellSizeFor(cfg)
	return w, nil
}

func (w *World) Config() *Config { return w.cfg }

// Now is the simulated time in seconds.
func (w *World) Now() float64 { return w.sched.Now() }

// TickCount is the number of completed ticks.
func (w *World) TickCount() uint64 { return w.tick }

// Lookaheads returns the prediction offsets in seconds.
func (w *World) Lookaheads() []float64 { return slices.Clone(w.lookaheads) }

// Len is the number of live agents.
func (w *World) Len() int { return len(w.order) }

func (w *World) agent(id AgentID) *Agent {
	if id == NoAgent {
		return nil
	}
	return w.agents[id]
}

// Agent resolves a handle. Removed agents resolve to false.
func (w *World) Agent(id AgentID) (*Agent, bool) {
	a := w.agent(id)
	return a, a != nil
}

// Agents returns the live agents in id order.
func (w *World) Agents() []*Agent {
	out := make([]*Agent, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.agents[id])
	}
	return out
}

// Spawn registers an agent and starts its periodic avoidance tasks.
func (w *World) Spawn(spec AgentSpec) (AgentID, error) {
	if len(spec.Path) < 2 {
		return NoAgent, fmt.Errorf("agent %q: %w (got %d)", spec.Name, ErrPathTooShort, len(spec.Path))
	}
	if spec.Bone == nil {
		return NoAgent, fmt.Errorf("agent %q: %w", spec.Name, ErrMissingBone)
	}

	w.nextID++
	a := newAgent(w.nextID, w, spec)
	w.agents[a.id] = a
	w.order = append(w.order, a.id)

	now := w.sched.Now()
	a.immediateTask = w.sched.Schedule(now, func(now float64) (float64, bool) {
		a.updateImmediate()
		return now + a.cfg.AvoidanceUpdatePeriod, true
	})
	a.predictiveTask = w.sched.Schedule(now, a.updatePredictive)

	if spec.Category != "" {
		g, ok := w.groups[spec.Category]
		if !ok {
			g = w.addGroup(spec.Category)
		}
		g.members = append(g.members, a.id)
	}

	w.log.Infof("spawned agent %d %q at %v heading %v", a.id, a.name, a.position, a.direction)
	return a.id, nil
}

// Remove unregisters an agent. A reaction it takes part in ends for both
// parties and handles pointing at it stop resolving.
func (w *World) Remove(id AgentID) error {
	a := w.agent(id)
	if a == nil {
		return fmt.Errorf("%w: %d", ErrUnknownAgent, id)
	}
	if a.reaction != nil {
		w.endReaction(a.reaction)
	}
	a.cancelTasks()
	delete(w.agents, id)
	w.order = slices.DeleteFunc(w.order, func(x AgentID) bool { return x == id })
	for _, g := range w.groups {
		g.members = slices.DeleteFunc(g.members, func(x AgentID) bool { return x == id })
	}
	for k := range w.touching {
		if k.a == id || k.b == id {
			delete(w.touching, k)
		}
	}
	w.log.Infof("removed agent %d %q", id, a.name)
	return nil
}

// AddGroup creates an empty named group. Spawn creates category groups on
// demand, so this is only needed to pre-declare them.
func (w *World) AddGroup(name string) (*Group, error) {
	if _, ok := w.groups[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateGroup, name)
	}
	return w.addGroup(name), nil
}

func (w *World) addGroup(name string) *Group {
	g := newGroup(w, name)
	w.groups[name] = g
	w.groupOrder = append(w.groupOrder, name)
	w.log.Infof("created group %s", name)
	return g
}

// Group returns the named group.
func (w *World) Group(name string) (*Group, bool) {
	g, ok := w.groups[name]
	return g, ok
}

// Groups returns every group in creation order.
func (w *World) Groups() []*Group {
	out := make([]*Group, 0, len(w.groupOrder))
	for _, name := range w.groupOrder {
		out = append(out, w.groups[name])
	}
	return out
}

// AddWall registers a wall segment.
func (w *World) AddWall(wall Wall) {
	w.walls = append(w.walls, wall)
}

func (w *World) Walls() []Wall { return slices.Clone(w.walls) }

// Reconfigure validates cfg and re-issues it to every agent. The previous
// config stays in place on error.
func (w *World) Reconfigure(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	lookaheads, err := w.table.Lookaheads(cfg.TrajectoryPositionFeature, cfg.TrajectoryDirectionFeature)
	if err != nil {
		return fmt.Errorf("trajectory setup: %w", err)
	}
	w.cfg = cfg
	w.lookaheads = lookaheads
	w.cellSize = cellSizeFor(cfg)
	minSpeed := cfg.EffectiveMinSpeed()
	for _, id := range w.order {
		a := w.agents[id]
		a.cfg = cfg
		a.speed = math.Max(minSpeed, math.Min(cfg.InitialSpeed, a.speed))
		if len(a.predictedPos) != len(lookaheads) {
			a.resizePredictions(len(lookaheads))
		}
	}
	w.log.Infof("reconfigured %d agents", len(w.order))
	return nil
}

// Tick advances the simulation by dt seconds:
// timers, queued predictive scans, sensing, contacts, agent steps, groups.
func (w *World) Tick(ctx context.Context, dt float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.sched.Advance(w.sched.Now() + dt)

	if err := w.runScans(ctx); err != nil {
		return fmt.Errorf("neighbor scan: %w", err)
	}

	w.rebuildGrid()
	w.sense()
	w.detectContacts()

	for _, id := range w.order {
		w.agents[id].advance(dt)
	}
	for _, name := range w.groupOrder {
		w.groups[name].update()
	}
	w.tick++
	return nil
}

func (w *World) sense() {
	for _, id := range w.order {
		a := w.agents[id]
		nearby := w.getNearbyAgents(a.position)
		a.senseAvoidanceVolume(nearby)
		a.fov = w.fov.Visible(a, nearby)
		a.wallVec = WallRepulsion(a.position, w.walls, a.cfg.WallDetectionRadius)
	}
}

// detectContacts reports a collision when two capsules start touching.
func (w *World) detectContacts() {
	contactSq := 4 * w.cfg.AgentRadius * w.cfg.AgentRadius
	now := make(map[pairKey]struct{}, len(w.touching))
	var fresh []pairKey
	for _, id := range w.order {
		a := w.agents[id]
		for _, other := range w.getNearbyAgents(a.position) {
			if other.id <= a.id || a.position.Flat().DistanceSquaredTo(other.position.Flat()) >= contactSq {
				continue
			}
			k := pairKey{a: a.id, b: other.id}
			now[k] = struct{}{}
			if _, was := w.touching[k]; !was {
				fresh = append(fresh, k)
			}
		}
	}
	w.touching = now
	for _, k := range fresh {
		a, b := w.agents[k.a], w.agents[k.b]
		if a.state == Idle && b.state == Idle {
			w.startReaction(a, b)
		}
	}
}

func (w *World) rebuildGrid() {
	// Reset slices to length 0 but keep capacity, so the cells are reused
	// from tick to tick.
	for k := range w.grid {
		w.grid[k] = w.grid[k][:0]
	}
	for _, id := range w.order {
		a := w.agents[id]
		key := w.getCellIndices(a.position)
		w.grid[key] = append(w.grid[key], a)
	}
}

// cellSizeFor returns a cell size large enough for a 3x3 scan to cover the
// FOV box, the avoidance box, wall detection and contacts.
func cellSizeFor(cfg *Config) float64 {
	fov := cfg.FOVVolume.Z + math.Hypot(cfg.FOVVolume.X/2, cfg.FOVVolume.Z/2)
	avoid := 1 + math.Hypot(cfg.AvoidanceVolume.X/2, cfg.AvoidanceVolume.Z/2)
	size := math.Max(fov, avoid) + cfg.AgentRadius
	size = math.Max(size, 4*cfg.AgentRadius)
	// Clamp to a minimum of 1 to avoid tiny grids or div by zero
	return math.Max(size, 1.0)
}

func (w *World) getCellIndices(p geometry.Vector3D) gridKey {
	return gridKey{
		x: int(math.Floor(p.X / w.cellSize)),
		z: int(math.Floor(p.Z / w.cellSize)),
	}
}

// getNearbyAgents retrieves the agents in and around the cell of p (3x3).
func (w *World) getNearbyAgents(p geometry.Vector3D) []*Agent {
	c := w.getCellIndices(p)
	var neighbors []*Agent
	for i := c.x - 1; i <= c.x+1; i++ {
		for j := c.z - 1; j <= c.z+1; j++ {
			if agents, ok := w.grid[gridKey{x: i, z: j}]; ok {
				neighbors = append(neighbors, agents...)
			}
		}
	}
	return neighbors
}
