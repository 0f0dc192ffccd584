package simulation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/crowd"
	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/geometry"
	"gopkg.in/yaml.v3"
)

// ErrBadPoint is returned for a waypoint that is not an [x, y, z] triple.
var ErrBadPoint = errors.New("point must have 3 coordinates")

// Scenario is the YAML description of a crowd: who walks where, and the
// static walls around them.
type Scenario struct {
	Name       string                 `yaml:"name"`
	BoneDrift  float64                `yaml:"bone_drift"`
	Trajectory *crowd.TrajectoryTable `yaml:"trajectory,omitempty"`
	Groups     []string               `yaml:"groups,omitempty"`
	Walls      []WallSpec             `yaml:"walls,omitempty"`
	Agents     []AgentSpec            `yaml:"agents"`
}

type WallSpec struct {
	From []float64 `yaml:"from"`
	To   []float64 `yaml:"to"`
}

type AgentSpec struct {
	Name     string      `yaml:"name"`
	Category string      `yaml:"category,omitempty"`
	Path     [][]float64 `yaml:"path"`
}

// LoadScenario reads and decodes a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(b)
}

func ParseScenario(data []byte) (*Scenario, error) {
	s := &Scenario{BoneDrift: 0.05}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("scenario.yaml: %w", err)
	}
	if strings.TrimSpace(s.Name) == "" {
		s.Name = "crowd"
	}
	if s.BoneDrift < 0 || s.BoneDrift >= 1 {
		return nil, fmt.Errorf("scenario.yaml: bone_drift %v outside [0, 1)", s.BoneDrift)
	}
	return s, nil
}

func toVector(p []float64) (geometry.Vector3D, error) {
	if len(p) != 3 {
		return geometry.Zero, fmt.Errorf("%w, got %v", ErrBadPoint, p)
	}
	return geometry.NewVector(p[0], p[1], p[2]), nil
}

// Build creates the world, its walls and groups, and spawns every agent
// with a TrailingBone.
func (s *Scenario) Build(cfg *crowd.Config, opts ...crowd.Option) (*Crowd, error) {
	if s.Trajectory != nil {
		opts = append(opts, crowd.WithTrajectoryTable(*s.Trajectory))
	}
	world, err := crowd.NewWorld(cfg, opts...)
	if err != nil {
		return nil, err
	}
	for _, name := range s.Groups {
		if _, err := world.AddGroup(name); err != nil {
			return nil, err
		}
	}
	for i, ws := range s.Walls {
		a, err := toVector(ws.From)
		if err != nil {
			return nil, fmt.Errorf("wall %d: %w", i, err)
		}
		b, err := toVector(ws.To)
		if err != nil {
			return nil, fmt.Errorf("wall %d: %w", i, err)
		}
		world.AddWall(crowd.Wall{A: a, B: b})
	}

	c := &Crowd{World: world, bones: make(map[crowd.AgentID]*TrailingBone, len(s.Agents))}
	for _, as := range s.Agents {
		path := make([]geometry.Vector3D, 0, len(as.Path))
		for _, p := range as.Path {
			v, err := toVector(p)
			if err != nil {
				return nil, fmt.Errorf("agent %q: %w", as.Name, err)
			}
			path = append(path, v)
		}
		var start geometry.Vector3D
		if len(path) > 0 {
			start = path[0]
		}
		bone := NewTrailingBone(start, s.BoneDrift)
		id, err := world.Spawn(crowd.AgentSpec{
			Name:     as.Name,
			Category: as.Category,
			Path:     path,
			Bone:     bone,
		})
		if err != nil {
			return nil, err
		}
		c.bones[id] = bone
	}
	return c, nil
}

// Crowd is a world plus the bones that stand in for its animated characters.
type Crowd struct {
	World *crowd.World
	bones map[crowd.AgentID]*TrailingBone
}

// Bone returns the headless bone of an agent.
func (c *Crowd) Bone(id crowd.AgentID) (*TrailingBone, bool) {
	b, ok := c.bones[id]
	return b, ok
}

// Step moves every bone along its agent's last velocity, then ticks the
// world, which corrects the bones toward the simulation.
func (c *Crowd) Step(ctx context.Context, dt float64) error {
	for id, bone := range c.bones {
		a, ok := c.World.Agent(id)
		if !ok {
			delete(c.bones, id)
			continue
		}
		bone.Follow(a.Velocity(), dt)
	}
	return c.World.Tick(ctx, dt)
}
