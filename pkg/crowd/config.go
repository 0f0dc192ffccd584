package crowd

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/geometry"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed config.schema.json
var configSchema string

// ErrInvalidConfig is returned when a configuration fails cross-field validation.
var ErrInvalidConfig = errors.New("invalid crowd config")

// Neighbor scopes for predictive avoidance candidates.
const (
	ScopeAll   = "all"
	ScopeFOV   = "fov"
	ScopeGroup = "group"
)

// Size3 is a box size in meters (X width, Y height, Z depth along heading).
type Size3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vector returns the size as a vector.
func (s Size3) Vector() geometry.Vector3D {
	return geometry.Vector3D{X: s.X, Y: s.Y, Z: s.Z}
}

// Config holds every tunable of the steering engine. It is treated as
// immutable once handed to a World; use World.Reconfigure to swap it.
type Config struct {
	// Goal seeking
	GoalRadius    float64 `json:"goalRadius"`
	SlowingRadius float64 `json:"slowingRadius"`
	InitialSpeed  float64 `json:"initialSpeed"`
	MinSpeed      float64 `json:"minSpeed"`
	// Duration of the speed ramp back to InitialSpeed after a goal is reached
	SpeedRampDuration float64 `json:"speedRampDuration"`

	// Steering weights
	ToGoalWeight        float64 `json:"toGoalWeight"`
	AvoidanceWeight     float64 `json:"avoidanceWeight"`
	AvoidNeighborWeight float64 `json:"avoidNeighborWeight"`
	WallRepulsionWeight float64 `json:"wallRepulsionWeight"`

	// Body and sensing volumes
	AgentRadius         float64 `json:"agentRadius"`
	AvoidanceVolume     Size3   `json:"avoidanceVolume"`
	FOVVolume           Size3   `json:"fovVolume"`
	WallDetectionRadius float64 `json:"wallDetectionRadius"`

	// Immediate avoidance cadence
	AvoidanceUpdatePeriod float64 `json:"avoidanceUpdatePeriod"`
	AvoidanceFadeDuration float64 `json:"avoidanceFadeDuration"`

	// Predictive (unaligned) avoidance
	NeighborUpdatePeriod     float64 `json:"neighborUpdatePeriod"`
	NeighborTransition       float64 `json:"neighborTransition"`
	MinTimeToCollision       float64 `json:"minTimeToCollision"`
	CollisionDangerThreshold float64 `json:"collisionDangerThreshold"`
	NeighborScope            string  `json:"neighborScope"`
	ParallelScanWorkers      int     `json:"parallelScanWorkers"`

	// Collision reaction
	MinReactionTime float64 `json:"minReactionTime"`
	MaxReactionTime float64 `json:"maxReactionTime"`

	// Simulation bone
	MaxBoneDistance            float64 `json:"maxBoneDistance"`
	PositionAdjustmentHalflife float64 `json:"positionAdjustmentHalflife"`
	PositionMaxAdjustmentRatio float64 `json:"positionMaxAdjustmentRatio"`

	// Groups
	GroupFOVUpdatePeriod float64 `json:"groupFOVUpdatePeriod"`
	GroupColliderEnabled bool    `json:"groupColliderEnabled"`

	// Trajectory channels looked up in the feature table
	TrajectoryPositionFeature  string `json:"trajectoryPositionFeature"`
	TrajectoryDirectionFeature string `json:"trajectoryDirectionFeature"`

	Seed uint64 `json:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		GoalRadius:                 0.5,
		SlowingRadius:              2.0,
		InitialSpeed:               1.0,
		MinSpeed:                   0.5,
		SpeedRampDuration:          1.0,
		ToGoalWeight:               2.0,
		AvoidanceWeight:            3.0,
		AvoidNeighborWeight:        2.0,
		WallRepulsionWeight:        1.0,
		AgentRadius:                0.25,
		AvoidanceVolume:            Size3{X: 1.5, Y: 1.5, Z: 2.0},
		FOVVolume:                  Size3{X: 4.5, Y: 1.5, Z: 6.0},
		WallDetectionRadius:        1.0,
		AvoidanceUpdatePeriod:      0.1,
		AvoidanceFadeDuration:      0.5,
		NeighborUpdatePeriod:       0.1,
		NeighborTransition:         0.3,
		MinTimeToCollision:         5.0,
		CollisionDangerThreshold:   4.0,
		NeighborScope:              ScopeAll,
		ParallelScanWorkers:        4,
		MinReactionTime:            3.0,
		MaxReactionTime:            7.0,
		MaxBoneDistance:            0.1,
		PositionAdjustmentHalflife: 0.1,
		PositionMaxAdjustmentRatio: 0.1,
		GroupFOVUpdatePeriod:       0.1,
		GroupColliderEnabled:       true,
		TrajectoryPositionFeature:  "FuturePosition",
		TrajectoryDirectionFeature: "FutureDirection",
		Seed:                       42,
	}
}

// EffectiveMinSpeed is MinSpeed lowered to InitialSpeed when the agent is
// configured to walk slower than the usual minimum.
func (c *Config) EffectiveMinSpeed() float64 {
	if c.InitialSpeed < c.MinSpeed {
		return c.InitialSpeed
	}
	return c.MinSpeed
}

// Validate checks the rules the schema cannot express. A MinSpeed above
// InitialSpeed is accepted; see EffectiveMinSpeed.
func (c *Config) Validate() error {
	switch {
	case c.GoalRadius <= 0:
		return fmt.Errorf("%w: goalRadius must be > 0", ErrInvalidConfig)
	case c.SlowingRadius <= 0:
		return fmt.Errorf("%w: slowingRadius must be > 0", ErrInvalidConfig)
	case c.InitialSpeed <= 0:
		return fmt.Errorf("%w: initialSpeed must be > 0", ErrInvalidConfig)
	case c.MinSpeed < 0:
		return fmt.Errorf("%w: minSpeed must be >= 0", ErrInvalidConfig)
	case c.MinReactionTime < 0 || c.MaxReactionTime < c.MinReactionTime:
		return fmt.Errorf("%w: reaction time bounds [%v, %v]", ErrInvalidConfig, c.MinReactionTime, c.MaxReactionTime)
	case c.AvoidanceUpdatePeriod <= 0 || c.NeighborUpdatePeriod <= 0 || c.GroupFOVUpdatePeriod <= 0:
		return fmt.Errorf("%w: update periods must be > 0", ErrInvalidConfig)
	case c.AgentRadius <= 0:
		return fmt.Errorf("%w: agentRadius must be > 0", ErrInvalidConfig)
	}
	switch c.NeighborScope {
	case ScopeAll, ScopeFOV, ScopeGroup:
	default:
		return fmt.Errorf("%w: unknown neighborScope %q", ErrInvalidConfig, c.NeighborScope)
	}
	if c.TrajectoryPositionFeature == "" || c.TrajectoryDirectionFeature == "" {
		return fmt.Errorf("%w: trajectory feature names must be set", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig loads configuration from a JSON file and validates it against the schema.
func LoadConfig(configFile string) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(b)
}

// ParseConfig validates raw JSON against the embedded schema and decodes it
// over DefaultConfig, so omitted fields keep their defaults.
func ParseConfig(data []byte) (*Config, error) {
	return PatchConfig(DefaultConfig(), data)
}

// PatchConfig is ParseConfig over a copy of base instead of the defaults.
// base is never modified.
func PatchConfig(base *Config, data []byte) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.CompileString("config.schema.json", configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Validate
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 3. Unmarshal into Struct
	cfg := *base
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
