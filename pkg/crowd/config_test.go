package crowd

import (
	"errors"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestParseConfig_KeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"goalRadius": 0.8, "avoidanceVolume": {"x": 2, "y": 1, "z": 3}}`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.GoalRadius != 0.8 {
		t.Errorf("goalRadius = %v; want 0.8", cfg.GoalRadius)
	}
	if cfg.AvoidanceVolume != (Size3{X: 2, Y: 1, Z: 3}) {
		t.Errorf("avoidanceVolume = %+v", cfg.AvoidanceVolume)
	}
	def := DefaultConfig()
	if cfg.SlowingRadius != def.SlowingRadius || cfg.MaxReactionTime != def.MaxReactionTime {
		t.Errorf("omitted fields lost their defaults: %+v", cfg)
	}
}

func TestParseConfig_Rejects(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `{goalRadius:`},
		{"negative radius", `{"goalRadius": -1}`},
		{"unknown field", `{"goalRadiuss": 1}`},
		{"bad scope", `{"neighborScope": "nearby"}`},
		{"wrong type", `{"initialSpeed": "fast"}`},
		{"fractional workers", `{"parallelScanWorkers": 1.5}`},
		{"partial volume", `{"fovVolume": {"x": 1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tt.json)); err == nil {
				t.Errorf("ParseConfig(%s) accepted invalid input", tt.json)
			}
		})
	}
}

func TestParseConfig_CrossFieldRules(t *testing.T) {
	_, err := ParseConfig([]byte(`{"minReactionTime": 5, "maxReactionTime": 2}`))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("reaction bounds error = %v; want ErrInvalidConfig", err)
	}
}

func TestEffectiveMinSpeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialSpeed = 0.3
	if got := cfg.EffectiveMinSpeed(); got != 0.3 {
		t.Errorf("EffectiveMinSpeed = %v; want 0.3", got)
	}
}

func TestLoadConfig_SampleFile(t *testing.T) {
	cfg, err := LoadConfig("../../configs/crowd.json")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.NeighborScope != ScopeGroup || cfg.Seed != 7 {
		t.Errorf("sample config = scope %q seed %d", cfg.NeighborScope, cfg.Seed)
	}
	if _, err := LoadConfig("does-not-exist.json"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestPatchConfig_KeepsBase(t *testing.T) {
	base := DefaultConfig()
	base.Seed = 99
	patched, err := PatchConfig(base, []byte(`{"initialSpeed": 1.4}`))
	if err != nil {
		t.Fatal(err)
	}
	if patched.InitialSpeed != 1.4 || patched.Seed != 99 {
		t.Errorf("patched = speed %v seed %d; want 1.4 and the base seed", patched.InitialSpeed, patched.Seed)
	}
	if base.InitialSpeed != 1.0 {
		t.Errorf("base modified: initialSpeed %v", base.InitialSpeed)
	}
	if _, err := PatchConfig(base, []byte(`{"minSpeed": -2}`)); err == nil {
		t.Error("PatchConfig accepted a negative minSpeed")
	}
}

func TestParseConfig_MinSpeedAboveInitialSpeed(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"initialSpeed": 0.4, "minSpeed": 0.6}`))
	if err != nil {
		t.Fatalf("ParseConfig rejected minSpeed above initialSpeed: %v", err)
	}
	if got := cfg.EffectiveMinSpeed(); got != 0.4 {
		t.Errorf("EffectiveMinSpeed = %v; want initialSpeed 0.4", got)
	}
}
