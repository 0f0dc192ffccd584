package crowd

import (
	"context"
	"testing"

	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/geometry"
)

// stubBone applies every adjustment immediately.
type stubBone struct {
	pos         geometry.Vector3D
	vel         geometry.Vector3D
	adjustments []geometry.Vector3D
}

func (b *stubBone) Position() geometry.Vector3D { return b.pos }
func (b *stubBone) Velocity() geometry.Vector3D { return b.vel }
func (b *stubBone) SetPosAdjustment(delta geometry.Vector3D) {
	b.adjustments = append(b.adjustments, delta)
	b.pos = b.pos.Add(delta)
}

type hookCall struct {
	kind   string
	agent  AgentID
	target AgentID
	state  AnimationState
}

type recordingHooks struct {
	calls []hookCall
}

func (h *recordingHooks) SetLookAt(agent, target AgentID) {
	h.calls = append(h.calls, hookCall{kind: "lookAt", agent: agent, target: target})
}
func (h *recordingHooks) ClearLookAt(agent AgentID) {
	h.calls = append(h.calls, hookCall{kind: "clearLookAt", agent: agent})
}
func (h *recordingHooks) PlayAudio(agent AgentID) {
	h.calls = append(h.calls, hookCall{kind: "audio", agent: agent})
}
func (h *recordingHooks) TriggerAnimation(agent AgentID, state AnimationState) {
	h.calls = append(h.calls, hookCall{kind: "anim", agent: agent, state: state})
}

func (h *recordingHooks) count(kind string) int {
	n := 0
	for _, c := range h.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

func testConfig(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

func newTestWorld(t *testing.T, cfg *Config, opts ...Option) *World {
	t.Helper()
	w, err := NewWorld(cfg, opts...)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w
}

func spawn(t *testing.T, w *World, name, category string, path ...geometry.Vector3D) *Agent {
	t.Helper()
	id, err := w.Spawn(AgentSpec{
		Name:     name,
		Category: category,
		Path:     path,
		Bone:     &stubBone{pos: path[0]},
	})
	if err != nil {
		t.Fatalf("Spawn(%s): %v", name, err)
	}
	a, _ := w.Agent(id)
	return a
}

func tickN(t *testing.T, w *World, n int, dt float64) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := w.Tick(context.Background(), dt); err != nil {
			t.Fatalf("Tick %d: %v", i, err)
		}
	}
}

func v(x, y, z float64) geometry.Vector3D { return geometry.NewVector(x, y, z) }
