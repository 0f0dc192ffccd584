package simulation

import (
	"testing"

	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/crowd"
	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/geometry"
)

func TestEncodeSnapshot(t *testing.T) {
	s := crowd.Snapshot{
		Tick: 12,
		Time: 0.2,
		Agents: []crowd.AgentSnapshot{{
			ID:           1,
			Name:         "a",
			Position:     geometry.NewVector(1, 0, 2),
			Direction:    geometry.Forward,
			Speed:        0.75,
			State:        crowd.Colliding.String(),
			CollidedWith: 2,
			GoalIndex:    1,
		}},
		Groups: []crowd.GroupSnapshot{{Name: "g", Members: []crowd.AgentID{1, 2}, Cohesive: true}},
	}
	st, err := EncodeSnapshot(s)
	if err != nil {
		t.Fatal(err)
	}
	if got := st.GetFields()["tick"].GetNumberValue(); got != 12 {
		t.Errorf("tick field = %v; want 12", got)
	}
	agents := st.GetFields()["agents"].GetListValue().GetValues()
	if len(agents) != 1 {
		t.Fatalf("agents field has %d entries", len(agents))
	}
	if name := agents[0].GetStructValue().GetFields()["name"].GetStringValue(); name != "a" {
		t.Errorf("agent name = %q", name)
	}

	back, err := DecodeSnapshot(st)
	if err != nil {
		t.Fatal(err)
	}
	if back.Tick != 12 || len(back.Agents) != 1 || back.Agents[0].CollidedWith != 2 {
		t.Errorf("decoded snapshot = %+v", back)
	}
	if !back.Agents[0].Position.Eq(s.Agents[0].Position) || !back.Groups[0].Cohesive {
		t.Errorf("decoded snapshot lost fields: %+v", back)
	}
}
