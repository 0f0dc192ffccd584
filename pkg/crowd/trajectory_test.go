package crowd

import (
	"errors"
	"math"
	"testing"
)

func TestTrajectoryTable_Lookaheads(t *testing.T) {
	got, err := DefaultTrajectoryTable().Lookaheads("FuturePosition", "FutureDirection")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{20.0 / 60, 40.0 / 60, 1}
	if len(got) != len(want) {
		t.Fatalf("lookaheads = %v; want %v", got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("lookahead %d = %v; want %v", i, got[i], want[i])
		}
	}
}

func TestTrajectoryTable_Errors(t *testing.T) {
	table := TrajectoryTable{
		DatabaseDeltaTime: 1.0 / 30,
		Features: []TrajectoryFeature{
			{Name: "Pos", Kind: FeaturePosition, FramesPrediction: []int{10, 20}},
			{Name: "Dir", Kind: FeatureDirection, FramesPrediction: []int{10, 25}},
			{Name: "Short", Kind: FeatureDirection, FramesPrediction: []int{10}},
		},
	}
	tests := []struct {
		name     string
		pos, dir string
		want     error
	}{
		{"missing position", "Nope", "Dir", ErrFeatureNotFound},
		{"missing direction", "Pos", "Nope", ErrFeatureNotFound},
		{"kind mismatch", "Dir", "Dir", ErrFeatureNotFound},
		{"different frames", "Pos", "Dir", ErrLookaheadMismatch},
		{"different lengths", "Pos", "Short", ErrLookaheadMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := table.Lookaheads(tt.pos, tt.dir); !errors.Is(err, tt.want) {
				t.Errorf("Lookaheads(%s, %s) = %v; want %v", tt.pos, tt.dir, err, tt.want)
			}
		})
	}
}

func TestNewWorld_FailsFastOnTrajectoryTable(t *testing.T) {
	table := TrajectoryTable{DatabaseDeltaTime: 1.0 / 60}
	if _, err := NewWorld(nil, WithTrajectoryTable(table)); !errors.Is(err, ErrFeatureNotFound) {
		t.Errorf("NewWorld with empty table = %v; want ErrFeatureNotFound", err)
	}
}
