package simulation

import (
	"testing"

	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/geometry"
)

func TestTrailingBone_Follow(t *testing.T) {
	b := NewTrailingBone(geometry.Zero, 0.25)
	b.Follow(geometry.NewVector(2, 0, 0), 0.5)
	if want := geometry.NewVector(0.75, 0, 0); !b.Position().EqWithin(want, 1e-12) {
		t.Errorf("position = %v; want %v", b.Position(), want)
	}
	if want := geometry.NewVector(1.5, 0, 0); !b.Velocity().EqWithin(want, 1e-12) {
		t.Errorf("velocity = %v; want %v", b.Velocity(), want)
	}
	b.SetPosAdjustment(geometry.NewVector(0, 0, 1))
	if want := geometry.NewVector(0.75, 0, 1); !b.Position().EqWithin(want, 1e-12) {
		t.Errorf("position after adjustment = %v; want %v", b.Position(), want)
	}
}
