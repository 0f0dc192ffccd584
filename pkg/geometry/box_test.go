package geometry

import (
	"math"
	"testing"
)

func TestOrientedBox_OverlapsCircle(t *testing.T) {
	// 1.5 wide, 2 deep, facing +Z, centred one unit ahead of the origin.
	box := NewOrientedBox(Vector3D{0, 0, 1}, Vector3D{0, 0, 1}, Vector3D{1.5, 1.5, 2})

	tests := []struct {
		name string
		p    Vector3D
		r    float64
		want bool
	}{
		{"centre", Vector3D{0, 0, 1}, 0, true},
		{"front edge", Vector3D{0, 0, 2}, 0, true},
		{"beyond front", Vector3D{0, 0, 2.3}, 0.25, false},
		{"touching front with radius", Vector3D{0, 0, 2.2}, 0.25, true},
		{"side inside", Vector3D{0.7, 0, 1}, 0, true},
		{"side outside", Vector3D{1.2, 0, 1}, 0.25, false},
		{"height ignored", Vector3D{0, 5, 1}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.OverlapsCircle(tt.p, tt.r); got != tt.want {
				t.Errorf("OverlapsCircle(%v, %v) = %v; want %v", tt.p, tt.r, got, tt.want)
			}
		})
	}
}

func TestOrientedBox_Rotated(t *testing.T) {
	// Facing +X: depth runs along X.
	box := NewOrientedBox(Vector3D{1, 0, 0}, Vector3D{1, 0, 0}, Vector3D{1.5, 1.5, 2})
	if !box.OverlapsCircle(Vector3D{1.9, 0, 0}, 0) {
		t.Error("expected point ahead along +X to be inside")
	}
	if box.OverlapsCircle(Vector3D{1, 0, 1}, 0) {
		t.Error("expected point 1 unit to the side to be outside a 1.5 wide box")
	}
}

func TestToLocalFrame(t *testing.T) {
	got := ToLocalFrame(Vector3D{0, 0, 2}, Vector3D{0, 0, 1})
	if !got.Eq(Vector3D{0, 0, 2}) {
		t.Errorf("ToLocalFrame identity = %v", got)
	}
	got = ToLocalFrame(Vector3D{1, 0, 0}, Vector3D{1, 0, 0})
	if !got.Eq(Vector3D{0, 0, 1}) {
		t.Errorf("ToLocalFrame facing +X = %v; want forward 1", got)
	}
}

func TestClosestPointOnSegment(t *testing.T) {
	a, b := Vector3D{0, 0, 0}, Vector3D{10, 0, 0}
	if got := ClosestPointOnSegment(Vector3D{5, 0, 3}, a, b); !got.Eq(Vector3D{5, 0, 0}) {
		t.Errorf("middle = %v", got)
	}
	if got := ClosestPointOnSegment(Vector3D{-4, 0, 1}, a, b); !got.Eq(a) {
		t.Errorf("before start = %v", got)
	}
	if got := ClosestPointOnSegment(Vector3D{3, 0, 3}, a, a); !got.Eq(a) {
		t.Errorf("degenerate = %v", got)
	}
}

func TestDampAdjustmentImplicit(t *testing.T) {
	x := Vector3D{1, 0, 0}
	got := DampAdjustmentImplicit(x, 0.1, 0.1)
	if math.Abs(got.X-0.5) > 1e-3 {
		t.Errorf("one half-life should close half the gap, got %v", got)
	}
	if got := DampAdjustmentImplicit(x, 0.1, 0); !got.IsZero() {
		t.Errorf("dt=0 should not move, got %v", got)
	}
}
