package crowd

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/geometry"
)

// FeatureKind tells which predicted array a trajectory channel reads.
type FeatureKind string

const (
	FeaturePosition  FeatureKind = "position"
	FeatureDirection FeatureKind = "direction"
)

// TrajectoryFeature is one channel of the motion matching feature table.
// FramesPrediction lists future frames, in database frames, for which a
// prediction is searched.
type TrajectoryFeature struct {
	Name             string      `json:"name" yaml:"name"`
	Kind             FeatureKind `json:"kind" yaml:"kind"`
	FramesPrediction []int       `json:"framesPrediction" yaml:"framesPrediction"`
}

// TrajectoryTable is the externally owned feature table consumed at setup.
type TrajectoryTable struct {
	DatabaseDeltaTime float64             `json:"databaseDeltaTime" yaml:"databaseDeltaTime"`
	Features          []TrajectoryFeature `json:"features" yaml:"features"`
}

// DefaultTrajectoryTable predicts 20, 40 and 60 frames ahead at 60 Hz.
func DefaultTrajectoryTable() TrajectoryTable {
	frames := []int{20, 40, 60}
	return TrajectoryTable{
		DatabaseDeltaTime: 1.0 / 60.0,
		Features: []TrajectoryFeature{
			{Name: "FuturePosition", Kind: FeaturePosition, FramesPrediction: frames},
			{Name: "FutureDirection", Kind: FeatureDirection, FramesPrediction: frames},
		},
	}
}

func (t TrajectoryTable) find(name string, kind FeatureKind) (TrajectoryFeature, error) {
	for _, f := range t.Features {
		if f.Name == name && f.Kind == kind {
			return f, nil
		}
	}
	return TrajectoryFeature{}, fmt.Errorf("%w: %s (%s)", ErrFeatureNotFound, name, kind)
}

// Lookaheads resolves the position and direction channels and returns the
// prediction offsets in seconds. Both channels must exist and predict the
// same frames.
func (t TrajectoryTable) Lookaheads(positionFeature, directionFeature string) ([]float64, error) {
	pos, err := t.find(positionFeature, FeaturePosition)
	if err != nil {
		return nil, err
	}
	dir, err := t.find(directionFeature, FeatureDirection)
	if err != nil {
		return nil, err
	}
	if len(pos.FramesPrediction) != len(dir.FramesPrediction) {
		return nil, fmt.Errorf("%w: %d position frames, %d direction frames",
			ErrLookaheadMismatch, len(pos.FramesPrediction), len(dir.FramesPrediction))
	}
	out := make([]float64, len(pos.FramesPrediction))
	for i, f := range pos.FramesPrediction {
		if dir.FramesPrediction[i] != f {
			return nil, fmt.Errorf("%w: frame %d is %d vs %d", ErrLookaheadMismatch, i, f, dir.FramesPrediction[i])
		}
		out[i] = t.DatabaseDeltaTime * float64(f)
	}
	return out, nil
}

// TrajectoryFeature encodes the prediction at index in the character frame
// given by origin and forward, as the (x, z) pair the motion matching
// search reads. Positions are projected on the ground first.
func (a *Agent) TrajectoryFeature(kind FeatureKind, index int, origin, forward geometry.Vector3D) (x, z float64, err error) {
	if index < 0 || index >= len(a.predictedPos) {
		return 0, 0, fmt.Errorf("%w: prediction index %d", ErrFeatureNotFound, index)
	}
	var local geometry.Vector3D
	switch kind {
	case FeaturePosition:
		local = geometry.ToLocalFrame(a.predictedPos[index].Sub(origin).Flat(), forward)
	case FeatureDirection:
		local = geometry.ToLocalFrame(a.predictedDir[index].Flat(), forward)
	default:
		return 0, 0, fmt.Errorf("%w: kind %q", ErrFeatureNotFound, kind)
	}
	return local.X, local.Z, nil
}
