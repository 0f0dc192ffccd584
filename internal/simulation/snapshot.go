package simulation

import (
	"encoding/json"
	"fmt"

	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/crowd"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// EncodeSnapshot converts a world snapshot into a protobuf Struct so it can
// travel as an actor message.
func EncodeSnapshot(s crowd.Snapshot) (*structpb.Struct, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return out, nil
}

// DecodeSnapshot is the inverse of EncodeSnapshot.
func DecodeSnapshot(st *structpb.Struct) (crowd.Snapshot, error) {
	var s crowd.Snapshot
	b, err := protojson.Marshal(st)
	if err != nil {
		return s, fmt.Errorf("failed to marshal snapshot struct: %w", err)
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, nil
}
