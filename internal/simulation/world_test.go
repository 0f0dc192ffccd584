package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func startWorld(t *testing.T, snapshotCh chan<- *structpb.Struct) (*Crowd, *actor.PID) {
	t.Helper()
	ctx := context.Background()
	s, err := ParseScenario([]byte(twoWalkers))
	if err != nil {
		t.Fatal(err)
	}
	c, err := s.Build(nil)
	if err != nil {
		t.Fatal(err)
	}

	system, err := actor.NewActorSystem("CrowdTest", actor.WithLogger(golog.DiscardLogger))
	if err != nil {
		t.Fatal(err)
	}
	if err := system.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = system.Stop(ctx) })

	pid, err := system.Spawn(ctx, "world", NewWorldActor(c, snapshotCh))
	if err != nil {
		t.Fatalf("Failed to spawn world: %v", err)
	}
	return c, pid
}

func askSnapshot(t *testing.T, pid *actor.PID) *structpb.Struct {
	t.Helper()
	reply, err := actor.Ask(context.Background(), pid, &emptypb.Empty{}, time.Second)
	if err != nil {
		t.Fatalf("Ask snapshot: %v", err)
	}
	st, ok := reply.(*structpb.Struct)
	if !ok {
		t.Fatalf("snapshot reply is %T", reply)
	}
	return st
}

func TestWorldActor_TicksAndSnapshots(t *testing.T) {
	frames := make(chan *structpb.Struct, 100)
	_, pid := startWorld(t, frames)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := actor.Tell(ctx, pid, durationpb.New(20*time.Millisecond)); err != nil {
			t.Fatal(err)
		}
	}
	snap, err := DecodeSnapshot(askSnapshot(t, pid))
	if err != nil {
		t.Fatal(err)
	}
	if snap.Tick != 10 {
		t.Errorf("snapshot tick = %d; want 10", snap.Tick)
	}
	if len(snap.Agents) != 2 {
		t.Fatalf("snapshot agents = %d", len(snap.Agents))
	}
	if x := snap.Agents[0].Position.X; x <= 0 {
		t.Errorf("agent a did not walk toward +X: %v", snap.Agents[0].Position)
	}
	if n := len(frames); n != 10 {
		t.Errorf("published %d frames; want one per tick", n)
	}
}

func TestWorldActor_DropsFramesWhenObserverBusy(t *testing.T) {
	frames := make(chan *structpb.Struct, 1)
	_, pid := startWorld(t, frames)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_ = actor.Tell(ctx, pid, durationpb.New(20*time.Millisecond))
	}
	snap, _ := DecodeSnapshot(askSnapshot(t, pid))
	if snap.Tick != 5 {
		t.Errorf("ticks blocked by a full channel: tick %d", snap.Tick)
	}
	if got := (<-frames).GetFields()["tick"].GetNumberValue(); got != 1 {
		t.Errorf("kept frame tick = %v; want the first one", got)
	}
}

func TestWorldActor_ConfigUpdate(t *testing.T) {
	c, pid := startWorld(t, nil)
	ctx := context.Background()

	update, err := structpb.NewStruct(map[string]any{"initialSpeed": 0.6, "goalRadius": 0.7})
	if err != nil {
		t.Fatal(err)
	}
	if err := actor.Tell(ctx, pid, update); err != nil {
		t.Fatal(err)
	}
	bad, _ := structpb.NewStruct(map[string]any{"goalRadius": -1.0})
	_ = actor.Tell(ctx, pid, bad)
	unknown, _ := structpb.NewStruct(map[string]any{"warpSpeed": 9.0})
	_ = actor.Tell(ctx, pid, unknown)

	// Ask is processed after the updates in mailbox order.
	askSnapshot(t, pid)
	cfg := c.World.Config()
	if cfg.InitialSpeed != 0.6 || cfg.GoalRadius != 0.7 {
		t.Errorf("config after updates = speed %v radius %v; want 0.6 and 0.7", cfg.InitialSpeed, cfg.GoalRadius)
	}
	if cfg.SlowingRadius != 2.0 {
		t.Errorf("fields absent from the update changed: slowingRadius %v", cfg.SlowingRadius)
	}
}

func TestWorldActor_UnhandledMessage(t *testing.T) {
	_, pid := startWorld(t, nil)
	if _, err := actor.Ask(context.Background(), pid, wrapperspb.String("hello"), 200*time.Millisecond); err == nil {
		t.Error("expected an error for an unhandled message")
	}
	// The actor keeps serving after an unhandled message.
	askSnapshot(t, pid)
}
