package simulation

import (
	"time"

	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/crowd"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// WorldActor owns the crowd and serializes every access to it.
//
// Messages:
//   - *durationpb.Duration: advance the simulation by that much time
//   - *emptypb.Empty: answer with the current snapshot as a *structpb.Struct
//   - *structpb.Struct: partial config update, same keys as the JSON config
type WorldActor struct {
	crowd *Crowd
	// Communication with observers
	snapshotCh chan<- *structpb.Struct

	// --- Benchmark Stats ---
	tickCount    int
	rejectCount  int
	droppedCount int
	lastLogTime  time.Time
}

var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor wraps c. snapshotCh may be nil; frames are dropped when it
// is full.
func NewWorldActor(c *Crowd, snapshotCh chan<- *structpb.Struct) *WorldActor {
	return &WorldActor{
		crowd:       c,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World %s holds %d agents", ctx.ActorName(), w.crowd.World.Len())
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {

	case *goaktpb.PostStart:
		ctx.Logger().Info("World Started.")

	// The Main Simulation Step (Driven by the runner)
	case *durationpb.Duration:
		w.logBenchmarks(ctx)
		if err := w.crowd.Step(ctx.Context(), msg.AsDuration().Seconds()); err != nil {
			ctx.Logger().Errorf("tick %d failed: %v", w.crowd.World.TickCount(), err)
			return
		}
		w.tickCount++
		w.pushSnapshot(ctx)

	case *emptypb.Empty:
		snap, err := EncodeSnapshot(w.crowd.World.Snapshot())
		if err != nil {
			ctx.Logger().Errorf("snapshot: %v", err)
			ctx.Response(&structpb.Struct{})
			return
		}
		ctx.Response(snap)

	// Runtime config updates
	case *structpb.Struct:
		w.updateConfig(ctx, msg)

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) updateConfig(ctx *actor.ReceiveContext, msg *structpb.Struct) {
	data, err := protojson.Marshal(msg)
	if err != nil {
		w.rejectCount++
		ctx.Logger().Warnf("config update rejected: %v", err)
		return
	}
	cfg, err := crowd.PatchConfig(w.crowd.World.Config(), data)
	if err == nil {
		err = w.crowd.World.Reconfigure(cfg)
	}
	if err != nil {
		w.rejectCount++
		ctx.Logger().Warnf("config update rejected: %v", err)
		return
	}
	ctx.Logger().Infof("config updated with %d fields", len(msg.GetFields()))
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) >= time.Second {
		colliding := 0
		for _, a := range w.crowd.World.Agents() {
			if a.State() != crowd.Idle {
				colliding++
			}
		}
		ctx.Logger().Infof("📊 TICK RATE: %d/sec | Agents: %d (reacting: %d) | dropped frames: %d | rejected updates: %d",
			w.tickCount, w.crowd.World.Len(), colliding, w.droppedCount, w.rejectCount)
		w.tickCount = 0
		w.droppedCount = 0
		w.rejectCount = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) pushSnapshot(ctx *actor.ReceiveContext) {
	if w.snapshotCh == nil {
		return
	}
	snap, err := EncodeSnapshot(w.crowd.World.Snapshot())
	if err != nil {
		ctx.Logger().Errorf("snapshot: %v", err)
		return
	}
	select {
	case w.snapshotCh <- snap:
	default:
		// Observer busy, skip frame
		w.droppedCount++
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is shutdown after %d ticks...", w.crowd.World.TickCount())
	return nil
}
