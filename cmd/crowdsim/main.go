package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-crowd-steering/internal/simulation"
	"github.com/lao-tseu-is-alive/go-crowd-steering/pkg/crowd"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

func parseLevel(s string) (golog.Level, error) {
	switch s {
	case "debug":
		return golog.DebugLevel, nil
	case "info":
		return golog.InfoLevel, nil
	case "warn":
		return golog.WarningLevel, nil
	case "error":
		return golog.ErrorLevel, nil
	}
	return golog.InfoLevel, fmt.Errorf("unknown log level %q", s)
}

func main() {
	configFile := flag.String("config", "", "JSON crowd config (defaults when empty)")
	scenarioFile := flag.String("scenario", "configs/scenario.yaml", "YAML scenario")
	ticks := flag.Int("ticks", 600, "number of simulation steps")
	dt := flag.Duration("dt", time.Second/60, "simulated time per step")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	quiet := flag.Bool("quiet", false, "only print the summary")
	flag.Parse()

	level, err := parseLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	logger := golog.New(level, os.Stdout)

	cfg := crowd.DefaultConfig()
	if *configFile != "" {
		if cfg, err = crowd.LoadConfig(*configFile); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	scenario, err := simulation.LoadScenario(*scenarioFile)
	if err != nil {
		log.Fatalf("Failed to load scenario: %v", err)
	}
	c, err := scenario.Build(cfg, crowd.WithLogger(logger), crowd.WithHooks(crowd.LogHooks{Logger: logger}))
	if err != nil {
		log.Fatalf("Failed to build scenario %s: %v", scenario.Name, err)
	}

	ctx := context.Background()
	system, err := actor.NewActorSystem("CrowdSim", actor.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	if err := system.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = system.Stop(ctx) }()

	// Drain published frames so the world never has to drop them.
	snapshotCh := make(chan *structpb.Struct, 10)
	frames := make(chan int)
	go func() {
		n := 0
		for range snapshotCh {
			n++
		}
		frames <- n
	}()

	runID := uuid.New()
	worldPID, err := system.Spawn(ctx, "world-"+runID.String(), simulation.NewWorldActor(c, snapshotCh))
	if err != nil {
		log.Fatalf("Failed to spawn world: %v", err)
	}

	start := time.Now()
	step := durationpb.New(*dt)
	for i := 0; i < *ticks; i++ {
		if err := actor.Tell(ctx, worldPID, step); err != nil {
			log.Fatalf("tick %d: %v", i, err)
		}
	}
	reply, err := actor.Ask(ctx, worldPID, &emptypb.Empty{}, 30*time.Second)
	if err != nil {
		log.Fatalf("Failed to fetch snapshot: %v", err)
	}
	elapsed := time.Since(start)
	published := 0
	if err := worldPID.Shutdown(ctx); err != nil {
		logger.Warnf("world shutdown: %v", err)
	} else {
		close(snapshotCh)
		published = <-frames
	}

	st, ok := reply.(*structpb.Struct)
	if !ok {
		log.Fatalf("unexpected snapshot reply %T", reply)
	}
	if !*quiet {
		out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(st)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(out))
	}

	snap, err := simulation.DecodeSnapshot(st)
	if err != nil {
		log.Fatal(err)
	}
	reacting, cohesive := 0, 0
	for _, a := range snap.Agents {
		if a.State != crowd.Idle.String() {
			reacting++
		}
	}
	for _, g := range snap.Groups {
		if g.Cohesive {
			cohesive++
		}
	}
	fmt.Printf("run %s: scenario %q, %s ticks (%.1fs simulated) in %s, %s frames published\n",
		runID, scenario.Name, humanize.Comma(int64(snap.Tick)), snap.Time, elapsed.Round(time.Millisecond),
		humanize.Comma(int64(published)))
	fmt.Printf("%d agents (%d reacting), %d/%d groups cohesive\n",
		len(snap.Agents), reacting, cohesive, len(snap.Groups))
}
