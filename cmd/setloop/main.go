package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/tailored-agentic-units/chmset/codec"
	"github.com/tailored-agentic-units/chmset/loops"
	"github.com/tailored-agentic-units/chmset/observability"
	"github.com/tailored-agentic-units/chmset/persist"
	"github.com/tailored-agentic-units/chmset/store"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to loop config JSON file (optional)")
		goroutines  = flag.Int("goroutines", 0, "Concurrent workers per trial (overrides config)")
		trials      = flag.Int("trials", 0, "Number of trials (overrides config)")
		iterations  = flag.Int("iterations", 0, "Operations per worker per trial (overrides config)")
		keyRange    = flag.Int("key-range", 0, "Keys are drawn from [0, key-range) (overrides config)")
		storeType   = flag.String("store", "", "Snapshot store backend: file or sqlite (overrides config)")
		storePath   = flag.String("store-path", "", "Snapshot store location; empty skips persistence (overrides config)")
		codecName   = flag.String("codec", "", "Snapshot codec: json or cbor (overrides config)")
		snapshotKey = flag.String("snapshot-key", "", "Record key for the final set (overrides config)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	cfg := loops.DefaultConfig()
	if *configFile != "" {
		loaded, err := loops.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	cfg.Merge(&loops.Config{
		Goroutines:  *goroutines,
		Trials:      *trials,
		Iterations:  *iterations,
		KeyRange:    *keyRange,
		Codec:       *codecName,
		SnapshotKey: *snapshotKey,
		Store:       store.Config{Backend: *storeType, Path: *storePath},
	})

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	observer := observability.NewSlogObserver(logger)

	runner, err := loops.New(&cfg, loops.WithObserver(observer))
	if err != nil {
		log.Fatalf("Failed to create runner: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("Loop run failed: %v", err)
	}

	fmt.Printf("Run %s (seed %d)\n", result.RunID, result.Seed)
	for _, t := range result.Trials {
		fmt.Printf("  trial %d: %d ops in %v, %.0f ops/s, size %d, resizes %d\n",
			t.Index+1, t.Ops, t.Duration, t.Throughput, t.Size, t.Resizes)
	}
	fmt.Printf("Mean: %.0f ops/s (stddev %.0f)\n", result.MeanThroughput, result.StdDevThroughput)

	if err := saveFinal(ctx, &cfg, result, observer); err != nil {
		log.Fatalf("Failed to persist final set: %v", err)
	}
}

func saveFinal(ctx context.Context, cfg *loops.Config, result *loops.Result, observer observability.Observer) error {
	st, err := store.NewStore(&cfg.Store)
	if err != nil {
		return err
	}
	if st == nil {
		return nil
	}
	defer st.Close()

	c, err := codec.Get(cfg.Codec)
	if err != nil {
		return err
	}

	if err := persist.Save(ctx, st, c, cfg.SnapshotKey, result.Final, persist.WithObserver(observer)); err != nil {
		return err
	}

	// Read the snapshot back so a broken round trip fails the run.
	loaded, err := persist.Load[int](ctx, st, c, cfg.SnapshotKey, persist.WithObserver(observer))
	if err != nil {
		return err
	}
	if !loaded.Equal(result.Final) {
		return fmt.Errorf("snapshot %s does not match the final set", cfg.SnapshotKey)
	}

	fmt.Printf("Saved %d elements to %s (%s, %s)\n", loaded.Len(), cfg.SnapshotKey, cfg.Store.Backend, c.Name())
	return nil
}
