package loops_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/chmset/chm"
	"github.com/tailored-agentic-units/chmset/loops"
	"github.com/tailored-agentic-units/chmset/observability"
)

func smallConfig() loops.Config {
	cfg := loops.DefaultConfig()
	cfg.Goroutines = 4
	cfg.Trials = 2
	cfg.Iterations = 2000
	cfg.KeyRange = 200
	cfg.RemovePercent = 30
	cfg.InsertPercent = 40
	cfg.Seed = 7
	return cfg
}

func TestRun(t *testing.T) {
	cfg := smallConfig()
	rec := &observability.Recorder{}

	r, err := loops.New(&cfg, loops.WithObserver(rec))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, err := uuid.Parse(result.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", result.RunID, err)
	}
	if result.Seed != 7 {
		t.Errorf("Seed = %d, want 7", result.Seed)
	}
	if len(result.Trials) != 2 {
		t.Fatalf("got %d trials, want 2", len(result.Trials))
	}

	for _, trial := range result.Trials {
		if trial.Ops != cfg.Goroutines*cfg.Iterations {
			t.Errorf("trial %d: Ops = %d, want %d", trial.Index, trial.Ops, cfg.Goroutines*cfg.Iterations)
		}
		if trial.Size != trial.Adds-trial.Removes {
			t.Errorf("trial %d: Size = %d, want %d", trial.Index, trial.Size, trial.Adds-trial.Removes)
		}
		if trial.Size > cfg.KeyRange {
			t.Errorf("trial %d: Size = %d exceeds key range %d", trial.Index, trial.Size, cfg.KeyRange)
		}
		if trial.Throughput <= 0 {
			t.Errorf("trial %d: Throughput = %v, want > 0", trial.Index, trial.Throughput)
		}
	}

	if result.MeanThroughput <= 0 {
		t.Errorf("MeanThroughput = %v, want > 0", result.MeanThroughput)
	}
	if result.Final == nil || result.Final.Len() != result.Trials[1].Size {
		t.Errorf("Final set does not match the last trial")
	}

	if got := rec.Count(loops.EventRunStart); got != 1 {
		t.Errorf("run start events = %d, want 1", got)
	}
	if got := rec.Count(loops.EventTrialComplete); got != 2 {
		t.Errorf("trial complete events = %d, want 2", got)
	}
	if got := rec.Count(loops.EventRunComplete); got != 1 {
		t.Errorf("run complete events = %d, want 1", got)
	}
}

func TestRun_SingleTrial(t *testing.T) {
	cfg := smallConfig()
	cfg.Trials = 1

	r, err := loops.New(&cfg, loops.WithObserver(observability.NoOpObserver{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.StdDevThroughput != 0 {
		t.Errorf("StdDevThroughput = %v, want 0 for one trial", result.StdDevThroughput)
	}
	if result.MeanThroughput != result.Trials[0].Throughput {
		t.Errorf("MeanThroughput = %v, want the only trial's %v", result.MeanThroughput, result.Trials[0].Throughput)
	}
}

func TestRun_CountsResizes(t *testing.T) {
	cfg := smallConfig()
	cfg.Trials = 1
	cfg.InsertPercent = 60
	cfg.Set = chm.Config{InitialCapacity: 1, LoadFactor: 0.75, ConcurrencyLevel: 2}

	mapEvents := &observability.Recorder{}
	r, err := loops.New(&cfg, loops.WithObserver(observability.NoOpObserver{}), loops.WithMapObserver(mapEvents))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Trials[0].Resizes == 0 {
		t.Error("Resizes = 0, want growth from a one-slot table")
	}
	if got := mapEvents.Count(chm.EventResize); got != result.Trials[0].Resizes {
		t.Errorf("map observer saw %d resizes, trial counted %d", got, result.Trials[0].Resizes)
	}
}

func TestRun_Cancelled(t *testing.T) {
	cfg := smallConfig()
	r, err := loops.New(&cfg, loops.WithObserver(observability.NoOpObserver{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := r.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(result.Trials) != 0 {
		t.Errorf("got %d trials, want 0", len(result.Trials))
	}
}

func TestNew_Errors(t *testing.T) {
	cfg := smallConfig()
	cfg.Goroutines = 0
	if _, err := loops.New(&cfg); !errors.Is(err, loops.ErrInvalidConfig) {
		t.Errorf("New() error = %v, want ErrInvalidConfig", err)
	}

	cfg = smallConfig()
	cfg.Set.Observer = "no-such-observer"
	if _, err := loops.New(&cfg); err == nil {
		t.Error("New() with unknown set observer error = nil, want error")
	}
}

func TestNew_RandomSeed(t *testing.T) {
	cfg := smallConfig()
	cfg.Seed = 0
	cfg.Trials = 1
	cfg.Iterations = 10

	r, err := loops.New(&cfg, loops.WithObserver(observability.NoOpObserver{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Seed == 0 {
		t.Error("Seed = 0, want a random non-zero seed")
	}
}
