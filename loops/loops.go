// Package loops drives concurrent workloads against a hashset.Set. Each
// trial runs a fixed number of random lookups, inserts and removals from
// several goroutines, then checks that the set holds exactly as many
// elements as the successful inserts minus the successful removals.
//
//	r, err := loops.New(&cfg)
//	result, err := r.Run(ctx)
//	fmt.Printf("%.0f ops/s\n", result.MeanThroughput)
package loops

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/tailored-agentic-units/chmset/chm"
	"github.com/tailored-agentic-units/chmset/hashset"
	"github.com/tailored-agentic-units/chmset/observability"
)

// cancelCheckInterval is how many operations a worker performs between
// context checks.
const cancelCheckInterval = 1024

// Trial holds the measurements of one trial.
type Trial struct {
	Index      int
	Duration   time.Duration
	Ops        int
	Adds       int // successful inserts
	Removes    int // successful removals
	Hits       int // lookups that found their key
	Size       int // set size after the trial
	Resizes    int
	Throughput float64 // operations per second
}

// Result holds the outcome of a Run.
type Result struct {
	RunID            string
	Seed             uint64
	Trials           []Trial
	MeanThroughput   float64
	StdDevThroughput float64
	Final            *hashset.Set[int] // set from the last completed trial
}

// Option configures a Runner after config-driven initialization.
type Option func(*Runner)

// WithObserver overrides the default SlogObserver for loop events.
func WithObserver(o observability.Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// WithMapObserver overrides the observer named by Config.Set.Observer for
// the sets built in each trial.
func WithMapObserver(o observability.Observer) Option {
	return func(r *Runner) { r.mapObserver = o }
}

// Runner executes stress trials.
type Runner struct {
	cfg         Config
	seed        uint64
	observer    observability.Observer
	mapObserver observability.Observer
}

// New validates cfg and creates a Runner. A zero Seed is replaced by a random
// one so that Result.Seed can reproduce the key sequences.
func New(cfg *Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mapObserver, err := observability.Resolve(cfg.Set.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve set observer: %w", err)
	}

	r := &Runner{
		cfg:         *cfg,
		seed:        cfg.Seed,
		observer:    observability.NewSlogObserver(slog.Default()),
		mapObserver: mapObserver,
	}
	if r.seed == 0 {
		r.seed = rand.Uint64()
	}

	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes every trial in sequence. It stops at the first failed trial or
// when ctx is cancelled, returning the trials completed so far.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID: uuid.Must(uuid.NewV7()).String(),
		Seed:  r.seed,
	}

	r.observer.OnEvent(ctx, observability.NewEvent(EventRunStart, observability.LevelInfo, "loops.Run", map[string]any{
		"run_id":     result.RunID,
		"trials":     r.cfg.Trials,
		"goroutines": r.cfg.Goroutines,
		"iterations": r.cfg.Iterations,
		"key_range":  r.cfg.KeyRange,
		"seed":       r.seed,
	}))

	for i := range r.cfg.Trials {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		trial, set, err := r.trial(ctx, i)
		if err != nil {
			return result, err
		}
		result.Trials = append(result.Trials, trial)
		result.Final = set
	}

	throughputs := make([]float64, len(result.Trials))
	for i, t := range result.Trials {
		throughputs[i] = t.Throughput
	}
	if len(throughputs) > 1 {
		result.MeanThroughput, result.StdDevThroughput = stat.MeanStdDev(throughputs, nil)
	} else {
		result.MeanThroughput = throughputs[0]
	}

	r.observer.OnEvent(ctx, observability.NewEvent(EventRunComplete, observability.LevelInfo, "loops.Run", map[string]any{
		"run_id":           result.RunID,
		"mean_ops_per_s":   result.MeanThroughput,
		"stddev_ops_per_s": result.StdDevThroughput,
	}))

	return result, nil
}

type tally struct {
	ops, adds, removes, hits int
}

func (r *Runner) trial(ctx context.Context, index int) (Trial, *hashset.Set[int], error) {
	resizes := &observability.Recorder{}
	set, err := hashset.NewWithConfig[int](r.cfg.Set,
		chm.WithObserver(observability.Combine(resizes, r.mapObserver)),
	)
	if err != nil {
		return Trial{}, nil, fmt.Errorf("trial %d: %w", index, err)
	}

	r.observer.OnEvent(ctx, observability.NewEvent(EventTrialStart, observability.LevelVerbose, "loops.Run", map[string]any{
		"trial": index,
	}))

	tallies := make([]tally, r.cfg.Goroutines)
	var wg sync.WaitGroup
	wg.Add(r.cfg.Goroutines)

	start := time.Now()
	for w := range r.cfg.Goroutines {
		rng := rand.New(rand.NewPCG(r.seed, uint64(index)<<32|uint64(w)))
		go func() {
			defer wg.Done()
			tallies[w] = r.work(ctx, set, rng)
		}()
	}
	wg.Wait()
	elapsed := max(time.Since(start), time.Nanosecond)

	if err := ctx.Err(); err != nil {
		return Trial{}, nil, err
	}

	t := Trial{Index: index, Duration: elapsed}
	for _, tl := range tallies {
		t.Ops += tl.ops
		t.Adds += tl.adds
		t.Removes += tl.removes
		t.Hits += tl.hits
	}
	t.Size = set.Len()
	t.Resizes = resizes.Count(chm.EventResize)
	t.Throughput = float64(t.Ops) / elapsed.Seconds()

	if want := t.Adds - t.Removes; t.Size != want {
		return t, set, fmt.Errorf("%w: trial %d: size %d, adds %d - removes %d = %d",
			ErrSizeMismatch, index, t.Size, t.Adds, t.Removes, want)
	}

	r.observer.OnEvent(ctx, observability.NewEvent(EventTrialComplete, observability.LevelInfo, "loops.Run", map[string]any{
		"trial":     index,
		"duration":  elapsed,
		"ops":       t.Ops,
		"size":      t.Size,
		"resizes":   t.Resizes,
		"ops_per_s": t.Throughput,
	}))

	return t, set, nil
}

func (r *Runner) work(ctx context.Context, set *hashset.Set[int], rng *rand.Rand) tally {
	var t tally
	removeBelow := r.cfg.RemovePercent
	insertBelow := r.cfg.RemovePercent + r.cfg.InsertPercent

	for i := range r.cfg.Iterations {
		if i%cancelCheckInterval == 0 && ctx.Err() != nil {
			break
		}

		key := rng.IntN(r.cfg.KeyRange)
		switch p := rng.IntN(100); {
		case p < removeBelow:
			if set.Remove(key) {
				t.removes++
			}
		case p < insertBelow:
			if set.Add(key) {
				t.adds++
			}
		default:
			if set.Contains(key) {
				t.hits++
			}
		}
		t.ops++
	}
	return t
}
