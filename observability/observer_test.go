package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/chmset/observability"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  string
	}{
		{name: "trace range", level: 1, want: "TRACE"},
		{name: "verbose maps to DEBUG", level: observability.LevelVerbose, want: "DEBUG"},
		{name: "info maps to INFO", level: observability.LevelInfo, want: "INFO"},
		{name: "warning maps to WARN", level: observability.LevelWarning, want: "WARN"},
		{name: "error maps to ERROR", level: observability.LevelError, want: "ERROR"},
		{name: "fatal range", level: 21, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  slog.Level
	}{
		{name: "verbose maps to Debug", level: observability.LevelVerbose, want: slog.LevelDebug},
		{name: "info maps to Info", level: observability.LevelInfo, want: slog.LevelInfo},
		{name: "warning maps to Warn", level: observability.LevelWarning, want: slog.LevelWarn},
		{name: "error maps to Error", level: observability.LevelError, want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.SlogLevel(); got != tt.want {
				t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestNewEvent_StampsTime(t *testing.T) {
	e := observability.NewEvent("chm.resize", observability.LevelVerbose, "chm.Map", nil)
	if e.Timestamp.IsZero() {
		t.Error("NewEvent() left Timestamp zero")
	}
	if e.Type != "chm.resize" {
		t.Errorf("Type = %q, want %q", e.Type, "chm.resize")
	}
}

func TestCombine(t *testing.T) {
	var r1, r2, r3 observability.Recorder
	inner := observability.Combine(&r2, &r3)
	multi := observability.Combine(&r1, nil, observability.NoOpObserver{}, inner)

	m, ok := multi.(*observability.MultiObserver)
	if !ok {
		t.Fatalf("Combine() = %T, want *MultiObserver", multi)
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3 after flattening", m.Len())
	}

	multi.OnEvent(context.Background(), observability.NewEvent("test.event", observability.LevelInfo, "test", nil))

	for i, r := range []*observability.Recorder{&r1, &r2, &r3} {
		if got := len(r.Events()); got != 1 {
			t.Errorf("observer %d received %d events, want 1", i+1, got)
		}
	}
}

func TestCombine_Collapses(t *testing.T) {
	rec := &observability.Recorder{}

	if got := observability.Combine(); !observability.Discards(got) {
		t.Errorf("Combine() = %T, want a discarding observer", got)
	}
	if got := observability.Combine(nil, observability.NoOpObserver{}); !observability.Discards(got) {
		t.Errorf("Combine(nil, NoOp) = %T, want a discarding observer", got)
	}
	if got := observability.Combine(observability.NoOpObserver{}, rec); got != observability.Observer(rec) {
		t.Errorf("Combine(NoOp, rec) = %v, want rec itself", got)
	}
}

func TestDiscards(t *testing.T) {
	tests := []struct {
		name string
		obs  observability.Observer
		want bool
	}{
		{name: "nil", obs: nil, want: true},
		{name: "noop", obs: observability.NoOpObserver{}, want: true},
		{name: "noop pointer", obs: &observability.NoOpObserver{}, want: true},
		{name: "recorder", obs: &observability.Recorder{}, want: false},
		{name: "slog", obs: observability.NewSlogObserver(slog.Default()), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := observability.Discards(tt.obs); got != tt.want {
				t.Errorf("Discards() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSlogObserver_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     observability.Level
		minLevel  slog.Level
		expectLog bool
	}{
		{name: "verbose at debug handler", level: observability.LevelVerbose, minLevel: slog.LevelDebug, expectLog: true},
		{name: "verbose at info handler", level: observability.LevelVerbose, minLevel: slog.LevelInfo, expectLog: false},
		{name: "info at warn handler", level: observability.LevelInfo, minLevel: slog.LevelWarn, expectLog: false},
		{name: "error at error handler", level: observability.LevelError, minLevel: slog.LevelError, expectLog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: tt.minLevel}))

			obs := observability.NewSlogObserver(logger)
			obs.OnEvent(context.Background(), observability.NewEvent("test.event", tt.level, "test", nil))

			if got := buf.Len() > 0; got != tt.expectLog {
				t.Errorf("log output = %v, want %v (buf: %q)", got, tt.expectLog, buf.String())
			}
		})
	}
}

func TestSlogObserver_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	obs := observability.NewSlogObserver(logger)
	obs.OnEvent(context.Background(), observability.NewEvent(
		"chm.resize", observability.LevelVerbose, "chm.Map",
		map[string]any{"segment": 3, "capacity": 64},
	))

	output := buf.String()
	for _, want := range []string{"chm.resize", "source=chm.Map", "capacity=64", "segment=3"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q: %s", want, output)
		}
	}
	if strings.Index(output, "capacity=") > strings.Index(output, "segment=") {
		t.Errorf("data attributes not sorted by key: %s", output)
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	var rec observability.Recorder
	const n = 100

	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			rec.OnEvent(context.Background(), observability.NewEvent("a", observability.LevelInfo, "test", nil))
		}()
	}
	wg.Wait()

	if got := rec.Count("a"); got != n {
		t.Errorf("Count(a) = %d, want %d", got, n)
	}

	rec.Reset()
	if got := len(rec.Events()); got != 0 {
		t.Errorf("Events() after Reset = %d, want 0", got)
	}
}

func TestRegistry_GetObserver(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "noop exists", key: "noop", wantErr: false},
		{name: "slog exists", key: "slog", wantErr: false},
		{name: "unknown fails", key: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := observability.GetObserver(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetObserver(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if !tt.wantErr && obs == nil {
				t.Errorf("GetObserver(%q) returned nil observer", tt.key)
			}
		})
	}
}

func TestRegistry_Resolve(t *testing.T) {
	obs, err := observability.Resolve("")
	if err != nil {
		t.Fatalf("Resolve(\"\") error = %v", err)
	}
	if _, ok := obs.(observability.NoOpObserver); !ok {
		t.Errorf("Resolve(\"\") = %T, want NoOpObserver", obs)
	}

	rec := &observability.Recorder{}
	observability.RegisterObserver("test-recorder", rec)

	obs, err = observability.Resolve("test-recorder")
	if err != nil {
		t.Fatalf("Resolve(test-recorder) error = %v", err)
	}
	obs.OnEvent(context.Background(), observability.NewEvent("x", observability.LevelInfo, "test", nil))
	if rec.Count("x") != 1 {
		t.Errorf("registered recorder received %d events, want 1", rec.Count("x"))
	}
}
