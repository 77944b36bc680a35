package chm

import "testing"

func TestConfig_Layout(t *testing.T) {
	tests := []struct {
		name           string
		cfg            Config
		wantSegments   int
		wantPerSegment int
	}{
		{name: "defaults", cfg: DefaultConfig(), wantSegments: 16, wantPerSegment: 1},
		{name: "single segment", cfg: Config{InitialCapacity: 33, LoadFactor: 0.75, ConcurrencyLevel: 1}, wantSegments: 1, wantPerSegment: 64},
		{name: "level rounds up", cfg: Config{InitialCapacity: 100, LoadFactor: 0.75, ConcurrencyLevel: 10}, wantSegments: 16, wantPerSegment: 8},
		{name: "zero capacity", cfg: Config{InitialCapacity: 0, LoadFactor: 0.75, ConcurrencyLevel: 3}, wantSegments: 4, wantPerSegment: 1},
		{name: "level capped", cfg: Config{InitialCapacity: 16, LoadFactor: 0.75, ConcurrencyLevel: 1 << 20}, wantSegments: maxSegments, wantPerSegment: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, per := tt.cfg.layout()
			if segments != tt.wantSegments || per != tt.wantPerSegment {
				t.Errorf("layout() = (%d, %d), want (%d, %d)", segments, per, tt.wantSegments, tt.wantPerSegment)
			}
		})
	}
}

func TestMap_SegmentIndexInRange(t *testing.T) {
	for _, level := range []int{1, 2, 16, 1000} {
		cfg := Config{InitialCapacity: 16, LoadFactor: 0.75, ConcurrencyLevel: level}
		m, err := NewFromConfig[int, int](cfg)
		if err != nil {
			t.Fatalf("NewFromConfig() error = %v", err)
		}
		for k := range 1000 {
			i, _ := m.segmentFor(hashOf(k))
			if i < 0 || i >= len(m.segments) {
				t.Fatalf("level %d: segment index %d out of range [0, %d)", level, i, len(m.segments))
			}
		}
	}
}
