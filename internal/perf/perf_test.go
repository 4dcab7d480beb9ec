package perf

import (
	"testing"
	"time"
)

func TestQuantile(t *testing.T) {
	ms := func(n ...int) []time.Duration {
		out := make([]time.Duration, len(n))
		for i, v := range n {
			out[i] = time.Duration(v) * time.Millisecond
		}
		return out
	}
	tests := []struct {
		name   string
		sorted []time.Duration
		q      float64
		want   time.Duration
	}{
		{"empty", nil, 0.95, 0},
		{"single", ms(7), 0.95, 7 * time.Millisecond},
		{"p95 of five", ms(1, 2, 3, 4, 5), 0.95, 5 * time.Millisecond},
		{"p50 of five", ms(1, 2, 3, 4, 5), 0.50, 3 * time.Millisecond},
		{"p50 of four", ms(1, 2, 3, 4), 0.50, 2 * time.Millisecond},
		{"zero quantile", ms(4, 8), 0, 4 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := quantile(tt.sorted, tt.q); got != tt.want {
				t.Fatalf("quantile(%v) = %s, want %s", tt.q, got, tt.want)
			}
		})
	}
}

func TestSeriesRingKeepsLatestSamples(t *testing.T) {
	var s series
	for i := 0; i < sampleWindow; i++ {
		s.add(time.Second)
	}
	for i := 0; i < sampleWindow; i++ {
		s.add(time.Millisecond)
	}
	snap := s.snapshot("x")
	if snap.Count != 2*sampleWindow {
		t.Fatalf("count = %d", snap.Count)
	}
	if snap.P95 != time.Millisecond {
		t.Fatalf("old samples leaked into the window: p95 = %s", snap.P95)
	}
	if snap.Max != time.Second || snap.Min != time.Millisecond {
		t.Fatalf("min/max = %s/%s", snap.Min, snap.Max)
	}
}

func TestSnapshotSortsAndResets(t *testing.T) {
	restore := EnableForTest()
	defer restore()

	Record("vterm_write", 50*time.Millisecond)
	Record("pty_read", 10*time.Millisecond)
	Record("vterm_write", 150*time.Millisecond)
	Count("pty_bytes", 4096)
	Count("idle", 0)

	stats, counters := Snapshot()
	if len(stats) != 2 || stats[0].Name != "pty_read" || stats[1].Name != "vterm_write" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	w := stats[1]
	if w.Count != 2 || w.Avg != 100*time.Millisecond || w.Min != 50*time.Millisecond || w.Max != 150*time.Millisecond {
		t.Fatalf("unexpected vterm_write stats: %+v", w)
	}
	if len(counters) != 1 || counters[0].Name != "pty_bytes" || counters[0].Value != 4096 {
		t.Fatalf("unexpected counters: %+v", counters)
	}
	if counters[0].PerSecond <= 0 {
		t.Fatalf("rate not computed: %+v", counters[0])
	}

	stats, counters = Snapshot()
	if len(stats) != 0 || len(counters) != 0 {
		t.Fatalf("snapshot did not reset: %d stats, %d counters", len(stats), len(counters))
	}
}

func TestDisabledCollectsNothing(t *testing.T) {
	restore := EnableForTest()
	defer restore()
	enabled.Store(false)

	Time("vterm_write")()
	Count("pty_bytes", 10)
	Flush("test")

	enabled.Store(true)
	if stats, counters := Snapshot(); len(stats) != 0 || len(counters) != 0 {
		t.Fatalf("collected while disabled: %v %v", stats, counters)
	}
}

func TestEnvParsing(t *testing.T) {
	cases := map[string]bool{
		"":      false,
		"0":     false,
		"false": false,
		"no":    false,
		"off":   false,
		"1":     true,
		"true":  true,
		"yes":   true,
	}
	for raw, want := range cases {
		t.Setenv(EnvEnable, raw)
		if got := enabledFromEnv(); got != want {
			t.Errorf("enabledFromEnv(%q) = %v, want %v", raw, got, want)
		}
	}

	t.Setenv(EnvInterval, "")
	if got := intervalFromEnv(); got != defaultInterval {
		t.Fatalf("default interval = %s", got)
	}
	t.Setenv(EnvInterval, "250")
	if got := intervalFromEnv(); got != 250*time.Millisecond {
		t.Fatalf("interval = %s, want 250ms", got)
	}
	t.Setenv(EnvInterval, "-5")
	if got := intervalFromEnv(); got != defaultInterval {
		t.Fatalf("negative interval accepted: %s", got)
	}
}
