// Package perf samples hot-path timings and byte counters. Nothing is
// collected unless TERMCORE_PERF is set; summaries go to the log.
package perf

import (
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andyrewlee/termcore/internal/logging"
)

const (
	EnvEnable   = "TERMCORE_PERF"
	EnvInterval = "TERMCORE_PERF_INTERVAL_MS"

	sampleWindow    = 256
	defaultInterval = 5 * time.Second
)

// StatSnapshot summarizes one timed operation since the last reset.
type StatSnapshot struct {
	Name  string
	Count int64
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
	P50   time.Duration
	P95   time.Duration
}

// CounterSnapshot is a counter's total since the last reset.
type CounterSnapshot struct {
	Name      string
	Value     int64
	PerSecond float64
}

// series keeps aggregates plus a ring of the latest samples for quantiles.
type series struct {
	count int64
	total time.Duration
	min   time.Duration
	max   time.Duration
	ring  [sampleWindow]time.Duration
	used  int
	next  int
}

func (s *series) add(d time.Duration) {
	s.count++
	s.total += d
	if s.count == 1 || d < s.min {
		s.min = d
	}
	if d > s.max {
		s.max = d
	}
	s.ring[s.next] = d
	s.next = (s.next + 1) % sampleWindow
	if s.used < sampleWindow {
		s.used++
	}
}

func (s *series) snapshot(name string) StatSnapshot {
	window := make([]time.Duration, s.used)
	copy(window, s.ring[:s.used])
	sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
	return StatSnapshot{
		Name:  name,
		Count: s.count,
		Avg:   s.total / time.Duration(s.count),
		Min:   s.min,
		Max:   s.max,
		P50:   quantile(window, 0.50),
		P95:   quantile(window, 0.95),
	}
}

// quantile uses the nearest-rank method on an ascending slice.
func quantile(sorted []time.Duration, q float64) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	rank := int(math.Ceil(q*float64(n))) - 1
	return sorted[min(max(rank, 0), n-1)]
}

type registry struct {
	mu       sync.Mutex
	series   map[string]*series
	counters map[string]int64
	since    time.Time
}

func newRegistry() *registry {
	return &registry{
		series:   map[string]*series{},
		counters: map[string]int64{},
		since:    time.Now(),
	}
}

func (r *registry) record(name string, d time.Duration) {
	r.mu.Lock()
	s, ok := r.series[name]
	if !ok {
		s = &series{}
		r.series[name] = s
	}
	s.add(d)
	r.mu.Unlock()
}

func (r *registry) count(name string, delta int64) {
	r.mu.Lock()
	r.counters[name] += delta
	r.mu.Unlock()
}

// drain returns everything collected, sorted by name, and starts over.
func (r *registry) drain() ([]StatSnapshot, []CounterSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := time.Since(r.since).Seconds()
	stats := make([]StatSnapshot, 0, len(r.series))
	for name, s := range r.series {
		stats = append(stats, s.snapshot(name))
	}
	counters := make([]CounterSnapshot, 0, len(r.counters))
	for name, v := range r.counters {
		if v == 0 {
			continue
		}
		c := CounterSnapshot{Name: name, Value: v}
		if elapsed > 0 {
			c.PerSecond = float64(v) / elapsed
		}
		counters = append(counters, c)
	}
	r.series = map[string]*series{}
	r.counters = map[string]int64{}
	r.since = time.Now()

	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	sort.Slice(counters, func(i, j int) bool { return counters[i].Name < counters[j].Name })
	return stats, counters
}

var (
	enabled  atomic.Bool
	interval atomic.Int64 // nanoseconds; 0 disables periodic summaries
	lastLog  atomic.Int64

	reg = newRegistry()
)

func init() {
	enabled.Store(enabledFromEnv())
	interval.Store(int64(intervalFromEnv()))
}

// Enabled reports whether sampling is on.
func Enabled() bool {
	return enabled.Load()
}

// Time returns a function that records the elapsed time under name.
func Time(name string) func() {
	if !enabled.Load() {
		return func() {}
	}
	start := time.Now()
	return func() { Record(name, time.Since(start)) }
}

// Record adds one duration sample.
func Record(name string, d time.Duration) {
	if !enabled.Load() {
		return
	}
	reg.record(name, d)
	maybeLog()
}

// Count adds delta to a named counter.
func Count(name string, delta int64) {
	if !enabled.Load() {
		return
	}
	reg.count(name, delta)
	maybeLog()
}

// Flush logs and resets everything collected so far.
func Flush(reason string) {
	if !enabled.Load() {
		return
	}
	prefix := "PERF SUMMARY"
	if reason = strings.TrimSpace(reason); reason != "" {
		prefix += " " + reason
	}
	emit(prefix)
}

// maybeLog emits a summary at most once per interval. The CAS picks a
// single caller when several cross the boundary together.
func maybeLog() {
	every := time.Duration(interval.Load())
	if every <= 0 {
		return
	}
	now := time.Now().UnixNano()
	last := lastLog.Load()
	if last != 0 && time.Duration(now-last) < every {
		return
	}
	if lastLog.CompareAndSwap(last, now) {
		emit("PERF")
	}
}

func emit(prefix string) {
	stats, counters := reg.drain()
	for _, s := range stats {
		logging.Info("%s %s count=%d avg=%s p50=%s p95=%s min=%s max=%s",
			prefix, s.Name, s.Count, s.Avg, s.P50, s.P95, s.Min, s.Max)
	}
	for _, c := range counters {
		logging.Info("%s %s total=%d rate=%.0f/s", prefix, c.Name, c.Value, c.PerSecond)
	}
}

func enabledFromEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvEnable))) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}

func intervalFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv(EnvInterval))
	if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultInterval
}
