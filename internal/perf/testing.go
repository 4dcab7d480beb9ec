package perf

// EnableForTest turns collection on with periodic logging off and clears
// anything already collected. The returned func restores the old settings.
func EnableForTest() func() {
	prevEnabled := enabled.Load()
	prevInterval := interval.Load()
	enabled.Store(true)
	interval.Store(0)
	lastLog.Store(0)
	reg.drain()
	return func() {
		enabled.Store(prevEnabled)
		interval.Store(prevInterval)
	}
}

// Snapshot returns the collected stats and counters and resets them.
func Snapshot() ([]StatSnapshot, []CounterSnapshot) {
	return reg.drain()
}
