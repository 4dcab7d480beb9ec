// Package safego starts goroutines that log panics instead of crashing the
// process. Runtime-fatal errors (concurrent map writes, stack exhaustion)
// cannot be recovered and still abort.
package safego

import (
	"runtime/debug"
	"sync/atomic"

	"github.com/andyrewlee/termcore/internal/logging"
)

// PanicHandler receives panic details from recovered goroutines.
type PanicHandler func(name string, recovered any, stack []byte)

var panicHandler atomic.Pointer[PanicHandler]

// SetPanicHandler registers a process-wide hook for recovered panics. Nil
// removes it.
func SetPanicHandler(handler PanicHandler) {
	if handler == nil {
		panicHandler.Store(nil)
		return
	}
	panicHandler.Store(&handler)
}

// Run calls fn, turning a panic into an error log and a handler call.
func Run(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			report(name, r, debug.Stack())
		}
	}()
	fn()
}

// Go runs fn on a new goroutine under Run.
func Go(name string, fn func()) {
	go Run(name, fn)
}

// GoDone is Go with a channel closed once fn returns or panics.
func GoDone(name string, fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(name, fn)
	}()
	return done
}

func report(name string, r any, stack []byte) {
	if name == "" {
		name = "goroutine"
	}
	logging.Error("panic in %s: %v\n%s", name, r, stack)

	h := panicHandler.Load()
	if h == nil {
		return
	}
	// A panicking handler must not take the goroutine down with it.
	defer func() { _ = recover() }()
	(*h)(name, r, stack)
}
