package safego

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andyrewlee/termcore/internal/logging"
)

type captured struct {
	mu    sync.Mutex
	name  string
	value any
	stack []byte
	calls int
}

func (c *captured) handler(name string, r any, stack []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name, c.value, c.stack = name, r, stack
	c.calls++
}

func withHandler(t *testing.T, h PanicHandler) {
	t.Helper()
	SetPanicHandler(h)
	t.Cleanup(func() { SetPanicHandler(nil) })
}

func TestRunWithoutPanic(t *testing.T) {
	called := false
	Run("plain", func() { called = true })
	if !called {
		t.Fatal("fn was not called")
	}
}

func TestRunReportsPanic(t *testing.T) {
	var logBuf bytes.Buffer
	logging.SetOutput(&logBuf, logging.LevelDebug)
	t.Cleanup(func() { logging.SetOutput(nil, logging.LevelInfo) })

	c := &captured{}
	withHandler(t, c.handler)

	tests := []struct {
		name     string
		label    string
		wantName string
	}{
		{name: "named", label: "pty-reader", wantName: "pty-reader"},
		{name: "unnamed", label: "", wantName: "goroutine"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Run(tt.label, func() { panic("boom") })
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.name != tt.wantName || c.value != "boom" {
				t.Fatalf("handler got %q %v", c.name, c.value)
			}
			if !bytes.Contains(c.stack, []byte("safego")) {
				t.Fatalf("stack does not look like a stack: %s", c.stack)
			}
		})
	}
	if !strings.Contains(logBuf.String(), "panic in pty-reader: boom") {
		t.Fatalf("panic not logged: %q", logBuf.String())
	}
}

func TestPanickingHandlerIsContained(t *testing.T) {
	withHandler(t, func(string, any, []byte) { panic("handler") })
	Run("outer", func() { panic("first") })
}

func TestNilHandlerClears(t *testing.T) {
	c := &captured{}
	SetPanicHandler(c.handler)
	SetPanicHandler(nil)
	Run("cleared", func() { panic("x") })
	if c.calls != 0 {
		t.Fatalf("cleared handler was called %d times", c.calls)
	}
}

func TestGoRecoversOnItsOwnGoroutine(t *testing.T) {
	c := &captured{}
	withHandler(t, c.handler)

	var wg sync.WaitGroup
	wg.Add(1)
	Go("worker", func() {
		defer wg.Done()
		panic(42)
	})
	wg.Wait()

	deadline := time.Now().Add(time.Second)
	for {
		c.mu.Lock()
		calls := c.calls
		c.mu.Unlock()
		if calls == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("handler calls = %d, want 1", calls)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGoDoneClosesEitherWay(t *testing.T) {
	for name, fn := range map[string]func(){
		"returns": func() {},
		"panics":  func() { panic("boom") },
	} {
		t.Run(name, func(t *testing.T) {
			select {
			case <-GoDone(name, fn):
			case <-time.After(time.Second):
				t.Fatal("done channel never closed")
			}
		})
	}
}
