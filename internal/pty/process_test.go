//go:build !windows

package pty

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// syncBuffer collects output from the reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type sizeRecorder struct {
	mu   sync.Mutex
	last [2]int
}

func (s *sizeRecorder) Resize(cols, rows int) {
	s.mu.Lock()
	s.last = [2]int{cols, rows}
	s.mu.Unlock()
}

func (s *sizeRecorder) get() [2]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// exitRecorder counts OnExit calls and keeps the last code.
type exitRecorder struct {
	calls atomic.Int32
	code  atomic.Int32
}

func (e *exitRecorder) onExit(code int) {
	e.code.Store(int32(code))
	e.calls.Add(1)
}

func waitDone(t *testing.T, p *Process) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("process did not terminate, state %s", p.State())
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStart_NaturalExitReportsCode(t *testing.T) {
	out := &syncBuffer{}
	rec := &exitRecorder{}
	p, err := Start(Command{Path: "sh", Args: []string{"-c", "echo hello; exit 7"}},
		Options{Output: out, OnExit: rec.onExit})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, p)

	if got := rec.calls.Load(); got != 1 {
		t.Fatalf("OnExit called %d times, want 1", got)
	}
	if code := rec.code.Load(); code != 7 {
		t.Fatalf("exit code = %d, want 7", code)
	}
	if p.ExitCode() != 7 {
		t.Fatalf("ExitCode() = %d, want 7", p.ExitCode())
	}
	if p.State() != Terminated || p.Running() {
		t.Fatalf("state = %s after exit", p.State())
	}
	if !strings.Contains(out.String(), "hello") {
		t.Fatalf("output not drained before exit: %q", out.String())
	}
}

func TestStart_SetsTermAndEnv(t *testing.T) {
	out := &syncBuffer{}
	p, err := Start(Command{
		Path: "sh",
		Args: []string{"-c", `printf '%s|%s' "$TERM" "$FOO"`},
		Env:  []string{"FOO=bar"},
	}, Options{Output: out})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, p)
	if got := out.String(); !strings.Contains(got, "xterm-256color|bar") {
		t.Fatalf("unexpected environment output %q", got)
	}
}

func TestStart_MissingExecutable(t *testing.T) {
	_, err := Start(Command{Path: "definitely-not-a-real-binary-termcore"}, Options{})
	if err == nil {
		t.Fatal("expected SpawnError")
	}
	var spawnErr *SpawnError
	if !errors.As(err, &spawnErr) {
		t.Fatalf("expected *SpawnError, got %T", err)
	}
	if !errors.Is(err, ErrExecutableNotFound) {
		t.Fatalf("expected ErrExecutableNotFound in chain: %v", err)
	}

	p := New(Options{})
	if err := p.Start(Command{Path: "definitely-not-a-real-binary-termcore"}); err == nil {
		t.Fatal("expected error")
	}
	if p.State() != NotStarted {
		t.Fatalf("failed start left state %s", p.State())
	}
	if _, err := p.Write([]byte("x")); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Write after failed start = %v", err)
	}
}

func TestTerminateTwice(t *testing.T) {
	rec := &exitRecorder{}
	p, err := Start(Command{Path: "sleep", Args: []string{"30"}}, Options{OnExit: rec.onExit})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !p.Running() {
		t.Fatalf("expected Running, got %s", p.State())
	}

	p.Terminate()
	if p.Running() {
		t.Fatal("still running after Terminate")
	}
	p.Terminate()

	waitDone(t, p)
	// Give a late exit monitor a chance to misbehave.
	time.Sleep(100 * time.Millisecond)
	if got := rec.calls.Load(); got != 1 {
		t.Fatalf("OnExit called %d times, want 1", got)
	}
	if code := rec.code.Load(); code != -1 {
		t.Fatalf("terminate code = %d, want -1", code)
	}
}

func TestTerminateRacesImmediateExit(t *testing.T) {
	for i := 0; i < 20; i++ {
		rec := &exitRecorder{}
		p, err := Start(Command{Path: "sh", Args: []string{"-c", "exit 0"}}, Options{OnExit: rec.onExit})
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		var wg sync.WaitGroup
		for j := 0; j < 3; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.Terminate()
			}()
		}
		wg.Wait()
		waitDone(t, p)
		time.Sleep(20 * time.Millisecond)

		if p.Running() {
			t.Fatalf("iteration %d: still running", i)
		}
		if got := rec.calls.Load(); got != 1 {
			t.Fatalf("iteration %d: OnExit called %d times", i, got)
		}
	}
}

func TestTerminateKillsGroupThatIgnoresHangup(t *testing.T) {
	p, err := Start(Command{Path: "sh", Args: []string{"-c", "trap '' HUP; sleep 30"}},
		Options{KillGrace: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Let the shell install its trap.
	time.Sleep(100 * time.Millisecond)
	p.Terminate()
	waitDone(t, p)

	select {
	case <-p.reaped:
	case <-time.After(3 * time.Second):
		t.Fatal("child survived the kill grace period")
	}
}

func TestWriteAfterTerminate(t *testing.T) {
	p, err := Start(Command{Path: "cat"}, Options{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	p.Terminate()

	n, err := p.Write([]byte("data"))
	if n != 0 || !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Write after terminate = %d, %v", n, err)
	}
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("ErrNotRunning should match io.ErrClosedPipe")
	}
}

func TestWriteEchoesThroughCat(t *testing.T) {
	out := &syncBuffer{}
	p, err := Start(Command{Path: "cat"}, Options{Output: out})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Terminate()

	if _, err := p.WriteString("ping\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	waitFor(t, "echo", func() bool { return strings.Count(out.String(), "ping") >= 2 })
	if err := p.SendInterrupt(); err != nil {
		t.Fatalf("SendInterrupt: %v", err)
	}
	waitDone(t, p)
	if p.ExitCode() == 0 {
		t.Fatalf("cat interrupted should not exit 0")
	}
}

func TestResize(t *testing.T) {
	target := &sizeRecorder{}
	p, err := Start(Command{Path: "cat", Cols: 80, Rows: 24}, Options{Target: target})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Terminate()

	if cols, rows, err := p.Size(); err != nil || cols != 80 || rows != 24 {
		t.Fatalf("initial Size() = %d, %d, %v", cols, rows, err)
	}
	if err := p.Resize(132, 50); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if cols, rows, _ := p.Size(); cols != 132 || rows != 50 {
		t.Fatalf("Size() = %dx%d, want 132x50", cols, rows)
	}
	if got := target.get(); got != [2]int{132, 50} {
		t.Fatalf("target size = %v", got)
	}
	if err := p.Resize(0, 10); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("Resize(0, 10) = %v, want ErrInvalidSize", err)
	}

	p.Terminate()
	if err := p.Resize(10, 10); err != nil {
		t.Fatalf("Resize after terminate should be a no-op, got %v", err)
	}
	if got := target.get(); got != [2]int{132, 50} {
		t.Fatalf("target resized after terminate: %v", got)
	}
}

// queryingTarget calls back into the Process from Resize, as a screen
// listener reacting to a redraw would.
type queryingTarget struct {
	p       atomic.Pointer[Process]
	queried atomic.Bool
}

func (q *queryingTarget) Resize(int, int) {
	if p := q.p.Load(); p != nil {
		q.queried.Store(p.Running() && p.Pid() > 0)
	}
}

func TestResizeTargetMayQueryProcess(t *testing.T) {
	target := &queryingTarget{}
	p, err := Start(Command{Path: "cat"}, Options{Target: target})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Terminate()
	target.p.Store(p)

	result := make(chan error, 1)
	go func() { result <- p.Resize(100, 30) }()
	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("Resize: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Resize blocked while the target queried the process")
	}
	if !target.queried.Load() {
		t.Fatal("target did not observe a running process")
	}
}

func TestTerminateBeforeStart(t *testing.T) {
	rec := &exitRecorder{}
	p := New(Options{OnExit: rec.onExit})
	p.Terminate()
	waitDone(t, p)
	if err := p.Start(Command{Path: "sh"}); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("Start after Terminate = %v", err)
	}
	if rec.calls.Load() != 0 {
		t.Fatalf("OnExit called for a process that never ran")
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		NotStarted:  "not-started",
		Starting:    "starting",
		Running:     "running",
		Terminating: "terminating",
		Terminated:  "terminated",
		State(42):   "unknown",
	} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
