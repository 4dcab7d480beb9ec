//go:build !windows

package session

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andyrewlee/termcore/internal/config"
	"github.com/andyrewlee/termcore/internal/pty"
	"github.com/andyrewlee/termcore/internal/vterm"
)

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

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish")
	}
}

func shell(script string) pty.Command {
	return pty.Command{Path: "sh", Args: []string{"-c", script}}
}

func TestOutputReachesScreen(t *testing.T) {
	capture := &syncBuffer{}
	var exitCode atomic.Int32
	exitCode.Store(-100)
	s, err := Start(Options{
		Command: shell(`printf 'hello\033[31m red'; exit 3`),
		Cols:    40,
		Rows:    5,
		Capture: capture,
		OnExit:  func(code int) { exitCode.Store(int32(code)) },
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, s)

	if got := s.Snapshot().Text(); !strings.Contains(got, "hello red") {
		t.Fatalf("screen text = %q", got)
	}
	if !strings.Contains(capture.String(), "\x1b[31m") {
		t.Fatalf("capture missing raw bytes: %q", capture.String())
	}
	if exitCode.Load() != 3 {
		t.Fatalf("exit code = %d, want 3", exitCode.Load())
	}
	if c, r := s.VTerm().Size(); c != 40 || r != 5 {
		t.Fatalf("screen size = %dx%d", c, r)
	}
}

func TestScreenResponsesReachChild(t *testing.T) {
	s, err := Start(Options{
		Command: shell(`stty raw -echo; printf '\033[6n'; head -c 6 | od -An -tx1`),
		Cols:    60,
		Rows:    5,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()
	waitFor(t, "cursor report", func() bool {
		return strings.Contains(s.Snapshot().Text(), "1b 5b 31 3b 31 52")
	})
}

func TestPasteUsesBracketsWhenEnabled(t *testing.T) {
	capture := &syncBuffer{}
	s, err := Start(Options{Command: pty.Command{Path: "cat"}, Capture: capture})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	if err := s.Paste("plain"); err != nil {
		t.Fatalf("Paste: %v", err)
	}
	waitFor(t, "plain echo", func() bool { return strings.Contains(capture.String(), "plain") })
	if strings.Contains(capture.String(), "200~") {
		t.Fatalf("paste bracketed without mode: %q", capture.String())
	}

	s.VTerm().WriteString("\x1b[?2004h")
	if err := s.Paste("fenced"); err != nil {
		t.Fatalf("Paste: %v", err)
	}
	waitFor(t, "bracketed echo", func() bool {
		out := capture.String()
		return strings.Contains(out, "200~fenced") && strings.Contains(out, "201~")
	})
}

func TestFocusOnlyWhenRequested(t *testing.T) {
	capture := &syncBuffer{}
	s, err := Start(Options{Command: pty.Command{Path: "cat"}, Capture: capture})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	if err := s.Focus(true); err != nil {
		t.Fatalf("Focus: %v", err)
	}
	s.VTerm().WriteString("\x1b[?1004h")
	if err := s.Focus(false); err != nil {
		t.Fatalf("Focus: %v", err)
	}
	waitFor(t, "blur echo", func() bool { return strings.Contains(capture.String(), "[O") })
	if strings.Contains(capture.String(), "[I") {
		t.Fatalf("focus sent without mode 1004: %q", capture.String())
	}
}

func TestResizePathsConverge(t *testing.T) {
	s, err := Start(Options{
		Command: pty.Command{Path: "cat"},
		Cell:    config.CellMetrics{Width: 8, Height: 16},
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	cols, rows, err := s.ResizePixels(803, 487)
	if err != nil {
		t.Fatalf("ResizePixels: %v", err)
	}
	if cols != 100 || rows != 30 {
		t.Fatalf("ResizePixels -> %dx%d, want 100x30", cols, rows)
	}
	byPixels := s.Snapshot()
	ptyCols, ptyRows, err := s.Process().Size()
	if err != nil || ptyCols != 100 || ptyRows != 30 {
		t.Fatalf("pty size = %dx%d, %v", ptyCols, ptyRows, err)
	}

	if err := s.Resize(100, 30); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	byCells := s.Snapshot()
	if byPixels.Cols != byCells.Cols || byPixels.Rows != byCells.Rows {
		t.Fatalf("paths disagree: %dx%d vs %dx%d", byPixels.Cols, byPixels.Rows, byCells.Cols, byCells.Rows)
	}

	s.SetCellMetrics(config.CellMetrics{Width: 10, Height: 20})
	if cols, rows, _ := s.ResizePixels(800, 480); cols != 80 || rows != 24 {
		t.Fatalf("after SetCellMetrics -> %dx%d", cols, rows)
	}
	if err := s.Resize(0, 5); !errors.Is(err, pty.ErrInvalidSize) {
		t.Fatalf("Resize(0, 5) = %v", err)
	}
}

func TestResizeAfterExit(t *testing.T) {
	s, err := Start(Options{Command: shell("exit 0"), Cols: 80, Rows: 24})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, s)
	if err := s.Resize(50, 10); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if c, r := s.VTerm().Size(); c != 80 || r != 24 {
		t.Fatalf("Resize after exit changed the screen to %dx%d", c, r)
	}

	if err := s.ResizeScreen(50, 10); err != nil {
		t.Fatalf("ResizeScreen: %v", err)
	}
	if c, r := s.VTerm().Size(); c != 50 || r != 10 {
		t.Fatalf("screen size = %dx%d", c, r)
	}
	if err := s.ResizeScreen(0, 10); !errors.Is(err, pty.ErrInvalidSize) {
		t.Fatalf("ResizeScreen(0, 10) = %v", err)
	}
	if _, err := s.Write([]byte("x")); !errors.Is(err, pty.ErrNotRunning) {
		t.Fatalf("Write after exit = %v", err)
	}
}

func TestChangeListenerMayCallSession(t *testing.T) {
	var sp atomic.Pointer[Session]
	var sawRunning atomic.Bool
	s, err := Start(Options{
		Command: pty.Command{Path: "cat"},
		OnChange: func(vterm.Change) {
			if s := sp.Load(); s != nil && s.Running() {
				_, _ = s.Write(nil)
				sawRunning.Store(true)
			}
		},
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()
	sp.Store(s)

	result := make(chan error, 1)
	go func() { result <- s.Resize(120, 40) }()
	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("Resize: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Resize blocked while the listener called the session")
	}
	if !sawRunning.Load() {
		t.Fatal("listener did not see the running session")
	}
	if c, r := s.VTerm().Size(); c != 120 || r != 40 {
		t.Fatalf("screen size = %dx%d", c, r)
	}
}

func TestCellsForPixels(t *testing.T) {
	cell := config.CellMetrics{Width: 8, Height: 16}
	tests := []struct {
		name       string
		cell       config.CellMetrics
		w, h       int
		cols, rows int
	}{
		{"exact", cell, 640, 384, 80, 24},
		{"rounds down", cell, 647, 399, 80, 24},
		{"smaller than a cell", cell, 3, 7, 1, 1},
		{"zero area", cell, 0, 0, 1, 1},
		{"negative area", cell, -10, -10, 1, 1},
		{"zero metrics", config.CellMetrics{}, 800, 600, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, rows := CellsForPixels(tt.cell, tt.w, tt.h)
			if cols != tt.cols || rows != tt.rows {
				t.Fatalf("CellsForPixels(%d, %d) = %dx%d, want %dx%d", tt.w, tt.h, cols, rows, tt.cols, tt.rows)
			}
		})
	}
}

func TestStartFailure(t *testing.T) {
	_, err := Start(Options{Command: pty.Command{Path: "no-such-binary-termcore"}})
	if !errors.Is(err, pty.ErrExecutableNotFound) {
		t.Fatalf("Start error = %v", err)
	}
}
