// Package session pairs a VTerm with the PTY process that feeds it.
package session

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"

	"github.com/andyrewlee/termcore/internal/config"
	"github.com/andyrewlee/termcore/internal/logging"
	"github.com/andyrewlee/termcore/internal/pty"
	"github.com/andyrewlee/termcore/internal/vterm"
)

// Options configures a Session.
type Options struct {
	Command pty.Command

	Cols, Rows int
	// Scrollback is the primary buffer history limit; negative keeps all.
	Scrollback int
	Cell       config.CellMetrics

	Term         string
	KillGrace    time.Duration
	DrainTimeout time.Duration

	// Capture, when set, receives a copy of the raw child output.
	Capture io.Writer
	// OnChange receives screen change notifications.
	OnChange func(vterm.Change)
	// OnExit runs once when the child is gone.
	OnExit func(code int)
}

// OptionsFromConfig fills the sizing and lifecycle fields from cfg.
func OptionsFromConfig(cfg *config.Config, cmd pty.Command) Options {
	return Options{
		Command:      cmd,
		Cols:         cfg.Cols,
		Rows:         cfg.Rows,
		Scrollback:   cfg.Scrollback,
		Cell:         cfg.Cell,
		Term:         cfg.Term,
		KillGrace:    cfg.KillGrace,
		DrainTimeout: cfg.DrainTimeout,
	}
}

// Session is one terminal: a VTerm and the process writing into it.
type Session struct {
	ID      uuid.UUID
	Created time.Time

	vt   *vterm.VTerm
	proc *pty.Process

	mu   sync.Mutex
	cell config.CellMetrics
}

// Start creates the VTerm, spawns the command and wires output into the
// screen and screen responses back to the child.
func Start(opts Options) (*Session, error) {
	cols, rows := opts.Cols, opts.Rows
	if cols <= 0 {
		cols = pty.DefaultCols
	}
	if rows <= 0 {
		rows = pty.DefaultRows
	}
	cell := opts.Cell
	if cell.Width <= 0 || cell.Height <= 0 {
		cell = config.CellMetrics{Width: 8, Height: 16}
	}

	s := &Session{
		ID:      uuid.New(),
		Created: time.Now(),
		vt:      vterm.NewWithScrollback(cols, rows, opts.Scrollback),
		cell:    cell,
	}
	if opts.OnChange != nil {
		s.vt.SetListener(opts.OnChange)
	}

	var out io.Writer = s.vt
	if opts.Capture != nil {
		out = io.MultiWriter(opts.Capture, s.vt)
	}
	s.proc = pty.New(pty.Options{
		Output:       out,
		Target:       s.vt,
		OnExit:       opts.OnExit,
		Term:         opts.Term,
		KillGrace:    opts.KillGrace,
		DrainTimeout: opts.DrainTimeout,
	})
	s.vt.SetResponseWriter(func(b []byte) {
		if _, err := s.proc.Write(b); err != nil && !errors.Is(err, pty.ErrNotRunning) {
			logging.Warn("session %s: response write failed: %v", s.ID, err)
		}
	})

	cmd := opts.Command
	cmd.Cols, cmd.Rows = cols, rows
	if err := s.proc.Start(cmd); err != nil {
		return nil, err
	}
	logging.Info("session %s: started %s", s.ID, cmd.Path)
	return s, nil
}

// VTerm returns the session's screen.
func (s *Session) VTerm() *vterm.VTerm { return s.vt }

// Process returns the session's child process.
func (s *Session) Process() *pty.Process { return s.proc }

// Done is closed once the child has terminated.
func (s *Session) Done() <-chan struct{} { return s.proc.Done() }

// Running reports whether the child is still running.
func (s *Session) Running() bool { return s.proc.Running() }

// Snapshot returns a copy of the visible screen.
func (s *Session) Snapshot() vterm.Snapshot { return s.vt.Snapshot() }

// Write sends keyboard input to the child.
func (s *Session) Write(b []byte) (int, error) { return s.proc.Write(b) }

// Paste sends text, wrapped in bracketed-paste markers when the application
// asked for them.
func (s *Session) Paste(text string) error {
	if s.vt.Mode(vterm.ModeBracketedPaste) {
		text = ansi.BracketedPasteStart + text + ansi.BracketedPasteEnd
	}
	_, err := s.proc.WriteString(text)
	return err
}

// Focus reports a focus change to the child if it enabled focus events.
func (s *Session) Focus(focused bool) error {
	if !s.vt.Mode(vterm.ModeFocusEvents) {
		return nil
	}
	seq := ansi.Blur
	if focused {
		seq = ansi.Focus
	}
	_, err := s.proc.WriteString(seq)
	return err
}

// Resize sets the PTY and the screen to cols x rows. It is a no-op once the
// child has stopped; use ResizeScreen to reflow a finished session.
func (s *Session) Resize(cols, rows int) error {
	return s.proc.Resize(cols, rows)
}

// ResizeScreen resizes only the screen, whatever the process state. The PTY
// keeps its size.
func (s *Session) ResizeScreen(cols, rows int) error {
	if cols <= 0 || rows <= 0 {
		return pty.ErrInvalidSize
	}
	s.vt.Resize(cols, rows)
	return nil
}

// ResizePixels converts a pixel area to cells and resizes through Resize.
func (s *Session) ResizePixels(width, height int) (cols, rows int, err error) {
	s.mu.Lock()
	cell := s.cell
	s.mu.Unlock()

	cols, rows = CellsForPixels(cell, width, height)
	return cols, rows, s.Resize(cols, rows)
}

// SetCellMetrics changes the cell size used by ResizePixels.
func (s *Session) SetCellMetrics(cell config.CellMetrics) {
	if cell.Width <= 0 || cell.Height <= 0 {
		return
	}
	s.mu.Lock()
	s.cell = cell
	s.mu.Unlock()
}

// Close terminates the child. It is safe to call more than once.
func (s *Session) Close() {
	s.proc.Terminate()
}

// CellsForPixels rounds a pixel area down to whole cells, never below 1x1.
func CellsForPixels(cell config.CellMetrics, width, height int) (cols, rows int) {
	if cell.Width <= 0 || cell.Height <= 0 {
		return 1, 1
	}
	return max(1, width/cell.Width), max(1, height/cell.Height)
}
