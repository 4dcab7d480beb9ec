package pty

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"

	"github.com/andyrewlee/termcore/internal/logging"
	"github.com/andyrewlee/termcore/internal/perf"
	"github.com/andyrewlee/termcore/internal/process"
	"github.com/andyrewlee/termcore/internal/safego"
)

const (
	// DefaultCols and DefaultRows are used when Command leaves a size unset.
	DefaultCols = 80
	DefaultRows = 24
	// DefaultDrainTimeout bounds how long a natural exit waits for output.
	DefaultDrainTimeout = 500 * time.Millisecond

	readBufferSize = 32 * 1024
)

// State is the lifecycle state of a Process. Transitions only move forward.
type State int32

const (
	NotStarted State = iota
	Starting
	Running
	Terminating
	Terminated
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Terminating:
		return "terminating"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// SizeTarget receives the same size the PTY is set to. *vterm.VTerm satisfies it.
type SizeTarget interface {
	Resize(cols, rows int)
}

// Command describes the child to spawn.
type Command struct {
	// Path is resolved with exec.LookPath.
	Path string
	// Args excludes the program name.
	Args []string
	// Env holds KEY=VALUE overrides applied on top of the current environment.
	Env []string
	Dir string

	Cols, Rows int
}

// Options configures a Process.
type Options struct {
	// Output receives everything the child writes.
	Output io.Writer
	// Target is resized together with the PTY.
	Target SizeTarget
	// OnExit runs exactly once, after the process reaches Terminated. The
	// code is the child's exit status, or -1 when Terminate ended it.
	OnExit func(code int)
	// Term is advertised as TERM. Empty means process.DefaultTerm.
	Term string
	// KillGrace, when positive, follows the hangup with SIGKILL to the
	// process group if the child has not been reaped in time.
	KillGrace time.Duration
	// DrainTimeout bounds the wait for remaining output after a natural exit.
	DrainTimeout time.Duration
}

// Process is a child attached to a PTY. Every state transition happens under
// mu, so a Terminate racing the exit monitor produces one teardown and one
// OnExit call.
type Process struct {
	mu    sync.Mutex
	state State
	opts  Options

	// resizeMu orders Resize calls so the PTY and Target agree on the last
	// size. It is taken before mu and held while Target runs.
	resizeMu sync.Mutex

	cmd  *exec.Cmd
	ptmx *os.File
	pid  int

	// monitorCanceled unregisters the exit monitor; once set, its result is
	// only used to reap the child.
	monitorCanceled bool
	exitCode        int

	done       chan struct{}
	reaped     chan struct{}
	readerDone <-chan struct{}
}

// New returns a Process in the NotStarted state.
func New(opts Options) *Process {
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = DefaultDrainTimeout
	}
	return &Process{
		opts:     opts,
		exitCode: -1,
		done:     make(chan struct{}),
	}
}

// Start spawns c on a new PTY and returns the running handle.
func Start(c Command, opts Options) (*Process, error) {
	p := New(opts)
	if err := p.Start(c); err != nil {
		return nil, err
	}
	return p, nil
}

// Start spawns the child. The slave side becomes its controlling terminal in
// a new session, so the child leads its own process group. On failure the
// handle returns to NotStarted and holds no resources.
func (p *Process) Start(c Command) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != NotStarted {
		return ErrAlreadyStarted
	}
	p.state = Starting

	path, err := exec.LookPath(c.Path)
	if err != nil {
		p.state = NotStarted
		return &SpawnError{Path: c.Path, Err: errors.Join(ErrExecutableNotFound, err)}
	}

	cols, rows := c.Cols, c.Rows
	if cols <= 0 {
		cols = DefaultCols
	}
	if rows <= 0 {
		rows = DefaultRows
	}

	cmd := exec.Command(path, c.Args...)
	cmd.Dir = c.Dir
	env := append(process.TerminalEnv(p.opts.Term), c.Env...)
	cmd.Env = process.BuildEnv(os.Environ(), env...)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		p.state = NotStarted
		return &SpawnError{Path: path, Err: err}
	}

	p.cmd = cmd
	p.ptmx = ptmx
	p.pid = cmd.Process.Pid
	p.reaped = make(chan struct{})
	p.state = Running
	logging.Info("pty: started %s pid=%d size=%dx%d", path, p.pid, cols, rows)

	output := p.opts.Output
	p.readerDone = safego.GoDone("pty-reader", func() { p.readLoop(ptmx, output) })
	safego.Go("pty-exit-monitor", func() { p.monitor(cmd) })
	return nil
}

// readLoop copies PTY output until the master reports an error, which
// happens when the child side closes or the master is closed.
func (p *Process) readLoop(ptmx *os.File, out io.Writer) {
	buf := make([]byte, readBufferSize)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 && out != nil {
			done := perf.Time("pty_read")
			if _, werr := out.Write(buf[:n]); werr != nil {
				logging.Warn("pty: output write failed: %v", werr)
			}
			done()
			perf.Count("pty_bytes", int64(n))
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) && !errors.Is(err, syscall.EIO) {
				logging.Debug("pty: read ended: %v", err)
			}
			return
		}
	}
}

// monitor waits for the child to become a zombie, then reaps it under mu.
// Until then the pid cannot be reused, so a Terminate holding mu always
// signals our child. It tears down only if it wins the race against
// Terminate.
func (p *Process) monitor(cmd *exec.Cmd) {
	locked := false
	if err := waitExited(p.pid); err == nil {
		p.mu.Lock()
		locked = true
	} else {
		logging.Debug("pty: exit wait pid=%d: %v", p.pid, err)
	}
	err := cmd.Wait()
	close(p.reaped)
	code := -1
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}

	if !locked {
		p.mu.Lock()
	}
	if p.monitorCanceled || p.state != Running {
		p.mu.Unlock()
		return
	}
	p.state = Terminating
	p.mu.Unlock()

	logging.Info("pty: pid=%d exited code=%d err=%v", p.pid, code, err)

	timer := time.NewTimer(p.opts.DrainTimeout)
	select {
	case <-p.readerDone:
	case <-timer.C:
		logging.Debug("pty: drain timed out for pid=%d", p.pid)
	}
	timer.Stop()

	p.mu.Lock()
	p.closeMaster()
	p.finish(code)
}

// Terminate ends the child: cancel the exit monitor, hang up the process
// group, close the master, then report Terminated. It never waits on the
// child and is a no-op unless the process is Running. Calling it before Start
// moves the handle straight to Terminated without a callback.
func (p *Process) Terminate() {
	p.mu.Lock()
	switch p.state {
	case NotStarted:
		p.state = Terminated
		close(p.done)
		p.mu.Unlock()
		return
	case Running:
	default:
		p.mu.Unlock()
		return
	}
	p.state = Terminating

	p.monitorCanceled = true
	select {
	case <-p.reaped:
	default:
		if err := process.SignalGroup(p.pid, syscall.SIGHUP); err != nil {
			logging.Warn("pty: hangup pid=%d: %v", p.pid, err)
		}
	}
	if grace := p.opts.KillGrace; grace > 0 {
		pid, reaped := p.pid, p.reaped
		safego.Go("pty-kill-grace", func() {
			if err := process.KillAfterGrace(pid, grace, reaped, &p.mu); err != nil {
				logging.Warn("pty: kill pid=%d: %v", pid, err)
			}
		})
	}
	p.closeMaster()
	p.finish(-1)
}

// finish records Terminated, releases mu and runs OnExit. Callers hold mu.
func (p *Process) finish(code int) {
	p.state = Terminated
	p.exitCode = code
	close(p.done)
	cb := p.opts.OnExit
	p.mu.Unlock()

	if cb != nil {
		cb(code)
	}
}

func (p *Process) closeMaster() {
	if p.ptmx == nil {
		return
	}
	if err := p.ptmx.Close(); err != nil {
		logging.Debug("pty: close master: %v", err)
	}
	p.ptmx = nil
}

// Write forwards b to the child. It fails with ErrNotRunning unless the
// process is Running.
func (p *Process) Write(b []byte) (int, error) {
	p.mu.Lock()
	if p.state != Running || p.ptmx == nil {
		p.mu.Unlock()
		return 0, ErrNotRunning
	}
	f := p.ptmx
	p.mu.Unlock()

	// A concurrent close makes this fail instead of writing to a reused fd.
	n, err := f.Write(b)
	if err != nil && errors.Is(err, os.ErrClosed) {
		return n, ErrNotRunning
	}
	return n, err
}

// WriteString is Write for strings.
func (p *Process) WriteString(s string) (int, error) {
	return p.Write([]byte(s))
}

// SendInterrupt sends Ctrl+C to the child.
func (p *Process) SendInterrupt() error {
	_, err := p.Write([]byte{0x03})
	return err
}

// Resize sets the PTY window size, which signals SIGWINCH to the child, then
// applies the same size to the Target once mu is released, so Target
// listeners may call back into the Process. It is a no-op unless the
// process is Running.
func (p *Process) Resize(cols, rows int) error {
	if cols <= 0 || rows <= 0 {
		return ErrInvalidSize
	}
	p.resizeMu.Lock()
	defer p.resizeMu.Unlock()

	p.mu.Lock()
	if p.state != Running || p.ptmx == nil {
		p.mu.Unlock()
		return nil
	}
	err := pty.Setsize(p.ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	target := p.opts.Target
	p.mu.Unlock()

	if err != nil {
		return err
	}
	if target != nil {
		target.Resize(cols, rows)
	}
	return nil
}

// Size reads the window size back from the PTY.
func (p *Process) Size() (cols, rows int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ptmx == nil {
		return 0, 0, ErrNotRunning
	}
	rows, cols, err = pty.Getsize(p.ptmx)
	return cols, rows, err
}

// Done is closed when the process reaches Terminated.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// State returns the current lifecycle state.
func (p *Process) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Running reports whether the process is Running.
func (p *Process) Running() bool {
	return p.State() == Running
}

// Pid returns the child's process id, or 0 before Start.
func (p *Process) Pid() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

// ExitCode returns the code passed to OnExit, or -1 before Terminated.
func (p *Process) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode
}
