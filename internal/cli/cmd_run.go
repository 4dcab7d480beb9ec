package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/andyrewlee/termcore/internal/config"
	"github.com/andyrewlee/termcore/internal/logging"
	"github.com/andyrewlee/termcore/internal/pty"
	"github.com/andyrewlee/termcore/internal/safego"
	"github.com/andyrewlee/termcore/internal/session"
)

type runOptions struct {
	cols, rows int
	dir        string
	capture    string
	dump       bool
	ansi       bool
	noRaw      bool
	noWatch    bool
}

func buildRunCommand(e *env) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run [flags] [--] [command [args...]]",
		Short: "Run a command on a PTY, passing the terminal through",
		Long: `Run a command (default: the configured shell) on a new PTY. Input and
output pass through to this terminal while a screen model follows along.
OSC 52 clipboard writes go to the system clipboard.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, e.cfg, args, opts)
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().IntVar(&opts.cols, "cols", 0, "initial width (default: this terminal, then config)")
	cmd.Flags().IntVar(&opts.rows, "rows", 0, "initial height (default: this terminal, then config)")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "working directory for the command")
	cmd.Flags().StringVar(&opts.capture, "capture", "", "also write the raw output to FILE (see replay)")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "print the final screen after the command exits")
	cmd.Flags().BoolVar(&opts.ansi, "ansi", false, "keep colors in --dump output")
	cmd.Flags().BoolVar(&opts.noRaw, "no-raw", false, "leave this terminal in cooked mode")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "do not reload the config file on change")
	return cmd
}

func runCommand(cmd *cobra.Command, cfg *config.Config, args []string, opts runOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := pty.Command{Path: cfg.Shell, Dir: opts.dir}
	if len(args) > 0 {
		command.Path, command.Args = args[0], args[1:]
	}

	stdinFd := int(os.Stdin.Fd())
	stdoutFd := int(os.Stdout.Fd())
	interactive := term.IsTerminal(stdinFd) && term.IsTerminal(stdoutFd)

	sopts := session.OptionsFromConfig(cfg, command)
	if interactive {
		if w, h, err := term.GetSize(stdoutFd); err == nil {
			sopts.Cols, sopts.Rows = w, h
		}
	}
	if opts.cols > 0 {
		sopts.Cols = opts.cols
	}
	if opts.rows > 0 {
		sopts.Rows = opts.rows
	}

	out := cmd.OutOrStdout()
	sopts.Capture = out
	if opts.capture != "" {
		f, err := os.Create(opts.capture)
		if err != nil {
			return err
		}
		defer f.Close()
		sopts.Capture = io.MultiWriter(out, f)
	}

	s, err := session.Start(sopts)
	if err != nil {
		return err
	}
	defer s.Close()
	wireHandlers(s)

	if interactive && !opts.noRaw {
		state, err := term.MakeRaw(stdinFd)
		if err != nil {
			return fmt.Errorf("raw mode: %w", err)
		}
		defer func() { _ = term.Restore(stdinFd, state) }()
	}

	// Stdin reads cannot be interrupted, so the copier is not part of the group.
	in := cmd.InOrStdin()
	safego.Go("run-stdin", func() {
		if _, err := io.Copy(s, in); err != nil && !errors.Is(err, pty.ErrNotRunning) {
			logging.Debug("run: stdin copy ended: %v", err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-s.Done():
		case <-gctx.Done():
			s.Close()
		}
		return errSessionDone
	})
	if interactive {
		g.Go(func() error {
			return watchWindowSize(gctx, stdoutFd, func(cols, rows int) {
				if err := s.Resize(cols, rows); err != nil {
					logging.Warn("run: resize %dx%d: %v", cols, rows, err)
				}
			})
		})
	}
	if !opts.noWatch {
		if w, err := config.NewWatcher(cfg.Paths, func(next *config.Config) { applyReload(s, next) }); err != nil {
			logging.Warn("run: config watch disabled: %v", err)
		} else {
			defer w.Close()
			g.Go(func() error { return w.Run(gctx) })
		}
	}
	if err := g.Wait(); err != nil && !errors.Is(err, errSessionDone) && !errors.Is(err, context.Canceled) {
		return err
	}

	if opts.dump {
		if _, err := fmt.Fprint(out, "\r\n"); err != nil {
			return err
		}
		if err := printScreen(out, s.VTerm(), opts.ansi, false); err != nil {
			return err
		}
	}
	if code := s.Process().ExitCode(); code != 0 {
		return exitError{code: code}
	}
	return nil
}

// errSessionDone ends the errgroup when the child goes away.
var errSessionDone = errors.New("session done")

func wireHandlers(s *session.Session) {
	vt := s.VTerm()
	vt.SetClipboardHandler(func(selection string, data []byte) {
		if err := clipboard.WriteAll(string(data)); err != nil {
			logging.Warn("run: clipboard %q: %v", selection, err)
		}
	})
	vt.SetTitleHandler(func(title string) {
		logging.Debug("run: title %q", title)
	})
	vt.SetWorkingDirHandler(func(dir string) {
		logging.Debug("run: cwd %s", dir)
	})
}

// applyReload applies the settings that can change under a live session.
func applyReload(s *session.Session, cfg *config.Config) {
	logging.SetLevel(cfg.LogLevel)
	s.SetCellMetrics(cfg.Cell)
	s.VTerm().SetScrollbackLimit(cfg.Scrollback)
}
