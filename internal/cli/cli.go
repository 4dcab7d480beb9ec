// Package cli implements the termcore command line.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andyrewlee/termcore/internal/config"
	"github.com/andyrewlee/termcore/internal/logging"
	"github.com/andyrewlee/termcore/internal/perf"
)

// BuildInfo is stamped by the release build.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit with code %d", e.code)
}

// env is shared by every subcommand once the root has loaded the config.
type env struct {
	build BuildInfo
	home  string
	level string
	cfg   *config.Config
}

// Run executes the termcore CLI. It returns a process exit code.
func Run(args []string, build BuildInfo) int {
	root := buildRootCommand(&env{build: build})
	root.SetArgs(args)
	err := root.Execute()
	perf.Flush("exit")
	_ = logging.Close()
	if err != nil {
		var exitErr exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintln(os.Stderr, "termcore:", err)
		return 1
	}
	return 0
}

func buildRootCommand(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "termcore",
		Short: "Terminal emulator core: run programs on a PTY and inspect their screen",
		Long: `termcore - a VT/xterm screen model driven by a real PTY

  termcore run -- htop           Run a program, mirroring its screen
  termcore replay capture.bin    Rebuild a screen from a byte capture
  termcore config init           Write the default config file`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.load()
		},
	}
	root.Version = e.build.Version
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&e.home, "home", "", "state directory (default $"+config.HomeEnv+" or ~/.termcore)")
	root.PersistentFlags().StringVar(&e.level, "log-level", "", "override the configured log level")

	root.AddCommand(buildRunCommand(e))
	root.AddCommand(buildReplayCommand(e))
	root.AddCommand(buildConfigCommand(e))
	root.AddCommand(buildVersionCommand(e))
	return root
}

// load reads the config and starts file logging.
func (e *env) load() error {
	paths, err := e.paths()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFrom(paths)
	if err != nil {
		return err
	}
	if e.level != "" {
		cfg.LogLevel = logging.ParseLevel(e.level)
	}
	e.cfg = cfg

	if err := logging.Initialize(paths.LogDir, cfg.LogLevel); err != nil {
		// Logging is best effort; the commands still work without it.
		fmt.Fprintf(os.Stderr, "termcore: logging disabled: %v\n", err)
	}
	return nil
}

func (e *env) paths() (*config.Paths, error) {
	if e.home != "" {
		return config.PathsAt(e.home), nil
	}
	return config.DefaultPaths()
}
