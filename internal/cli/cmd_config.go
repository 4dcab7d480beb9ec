package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/andyrewlee/termcore/internal/config"
)

func buildConfigCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}
	cmd.AddCommand(buildConfigShowCommand(e))
	cmd.AddCommand(buildConfigInitCommand(e))
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), e.cfg.Paths.ConfigPath)
			return err
		},
	})
	return cmd
}

// configView is the printable form of the effective config.
type configView struct {
	Shell          string             `json:"shell"`
	Term           string             `json:"term"`
	Cols           int                `json:"cols"`
	Rows           int                `json:"rows"`
	Scrollback     int                `json:"scrollback"`
	KillGraceMs    int64              `json:"kill_grace_ms"`
	DrainTimeoutMs int64              `json:"drain_timeout_ms"`
	LogLevel       string             `json:"log_level"`
	Cell           config.CellMetrics `json:"cell"`
	ConfigPath     string             `json:"config_path"`
}

func viewOf(cfg *config.Config) configView {
	return configView{
		Shell:          cfg.Shell,
		Term:           cfg.Term,
		Cols:           cfg.Cols,
		Rows:           cfg.Rows,
		Scrollback:     cfg.Scrollback,
		KillGraceMs:    cfg.KillGrace.Milliseconds(),
		DrainTimeoutMs: cfg.DrainTimeout.Milliseconds(),
		LogLevel:       cfg.LogLevel.String(),
		Cell:           cfg.Cell,
		ConfigPath:     cfg.Paths.ConfigPath,
	}
}

func buildConfigShowCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(viewOf(e.cfg))
		},
	}
}

func buildConfigInitCommand(e *env) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := e.cfg.Paths.ConfigPath
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := e.cfg.Paths.EnsureDirectories(); err != nil {
				return err
			}
			if err := e.cfg.SaveDefault(); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
