package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/andyrewlee/termcore/internal/logging"
	"github.com/andyrewlee/termcore/internal/vterm"
)

// CellMetrics is the pixel size of one cell, used to turn window pixels
// into cols/rows.
type CellMetrics struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Config holds the application configuration
type Config struct {
	Paths *Paths

	Shell        string
	Term         string
	Cols         int
	Rows         int
	Scrollback   int // negative keeps everything
	KillGrace    time.Duration
	DrainTimeout time.Duration
	LogLevel     logging.Level
	Cell         CellMetrics
}

// fileConfig is the on-disk form. Pointers tell "unset" from zero.
type fileConfig struct {
	Shell          *string      `json:"shell,omitempty"`
	Term           *string      `json:"term,omitempty"`
	Cols           *int         `json:"cols,omitempty"`
	Rows           *int         `json:"rows,omitempty"`
	Scrollback     *int         `json:"scrollback,omitempty"`
	KillGraceMs    *int         `json:"kill_grace_ms,omitempty"`
	DrainTimeoutMs *int         `json:"drain_timeout_ms,omitempty"`
	LogLevel       *string      `json:"log_level,omitempty"`
	Cell           *CellMetrics `json:"cell,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() (*Config, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return defaults(paths), nil
}

func defaults(paths *Paths) *Config {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return &Config{
		Paths:        paths,
		Shell:        shell,
		Term:         "xterm-256color",
		Cols:         80,
		Rows:         24,
		Scrollback:   vterm.DefaultScrollback,
		KillGrace:    2 * time.Second,
		DrainTimeout: 500 * time.Millisecond,
		LogLevel:     logging.LevelInfo,
		Cell:         CellMetrics{Width: 8, Height: 16},
	}
}

// Load loads config overrides from ~/.termcore/config.json if present.
func Load() (*Config, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return LoadFrom(paths)
}

// LoadFrom applies the overrides in paths.ConfigPath to the defaults. A
// missing file is not an error.
func LoadFrom(paths *Paths) (*Config, error) {
	cfg := defaults(paths)

	data, err := os.ReadFile(paths.ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	var raw fileConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", paths.ConfigPath, err)
	}
	cfg.apply(raw)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", paths.ConfigPath, err)
	}
	return cfg, nil
}

func (c *Config) apply(raw fileConfig) {
	if raw.Shell != nil {
		c.Shell = *raw.Shell
	}
	if raw.Term != nil {
		c.Term = *raw.Term
	}
	if raw.Cols != nil {
		c.Cols = *raw.Cols
	}
	if raw.Rows != nil {
		c.Rows = *raw.Rows
	}
	if raw.Scrollback != nil {
		c.Scrollback = *raw.Scrollback
	}
	if raw.KillGraceMs != nil {
		c.KillGrace = time.Duration(*raw.KillGraceMs) * time.Millisecond
	}
	if raw.DrainTimeoutMs != nil {
		c.DrainTimeout = time.Duration(*raw.DrainTimeoutMs) * time.Millisecond
	}
	if raw.LogLevel != nil {
		c.LogLevel = logging.ParseLevel(*raw.LogLevel)
	}
	if raw.Cell != nil {
		c.Cell = *raw.Cell
	}
}

// Validate rejects sizes the terminal cannot use.
func (c *Config) Validate() error {
	switch {
	case c.Cols <= 0 || c.Rows <= 0:
		return fmt.Errorf("invalid size %dx%d", c.Cols, c.Rows)
	case c.Cell.Width <= 0 || c.Cell.Height <= 0:
		return fmt.Errorf("invalid cell metrics %dx%d", c.Cell.Width, c.Cell.Height)
	case c.KillGrace < 0 || c.DrainTimeout < 0:
		return fmt.Errorf("negative timeout")
	}
	return nil
}
