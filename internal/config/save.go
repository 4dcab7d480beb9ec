package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Save writes the config's settings to path. Keys already in the file that
// Config does not know about are kept.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	payload := map[string]any{}
	if existing, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(existing, &payload)
	}

	payload["shell"] = c.Shell
	payload["term"] = c.Term
	payload["cols"] = c.Cols
	payload["rows"] = c.Rows
	payload["scrollback"] = c.Scrollback
	payload["kill_grace_ms"] = c.KillGrace.Milliseconds()
	payload["drain_timeout_ms"] = c.DrainTimeout.Milliseconds()
	payload["log_level"] = c.LogLevel.String()
	payload["cell"] = map[string]any{
		"width":  c.Cell.Width,
		"height": c.Cell.Height,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// SaveDefault writes the config to its own ConfigPath.
func (c *Config) SaveDefault() error {
	if c == nil || c.Paths == nil {
		return nil
	}
	return c.Save(c.Paths.ConfigPath)
}
