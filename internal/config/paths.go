package config

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeEnv overrides the state directory.
const HomeEnv = "TERMCORE_HOME"

// Paths holds all the file system paths used by the application
type Paths struct {
	Home       string // ~/.termcore
	ConfigPath string // ~/.termcore/config.json
	LogDir     string // ~/.termcore/logs
	CaptureDir string // ~/.termcore/captures
}

// DefaultPaths returns the default paths configuration
func DefaultPaths() (*Paths, error) {
	if home := strings.TrimSpace(os.Getenv(HomeEnv)); home != "" {
		return PathsAt(home), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return PathsAt(filepath.Join(home, ".termcore")), nil
}

// PathsAt lays out the state directory under root.
func PathsAt(root string) *Paths {
	return &Paths{
		Home:       root,
		ConfigPath: filepath.Join(root, "config.json"),
		LogDir:     filepath.Join(root, "logs"),
		CaptureDir: filepath.Join(root, "captures"),
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.Home, p.LogDir, p.CaptureDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
