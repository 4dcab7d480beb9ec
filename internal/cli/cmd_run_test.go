//go:build !windows

package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunDumpsFinalScreen(t *testing.T) {
	out, err := execute(t, "", "run", "--no-watch", "--cols", "30", "--rows", "5", "--dump",
		"--", "sh", "-c", `printf 'first\r\n\033[2J\033[Hsecond'`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// Passthrough carries both writes; the dump only shows the final screen.
	idx := strings.LastIndex(out, "second")
	if idx < 0 {
		t.Fatalf("output missing dump: %q", out)
	}
	dump := out[strings.LastIndex(out, "\r\n")+2:]
	if strings.TrimSpace(dump) != "second" {
		t.Fatalf("dump = %q", dump)
	}
}

func TestRunPropagatesExitCode(t *testing.T) {
	_, err := execute(t, "", "run", "--no-watch", "sh", "-c", "exit 4")
	var exitErr exitError
	if !errors.As(err, &exitErr) || exitErr.code != 4 {
		t.Fatalf("run error = %v, want exit code 4", err)
	}
}

func TestRunWritesCapture(t *testing.T) {
	capture := filepath.Join(t.TempDir(), "out.bin")
	if _, err := execute(t, "", "run", "--no-watch", "--capture", capture, "--", "sh", "-c", `printf 'captured\033[1m'`); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(capture)
	if err != nil {
		t.Fatalf("read capture: %v", err)
	}
	if !strings.Contains(string(data), "captured\x1b[1m") {
		t.Fatalf("capture = %q", data)
	}
}

func TestRunMissingCommand(t *testing.T) {
	if _, err := execute(t, "", "run", "--no-watch", "no-such-binary-termcore"); err == nil {
		t.Fatal("expected spawn error")
	}
}
