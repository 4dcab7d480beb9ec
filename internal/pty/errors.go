package pty

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNotRunning is returned by Write when the process is not Running.
	// It matches io.ErrClosedPipe.
	ErrNotRunning = fmt.Errorf("pty: process not running: %w", io.ErrClosedPipe)
	// ErrInvalidSize is returned for non-positive dimensions.
	ErrInvalidSize = errors.New("pty: invalid size")
	// ErrAlreadyStarted is returned by Start on a handle that left NotStarted.
	ErrAlreadyStarted = errors.New("pty: process already started")
	// ErrExecutableNotFound wraps path resolution failures inside SpawnError.
	ErrExecutableNotFound = errors.New("pty: executable not found")
)

// SpawnError reports a failed Start. No PTY or monitor survives it.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("pty: spawn %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}
