//go:build !windows

package process

import (
	"errors"
	"os"
	"syscall"
)

// IsProcessGone reports whether err means the target already exited. EPERM
// is included because a group that emptied between checks can report it.
func IsProcessGone(err error) bool {
	return errors.Is(err, syscall.ESRCH) ||
		errors.Is(err, syscall.ECHILD) ||
		errors.Is(err, syscall.EPERM) ||
		errors.Is(err, os.ErrProcessDone)
}
