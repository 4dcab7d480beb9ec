//go:build !linux && !windows && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package pty

import "errors"

// waitExited is unsupported here; the monitor reaps without holding mu.
func waitExited(int) error {
	return errors.ErrUnsupported
}
