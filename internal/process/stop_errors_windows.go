//go:build windows

package process

import (
	"errors"
	"os"
)

// IsProcessGone reports whether err means the target already exited.
func IsProcessGone(err error) bool {
	return errors.Is(err, os.ErrProcessDone)
}
