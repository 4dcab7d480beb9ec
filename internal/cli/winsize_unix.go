//go:build !windows

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"
)

// watchWindowSize calls resize with the size of fd on every SIGWINCH.
func watchWindowSize(ctx context.Context, fd int, resize func(cols, rows int)) error {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	defer signal.Stop(ch)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			if w, h, err := term.GetSize(fd); err == nil && w > 0 && h > 0 {
				resize(w, h)
			}
		}
	}
}
