//go:build windows

package cli

import "context"

// watchWindowSize has no resize signal to follow on Windows.
func watchWindowSize(ctx context.Context, _ int, _ func(cols, rows int)) error {
	<-ctx.Done()
	return nil
}
