//go:build !windows

package process

import (
	"sync"
	"syscall"
	"time"
)

// SignalGroup sends sig to the process group led by pgid. Children started in
// their own session lead a group whose id is their pid. A group that is
// already gone is not an error.
func SignalGroup(pgid int, sig syscall.Signal) error {
	if pgid <= 0 {
		return nil
	}
	if err := syscall.Kill(-pgid, sig); err != nil && !IsProcessGone(err) {
		return err
	}
	return nil
}

// KillAfterGrace sends SIGKILL to the group led by pgid unless exited is
// closed within grace. Callers close exited once the leader has been reaped.
// When mu is non-nil it is held while exited is rechecked and the signal is
// sent; callers that reap under mu never signal a recycled pid.
func KillAfterGrace(pgid int, grace time.Duration, exited <-chan struct{}, mu sync.Locker) error {
	if pgid <= 0 || grace <= 0 {
		return nil
	}
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-exited:
		return nil
	case <-timer.C:
	}
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	select {
	case <-exited:
		return nil
	default:
	}
	return SignalGroup(pgid, syscall.SIGKILL)
}
