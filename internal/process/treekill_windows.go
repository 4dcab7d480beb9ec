//go:build windows

package process

import (
	"os"
	"sync"
	"syscall"
	"time"
)

// SignalGroup kills the leader process. Windows lacks Unix-style process
// groups; child processes may remain.
func SignalGroup(pid int, _ syscall.Signal) error {
	if pid <= 0 {
		return nil
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	if err := proc.Kill(); err != nil && !IsProcessGone(err) {
		return err
	}
	return nil
}

// KillAfterGrace kills pid unless exited is closed within grace. A non-nil mu
// is held while exited is rechecked and the kill is issued.
func KillAfterGrace(pid int, grace time.Duration, exited <-chan struct{}, mu sync.Locker) error {
	if pid <= 0 || grace <= 0 {
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
	return SignalGroup(pid, syscall.SIGKILL)
}
