//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package pty

import (
	"os/exec"
	"syscall"
	"testing"
	"time"
)

func TestWaitExitedLeavesZombie(t *testing.T) {
	cmd := exec.Command("sh", "-c", "exit 7")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	pid := cmd.Process.Pid

	result := make(chan error, 1)
	go func() { result <- waitExited(pid) }()
	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("waitExited: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("waitExited did not return")
	}

	// The pid still names our unreaped child.
	if err := syscall.Kill(pid, 0); err != nil {
		t.Fatalf("pid gone before reaping: %v", err)
	}
	_ = cmd.Wait()
	if code := cmd.ProcessState.ExitCode(); code != 7 {
		t.Fatalf("exit code = %d, want 7", code)
	}
}

func TestMonitorReapsOnlyUnderLock(t *testing.T) {
	rec := &exitRecorder{}
	p, err := Start(Command{Path: "sh", Args: []string{"-c", "exit 0"}}, Options{OnExit: rec.onExit})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	p.mu.Lock()
	time.Sleep(200 * time.Millisecond)
	select {
	case <-p.reaped:
		p.mu.Unlock()
		t.Fatal("child reaped while the state lock was held")
	default:
	}
	// Exited but unreaped, so the pid cannot have been reused.
	if err := syscall.Kill(p.pid, 0); err != nil {
		p.mu.Unlock()
		t.Fatalf("pid gone while the state lock was held: %v", err)
	}
	p.mu.Unlock()

	waitDone(t, p)
	select {
	case <-p.reaped:
	case <-time.After(3 * time.Second):
		t.Fatal("child never reaped")
	}
	if got := rec.calls.Load(); got != 1 {
		t.Fatalf("OnExit called %d times, want 1", got)
	}
}
