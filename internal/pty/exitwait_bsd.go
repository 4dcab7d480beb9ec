//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package pty

import (
	"errors"

	"golang.org/x/sys/unix"
)

// waitExited blocks until pid has exited without reaping it.
func waitExited(pid int) error {
	kq, err := unix.Kqueue()
	if err != nil {
		return err
	}
	defer unix.Close(kq)

	var ev unix.Kevent_t
	unix.SetKevent(&ev, pid, unix.EVFILT_PROC, unix.EV_ADD|unix.EV_ONESHOT)
	ev.Fflags = unix.NOTE_EXIT
	if _, err := unix.Kevent(kq, []unix.Kevent_t{ev}, nil, nil); err != nil {
		if errors.Is(err, unix.ESRCH) {
			// Already a zombie.
			return nil
		}
		return err
	}
	events := make([]unix.Kevent_t, 1)
	for {
		_, err := unix.Kevent(kq, nil, events, nil)
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}
