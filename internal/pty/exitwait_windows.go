package pty

import "syscall"

// waitExited blocks until pid has exited. An open handle keeps the pid from
// being reused, so nothing is reaped here.
func waitExited(pid int) error {
	h, err := syscall.OpenProcess(syscall.SYNCHRONIZE, false, uint32(pid))
	if err != nil {
		return err
	}
	defer syscall.CloseHandle(h)
	_, err = syscall.WaitForSingleObject(h, syscall.INFINITE)
	return err
}
