package util

import (
	"os"
	"syscall"
)

// ProcessAlive reports whether a process with the given pid is still alive.
// It sends signal 0, which performs existence/permission checks without
// actually delivering a signal — the standard POSIX liveness probe.
func ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil
}
