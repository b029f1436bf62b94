//go:build unix

package checkedmem

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Signal returns the signal the kernel delivers for faults of kind k.
func (k FaultKind) Signal() syscall.Signal {
	if k == FaultBusError {
		return unix.SIGBUS
	}
	return unix.SIGSEGV
}

func signalName(k FaultKind) string {
	return unix.SignalName(k.Signal())
}

// pageSize returns the system page size.
func pageSize() uintptr {
	return uintptr(unix.Getpagesize())
}
