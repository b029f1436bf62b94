package checkedmem

import (
	"errors"
	"fmt"
)

// Common errors for API consumers
var (
	// ErrInvalidAccess matches every *FaultError through errors.Is.
	ErrInvalidAccess = errors.New("checkedmem: invalid memory access")
	// ErrNotInstalled is returned by checked operations before Install.
	ErrNotInstalled = errors.New("checkedmem: fault interception not installed")
	// ErrOverlap is returned, wrapped with the first overlapping address, when
	// the source and destination ranges overlap.
	ErrOverlap = errors.New("checkedmem: source and destination overlap")
	// ErrRange is returned when a range wraps around the address space.
	ErrRange = errors.New("checkedmem: address range overflows")
	// ErrUnknownMover is returned for a mover name with no registered strategy.
	ErrUnknownMover = errors.New("checkedmem: unknown mover")
	// ErrInvalidUTF8 is returned by CheckUTF8 for bytes that are not UTF-8.
	ErrInvalidUTF8 = errors.New("checkedmem: invalid UTF-8")
	// ErrInsufficientLength is returned by FillString when the destination
	// is too short for the whole string.
	ErrInsufficientLength = errors.New("checkedmem: destination too short")
	// ErrUnsupported is returned on platforms without checked access.
	ErrUnsupported = errors.New("checkedmem: not supported on this platform")
)

// FaultError reports a fault that interrupted a checked operation. The
// destination contents are unspecified after a fault.
type FaultError struct {
	Record    FaultRecord
	sanitized bool
}

func (e *FaultError) Error() string {
	if e.sanitized {
		return e.sanitizedError()
	}
	return e.detailedError()
}

// detailedError provides full fault context for development
func (e *FaultError) detailedError() string {
	r := e.Record
	return fmt.Sprintf("checkedmem: invalid memory %s at %#x (%s: %s)",
		r.Access, r.Addr, signalName(r.Kind), r.Kind)
}

// sanitizedError keeps addresses out of production logs
func (e *FaultError) sanitizedError() string {
	return fmt.Sprintf("checkedmem: invalid memory %s", e.Record.Access)
}

// Is reports whether target is ErrInvalidAccess.
func (e *FaultError) Is(target error) bool {
	return target == ErrInvalidAccess
}

// Addr returns the faulting address.
func (e *FaultError) Addr() uintptr { return e.Record.Addr }
