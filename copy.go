//go:build unix

package checkedmem

import (
	"fmt"
	"runtime/debug"
	"unsafe"
)

// minLegalAddr is the size of the zero page, which is never mapped.
const minLegalAddr = 4096

// Copy copies n bytes from src to dst and converts a memory fault into a
// *FaultError instead of crashing the process.
//
// dst must be writable memory the caller owns; src is the possibly invalid
// range being probed. Neither range may hold Go pointers. After a fault the
// contents of dst are unspecified. A zero-length copy succeeds without
// touching either range.
func Copy(dst, src unsafe.Pointer, n uintptr) error {
	return CopyWithSink(dst, src, n, nil)
}

// CopyWithSink is Copy that also writes the fault record, if any, into sink
// and advances it. A nil sink behaves like Copy.
func CopyWithSink(dst, src unsafe.Pointer, n uintptr, sink *Sink) error {
	if n == 0 {
		return nil
	}
	d := current.Load()
	if d == nil {
		return ErrNotInstalled
	}
	return d.copy(dst, src, n, sink)
}

// CopyFrom fills dst from the possibly invalid address src.
func CopyFrom(dst []byte, src unsafe.Pointer) error {
	if len(dst) == 0 {
		return nil
	}
	return Copy(unsafe.Pointer(unsafe.SliceData(dst)), src, uintptr(len(dst)))
}

// CopyTo writes src to the possibly invalid address dst.
func CopyTo(dst unsafe.Pointer, src []byte) error {
	if len(src) == 0 {
		return nil
	}
	return Copy(dst, unsafe.Pointer(unsafe.SliceData(src)), uintptr(len(src)))
}

// Read loads a T from the possibly invalid address src. T must not contain
// pointers.
func Read[T any](src unsafe.Pointer) (T, error) {
	var v T
	if err := Copy(unsafe.Pointer(&v), src, unsafe.Sizeof(v)); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Write stores v at the possibly invalid address dst. T must not contain
// pointers.
func Write[T any](dst unsafe.Pointer, v T) error {
	return Copy(dst, unsafe.Pointer(&v), unsafe.Sizeof(v))
}

// Probe checks that n bytes at p are accessible by touching the first byte
// of every page in the range and the last byte. With AccessWrite each
// touched byte is read and written back unchanged, which races with
// concurrent writers of the same bytes.
func Probe(p unsafe.Pointer, n uintptr, access Access) error {
	if n == 0 {
		return nil
	}
	if !Installed() {
		return ErrNotInstalled
	}
	if uintptr(p)+n < uintptr(p) {
		return ErrRange
	}

	var b byte
	touch := func(off uintptr) error {
		at := unsafe.Add(p, off)
		if err := Copy(unsafe.Pointer(&b), at, 1); err != nil {
			return err
		}
		if access == AccessWrite {
			return Copy(at, unsafe.Pointer(&b), 1)
		}
		return nil
	}

	page := pageSize()
	for off := uintptr(0); off < n; {
		if err := touch(off); err != nil {
			return err
		}
		next := (uintptr(p)+off)&^(page-1) + page
		off = next - uintptr(p)
	}
	if err := touch(n - 1); err != nil {
		return err
	}

	recordProbe()
	return nil
}

func (d *dispatcher) copy(dst, src unsafe.Pointer, n uintptr, sink *Sink) error {
	if n == 0 {
		return nil
	}
	if err := checkRanges(uintptr(dst), uintptr(src), n); err != nil {
		return err
	}

	rc := getContext()
	defer putContext(rc)
	if sink == nil {
		sink = &rc.local
	}

	rec, faulted := zeroPageFault(dst, src)
	if faulted {
		sink.put(rec)
	} else {
		rec, faulted = d.run(rc, dst, src, n, sink)
	}
	if faulted {
		recordFault()
		return &FaultError{Record: rec, sanitized: d.sanitize}
	}

	recordCopy(n)
	return nil
}

// run is the armed window. The deferred recovery frame is the recovery
// point: when the mover faults, onFault claims the fault and the frame
// returns normally with faulted set.
func (d *dispatcher) run(rc *recoveryContext, dst, src unsafe.Pointer, n uintptr, sink *Sink) (rec FaultRecord, faulted bool) {
	prev := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(prev)
	defer func() {
		if v := recover(); v != nil {
			rec = d.onFault(rc, v)
			faulted = true
		}
	}()

	rc.arm(recoveryPoint{dst: uintptr(dst), src: uintptr(src), n: n}, sink)
	d.mover.Move(dst, src, n)
	rc.disarm()
	return FaultRecord{}, false
}

func checkRanges(dst, src, n uintptr) error {
	if src+n < src || dst+n < dst {
		return ErrRange
	}
	if dst < src+n && src < dst+n {
		// The start of the later range lies inside the earlier one.
		return fmt.Errorf("%w at %#x", ErrOverlap, max(dst, src))
	}
	return nil
}

// zeroPageFault reports the fault a copy touching the zero page would take.
// The runtime reports those faults without an address.
func zeroPageFault(dst, src unsafe.Pointer) (FaultRecord, bool) {
	switch {
	case uintptr(src) < minLegalAddr:
		return FaultRecord{Addr: uintptr(src), Kind: FaultMapError, Access: AccessRead}, true
	case uintptr(dst) < minLegalAddr:
		return FaultRecord{Addr: uintptr(dst), Kind: FaultMapError, Access: AccessWrite}, true
	}
	return FaultRecord{}, false
}
