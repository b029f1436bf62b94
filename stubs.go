//go:build !unix

package checkedmem

import (
	"syscall"
	"unsafe"
)

// Supported returns false on platforms without Unix fault signals.
func Supported() (bool, error) {
	return false, ErrUnsupported
}

// Install returns an error on unsupported platforms.
func Install(opts ...Option) error {
	return ErrUnsupported
}

// Guard runs fn; there is no fault interception to route through.
func Guard(fn func()) { fn() }

// Installed always reports false on unsupported platforms.
func Installed() bool { return false }

// Stub implementations for checked operations
func Copy(dst, src unsafe.Pointer, n uintptr) error {
	return ErrUnsupported
}

func CopyWithSink(dst, src unsafe.Pointer, n uintptr, sink *Sink) error {
	return ErrUnsupported
}

func CopyFrom(dst []byte, src unsafe.Pointer) error {
	return ErrUnsupported
}

func CopyTo(dst unsafe.Pointer, src []byte) error {
	return ErrUnsupported
}

func Read[T any](src unsafe.Pointer) (T, error) {
	var zero T
	return zero, ErrUnsupported
}

func Write[T any](dst unsafe.Pointer, v T) error {
	return ErrUnsupported
}

func Probe(p unsafe.Pointer, n uintptr, access Access) error {
	return ErrUnsupported
}

func CheckUTF8(p unsafe.Pointer, n uintptr) (string, error) {
	return "", ErrUnsupported
}

func FillString(dst unsafe.Pointer, size uintptr, s string) (uintptr, error) {
	return 0, ErrUnsupported
}

// Signal has no meaning without Unix signals.
func (k FaultKind) Signal() syscall.Signal {
	return 0
}

func signalName(k FaultKind) string {
	return "fault"
}
