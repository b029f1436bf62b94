//go:build unix

package checkedmem

import (
	"fmt"
	"unicode/utf8"
	"unsafe"
)

// CheckUTF8 copies n bytes at the possibly invalid address p and returns them
// as a string if they are valid UTF-8.
//
// The range is copied one page at a time and each page is validated before
// the next is touched, so invalid bytes ahead of an unmapped page are
// reported as ErrInvalidUTF8 rather than as a fault.
func CheckUTF8(p unsafe.Pointer, n uintptr) (string, error) {
	if n == 0 {
		return "", nil
	}
	if uintptr(p)+n < uintptr(p) {
		return "", ErrRange
	}

	buf := make([]byte, n)
	page := pageSize()
	var copied, checked uintptr
	for copied < n {
		end := (uintptr(p)+copied)&^(page-1) + page - uintptr(p)
		end = min(end, n)
		if err := CopyFrom(buf[copied:end], unsafe.Add(p, copied)); err != nil {
			return "", err
		}
		copied = end

		var err error
		if checked, err = validUTF8(buf, checked, copied == n); err != nil {
			return "", err
		}
	}
	return unsafe.String(unsafe.SliceData(buf), len(buf)), nil
}

// validUTF8 validates buf from off and returns the offset of the first byte
// of a trailing sequence that may still be completed by more input. With
// final set nothing more is coming and an incomplete sequence is invalid.
func validUTF8(buf []byte, off uintptr, final bool) (uintptr, error) {
	for off < uintptr(len(buf)) {
		rest := buf[off:]
		if rest[0] < utf8.RuneSelf {
			off++
			continue
		}
		r, size := utf8.DecodeRune(rest)
		if r == utf8.RuneError && size == 1 {
			if !final && !utf8.FullRune(rest) {
				return off, nil
			}
			return off, fmt.Errorf("%w at offset %d", ErrInvalidUTF8, off)
		}
		off += uintptr(size)
	}
	return off, nil
}

// FillString writes as much of s as fits in size bytes at the possibly invalid
// address dst and returns the number of bytes written. If s is longer than
// size the prefix is still written and ErrInsufficientLength is returned.
func FillString(dst unsafe.Pointer, size uintptr, s string) (uintptr, error) {
	n := min(size, uintptr(len(s)))
	if n > 0 {
		if err := Copy(dst, unsafe.Pointer(unsafe.StringData(s)), n); err != nil {
			return 0, err
		}
	}
	if n < uintptr(len(s)) {
		return n, fmt.Errorf("%w: %d of %d bytes written", ErrInsufficientLength, n, len(s))
	}
	return n, nil
}
