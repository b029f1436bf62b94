package checkedmem

import (
	"fmt"
	"unsafe"
)

// Mover transfers n bytes from src to dst inside an armed window.
//
// Implementations must access memory in forward, monotonically increasing
// address order and must not touch any byte past the first one that faults,
// so that the reported fault address is the first inaccessible byte. Both
// ranges must be free of Go pointers.
type Mover interface {
	Move(dst, src unsafe.Pointer, n uintptr)
}

// MoverFunc adapts a function to the Mover interface.
type MoverFunc func(dst, src unsafe.Pointer, n uintptr)

func (f MoverFunc) Move(dst, src unsafe.Pointer, n uintptr) { f(dst, src, n) }

const wordSize = unsafe.Sizeof(uintptr(0))

var (
	// ByteMover copies one byte at a time.
	ByteMover Mover = MoverFunc(moveBytes)
	// WordMover copies machine words once both pointers are word aligned.
	WordMover Mover = MoverFunc(moveWords)
	// UnrolledMover is WordMover with four words per loop iteration.
	UnrolledMover Mover = MoverFunc(moveUnrolled)
)

var movers = map[string]Mover{
	"byte":     ByteMover,
	"word":     WordMover,
	"unrolled": UnrolledMover,
}

// LookupMover returns the built-in mover registered under name.
func LookupMover(name string) (Mover, error) {
	m, ok := movers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: byte, word, unrolled)", ErrUnknownMover, name)
	}
	return m, nil
}

//go:norace
//go:nocheckptr
func moveBytes(dst, src unsafe.Pointer, n uintptr) {
	for i := uintptr(0); i < n; i++ {
		*(*byte)(unsafe.Add(dst, i)) = *(*byte)(unsafe.Add(src, i))
	}
}

// alignHead copies single bytes until src is word aligned and reports how
// many bytes it consumed and whether dst ended up aligned as well.
//
//go:norace
//go:nocheckptr
func alignHead(dst, src unsafe.Pointer, n uintptr) (uintptr, bool) {
	if (uintptr(dst)^uintptr(src))&(wordSize-1) != 0 {
		return 0, false
	}
	var i uintptr
	for ; i < n && (uintptr(src)+i)&(wordSize-1) != 0; i++ {
		*(*byte)(unsafe.Add(dst, i)) = *(*byte)(unsafe.Add(src, i))
	}
	return i, true
}

// An aligned word never straddles a page, so a word load or store faults at
// its first byte.
//
//go:norace
//go:nocheckptr
func moveWords(dst, src unsafe.Pointer, n uintptr) {
	i, aligned := alignHead(dst, src, n)
	if !aligned {
		moveBytes(dst, src, n)
		return
	}
	for ; n-i >= wordSize; i += wordSize {
		*(*uintptr)(unsafe.Add(dst, i)) = *(*uintptr)(unsafe.Add(src, i))
	}
	moveBytes(unsafe.Add(dst, i), unsafe.Add(src, i), n-i)
}

//go:norace
//go:nocheckptr
func moveUnrolled(dst, src unsafe.Pointer, n uintptr) {
	i, aligned := alignHead(dst, src, n)
	if !aligned {
		moveBytes(dst, src, n)
		return
	}
	// Each store completes before the next load is issued.
	for ; n-i >= 4*wordSize; i += 4 * wordSize {
		*(*uintptr)(unsafe.Add(dst, i)) = *(*uintptr)(unsafe.Add(src, i))
		*(*uintptr)(unsafe.Add(dst, i+wordSize)) = *(*uintptr)(unsafe.Add(src, i+wordSize))
		*(*uintptr)(unsafe.Add(dst, i+2*wordSize)) = *(*uintptr)(unsafe.Add(src, i+2*wordSize))
		*(*uintptr)(unsafe.Add(dst, i+3*wordSize)) = *(*uintptr)(unsafe.Add(src, i+3*wordSize))
	}
	moveWords(unsafe.Add(dst, i), unsafe.Add(src, i), n-i)
}
