//go:build unix

package checkedmem

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopy_Accessible(t *testing.T) {
	for _, n := range []int{1, 7, 8, 9, 31, 63, 64, 65, 1000, 4096} {
		src := make([]byte, n+8)
		for i := range src {
			src[i] = pattern(i)
		}
		for _, off := range []int{0, 1, 3, 8} {
			if off+n > len(src) {
				continue
			}
			dst := make([]byte, n)
			err := Copy(unsafe.Pointer(&dst[0]), unsafe.Pointer(&src[off]), uintptr(n))
			require.NoError(t, err, "n=%d off=%d", n, off)
			assert.Equal(t, src[off:off+n], dst, "n=%d off=%d", n, off)
		}
	}
}

func TestCopy_UnmappedPage(t *testing.T) {
	src := guarded(t, 0, modeUnmap)
	dst := make([]byte, 64)

	err := CopyFrom(dst, src)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAccess)

	var fe *FaultError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, uintptr(src), fe.Record.Addr)
	assert.Equal(t, AccessRead, fe.Record.Access)
	if runtime.GOOS == "linux" {
		assert.Equal(t, FaultMapError, fe.Record.Kind)
	}
}

func TestCopy_PartialThenUnmapped(t *testing.T) {
	src := guarded(t, 32, modeUnmap)
	dst := filled(64, 0xAA)

	err := CopyFrom(dst, src)
	var fe *FaultError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, uintptr(src)+32, fe.Record.Addr)

	// Everything before the boundary arrived, nothing after it was written.
	assert.Equal(t, patternAt(32), dst[:32])
	assert.Equal(t, filled(32, 0xAA), dst[32:])
}

func TestCopy_ProtectedPage(t *testing.T) {
	src := guarded(t, 16, modeProtect)
	dst := make([]byte, 64)

	err := CopyFrom(dst, src)
	var fe *FaultError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, uintptr(src)+16, fe.Record.Addr)
	if runtime.GOOS == "linux" {
		assert.Equal(t, FaultAccessError, fe.Record.Kind)
	}
}

func TestCopy_ZeroLength(t *testing.T) {
	src := guarded(t, 0, modeUnmap)
	dst := make([]byte, 1)

	assert.NoError(t, Copy(unsafe.Pointer(&dst[0]), src, 0))
	assert.NoError(t, Copy(unsafe.Pointer(&dst[0]), nil, 0))
	assert.NoError(t, CopyFrom(nil, src))
}

func TestCopy_ZeroPage(t *testing.T) {
	dst := make([]byte, 8)
	err := Copy(unsafe.Pointer(&dst[0]), nil, 8)

	var fe *FaultError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, uintptr(0), fe.Record.Addr)
	assert.Equal(t, FaultMapError, fe.Record.Kind)
}

func TestCopy_ReadOnlyDestination(t *testing.T) {
	dst := readOnly(t)
	src := []byte("checked write")

	err := CopyTo(dst, src)
	var fe *FaultError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, uintptr(dst), fe.Record.Addr)
	assert.Equal(t, AccessWrite, fe.Record.Access)
	if runtime.GOOS == "linux" {
		assert.Equal(t, FaultAccessError, fe.Record.Kind)
	}
}

func TestCopy_Overlap(t *testing.T) {
	buf := make([]byte, 64)
	base := unsafe.Pointer(&buf[0])

	assert.ErrorIs(t, Copy(base, unsafe.Add(base, 16), 32), ErrOverlap)
	assert.ErrorIs(t, Copy(unsafe.Add(base, 16), base, 32), ErrOverlap)
	assert.ErrorIs(t, Copy(base, base, 1), ErrOverlap)
	assert.NoError(t, Copy(base, unsafe.Add(base, 32), 32))

	err := Copy(base, unsafe.Add(base, 16), 32)
	assert.EqualError(t, err, fmt.Sprintf("checkedmem: source and destination overlap at %#x", uintptr(base)+16))
	err = Copy(unsafe.Add(base, 8), base, 32)
	assert.EqualError(t, err, fmt.Sprintf("checkedmem: source and destination overlap at %#x", uintptr(base)+8))
}

func TestCopy_Range(t *testing.T) {
	assert.ErrorIs(t, checkRanges(0x10000, ^uintptr(0)-8, 64), ErrRange)
	assert.ErrorIs(t, checkRanges(^uintptr(0)-8, 0x10000, 64), ErrRange)
	assert.NoError(t, checkRanges(0x10000, 0x20000, 64))
}

func TestCopy_NotInstalled(t *testing.T) {
	prev := current.Swap(nil)
	defer current.Store(prev)

	dst := make([]byte, 8)
	src := make([]byte, 8)
	err := CopyFrom(dst, unsafe.Pointer(&src[0]))
	assert.ErrorIs(t, err, ErrNotInstalled)
	assert.ErrorIs(t, Probe(unsafe.Pointer(&src[0]), 8, AccessRead), ErrNotInstalled)
}

func TestCopy_RestoresPanicOnFault(t *testing.T) {
	src := guarded(t, 0, modeUnmap)
	dst := make([]byte, 8)
	require.Error(t, CopyFrom(dst, src))

	prev := debug.SetPanicOnFault(false)
	assert.False(t, prev)
}

func TestCopy_FaultBoundaries(t *testing.T) {
	for _, k := range []uintptr{0, 1, 7, 8, 9, 31, 32, 33, 100, 4095} {
		src := guarded(t, k, modeUnmap)
		dst := filled(int(k)+64, 0x5C)

		err := CopyFrom(dst, src)
		var fe *FaultError
		require.True(t, errors.As(err, &fe), "k=%d", k)
		assert.Equal(t, uintptr(src)+k, fe.Record.Addr, "k=%d", k)
		assert.Equal(t, patternAt(k), dst[:k], "k=%d", k)
		assert.Equal(t, filled(64, 0x5C), dst[k:], "k=%d", k)
	}
}

func TestReadWrite(t *testing.T) {
	t.Run("roundtrip", func(t *testing.T) {
		buf := make([]uint64, 2)
		p := unsafe.Pointer(&buf[1])

		require.NoError(t, Write(p, uint64(0xFEEDFACECAFEBEEF)))
		got, err := Read[uint64](p)
		require.NoError(t, err)
		assert.Equal(t, uint64(0xFEEDFACECAFEBEEF), got)
	})

	t.Run("read fault", func(t *testing.T) {
		src := guarded(t, 4, modeUnmap)
		got, err := Read[uint64](src)
		assert.ErrorIs(t, err, ErrInvalidAccess)
		assert.Zero(t, got)
	})

	t.Run("write fault", func(t *testing.T) {
		dst := readOnly(t)
		err := Write(dst, uint32(0x42))
		var fe *FaultError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, AccessWrite, fe.Record.Access)
	})
}
