//go:build unix

package checkedmem

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var moverNames = []string{"byte", "word", "unrolled"}

func TestLookupMover(t *testing.T) {
	for _, name := range moverNames {
		m, err := LookupMover(name)
		require.NoError(t, err)
		assert.NotNil(t, m)
	}

	_, err := LookupMover("simd")
	assert.ErrorIs(t, err, ErrUnknownMover)
	assert.Contains(t, err.Error(), `"simd"`)
}

func TestMovers_Copy(t *testing.T) {
	src := make([]byte, 256)
	for i := range src {
		src[i] = pattern(i)
	}

	for _, name := range moverNames {
		m, err := LookupMover(name)
		require.NoError(t, err)
		t.Run(name, func(t *testing.T) {
			for _, n := range []int{0, 1, 3, 8, 15, 32, 33, 100, 200} {
				for srcOff := 0; srcOff < 8; srcOff++ {
					for _, dstOff := range []int{0, srcOff, 5} {
						dst := filled(256, 0xEE)
						m.Move(unsafe.Pointer(&dst[dstOff]), unsafe.Pointer(&src[srcOff]), uintptr(n))

						assert.Equal(t, src[srcOff:srcOff+n], dst[dstOff:dstOff+n],
							"n=%d src+%d dst+%d", n, srcOff, dstOff)
						assert.Equal(t, filled(dstOff, 0xEE), dst[:dstOff])
						assert.Equal(t, filled(256-dstOff-n, 0xEE), dst[dstOff+n:])
					}
				}
			}
		})
	}
}

func TestMovers_StopAtFault(t *testing.T) {
	for _, name := range moverNames {
		m, err := LookupMover(name)
		require.NoError(t, err)
		d := testDispatcher(t, WithMover(m))

		t.Run(name, func(t *testing.T) {
			for _, k := range []uintptr{0, 1, 5, 8, 13, 32, 40, 64, 127} {
				src := guarded(t, k, modeUnmap)
				// Offsetting dst by the same amount keeps the pair mutually
				// aligned so the word paths are taken.
				buf := filled(int(k)+80, 0x77)
				off := int(uintptr(src) % wordSize)
				dst := buf[off:]

				err := d.copy(unsafe.Pointer(&dst[0]), src, k+64, nil)
				var fe *FaultError
				require.True(t, errors.As(err, &fe), "k=%d", k)
				assert.Equal(t, uintptr(src)+k, fe.Record.Addr, "k=%d", k)
				assert.Equal(t, patternAt(k), dst[:k], "k=%d", k)
				assert.Equal(t, filled(len(dst)-int(k), 0x77), dst[k:], "k=%d", k)
			}
		})
	}
}

func TestMovers_StopAtWriteFault(t *testing.T) {
	for _, name := range moverNames {
		m, err := LookupMover(name)
		require.NoError(t, err)
		d := testDispatcher(t, WithMover(m))

		t.Run(name, func(t *testing.T) {
			dst := readOnly(t)
			src := make([]byte, 64)
			err := d.copy(dst, unsafe.Pointer(&src[0]), 64, nil)
			var fe *FaultError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, uintptr(dst), fe.Record.Addr)
			assert.Equal(t, AccessWrite, fe.Record.Access)
		})
	}
}

func TestMoverFunc(t *testing.T) {
	var calls int
	m := MoverFunc(func(dst, src unsafe.Pointer, n uintptr) {
		calls++
		moveBytes(dst, src, n)
	})
	d := testDispatcher(t, WithMover(m))
	assert.Equal(t, "custom", d.moverName)

	src := []byte("abc")
	dst := make([]byte, 3)
	require.NoError(t, d.copy(unsafe.Pointer(&dst[0]), unsafe.Pointer(&src[0]), 3, nil))
	assert.Equal(t, 1, calls)
	assert.Equal(t, src, dst)
}
