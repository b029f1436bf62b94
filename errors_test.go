//go:build unix

package checkedmem

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFaultError_Messages(t *testing.T) {
	tests := []struct {
		name      string
		rec       FaultRecord
		sanitized bool
		want      string
	}{
		{
			name: "unmapped read",
			rec:  FaultRecord{Addr: 0xdead0000, Kind: FaultMapError, Access: AccessRead},
			want: "checkedmem: invalid memory read at 0xdead0000 (SIGSEGV: address not mapped)",
		},
		{
			name: "protected write",
			rec:  FaultRecord{Addr: 0x7f0000001000, Kind: FaultAccessError, Access: AccessWrite},
			want: "checkedmem: invalid memory write at 0x7f0000001000 (SIGSEGV: access not permitted)",
		},
		{
			name: "bus error",
			rec:  FaultRecord{Addr: 0x1000, Kind: FaultBusError, Access: AccessRead},
			want: "checkedmem: invalid memory read at 0x1000 (SIGBUS: bus error)",
		},
		{
			name:      "sanitized",
			rec:       FaultRecord{Addr: 0xdead0000, Kind: FaultMapError, Access: AccessWrite},
			sanitized: true,
			want:      "checkedmem: invalid memory write",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &FaultError{Record: tt.rec, sanitized: tt.sanitized}
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, tt.rec.Addr, err.Addr())
		})
	}
}

func TestFaultError_Is(t *testing.T) {
	err := fmt.Errorf("copy guest page: %w", &FaultError{Record: FaultRecord{Addr: 0x2000}})

	assert.ErrorIs(t, err, ErrInvalidAccess)
	assert.NotErrorIs(t, err, ErrOverlap)

	var fe *FaultError
	assert.True(t, errors.As(err, &fe))
	assert.Equal(t, uintptr(0x2000), fe.Addr())
}

func TestFaultKind_Signal(t *testing.T) {
	assert.Equal(t, "SIGSEGV", signalName(FaultMapError))
	assert.Equal(t, "SIGSEGV", signalName(FaultAccessError))
	assert.Equal(t, "SIGSEGV", signalName(FaultUnknown))
	assert.Equal(t, "SIGBUS", signalName(FaultBusError))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "unknown fault", FaultUnknown.String())
	assert.Equal(t, "read", AccessRead.String())
	assert.Equal(t, "write", AccessWrite.String())
	assert.Equal(t, "access", Access(0).String())
}
