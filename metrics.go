package checkedmem

import (
	"sync/atomic"
)

// Operation counters for checked memory access
var (
	copyCount      uint64
	bytesCopied    uint64
	faultCount     uint64
	forwardedCount uint64
	installCount   uint64
	probeCount     uint64
)

// Metrics provides access to operation counters
type Metrics struct {
	Copies      uint64 `json:"copies" yaml:"copies"`
	BytesCopied uint64 `json:"bytes_copied" yaml:"bytes_copied"`
	Faults      uint64 `json:"faults" yaml:"faults"`
	Forwarded   uint64 `json:"forwarded" yaml:"forwarded"`
	Installs    uint64 `json:"installs" yaml:"installs"`
	Probes      uint64 `json:"probes" yaml:"probes"`
}

// GetMetrics returns current operation counters
func GetMetrics() Metrics {
	return Metrics{
		Copies:      atomic.LoadUint64(&copyCount),
		BytesCopied: atomic.LoadUint64(&bytesCopied),
		Faults:      atomic.LoadUint64(&faultCount),
		Forwarded:   atomic.LoadUint64(&forwardedCount),
		Installs:    atomic.LoadUint64(&installCount),
		Probes:      atomic.LoadUint64(&probeCount),
	}
}

// ResetMetrics clears all operation counters
func ResetMetrics() {
	atomic.StoreUint64(&copyCount, 0)
	atomic.StoreUint64(&bytesCopied, 0)
	atomic.StoreUint64(&faultCount, 0)
	atomic.StoreUint64(&forwardedCount, 0)
	atomic.StoreUint64(&installCount, 0)
	atomic.StoreUint64(&probeCount, 0)
}

// Internal metric recording functions
func recordCopy(n uintptr) {
	atomic.AddUint64(&copyCount, 1)
	atomic.AddUint64(&bytesCopied, uint64(n))
}

func recordFault() {
	atomic.AddUint64(&faultCount, 1)
}

func recordForwarded() {
	atomic.AddUint64(&forwardedCount, 1)
}

func recordInstall() {
	atomic.AddUint64(&installCount, 1)
}

func recordProbe() {
	atomic.AddUint64(&probeCount, 1)
}
