package checkedmem

// FaultKind classifies an invalid memory access.
type FaultKind uint8

const (
	// FaultUnknown is reported when the platform cannot tell fault classes apart.
	FaultUnknown FaultKind = iota
	// FaultMapError means no mapping covers the address (SIGSEGV, SEGV_MAPERR).
	FaultMapError
	// FaultAccessError means the mapping forbids the access (SIGSEGV, SEGV_ACCERR).
	FaultAccessError
	// FaultBusError means the mapping allows the access but its backing store
	// does not exist, e.g. a file-backed page past EOF (SIGBUS).
	FaultBusError
)

func (k FaultKind) String() string {
	switch k {
	case FaultMapError:
		return "address not mapped"
	case FaultAccessError:
		return "access not permitted"
	case FaultBusError:
		return "bus error"
	default:
		return "unknown fault"
	}
}

// Access is the direction of a memory access.
type Access uint8

const (
	// AccessRead is a load from the source range.
	AccessRead Access = iota + 1
	// AccessWrite is a store to the destination range.
	AccessWrite
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return "access"
	}
}

// FaultRecord describes a fault that was attributed to a checked operation.
type FaultRecord struct {
	Addr   uintptr
	Kind   FaultKind
	Access Access
}

// Sink collects fault records into caller-provided storage.
//
// Each fault attributed to a checked operation is written at the current
// position and the position advances, so a sink reused across sequential
// operations on one goroutine accumulates a history of fault addresses. A
// full sink keeps its records and counts the overflow in Dropped.
//
// A Sink must not be shared by goroutines running checked operations
// concurrently.
type Sink struct {
	records []FaultRecord
	pos     int
	dropped uint64
}

// NewSink returns a sink writing into buf.
func NewSink(buf []FaultRecord) *Sink {
	return &Sink{records: buf}
}

func (s *Sink) put(r FaultRecord) {
	if s.pos < len(s.records) {
		s.records[s.pos] = r
		s.pos++
		return
	}
	s.dropped++
}

// Records returns the records written so far, oldest first.
func (s *Sink) Records() []FaultRecord { return s.records[:s.pos] }

// Len returns the number of stored records.
func (s *Sink) Len() int { return s.pos }

// Cap returns the number of records the sink can hold.
func (s *Sink) Cap() int { return len(s.records) }

// Dropped returns how many records did not fit.
func (s *Sink) Dropped() uint64 { return s.dropped }

// Last returns the most recently stored record.
func (s *Sink) Last() (FaultRecord, bool) {
	if s.pos == 0 {
		return FaultRecord{}, false
	}
	return s.records[s.pos-1], true
}

// Reset rewinds the sink to its first slot.
func (s *Sink) Reset() {
	s.pos = 0
	s.dropped = 0
}
