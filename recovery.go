package checkedmem

import (
	"sync"
	"sync/atomic"
)

// recoveryPoint identifies one armed window. The deferred recovery frame of
// the checked operation that armed it is where control resumes on a fault.
type recoveryPoint struct {
	dst uintptr
	src uintptr
	n   uintptr
}

// access reports which side of the transfer addr belongs to.
func (p *recoveryPoint) access(addr uintptr) Access {
	if addr >= p.dst && addr-p.dst < p.n {
		return AccessWrite
	}
	return AccessRead
}

// recoveryContext is the binding between a goroutine's in-flight checked
// operation and the fault dispatcher. A context is checked out of the pool by
// exactly one goroutine for the duration of one operation.
//
// point and sink are set together and cleared together. arm publishes the
// sink before the point and disarm retracts the point before the sink, so a
// dispatcher that observes a point always observes its sink.
type recoveryContext struct {
	point atomic.Pointer[recoveryPoint]
	sink  atomic.Pointer[Sink]

	frame    recoveryPoint
	local    Sink
	localBuf [1]FaultRecord
}

var contexts = sync.Pool{
	New: func() any { return newRecoveryContext() },
}

func newRecoveryContext() *recoveryContext {
	rc := &recoveryContext{}
	rc.local.records = rc.localBuf[:]
	return rc
}

func getContext() *recoveryContext {
	rc := contexts.Get().(*recoveryContext)
	rc.local.Reset()
	rc.checkInvariant()
	return rc
}

func putContext(rc *recoveryContext) {
	// A context that is still armed belongs to a frame that is going away.
	if rc.armed() {
		rc.disarm()
	}
	contexts.Put(rc)
}

// arm binds the context to an armed window. Nested windows on one context
// are not supported: a second arm clobbers the first.
func (rc *recoveryContext) arm(p recoveryPoint, sink *Sink) {
	if invariantChecks && rc.armed() {
		panic("checkedmem: recovery context armed twice")
	}
	rc.frame = p
	rc.sink.Store(sink)
	rc.point.Store(&rc.frame)
	rc.checkInvariant()
}

func (rc *recoveryContext) disarm() {
	rc.point.Store(nil)
	rc.sink.Store(nil)
	rc.checkInvariant()
}

func (rc *recoveryContext) armed() bool {
	return rc.point.Load() != nil
}

func (rc *recoveryContext) checkInvariant() {
	if !invariantChecks {
		return
	}
	if (rc.point.Load() == nil) != (rc.sink.Load() == nil) {
		panic("checkedmem: recovery binding half armed")
	}
}
