//go:build unix

package checkedmem

import (
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"
)

// numSignals bounds the classic signal numbers; realtime signals are never
// faults.
const numSignals = 32

// handlerChain holds, per signal number, the handler to forward unclaimed
// faults to. A nil entry defers to the Go runtime.
type handlerChain [numSignals]Handler

func (c *handlerChain) lookup(sig syscall.Signal) Handler {
	if sig <= 0 || sig >= numSignals {
		return nil
	}
	return c[sig]
}

func (c *handlerChain) count() int {
	var n int
	for _, h := range c {
		if h != nil {
			n++
		}
	}
	return n
}

// dispatcher is immutable once published by Install.
type dispatcher struct {
	chain     handlerChain
	mover     Mover
	moverName string
	classify  func(addr uintptr, access Access) FaultKind
	logger    *slog.Logger
	sanitize  bool
}

var (
	installMu sync.Mutex // serializes installers; never taken on the fault path
	current   atomic.Pointer[dispatcher]
)

// Install sets up fault interception for checked operations. It must be
// called before the first checked operation.
//
// Every handler recorded by an earlier Install is carried over, and
// WithHandler options replace individual entries, so calling Install again
// only changes what the options name.
func Install(opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	installMu.Lock()
	defer installMu.Unlock()

	d, err := newDispatcher(current.Load(), o)
	if err != nil {
		return err
	}
	current.Store(d)

	recordInstall()
	d.logger.Debug("checkedmem: fault interception installed",
		"mover", d.moverName,
		"forward_handlers", d.chain.count(),
		"sanitize", d.sanitize)
	return nil
}

// Guard runs fn on the calling goroutine with memory faults turned into
// panics. A fault raised by fn outside any checked operation is forwarded to
// the handler registered for its signal with WithHandler and then raised
// again, so fn never returns normally after such a fault. Any other panic is
// forwarded as SIGABRT. Checked operations inside fn behave as usual.
//
// Before Install, Guard only restores the panic.
func Guard(fn func()) {
	prev := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(prev)
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		if d := current.Load(); d != nil {
			d.onFault(&recoveryContext{}, v)
		}
		panic(v)
	}()
	fn()
}

// Installed reports whether Install has completed.
func Installed() bool {
	return current.Load() != nil
}

func newDispatcher(prev *dispatcher, o options) (*dispatcher, error) {
	var cfg Config
	if o.config != nil {
		cfg = *o.config
	} else {
		var err error
		if cfg, err = LoadConfig(); err != nil {
			return nil, err
		}
	}

	d := &dispatcher{
		mover:     o.mover,
		moverName: "custom",
		classify:  o.classify,
		logger:    o.logger,
		sanitize:  cfg.Production(),
	}
	if d.mover == nil {
		m, err := LookupMover(cfg.Mover)
		if err != nil {
			return nil, err
		}
		d.mover, d.moverName = m, cfg.Mover
	}
	if d.classify == nil {
		d.classify = classifyFault
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}

	for sig := syscall.Signal(1); sig < numSignals; sig++ {
		if prev != nil {
			d.chain[sig] = prev.chain[sig]
		}
		if h, ok := o.handlers[sig]; ok {
			d.chain[sig] = h
		}
	}
	return d, nil
}

// onFault handles a panic raised inside the armed window of rc. It returns
// only when the fault is claimed: the record has been written to the sink
// and rc is disarmed, and the deferred frame that called onFault resumes the
// checked operation with a failure. Every other panic is forwarded.
func (d *dispatcher) onFault(rc *recoveryContext, v any) FaultRecord {
	addr, ok := faultAddress(v)
	if !ok {
		// Not a memory fault; a Go panic is an abort-class event.
		d.forward(FaultInfo{Signal: unix.SIGABRT, Value: v})
	}

	p := rc.point.Load()
	access := AccessRead
	if p != nil {
		access = p.access(addr)
	}
	kind := d.classify(addr, access)
	// Ranges starting in the zero page never arm, so a zero-page fault inside
	// an armed window is a bug in the mover, not a fault on the ranges.
	if p == nil || addr < minLegalAddr {
		d.forward(FaultInfo{Signal: kind.Signal(), Addr: addr, Value: v})
	}

	rec := FaultRecord{Addr: addr, Kind: kind, Access: access}
	rc.sink.Load().put(rec)
	rc.disarm()

	d.logger.Debug("checkedmem: fault recovered",
		"addr", fmt.Sprintf("%#x", addr),
		"kind", kind.String(),
		"access", access.String())
	return rec
}

// forward hands an unclaimed fault to the handler chain and re-raises it.
// It never returns.
func (d *dispatcher) forward(info FaultInfo) {
	recordForwarded()
	d.logger.Warn("checkedmem: forwarding unclaimed fault",
		"signal", unix.SignalName(info.Signal),
		"addr", fmt.Sprintf("%#x", info.Addr))

	if h := d.chain.lookup(info.Signal); h != nil {
		h.HandleFault(info)
	}
	panic(info.Value)
}

// faultAddress reports whether v is the runtime's panic for a memory fault
// and, when the runtime recorded it, the faulting address.
func faultAddress(v any) (uintptr, bool) {
	re, ok := v.(runtime.Error)
	if !ok {
		return 0, false
	}
	if ae, ok := re.(interface{ Addr() uintptr }); ok {
		return ae.Addr(), true
	}
	// Zero-page faults are reported without an address.
	if strings.Contains(re.Error(), "invalid memory address") {
		return 0, true
	}
	return 0, false
}
