package checkedmem

import (
	"log/slog"
	"syscall"
)

// FaultInfo describes a fault the dispatcher did not claim.
type FaultInfo struct {
	Signal syscall.Signal
	// Addr is the faulting address, zero when the fault carried none.
	Addr uintptr
	// Value is the panic value the Go runtime raised for the fault.
	Value any
}

// Handler receives faults forwarded by the dispatcher. If HandleFault
// returns, the original panic is raised again.
type Handler interface {
	HandleFault(info FaultInfo)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(info FaultInfo)

func (f HandlerFunc) HandleFault(info FaultInfo) { f(info) }

// Option configures Install.
type Option func(*options)

type options struct {
	config   *Config
	mover    Mover
	logger   *slog.Logger
	handlers map[syscall.Signal]Handler
	classify func(addr uintptr, access Access) FaultKind
}

// WithConfig uses cfg instead of reading the environment.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.config = &cfg }
}

// WithMover overrides the mover selected by Config.Mover.
func WithMover(m Mover) Option {
	return func(o *options) { o.mover = m }
}

// WithLogger sets the logger used by the dispatcher.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHandler records h as the handler for sig in the handler chain,
// replacing whatever an earlier Install recorded. A nil h restores the Go
// runtime's own behaviour for sig.
func WithHandler(sig syscall.Signal, h Handler) Option {
	return func(o *options) {
		if o.handlers == nil {
			o.handlers = make(map[syscall.Signal]Handler)
		}
		o.handlers[sig] = h
	}
}
