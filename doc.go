// Package checkedmem provides checked memory access: raw copies across a
// boundary that might be invalid, where an invalid read or write comes back
// as an ordinary error carrying the faulting address instead of crashing
// the process.
//
// It is meant for hosts that touch memory they do not fully control, such as
// a sandbox runtime copying to or from guest memory, or a tool probing
// regions that may have been unmapped.
//
// # Basic Usage
//
// Install fault interception once, before the first checked operation:
//
//	if err := checkedmem.Install(); err != nil {
//		log.Fatal("Failed to install fault interception:", err)
//	}
//
// Copy from an address that may not be mapped:
//
//	buf := make([]byte, 64)
//	err := checkedmem.CopyFrom(buf, src)
//	var fe *checkedmem.FaultError
//	if errors.As(err, &fe) {
//		fmt.Printf("fault at 0x%x: %s\n", fe.Record.Addr, fe.Record.Kind)
//	}
//
// Read or write a single value:
//
//	hdr, err := checkedmem.Read[uint64](p)
//	err = checkedmem.Write(p, uint32(0x42))
//
// Keep a history of faults across several copies on one goroutine:
//
//	sink := checkedmem.NewSink(make([]checkedmem.FaultRecord, 16))
//	for _, r := range ranges {
//		_ = checkedmem.CopyWithSink(dst, r.Base, r.Len, sink)
//	}
//	for _, rec := range sink.Records() {
//		fmt.Printf("0x%x %s\n", rec.Addr, rec.Kind)
//	}
//
// # How It Works
//
// A checked operation arms a recovery context for the calling goroutine,
// turns on runtime/debug.SetPanicOnFault, and moves the bytes in forward
// address order. If the mover faults, the Go runtime raises a panic carrying
// the fault address; the operation's deferred recovery frame hands it to the
// dispatcher, which records the fault in the sink, disarms the context and
// lets the operation return a *FaultError. The bytes before the faulting
// address have been copied; nothing at or past it has been touched.
//
// Faults outside checked operations reach the dispatcher only on goroutines
// that run under Guard. Guard forwards each one to the handler registered for
// its signal with WithHandler and then raises it again, so it is never
// swallowed:
//
//	checkedmem.Guard(func() {
//		serveGuest(vm)
//	})
//
// A memory fault inside a mover that is not on either range, such as a nil
// dereference in a custom MoverFunc, is forwarded the same way, and so is any
// other panic, under SIGABRT.
//
// Guest strings can be validated or written without trusting their memory:
//
//	name, err := checkedmem.CheckUTF8(p, n)   // ErrInvalidUTF8 or *FaultError
//	n, err := checkedmem.FillString(dst, size, "reply")
//
// # Restrictions
//
//   - Checked operations must not be nested on one goroutine.
//   - Neither range may contain Go pointers.
//   - Faults are only converted inside checked operations. A fault anywhere
//     else crashes the process as usual, after the handler chain has seen it
//     if the goroutine runs under Guard.
//
// Build with -tags checkedmem_debug to assert that a recovery context is
// never armed twice or left half armed.
//
// # Configuration
//
// Install reads CHECKEDMEM_ENV, CHECKEDMEM_DEBUG, CHECKEDMEM_MOVER and
// CHECKEDMEM_LOG_LEVEL from the environment. In production
// (CHECKEDMEM_ENV=production or CHECKEDMEM_DEBUG=false) fault errors omit
// the address from their message; FaultError.Record still carries it.
//
// # Platform Support
//
// Unix platforms. Fault classification (unmapped, protected, bus error) needs
// /proc and is only precise on Linux. Other platforms return ErrUnsupported.
package checkedmem
