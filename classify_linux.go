package checkedmem

import "github.com/prometheus/procfs"

// classifyFault decides what kind of fault an access to addr raised by
// looking the address up in /proc/self/maps. The runtime does not say
// whether SIGSEGV or SIGBUS was delivered, but the mapping that covers the
// address does: none means SEGV_MAPERR, one without the needed permission
// means SEGV_ACCERR, and one that permits the access can only have faulted
// for lack of backing store, which is SIGBUS.
func classifyFault(addr uintptr, access Access) FaultKind {
	self, err := procfs.Self()
	if err != nil {
		return FaultUnknown
	}
	maps, err := self.ProcMaps()
	if err != nil {
		return FaultUnknown
	}
	for _, m := range maps {
		if addr < m.StartAddr || addr >= m.EndAddr {
			continue
		}
		if m.Perms == nil {
			return FaultUnknown
		}
		if (access == AccessWrite && !m.Perms.Write) || (access != AccessWrite && !m.Perms.Read) {
			return FaultAccessError
		}
		return FaultBusError
	}
	return FaultMapError
}
