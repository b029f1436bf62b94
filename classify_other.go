//go:build unix && !linux

package checkedmem

// classifyFault cannot inspect the address space without procfs.
func classifyFault(addr uintptr, access Access) FaultKind {
	return FaultUnknown
}
