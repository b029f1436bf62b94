//go:build checkedmem_debug

package checkedmem

// invariantChecks enables recovery binding assertions.
const invariantChecks = true
