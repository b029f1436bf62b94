//go:build !checkedmem_debug

package checkedmem

const invariantChecks = false
