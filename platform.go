//go:build unix

package checkedmem

// Supported returns true if checked memory access is available.
func Supported() (bool, error) {
	if pageSize() == 0 {
		return false, ErrUnsupported
	}
	return true, nil
}
