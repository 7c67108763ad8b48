//go:build windows

package hardlink

// Count is not implemented on Windows; callers treat ErrUnsupported as
// "no links" and skip the warning.
func Count(path string) (uint64, error) {
	return 0, ErrUnsupported
}
