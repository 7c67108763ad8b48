// Package hardlink answers link-count questions the organize pipeline asks
// before renaming: a file with additional hard links is usually still being
// seeded or shared, so renames warn instead of silently splitting the link.
package hardlink

import (
	"errors"
	"fmt"
	"os"
)

// ErrUnsupported is returned on platforms without link-count metadata.
var ErrUnsupported = errors.New("hardlink detection not supported on this platform")

// IsLinked reports whether path has hard links besides itself.
func IsLinked(path string) (bool, error) {
	count, err := Count(path)
	if err != nil {
		return false, err
	}
	return count > 1, nil
}

// SameFile reports whether the two paths refer to the same underlying file,
// which on Unix means the same device and inode.
func SameFile(a, b string) (bool, error) {
	fa, err := os.Lstat(a)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", a, err)
	}
	fb, err := os.Lstat(b)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", b, err)
	}
	return os.SameFile(fa, fb), nil
}
