//go:build !windows

package hardlink

import (
	"fmt"
	"os"
	"syscall"
)

// Count returns the number of hard links to path.
func Count(path string) (uint64, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}

	stat, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, fmt.Errorf("no link metadata for %s: %w", path, ErrUnsupported)
	}

	return uint64(stat.Nlink), nil
}
