//go:build !windows

package indiconfig

import (
	"fmt"
	"io/fs"
	"syscall"
)

// fileOwnerUID extracts the owning UID from a os.Stat result on
// POSIX systems, where ~/.indi actually lives. Returns -1 when the
// platform's Sys() value isn't a syscall.Stat_t (never true on the
// unix build targets this file compiles under, but kept defensive
// since Sys() is documented as possibly nil).
func fileOwnerUID(info fs.FileInfo) (int, error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return -1, fmt.Errorf("unsupported stat type for %s", info.Name())
	}
	return int(stat.Uid), nil
}
