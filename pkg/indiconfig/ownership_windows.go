//go:build windows

package indiconfig

import "io/fs"

// fileOwnerUID has no POSIX uid concept on Windows; the root-ownership
// guard is a no-op there (INDI drivers are not deployed on Windows in
// practice, but the build must not break).
func fileOwnerUID(info fs.FileInfo) (int, error) {
	return -1, nil
}
