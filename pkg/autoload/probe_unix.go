//go:build unix

package autoload

import "golang.org/x/sys/unix"

// Readable reports whether path exists and the process may read it. It
// uses access(2) and does not open the file.
func Readable(path string) bool {
	return unix.Access(path, unix.R_OK) == nil
}
