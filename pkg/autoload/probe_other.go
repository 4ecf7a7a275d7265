//go:build !unix

package autoload

import "os"

// Readable reports whether path exists and is not write-only for its owner.
func Readable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0400 != 0
}
