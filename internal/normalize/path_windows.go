//go:build windows

package normalize

import (
	"fmt"
	"strings"
)

const reservedChars = `<>"|?*`

// validatePath rejects characters Win32 paths cannot contain. A colon is
// only legal as the drive separator.
func validatePath(path string) error {
	for i, r := range path {
		switch {
		case r < 0x20:
			return fmt.Errorf("illegal char %q at index %d", r, i)
		case strings.ContainsRune(reservedChars, r):
			return fmt.Errorf("illegal char %q at index %d", r, i)
		case r == ':' && !(i == 1 && isDriveLetter(path[0])):
			return fmt.Errorf("illegal char %q at index %d", r, i)
		}
	}
	return nil
}

func isDriveLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
