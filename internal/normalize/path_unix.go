//go:build !windows

package normalize

import (
	"errors"
	"strings"
)

// validatePath rejects strings the host cannot use as a path. POSIX paths
// may hold any byte except NUL.
func validatePath(path string) error {
	if strings.IndexByte(path, 0) >= 0 {
		return errors.New("nul character in path")
	}
	return nil
}
