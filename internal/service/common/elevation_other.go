//go:build !windows

//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import "os"

// isElevated reports whether the process runs as root.
func isElevated() bool {
	return os.Geteuid() == 0
}
