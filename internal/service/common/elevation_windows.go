//go:build windows

//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import "golang.org/x/sys/windows"

// isElevated reports whether the process token is elevated (run as administrator).
func isElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
