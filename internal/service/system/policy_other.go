//go:build !windows

package system

import (
	"fmt"
	"runtime"
)

func enableDeveloperMode() error {
	return fmt.Errorf("developer mode on %s: %w", runtime.GOOS, ErrUnsupportedOS)
}
