//go:build windows

package system

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const (
	appModelUnlockKey = `SOFTWARE\Microsoft\Windows\CurrentVersion\AppModelUnlock`
	devLicenseValue   = "AllowDevelopmentWithoutDevLicense"
)

func enableDeveloperMode() error {
	key, _, err := registry.CreateKey(registry.LOCAL_MACHINE, appModelUnlockKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open %s: %w", appModelUnlockKey, err)
	}

	defer func() {
		_ = key.Close()
	}()

	if err = key.SetDWordValue(devLicenseValue, 1); err != nil {
		return fmt.Errorf("set %s: %w", devLicenseValue, err)
	}

	return nil
}
