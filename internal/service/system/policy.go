package system

import "context"

// Policy toggles OS configuration flags that ease package installation.
type Policy struct{}

// EnableDeveloperMode sets the app-model unlock flag that allows installing
// packages without a developer license.
func (Policy) EnableDeveloperMode(_ context.Context) error {
	return enableDeveloperMode()
}
