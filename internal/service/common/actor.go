//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"
)

// Actor describes who runs the bootstrapper.
type Actor struct {
	// Hostname is the machine name.
	Hostname string
	// Username is the account the process runs as.
	Username string
	// IsElevated reports whether the process holds administrative privilege.
	IsElevated bool
}

// DetectActor gathers host, user and privilege information for the current process.
func DetectActor() (*Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &Actor{
		Hostname:   hostname,
		Username:   currentUser.Username,
		IsElevated: isElevated(),
	}, nil
}
