package provision

import "fmt"

// RuntimeState is a state of the runtime install state machine.
type RuntimeState int

// Runtime install states.
const (
	// StateNotNeeded: the runtime was already present. Terminal.
	StateNotNeeded RuntimeState = iota
	// StateOfflineInstall: installing the staged bundle.
	StateOfflineInstall
	// StatePrimaryRemoteInstall: installing from the primary endpoint.
	StatePrimaryRemoteInstall
	// StateFallbackRemoteInstall: installing from the secondary endpoint.
	StateFallbackRemoteInstall
	// StateInstalled: an install attempt succeeded. Terminal.
	StateInstalled
	// StateFailed: no source left to try. Terminal.
	StateFailed
)

// String implements fmt.Stringer.
func (s RuntimeState) String() string {
	switch s {
	case StateNotNeeded:
		return "not-needed"
	case StateOfflineInstall:
		return "offline-install"
	case StatePrimaryRemoteInstall:
		return "primary-remote-install"
	case StateFallbackRemoteInstall:
		return "fallback-remote-install"
	case StateInstalled:
		return "installed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no transition leaves s.
func (s RuntimeState) Terminal() bool {
	return s == StateNotNeeded || s == StateInstalled || s == StateFailed
}

// BatchReport collects the outcome of every identifier in a package list.
type BatchReport struct {
	// Succeeded lists identifiers installed successfully, in list order.
	Succeeded []string
	// Failed lists identifiers whose install failed, in list order.
	Failed []string
}

// Attempted returns the number of identifiers processed.
func (r *BatchReport) Attempted() int {
	return len(r.Succeeded) + len(r.Failed)
}
