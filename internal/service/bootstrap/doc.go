// Package bootstrap installs the Windows Package Manager runtime on a bare host.
//
// A run is a fixed sequence of idempotent steps: check privilege, install the
// shared-framework dependencies, install the runtime bundle through an explicit
// state machine (offline file, primary endpoint, fallback endpoint), verify the
// result with a refreshed search path and finally install the packages listed in
// the optional package list, tolerating individual failures.
package bootstrap
