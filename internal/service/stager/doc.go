// Package stager prepares an offline directory for hosts without internet access.
//
// It downloads the shared-framework dependencies and the runtime bundle,
// places each file atomically and records SHA-512 checksums in a manifest
// that offline installs verify against.
package stager
