// Package common holds helpers shared by several services.
//
// It provides the artifact download client, which carries an explicit TLS floor
// instead of mutating process-wide settings, and DetectActor, which reports the
// current host, user and whether the process is elevated.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
