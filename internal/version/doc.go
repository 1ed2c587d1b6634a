// Package version exposes build metadata for winget-bootstrap.
//
// Version, Commit and BuildTime are injected through ldflags. Full is printed by
// the version subcommand and UserAgent identifies the tool to download endpoints.
package version
