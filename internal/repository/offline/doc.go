// Package offline manages the directory of pre-staged artifacts used by
// offline runs.
//
// Artifacts are recognized by exact file name. An optional manifest.yaml,
// written when the directory is staged, records SHA-512 checksums; when it is
// present, staged files are verified against it before they are installed.
package offline
