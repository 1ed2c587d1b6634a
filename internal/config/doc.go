// Package config defines the bootstrap settings and helpers to load, validate
// and save them in YAML format.
//
// A missing settings file is not an error: the well-known endpoints, offline
// file names and package names compiled into the package are used instead.
package config
