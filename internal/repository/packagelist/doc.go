// Package packagelist reads the list of package identifiers to install once the
// runtime works: one identifier per line, blank lines and #-comments ignored.
package packagelist
