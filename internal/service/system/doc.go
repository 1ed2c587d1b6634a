// Package system wraps the host facilities a bootstrap run touches outside the
// package store: the persisted search path, the developer unlock policy and
// running processes.
//
// Registry-backed pieces only work on Windows; elsewhere they return
// ErrUnsupportedOS or fall back to the process environment.
package system
