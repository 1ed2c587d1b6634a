// Package appx talks to the Windows AppX package store.
//
// The Repository interface is the only view the bootstrapper has of the OS
// package store: query whether a package is installed for any user, install a
// package file, and run arbitrary commands. PowerShellRepository implements it
// with the Appx PowerShell module.
package appx
