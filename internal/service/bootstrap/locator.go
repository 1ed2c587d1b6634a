package bootstrap

import (
	"os"
	"path/filepath"
)

const (
	// RuntimeCommand is the canonical command name of the runtime.
	RuntimeCommand = "winget.exe"

	// runtimePackageDirPattern matches versioned system-wide install directories.
	runtimePackageDirPattern = "Microsoft.DesktopAppInstaller_*_x64__8wekyb3d8bbwe"
)

// Locator finds an installed runtime. It only reads the filesystem.
type Locator struct {
	// UserAliasDir holds the per-user app execution alias; empty skips the probe.
	UserAliasDir string
	// SystemPattern is a glob for the runtime inside versioned install directories; empty skips the probe.
	SystemPattern string
	// CommandName is the executable looked up in the alias directory and on the search path.
	CommandName string
}

// DefaultLocator probes the standard Windows locations derived from LOCALAPPDATA and ProgramFiles.
func DefaultLocator() *Locator {
	l := &Locator{CommandName: RuntimeCommand}

	if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
		l.UserAliasDir = filepath.Join(localAppData, "Microsoft", "WindowsApps")
	}

	if programFiles := os.Getenv("ProgramFiles"); programFiles != "" {
		l.SystemPattern = filepath.Join(programFiles, "WindowsApps", runtimePackageDirPattern, RuntimeCommand)
	}

	return l
}

// Locate probes, in order, the user alias directory, the versioned system-wide
// install directories and every directory of searchPath. It returns the first
// existing candidate.
func (l *Locator) Locate(searchPath string) (string, bool) {
	if l.UserAliasDir != "" {
		candidate := filepath.Join(l.UserAliasDir, l.CommandName)
		if exists(candidate) {
			return candidate, true
		}
	}

	if l.SystemPattern != "" {
		// Glob returns matches in lexical order, which keeps the result deterministic.
		matches, _ := filepath.Glob(l.SystemPattern)
		for _, candidate := range matches {
			if exists(candidate) {
				return candidate, true
			}
		}
	}

	for _, dir := range filepath.SplitList(searchPath) {
		if dir == "" {
			continue
		}

		candidate := filepath.Join(dir, l.CommandName)
		if exists(candidate) {
			return candidate, true
		}
	}

	return "", false
}

// exists reports whether path names something other than a directory.
// Lstat is used because app execution aliases are reparse points that Stat cannot follow.
func exists(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}

	return !info.IsDir()
}
