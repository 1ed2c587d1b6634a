//go:build !windows

package system

// persistedSearchPath has no persisted scopes to read outside Windows,
// so the process search path stands in for the machine scope.
func persistedSearchPath() (string, string, error) {
	return ProcessSearchPath(), "", nil
}
