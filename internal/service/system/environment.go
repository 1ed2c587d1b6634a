package system

import (
	"context"
	"os"
	"strings"
)

// Environment reads the search path as persisted for new processes.
type Environment struct{}

// SearchPath returns the machine-scope and user-scope search paths joined in
// that order. The process environment is left untouched.
func (Environment) SearchPath(_ context.Context) (string, error) {
	machine, user, err := persistedSearchPath()
	if err != nil {
		return "", err
	}

	return JoinSearchPath(machine, user), nil
}

// ProcessSearchPath returns the search path of the running process.
func ProcessSearchPath() string {
	return os.Getenv("PATH")
}

// JoinSearchPath concatenates path lists with the platform separator, skipping empty ones.
func JoinSearchPath(lists ...string) string {
	separator := string(os.PathListSeparator)
	parts := make([]string, 0, len(lists))

	for _, list := range lists {
		list = strings.Trim(list, separator)
		if list != "" {
			parts = append(parts, list)
		}
	}

	return strings.Join(parts, separator)
}
