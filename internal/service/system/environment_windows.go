//go:build windows

package system

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const (
	machineEnvironmentKey = `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`
	userEnvironmentKey    = `Environment`
	pathValueName         = "Path"
)

// persistedSearchPath reads Path from the machine and user environment keys.
func persistedSearchPath() (string, string, error) {
	machine, err := readExpandedString(registry.LOCAL_MACHINE, machineEnvironmentKey, pathValueName)
	if err != nil {
		return "", "", fmt.Errorf("read machine search path: %w", err)
	}

	user, err := readExpandedString(registry.CURRENT_USER, userEnvironmentKey, pathValueName)
	if err != nil {
		return "", "", fmt.Errorf("read user search path: %w", err)
	}

	return machine, user, nil
}

// readExpandedString returns the value with %VARIABLES% expanded; a missing value reads as "".
func readExpandedString(root registry.Key, path, name string) (string, error) {
	key, err := registry.OpenKey(root, path, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", nil
		}

		return "", err
	}

	defer func() {
		_ = key.Close()
	}()

	value, valueType, err := key.GetStringValue(name)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", nil
		}

		return "", err
	}

	if valueType != registry.EXPAND_SZ {
		return value, nil
	}

	return registry.ExpandString(value)
}
