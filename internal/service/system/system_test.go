package system

import (
	"context"
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestJoinSearchPath checks ordering and that empty scopes are skipped.
func TestJoinSearchPath(t *testing.T) {
	t.Parallel()

	sep := string(os.PathListSeparator)

	require.Equal(t, "a"+sep+"b", JoinSearchPath("a", "b"))
	require.Equal(t, "a", JoinSearchPath("a", ""))
	require.Equal(t, "b", JoinSearchPath("", "b"+sep))
	require.Empty(t, JoinSearchPath("", ""))
}

// TestEnvironmentSearchPath_IsStable verifies reading does not mutate the process environment.
func TestEnvironmentSearchPath_IsStable(t *testing.T) {
	t.Parallel()

	before := ProcessSearchPath()

	first, err := Environment{}.SearchPath(context.Background())
	require.NoError(t, err)

	second, err := Environment{}.SearchPath(context.Background())
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, before, ProcessSearchPath())

	if runtime.GOOS != "windows" {
		require.Equal(t, strings.Trim(before, string(os.PathListSeparator)), first)
	}
}

// TestPolicy_UnsupportedOutsideWindows checks the non-Windows policy stub.
func TestPolicy_UnsupportedOutsideWindows(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("writes HKLM on Windows")
	}

	require.ErrorIs(t, Policy{}.EnableDeveloperMode(context.Background()), ErrUnsupportedOS)
}

// TestProcesses_TerminateUnknownName kills nothing when no process matches.
func TestProcesses_TerminateUnknownName(t *testing.T) {
	t.Parallel()

	killed, err := Processes{}.Terminate(context.Background(), "no-such-process-winget-bootstrap.exe")
	require.NoError(t, err)
	require.Zero(t, killed)
}
