package version

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// TestVersionStrings ensures Short, Full and UserAgent agree with each other.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
	require.Contains(t, Full(), runtime.GOOS+"/"+runtime.GOARCH)
	require.NotContains(t, Full(), "commit )")
	require.Contains(t, UserAgent(), "winget-bootstrap/"+Short())
}

func runVersion(t *testing.T, args ...string) string {
	t.Helper()

	root := &cobra.Command{Use: "winget-bootstrap"}
	AttachCobraVersionCommand(root)

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetArgs(append([]string{"version"}, args...))

	require.NoError(t, root.Execute())

	return out.String()
}

// TestAttachCobraVersionCommand runs the subcommand and checks its output.
func TestAttachCobraVersionCommand(t *testing.T) {
	t.Parallel()

	require.Equal(t, Full()+"\n", runVersion(t))
	require.Equal(t, Short()+"\n", runVersion(t, "--short"))
}
