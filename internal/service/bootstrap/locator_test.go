package bootstrap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocate_PrefersUserAlias(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	alias := filepath.Join(root, "alias")
	onPath := filepath.Join(root, "bin")

	writeFile(t, filepath.Join(alias, RuntimeCommand), "")
	writeFile(t, filepath.Join(onPath, RuntimeCommand), "")

	l := &Locator{UserAliasDir: alias, CommandName: RuntimeCommand}

	path, ok := l.Locate(onPath)
	require.True(t, ok)
	require.Equal(t, filepath.Join(alias, RuntimeCommand), path)
}

func TestLocate_SystemPatternBeforeSearchPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	onPath := filepath.Join(root, "bin")

	writeFile(t, filepath.Join(root, "apps", "Runtime_1.2.0_x64", RuntimeCommand), "")
	writeFile(t, filepath.Join(root, "apps", "Runtime_1.1.0_x64", RuntimeCommand), "")
	writeFile(t, filepath.Join(onPath, RuntimeCommand), "")

	l := &Locator{
		UserAliasDir:  filepath.Join(root, "missing"),
		SystemPattern: filepath.Join(root, "apps", "Runtime_*_x64", RuntimeCommand),
		CommandName:   RuntimeCommand,
	}

	path, ok := l.Locate(onPath)
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "apps", "Runtime_1.1.0_x64", RuntimeCommand), path)
}

func TestLocate_WalksSearchPathInOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	first := filepath.Join(root, "first")
	second := filepath.Join(root, "second")

	require.NoError(t, os.MkdirAll(first, 0o750))
	writeFile(t, filepath.Join(second, RuntimeCommand), "")

	l := &Locator{CommandName: RuntimeCommand}
	searchPath := strings.Join([]string{"", first, second}, string(os.PathListSeparator))

	path, ok := l.Locate(searchPath)
	require.True(t, ok)
	require.Equal(t, filepath.Join(second, RuntimeCommand), path)
}

func TestLocate_IgnoresDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, RuntimeCommand), 0o750))

	l := &Locator{UserAliasDir: dir, CommandName: RuntimeCommand}

	_, ok := l.Locate(dir)
	require.False(t, ok)
}

func TestLocate_NotFound(t *testing.T) {
	t.Parallel()

	l := &Locator{CommandName: RuntimeCommand}

	path, ok := l.Locate("")
	require.False(t, ok)
	require.Empty(t, path)
}

func TestLocate_DoesNotModifyFilesystem(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l := &Locator{UserAliasDir: dir, SystemPattern: filepath.Join(dir, "*", RuntimeCommand), CommandName: RuntimeCommand}

	_, _ = l.Locate(dir)
	_, _ = l.Locate(dir)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
