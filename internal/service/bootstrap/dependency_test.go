package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/winget-bootstrap/internal/domain/provision"
	"github.com/oshokin/winget-bootstrap/internal/repository/appx"
	"github.com/oshokin/winget-bootstrap/internal/repository/offline"
)

func TestEnsure_IsIdempotent(t *testing.T) {
	t.Parallel()

	deps, _ := testArtifacts()
	store := newFakeStore(deps...)
	fetcher := &fakeFetcher{dir: t.TempDir()}
	installer := &dependencyInstaller{sourceInstaller: &sourceInstaller{store: store, fetcher: fetcher}}

	source, err := installer.Ensure(context.Background(), deps[0])
	require.NoError(t, err)
	require.Equal(t, provision.SourceRemoteURL, source.Kind)
	require.Len(t, store.installs, 1)
	require.Len(t, fetcher.urls, 1)

	source, err = installer.Ensure(context.Background(), deps[0])
	require.NoError(t, err)
	require.Equal(t, provision.SourceAlreadyInstalled, source.Kind)
	require.Len(t, store.installs, 1)
	require.Len(t, fetcher.urls, 1)
}

func TestEnsure_RemovesDownloadedFile(t *testing.T) {
	t.Parallel()

	deps, _ := testArtifacts()
	store := newFakeStore(deps...)
	store.failInstall = func(string) bool { return true }
	fetcher := &fakeFetcher{dir: t.TempDir()}
	installer := &dependencyInstaller{sourceInstaller: &sourceInstaller{store: store, fetcher: fetcher}}

	_, err := installer.Ensure(context.Background(), deps[0])
	require.ErrorIs(t, err, errFake)

	matches, err := filepath.Glob(filepath.Join(fetcher.dir, "*"))
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestEnsure_PrefersOfflineFile(t *testing.T) {
	t.Parallel()

	deps, _ := testArtifacts()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, deps[0].FileName), "staged")

	store := newFakeStore(deps...)
	fetcher := &fakeFetcher{dir: t.TempDir()}
	installer := &dependencyInstaller{sourceInstaller: &sourceInstaller{
		store:   store,
		fetcher: fetcher,
		offline: offline.NewDirectory(dir),
	}}

	source, err := installer.Ensure(context.Background(), deps[0])
	require.NoError(t, err)
	require.Equal(t, provision.OfflineFile(filepath.Join(dir, deps[0].FileName)), source)
	require.Empty(t, fetcher.urls)

	// Offline mode falls back to the remote URL for files that were not staged.
	source, err = installer.Ensure(context.Background(), deps[1])
	require.NoError(t, err)
	require.Equal(t, provision.RemoteURL(deps[1].URL), source)
	require.Equal(t, []string{deps[1].URL}, fetcher.urls)
}

func TestEnsureAll_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	deps, _ := testArtifacts()
	store := newFakeStore(deps...)
	fetcher := &fakeFetcher{dir: t.TempDir(), failURLs: map[string]bool{deps[0].URL: true}}
	installer := &dependencyInstaller{sourceInstaller: &sourceInstaller{store: store, fetcher: fetcher}}

	err := installer.EnsureAll(context.Background(), deps)
	require.ErrorIs(t, err, errFake)
	require.ErrorContains(t, err, deps[0].Name)
	require.Equal(t, []string{deps[0].Name}, store.queries)
	require.Empty(t, store.installs)
}

func TestEnsure_ReportsPackageStoreRejection(t *testing.T) {
	t.Parallel()

	deps, _ := testArtifacts()
	store := newFakeStore(deps...)
	store.failInstall = func(string) bool { return true }
	store.installErr = fmt.Errorf("exit code 1: deployment failed: %w", appx.ErrCommandFailed)

	fetcher := &fakeFetcher{dir: t.TempDir()}
	installer := &dependencyInstaller{sourceInstaller: &sourceInstaller{store: store, fetcher: fetcher}}

	_, err := installer.Ensure(context.Background(), deps[0])
	require.ErrorIs(t, err, appx.ErrCommandFailed)
	require.ErrorContains(t, err, "package store rejected dependency "+deps[0].Name)
}
