package bootstrap

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/winget-bootstrap/internal/config"
	"github.com/oshokin/winget-bootstrap/internal/domain/provision"
	"github.com/oshokin/winget-bootstrap/internal/repository/appx"
	"github.com/oshokin/winget-bootstrap/internal/service/common"
)

type runFixture struct {
	root      string
	aliasDir  string
	cfg       *config.Config
	store     *fakeStore
	fetcher   *fakeFetcher
	policy    *fakePolicy
	processes *fakeProcesses
	elevated  bool
	fetchers  int
	stdout    *bytes.Buffer
}

func newRunFixture(t *testing.T) *runFixture {
	t.Helper()

	root := t.TempDir()
	f := &runFixture{
		root:      root,
		aliasDir:  filepath.Join(root, "alias"),
		cfg:       config.Default(),
		fetcher:   &fakeFetcher{dir: t.TempDir(), failURLs: make(map[string]bool)},
		policy:    new(fakePolicy),
		processes: new(fakeProcesses),
		elevated:  true,
		stdout:    new(bytes.Buffer),
	}

	f.store = newFakeStore(f.cfg.Artifacts()...)
	f.store.onInstall = func(a provision.Artifact) {
		if a.Name == config.RuntimePackage {
			writeFile(t, filepath.Join(f.aliasDir, RuntimeCommand), "")
		}
	}

	return f
}

func (f *runFixture) runner(opts *Options) *runner {
	if opts == nil {
		opts = new(Options)
	}

	opts.ConfigPath = filepath.Join(f.root, "missing.yaml")
	opts.BaseDir = f.root
	opts.Stdout = f.stdout

	return newRunner(opts, &dependencies{
		detectActor: func() (*common.Actor, error) {
			return &common.Actor{Hostname: "host", Username: "admin", IsElevated: f.elevated}, nil
		},
		store: f.store,
		newFetcher: func(*config.Config) (Fetcher, error) {
			f.fetchers++
			return f.fetcher, nil
		},
		policy:            f.policy,
		environment:       &fakeEnvironment{},
		processes:         f.processes,
		processSearchPath: func() string { return "" },
		locator:           &Locator{UserAliasDir: f.aliasDir, CommandName: RuntimeCommand},
	})
}

func TestRun_RequiresElevation(t *testing.T) {
	t.Parallel()

	f := newRunFixture(t)
	f.elevated = false

	err := f.runner(nil).Run(context.Background())
	require.ErrorIs(t, err, errNotElevated)
	require.Zero(t, f.fetchers)
	require.Empty(t, f.store.queries)
	require.Empty(t, f.store.installs)
	require.Empty(t, f.store.commands)
	require.Zero(t, f.policy.calls)
	require.Empty(t, f.processes.names)

	// Nothing was written next to the executable or into the download directory.
	for _, dir := range []string{f.root, f.fetcher.dir} {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Empty(t, entries, dir)
	}
}

func TestRun_Online(t *testing.T) {
	t.Parallel()

	f := newRunFixture(t)
	writeFile(t, filepath.Join(f.root, config.DefaultPackageList), "# tools\nGit.Git\n\n  7zip.7zip  \n")

	r := f.runner(nil)
	require.NoError(t, r.Run(context.Background()))

	require.Equal(t, provision.StateInstalled, r.runtimeState)
	require.Equal(t, filepath.Join(f.aliasDir, RuntimeCommand), r.runtimePath)
	require.Equal(t, []string{
		f.cfg.Endpoints.VCLibs,
		f.cfg.Endpoints.UIXaml,
		f.cfg.Endpoints.Runtime,
	}, f.fetcher.urls)
	require.Equal(t, []string{"Git.Git", "7zip.7zip"}, r.batchReport.Succeeded)
	require.Empty(t, r.batchReport.Failed)

	// Version query, then one install per listed package.
	require.Len(t, f.store.commands, 3)
	require.Equal(t, "--version", f.store.commands[0][1])
}

func TestRun_OfflineWithEverythingStaged(t *testing.T) {
	t.Parallel()

	f := newRunFixture(t)
	for _, a := range f.cfg.Artifacts() {
		writeFile(t, filepath.Join(f.root, config.DefaultOfflineDir, a.FileName), "staged "+a.Name)
	}

	r := f.runner(&Options{UseOffline: true})
	require.NoError(t, r.Run(context.Background()))

	require.Empty(t, f.fetcher.urls)
	require.Len(t, f.store.installs, 3)
	require.Equal(t, []provision.RuntimeState{
		provision.StateOfflineInstall,
		provision.StateInstalled,
	}, r.runtime.Transitions())
	require.Nil(t, r.batchReport)
}

func TestRun_OfflineDirOverride(t *testing.T) {
	t.Parallel()

	f := newRunFixture(t)
	custom := filepath.Join(f.root, "custom")

	for _, a := range f.cfg.Artifacts() {
		writeFile(t, filepath.Join(custom, a.FileName), "staged "+a.Name)
	}

	r := f.runner(&Options{UseOffline: true, OfflineDir: custom})
	require.NoError(t, r.Run(context.Background()))
	require.Empty(t, f.fetcher.urls)
}

func TestRun_RuntimeAlreadyPresent(t *testing.T) {
	t.Parallel()

	f := newRunFixture(t)
	writeFile(t, filepath.Join(f.aliasDir, RuntimeCommand), "")

	r := f.runner(nil)
	require.NoError(t, r.Run(context.Background()))

	require.Equal(t, provision.StateNotNeeded, r.runtimeState)
	require.Equal(t, []string{config.VCLibsPackage, config.UIXamlPackage}, f.store.queries)
	require.Zero(t, f.policy.calls)
	require.NotContains(t, f.fetcher.urls, f.cfg.Endpoints.Runtime)
}

func TestRun_RuntimeFailureStopsRun(t *testing.T) {
	t.Parallel()

	f := newRunFixture(t)
	f.fetcher.failURLs[f.cfg.Endpoints.Runtime] = true
	f.fetcher.failURLs[f.cfg.Endpoints.RuntimeFallback] = true
	writeFile(t, filepath.Join(f.root, config.DefaultPackageList), "Git.Git\n")

	r := f.runner(nil)
	err := r.Run(context.Background())
	require.ErrorIs(t, err, errRuntimeInstall)
	require.ErrorContains(t, err, "--offline")
	require.Equal(t, provision.StateFailed, r.runtimeState)
	require.Empty(t, f.store.commands)
}

func TestRun_DependencyFailureStopsRun(t *testing.T) {
	t.Parallel()

	f := newRunFixture(t)
	f.fetcher.failURLs[f.cfg.Endpoints.VCLibs] = true

	r := f.runner(nil)
	err := r.Run(context.Background())
	require.ErrorIs(t, err, errFake)
	require.Equal(t, []string{config.VCLibsPackage}, f.store.queries)
	require.Empty(t, r.runtime.Transitions())
}

func TestRun_BatchFailuresAreNotFatal(t *testing.T) {
	t.Parallel()

	f := newRunFixture(t)
	writeFile(t, filepath.Join(f.root, "custom.txt"), "Good.One\nBad.Two\nGood.Three\n")

	f.store.run = func(_ string, args []string) (*appx.CommandResult, error) {
		if len(args) > 2 && args[2] == "Bad.Two" {
			return &appx.CommandResult{ExitCode: 1}, nil
		}

		return &appx.CommandResult{}, nil
	}

	r := f.runner(&Options{PackageList: "custom.txt"})
	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, []string{"Good.One", "Good.Three"}, r.batchReport.Succeeded)
	require.Equal(t, []string{"Bad.Two"}, r.batchReport.Failed)
}
