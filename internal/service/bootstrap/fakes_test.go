package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/winget-bootstrap/internal/domain/provision"
	"github.com/oshokin/winget-bootstrap/internal/repository/appx"
	"github.com/oshokin/winget-bootstrap/internal/service/common"
)

var errFake = errors.New("fake failure")

// fakeStore is an in-memory package store. Installing a path whose name ends
// with an artifact file name marks that artifact's package as installed.
type fakeStore struct {
	artifacts []provision.Artifact
	installed map[string]bool
	installs  []string
	queries   []string
	commands  [][]string

	// failInstall decides whether installing path fails.
	failInstall func(path string) bool
	// installErr is returned by failing installs; errFake when nil.
	installErr error
	// onInstall runs after a successful install.
	onInstall func(a provision.Artifact)
	// run answers RunCommand; nil means success with empty output.
	run func(name string, args []string) (*appx.CommandResult, error)
}

func newFakeStore(artifacts ...provision.Artifact) *fakeStore {
	return &fakeStore{
		artifacts: artifacts,
		installed: make(map[string]bool),
	}
}

func (s *fakeStore) IsInstalled(_ context.Context, name string) (bool, error) {
	s.queries = append(s.queries, name)

	return s.installed[name], nil
}

func (s *fakeStore) Install(_ context.Context, path string) error {
	s.installs = append(s.installs, path)

	if s.failInstall != nil && s.failInstall(path) {
		if s.installErr != nil {
			return s.installErr
		}

		return errFake
	}

	for _, a := range s.artifacts {
		if strings.HasSuffix(path, a.FileName) {
			s.installed[a.Name] = true

			if s.onInstall != nil {
				s.onInstall(a)
			}
		}
	}

	return nil
}

func (s *fakeStore) RunCommand(_ context.Context, name string, args ...string) (*appx.CommandResult, error) {
	s.commands = append(s.commands, append([]string{name}, args...))

	if s.run != nil {
		return s.run(name, args)
	}

	return &appx.CommandResult{}, nil
}

// fakeFetcher writes a small real file for every download.
type fakeFetcher struct {
	dir      string
	urls     []string
	failURLs map[string]bool
	fetched  []*common.Artifact
}

func (f *fakeFetcher) Fetch(_ context.Context, url, fileName string) (*common.Artifact, error) {
	f.urls = append(f.urls, url)

	if f.failURLs[url] {
		return nil, errFake
	}

	file, err := os.CreateTemp(f.dir, "download-*-"+filepath.Base(fileName))
	if err != nil {
		return nil, err
	}

	defer file.Close()

	n, err := file.WriteString("payload of " + url)
	if err != nil {
		return nil, err
	}

	artifact := &common.Artifact{Path: file.Name(), Size: int64(n)}
	f.fetched = append(f.fetched, artifact)

	return artifact, nil
}

type fakePolicy struct {
	calls int
	err   error
}

func (p *fakePolicy) EnableDeveloperMode(context.Context) error {
	p.calls++

	return p.err
}

type fakeEnvironment struct {
	searchPath string
	err        error
}

func (e *fakeEnvironment) SearchPath(context.Context) (string, error) {
	return e.searchPath, e.err
}

type fakeProcesses struct {
	names []string
}

func (p *fakeProcesses) Terminate(_ context.Context, name string) (int, error) {
	p.names = append(p.names, name)

	return 0, nil
}

func testArtifacts() (deps []provision.Artifact, runtime provision.Artifact) {
	deps = []provision.Artifact{
		{Name: "Framework.One", FileName: "framework-one.appx", URL: "https://example.test/one"},
		{Name: "Framework.Two", FileName: "framework-two.appx", URL: "https://example.test/two"},
	}

	runtime = provision.Artifact{
		Name:        "Runtime",
		FileName:    "runtime.msixbundle",
		URL:         "https://example.test/primary",
		FallbackURL: "https://example.test/fallback",
	}

	return deps, runtime
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
}
