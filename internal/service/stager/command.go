package stager

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/oshokin/winget-bootstrap/internal/config"
	"github.com/oshokin/winget-bootstrap/internal/domain/provision"
	"github.com/oshokin/winget-bootstrap/internal/logger"
	"github.com/oshokin/winget-bootstrap/internal/repository/offline"
	"github.com/oshokin/winget-bootstrap/internal/service/common"
	"github.com/oshokin/winget-bootstrap/internal/version"
)

// Options contains inputs for the stage entry point.
type Options struct {
	// ConfigPath is an optional path to the settings YAML file, relative to BaseDir.
	ConfigPath string
	// OfflineDir overrides the configured offline directory.
	OfflineDir string
	// BaseDir anchors relative paths; defaults to the executable's directory.
	BaseDir string
	// Force downloads files that are already staged and intact.
	Force bool
}

// Fetcher downloads an artifact into a temporary file.
type Fetcher interface {
	Fetch(ctx context.Context, url, fileName string) (*common.Artifact, error)
}

// errNoEndpoint is returned when an artifact has no usable URL.
var errNoEndpoint = errors.New("no endpoint configured")

// stager downloads artifacts into an offline directory.
// It is unexported; callers should use Run.
type stager struct {
	// artifacts are staged in order.
	artifacts []provision.Artifact
	// dir is the target offline directory.
	dir *offline.Directory
	// fetcher downloads remote artifacts.
	fetcher Fetcher
	// force re-downloads intact files.
	force bool
	// manifest accumulates checksums of every staged file.
	manifest *offline.Manifest
}

// Run executes the staging workflow.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "winget-bootstrap-stage")

	if opts == nil {
		opts = new(Options)
	}

	baseDir := opts.BaseDir
	if baseDir == "" {
		baseDir = config.ExecutableDir()
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigFilename
	}

	cfg, err := config.Load(config.ResolvePath(baseDir, configPath))
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	minTLSVersion, err := cfg.TLSVersion()
	if err != nil {
		return err
	}

	client := common.NewClient(
		common.WithTimeout(cfg.Timeout),
		common.WithMinTLSVersion(minTLSVersion),
	)

	s := newStager(cfg, resolveOfflineDir(cfg, baseDir, opts.OfflineDir), client, opts.Force)
	if err = s.Run(ctx); err != nil {
		return fmt.Errorf("stage failed: %w", err)
	}

	logger.Info(ctx, "Stage completed successfully")

	return nil
}

func resolveOfflineDir(cfg *config.Config, baseDir, override string) *offline.Directory {
	path := cfg.OfflineDir
	if override != "" {
		path = override
	}

	return offline.NewDirectory(config.ResolvePath(baseDir, path))
}

func newStager(cfg *config.Config, dir *offline.Directory, fetcher Fetcher, force bool) *stager {
	return &stager{
		artifacts: cfg.Artifacts(),
		dir:       dir,
		fetcher:   fetcher,
		force:     force,
		manifest:  offline.NewManifest(version.Full()),
	}
}

// Run stages every artifact and then writes the manifest.
func (s *stager) Run(ctx context.Context) error {
	logger.InfoKV(ctx, "Staging offline artifacts", "directory", s.dir.Path())

	for _, a := range s.artifacts {
		if err := s.stage(ctx, a); err != nil {
			return fmt.Errorf("stage %s: %w", a.Name, err)
		}
	}

	logger.InfoKV(ctx, "Saving offline manifest", "path", offline.ManifestFilename)

	if err := s.dir.SaveManifest(s.manifest); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}

	s.printNextSteps(ctx)

	return nil
}

// stage places one artifact in the directory unless an intact copy is already there.
func (s *stager) stage(ctx context.Context, a provision.Artifact) error {
	if path, ok := s.dir.Lookup(a.FileName); ok && !s.force {
		if err := s.dir.Verify(a.FileName); err == nil {
			checksum, err := offline.FileChecksum(path)
			if err != nil {
				return err
			}

			s.manifest.Files[a.FileName] = base64.StdEncoding.EncodeToString(checksum)

			logger.InfoKV(ctx, "Already staged, skipping", "file", a.FileName)

			return nil
		}

		logger.WarnKV(ctx, "Staged file is corrupt, downloading again", "file", a.FileName)
	}

	artifact, err := s.download(ctx, a)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := artifact.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Could not remove downloaded file", "path", artifact.Path, "error", closeErr)
		}
	}()

	checksum, err := offline.FileChecksum(artifact.Path)
	if err != nil {
		return err
	}

	if err = s.dir.Stage(a.FileName, artifact.Path, checksum); err != nil {
		return err
	}

	s.manifest.Files[a.FileName] = base64.StdEncoding.EncodeToString(checksum)

	logger.InfoKV(ctx, "Staged", "file", a.FileName, "bytes", artifact.Size)

	return nil
}

// download tries the primary URL and then the fallback URL, each once.
func (s *stager) download(ctx context.Context, a provision.Artifact) (*common.Artifact, error) {
	var lastErr error

	for _, url := range []string{a.URL, a.FallbackURL} {
		if url == "" {
			continue
		}

		logger.InfoKV(ctx, "Downloading", "file", a.FileName, "url", url)

		artifact, err := s.fetcher.Fetch(ctx, url, a.FileName)
		if err == nil {
			return artifact, nil
		}

		logger.WarnKV(ctx, "Download failed", "url", url, "error", err)

		lastErr = err
	}

	if lastErr == nil {
		return nil, errNoEndpoint
	}

	return nil, lastErr
}

// printNextSteps logs how to carry the directory to an offline host.
func (s *stager) printNextSteps(ctx context.Context) {
	files := make([]string, 0, len(s.manifest.Files)+1)
	for fileName := range s.manifest.Files {
		files = append(files, fileName)
	}

	files = append(files, offline.ManifestFilename)
	sort.Strings(files)

	var builder strings.Builder

	builder.WriteString("Copy the directory ")
	builder.WriteString(s.dir.Path())
	builder.WriteString(" with the following files next to winget-bootstrap on the target host:\n")
	builder.WriteString(strings.Join(files, ",\n"))
	builder.WriteString("\nThen run: winget-bootstrap --offline")

	logger.Info(ctx, builder.String())
}
