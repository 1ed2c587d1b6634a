package bootstrap

import (
	"context"
	"fmt"

	"github.com/oshokin/winget-bootstrap/internal/domain/provision"
	"github.com/oshokin/winget-bootstrap/internal/logger"
	"github.com/oshokin/winget-bootstrap/internal/repository/appx"
	"github.com/oshokin/winget-bootstrap/internal/repository/offline"
)

// sourceInstaller installs an artifact from a resolved source.
type sourceInstaller struct {
	// store is the OS package store.
	store appx.Repository
	// fetcher downloads remote artifacts.
	fetcher Fetcher
	// offline is the staged artifact directory; nil when offline mode is off.
	offline *offline.Directory
}

// offlineSource returns the staged file for a when offline mode is on and the file exists.
func (s *sourceInstaller) offlineSource(a provision.Artifact) (provision.Source, bool) {
	if s.offline == nil {
		return provision.Source{}, false
	}

	path, ok := s.offline.Lookup(a.FileName)
	if !ok {
		return provision.Source{}, false
	}

	return provision.OfflineFile(path), true
}

// install installs a from source. Downloads live in a temporary file that is
// removed on every exit path.
func (s *sourceInstaller) install(ctx context.Context, a provision.Artifact, source provision.Source) error {
	logger.InfoKV(ctx, "Installing package", "package", a.Name, "source", source.String())

	switch source.Kind {
	case provision.SourceAlreadyInstalled:
		return nil
	case provision.SourceOfflineFile:
		if err := s.offline.Verify(a.FileName); err != nil {
			return err
		}

		return s.store.Install(ctx, source.Location)
	case provision.SourceRemoteURL:
		artifact, err := s.fetcher.Fetch(ctx, source.Location, a.FileName)
		if err != nil {
			return err
		}

		defer func() {
			if closeErr := artifact.Close(); closeErr != nil {
				logger.WarnKV(ctx, "Could not remove downloaded file", "path", artifact.Path, "error", closeErr)
			}
		}()

		logger.DebugKV(ctx, "Downloaded package", "package", a.Name, "bytes", artifact.Size)

		return s.store.Install(ctx, artifact.Path)
	default:
		return fmt.Errorf("%w: %s", errUnknownSource, source.Kind)
	}
}
