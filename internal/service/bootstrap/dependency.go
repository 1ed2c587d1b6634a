package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/winget-bootstrap/internal/domain/provision"
	"github.com/oshokin/winget-bootstrap/internal/logger"
	"github.com/oshokin/winget-bootstrap/internal/repository/appx"
)

// dependencyInstaller makes sure shared-framework packages are present.
type dependencyInstaller struct {
	*sourceInstaller
}

// EnsureAll ensures every artifact in order and stops at the first failure.
func (d *dependencyInstaller) EnsureAll(ctx context.Context, artifacts []provision.Artifact) error {
	for _, a := range artifacts {
		if _, err := d.Ensure(ctx, a); err != nil {
			return err
		}
	}

	return nil
}

// Ensure installs a unless the package store already has it: the staged
// offline file is preferred in offline mode, the remote URL is used otherwise.
// It returns the source that was used.
func (d *dependencyInstaller) Ensure(ctx context.Context, a provision.Artifact) (provision.Source, error) {
	ctx = logger.WithKV(ctx, "package", a.Name)

	installed, err := d.store.IsInstalled(ctx, a.Name)
	if err != nil {
		return provision.Source{}, fmt.Errorf("query dependency %s: %w", a.Name, err)
	}

	if installed {
		logger.Info(ctx, "Dependency already installed")
		return provision.AlreadyInstalled(), nil
	}

	source, ok := d.offlineSource(a)
	if !ok {
		source = provision.RemoteURL(a.URL)
	}

	if err = d.install(ctx, a, source); err != nil {
		if errors.Is(err, appx.ErrCommandFailed) {
			return source, fmt.Errorf("package store rejected dependency %s from %s: %w", a.Name, source, err)
		}

		return source, fmt.Errorf("install dependency %s from %s: %w", a.Name, source, err)
	}

	logger.Info(ctx, "Dependency installed")

	return source, nil
}
