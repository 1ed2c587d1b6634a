package bootstrap

import (
	"context"
	"iter"

	"github.com/oshokin/winget-bootstrap/internal/domain/provision"
	"github.com/oshokin/winget-bootstrap/internal/logger"
	"github.com/oshokin/winget-bootstrap/internal/repository/appx"
)

// batchInstaller drives the runtime to install listed packages.
type batchInstaller struct {
	store appx.Repository
}

// Install attempts every identifier in order. Failures are logged and recorded;
// they never stop the batch.
func (b *batchInstaller) Install(
	ctx context.Context,
	runtimePath string,
	identifiers iter.Seq[string],
) *provision.BatchReport {
	report := new(provision.BatchReport)

	for identifier := range identifiers {
		itemCtx := logger.WithKV(ctx, "id", identifier)

		logger.Info(itemCtx, "Installing package")

		result, err := b.store.RunCommand(itemCtx, runtimePath, installArgs(identifier)...)

		switch {
		case err != nil:
			logger.WarnKV(itemCtx, "Package install could not run", "error", err)
			report.Failed = append(report.Failed, identifier)
		case !result.Succeeded():
			logger.WarnKV(itemCtx, "Package install failed", "exit_code", result.ExitCode)
			report.Failed = append(report.Failed, identifier)
		default:
			logger.Info(itemCtx, "Package installed")
			report.Succeeded = append(report.Succeeded, identifier)
		}
	}

	return report
}

// installArgs builds a silent install that accepts source and package agreements.
func installArgs(identifier string) []string {
	return []string{
		"install",
		"--id", identifier,
		"--exact",
		"--silent",
		"--accept-source-agreements",
		"--accept-package-agreements",
	}
}
