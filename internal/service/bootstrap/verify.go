package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/oshokin/winget-bootstrap/internal/logger"
	"github.com/oshokin/winget-bootstrap/internal/repository/appx"
)

// verifier re-locates the runtime after installation and runs its version query.
type verifier struct {
	store       appx.Repository
	environment Environment
	locator     *Locator
	// fallbackSearchPath is used when the persisted search path cannot be read.
	fallbackSearchPath func() string
	// stdout receives the runtime's version output.
	stdout io.Writer
}

// Verify returns the runtime path. A runtime that cannot be found is fatal;
// a failing version query is only reported.
func (v *verifier) Verify(ctx context.Context) (string, error) {
	searchPath, err := v.environment.SearchPath(ctx)
	if err != nil {
		logger.WarnKV(ctx, "Could not refresh the search path, using the process one", "error", err)

		searchPath = v.fallbackSearchPath()
	}

	runtimePath, ok := v.locator.Locate(searchPath)
	if !ok {
		return "", errRuntimeNotFound
	}

	logger.InfoKV(ctx, "Runtime located", "path", runtimePath)

	result, err := v.store.RunCommand(ctx, runtimePath, "--version")
	if err != nil {
		logger.WarnKV(ctx, "Runtime version query could not run", "error", err)
		return runtimePath, nil
	}

	if !result.Succeeded() {
		logger.WarnKV(ctx, "Runtime version query failed", "exit_code", result.ExitCode)
	}

	if output := strings.TrimRight(result.Output, "\r\n"); output != "" {
		if _, err = fmt.Fprintln(v.stdout, output); err != nil {
			logger.WarnKV(ctx, "Could not print runtime version", "error", err)
		}
	}

	return runtimePath, nil
}
