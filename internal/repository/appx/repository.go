package appx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Repository defines the package store operations the bootstrapper relies on.
//
//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks
type Repository interface {
	// IsInstalled reports whether a package with the given name is installed for any user.
	IsInstalled(ctx context.Context, name string) (bool, error)
	// Install installs the package file at path, replacing any installed version.
	Install(ctx context.Context, path string) error
	// RunCommand runs a program and captures its combined output.
	RunCommand(ctx context.Context, name string, args ...string) (*CommandResult, error)
}

// CommandResult is the outcome of a finished command.
type CommandResult struct {
	// ExitCode is the process exit status.
	ExitCode int
	// Output holds stdout and stderr interleaved.
	Output string
}

// Succeeded reports a zero exit status.
func (r *CommandResult) Succeeded() bool {
	return r != nil && r.ExitCode == 0
}

// DefaultShell is the PowerShell executable looked up on the search path.
const DefaultShell = "powershell.exe"

// ErrCommandFailed wraps non-zero exits of package store scripts.
var ErrCommandFailed = errors.New("command failed")

// PowerShellRepository implements Repository on top of the Appx PowerShell module.
type PowerShellRepository struct {
	// shell is the PowerShell executable.
	shell string
}

// NewPowerShellRepository returns a repository driving the given shell, DefaultShell when empty.
func NewPowerShellRepository(shell string) *PowerShellRepository {
	if shell == "" {
		shell = DefaultShell
	}

	return &PowerShellRepository{shell: shell}
}

// IsInstalled queries Get-AppxPackage across all users.
func (r *PowerShellRepository) IsInstalled(ctx context.Context, name string) (bool, error) {
	result, err := r.runScript(ctx, queryScript(name))
	if err != nil {
		return false, fmt.Errorf("query package %s: %w", name, err)
	}

	return strings.TrimSpace(result.Output) != "", nil
}

// Install runs Add-AppxPackage with forced update and application shutdown.
func (r *PowerShellRepository) Install(ctx context.Context, path string) error {
	if _, err := r.runScript(ctx, installScript(path)); err != nil {
		return fmt.Errorf("install package %s: %w", path, err)
	}

	return nil
}

// RunCommand runs name with args. A non-zero exit is reported in the result, not as an error;
// the error is set only when the program could not be run at all.
func (r *PowerShellRepository) RunCommand(ctx context.Context, name string, args ...string) (*CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // Runs the located runtime.

	var output bytes.Buffer

	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandResult{ExitCode: exitErr.ExitCode(), Output: output.String()}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}

	return &CommandResult{Output: output.String()}, nil
}

// runScript executes a PowerShell script and turns a non-zero exit into ErrCommandFailed.
func (r *PowerShellRepository) runScript(ctx context.Context, script string) (*CommandResult, error) {
	result, err := r.RunCommand(ctx, r.shell, shellArgs(script)...)
	if err != nil {
		return nil, err
	}

	if !result.Succeeded() {
		return result, fmt.Errorf("exit code %d: %s: %w",
			result.ExitCode, strings.TrimSpace(result.Output), ErrCommandFailed)
	}

	return result, nil
}

// shellArgs builds a non-interactive PowerShell invocation.
func shellArgs(script string) []string {
	return []string{"-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-Command", script}
}

// scriptPrelude makes cmdlet errors terminate the script with a non-zero exit
// and hides the progress bar, which slows Add-AppxPackage down considerably.
const scriptPrelude = "$ErrorActionPreference = 'Stop'; $ProgressPreference = 'SilentlyContinue'; "

func queryScript(name string) string {
	return scriptPrelude +
		"Get-AppxPackage -AllUsers -Name " + quote(name) + " | Select-Object -ExpandProperty PackageFullName"
}

func installScript(path string) string {
	return scriptPrelude +
		"Add-AppxPackage -Path " + quote(path) + " -ForceApplicationShutdown -ForceUpdateFromAnyVersion"
}

// quote renders s as a single-quoted PowerShell literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
