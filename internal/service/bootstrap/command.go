package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/winget-bootstrap/internal/config"
	"github.com/oshokin/winget-bootstrap/internal/domain/provision"
	"github.com/oshokin/winget-bootstrap/internal/logger"
	"github.com/oshokin/winget-bootstrap/internal/repository/appx"
	"github.com/oshokin/winget-bootstrap/internal/repository/offline"
	"github.com/oshokin/winget-bootstrap/internal/repository/packagelist"
	"github.com/oshokin/winget-bootstrap/internal/service/common"
	"github.com/oshokin/winget-bootstrap/internal/service/system"
)

var (
	errNotElevated           = errors.New("administrative privileges are required, re-run from an elevated prompt")
	errOfflineRuntimeInstall = errors.New("offline runtime installation failed")
	errRuntimeInstall        = errors.New("runtime installation failed")
	errRuntimeNotFound       = errors.New("runtime not found after installation")
	errUnexpectedState       = errors.New("unexpected runtime install state")
	errUnknownSource         = errors.New("unknown package source")
)

// offlineHint is appended to the fatal error once both remote endpoints failed.
const offlineHint = "stage the artifacts with `winget-bootstrap stage` and re-run with --offline"

// Fetcher downloads an artifact into a temporary file.
type Fetcher interface {
	Fetch(ctx context.Context, url, fileName string) (*common.Artifact, error)
}

// Policy enables the developer unlock flag.
type Policy interface {
	EnableDeveloperMode(ctx context.Context) error
}

// Environment returns the search path persisted for new processes.
type Environment interface {
	SearchPath(ctx context.Context) (string, error)
}

// ProcessTerminator closes running programs by executable name.
type ProcessTerminator interface {
	Terminate(ctx context.Context, name string) (int, error)
}

// Options are inputs accepted by the bootstrap entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file, relative to BaseDir.
	ConfigPath string
	// UseOffline prefers staged files over downloads wherever both apply.
	UseOffline bool
	// OfflineDir overrides the configured offline directory.
	OfflineDir string
	// PackageList overrides the configured package list path.
	PackageList string
	// BaseDir anchors relative paths; defaults to the executable's directory.
	BaseDir string
	// Stdout receives the runtime version output; defaults to os.Stdout.
	Stdout io.Writer
}

// dependencies are the collaborators of a run; tests replace them with fakes.
type dependencies struct {
	detectActor       func() (*common.Actor, error)
	store             appx.Repository
	newFetcher        func(cfg *config.Config) (Fetcher, error)
	policy            Policy
	environment       Environment
	processes         ProcessTerminator
	processSearchPath func() string
	locator           *Locator
}

// runner holds the state of a single bootstrap execution.
type runner struct {
	opts *Options
	deps *dependencies

	cfg           *config.Config
	offlineDir    *offline.Directory
	packageList   *packagelist.FileRepository
	runtime       *runtimeInstaller
	runtimeState  provision.RuntimeState
	runtimePath   string
	batchReport   *provision.BatchReport
	sourceInstall *sourceInstaller
}

// Run executes the bootstrap sequence and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "winget-bootstrap")

	if err := newRunner(opts, systemDependencies()).Run(ctx); err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	logger.Info(ctx, "Bootstrap completed")

	return nil
}

// systemDependencies wires the real host facilities.
func systemDependencies() *dependencies {
	return &dependencies{
		detectActor: common.DetectActor,
		store:       appx.NewPowerShellRepository(""),
		newFetcher: func(cfg *config.Config) (Fetcher, error) {
			minTLSVersion, err := cfg.TLSVersion()
			if err != nil {
				return nil, err
			}

			return common.NewClient(
				common.WithTimeout(cfg.Timeout),
				common.WithMinTLSVersion(minTLSVersion),
			), nil
		},
		policy:            system.Policy{},
		environment:       system.Environment{},
		processes:         system.Processes{},
		processSearchPath: system.ProcessSearchPath,
		locator:           DefaultLocator(),
	}
}

func newRunner(opts *Options, deps *dependencies) *runner {
	if opts == nil {
		opts = new(Options)
	}

	return &runner{
		opts: opts,
		deps: deps,
	}
}

// Run executes the steps in order:
// 1) Check privilege.
// 2) Load settings.
// 3) Install shared-framework dependencies.
// 4) Install the runtime.
// 5) Verify the runtime.
// 6) Install listed packages.
func (r *runner) Run(ctx context.Context) error {
	if err := r.checkPreconditions(ctx); err != nil {
		return err
	}

	if err := r.loadSettings(ctx); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	runtimePath, present := r.deps.locator.Locate(r.deps.processSearchPath())
	if present {
		logger.InfoKV(ctx, "Runtime already installed", "path", runtimePath)
	}

	logger.Info(ctx, "Ensuring shared-framework dependencies")

	frameworks := &dependencyInstaller{sourceInstaller: r.sourceInstall}
	if err := frameworks.EnsureAll(logger.WithName(ctx, "dependencies"), r.cfg.Dependencies()); err != nil {
		return err
	}

	state, err := r.runtime.Install(logger.WithName(ctx, "runtime"), r.cfg.Runtime(), present)

	r.runtimeState = state
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Runtime install finished", "state", state.String())

	v := &verifier{
		store:              r.deps.store,
		environment:        r.deps.environment,
		locator:            r.deps.locator,
		fallbackSearchPath: r.deps.processSearchPath,
		stdout:             r.stdout(),
	}

	if r.runtimePath, err = v.Verify(logger.WithName(ctx, "verify")); err != nil {
		return err
	}

	r.installPackages(logger.WithName(ctx, "packages"))
	r.logSummary(ctx)

	return nil
}

// logSummary reports the outcome of the run in one line.
func (r *runner) logSummary(ctx context.Context) {
	kvs := []any{"runtime_state", r.runtimeState.String(), "runtime_path", r.runtimePath}

	if r.batchReport != nil {
		kvs = append(kvs,
			"packages_attempted", r.batchReport.Attempted(),
			"packages_failed", len(r.batchReport.Failed))
	}

	logger.InfoKV(ctx, "Run summary", kvs...)
}

// checkPreconditions fails before any other work unless the process is elevated.
func (r *runner) checkPreconditions(ctx context.Context) error {
	actor, err := r.deps.detectActor()
	if err != nil {
		return fmt.Errorf("detect actor: %w", err)
	}

	if !actor.IsElevated {
		return errNotElevated
	}

	logger.InfoKV(ctx, "Running elevated", "host", actor.Hostname, "user", actor.Username)

	return nil
}

// loadSettings reads the settings file and builds the collaborators that depend on it.
func (r *runner) loadSettings(ctx context.Context) error {
	baseDir := r.opts.BaseDir
	if baseDir == "" {
		baseDir = config.ExecutableDir()
	}

	configPath := r.opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigFilename
	}

	cfg, err := config.Load(config.ResolvePath(baseDir, configPath))
	if err != nil {
		return err
	}

	r.cfg = cfg

	offlinePath := cfg.OfflineDir
	if r.opts.OfflineDir != "" {
		offlinePath = r.opts.OfflineDir
	}

	listPath := cfg.PackageList
	if r.opts.PackageList != "" {
		listPath = r.opts.PackageList
	}

	r.packageList = packagelist.NewFileRepository(config.ResolvePath(baseDir, listPath))

	if r.opts.UseOffline {
		r.offlineDir = offline.NewDirectory(config.ResolvePath(baseDir, offlinePath))
		logger.InfoKV(ctx, "Offline mode enabled", "directory", r.offlineDir.Path())
	}

	fetcher, err := r.deps.newFetcher(cfg)
	if err != nil {
		return err
	}

	r.sourceInstall = &sourceInstaller{
		store:   r.deps.store,
		fetcher: fetcher,
		offline: r.offlineDir,
	}

	r.runtime = &runtimeInstaller{
		sourceInstaller: r.sourceInstall,
		policy:          r.deps.policy,
		processes:       r.deps.processes,
	}

	return nil
}

// installPackages installs the package list when one exists. It never fails the run.
func (r *runner) installPackages(ctx context.Context) {
	if r.runtimePath == "" {
		logger.Warn(ctx, "Runtime not locatable, skipping package list")
		return
	}

	list, err := r.packageList.Load(ctx)
	if errors.Is(err, packagelist.ErrNotFound) {
		logger.InfoKV(ctx, "No package list, skipping", "path", r.packageList.Path())
		return
	}

	if err != nil {
		logger.WarnKV(ctx, "Could not read package list, skipping", "error", err)
		return
	}

	batch := &batchInstaller{store: r.deps.store}
	r.batchReport = batch.Install(ctx, r.runtimePath, list.All())

	logger.InfoKV(ctx, "Package list processed",
		"succeeded", len(r.batchReport.Succeeded), "failed", len(r.batchReport.Failed))

	if len(r.batchReport.Failed) > 0 {
		logger.WarnKV(ctx, "Some packages failed to install", "ids", r.batchReport.Failed)
	}
}

func (r *runner) stdout() io.Writer {
	if r.opts.Stdout != nil {
		return r.opts.Stdout
	}

	return os.Stdout
}
