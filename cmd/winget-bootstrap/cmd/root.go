package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/winget-bootstrap/internal/config"
	"github.com/oshokin/winget-bootstrap/internal/logger"
	"github.com/oshokin/winget-bootstrap/internal/service/bootstrap"
	"github.com/oshokin/winget-bootstrap/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// offlineDir overrides the offline artifact directory.
	offlineDir string
	// logLevel is the minimum level written to the log.
	logLevel string
	// quiet raises the log level to warn.
	quiet bool
	// useOffline prefers staged files over downloads.
	useOffline bool
	// packageList overrides the package list path.
	packageList string

	// rootCmd installs the runtime and then the listed packages.
	rootCmd = &cobra.Command{
		Use:   "winget-bootstrap",
		Short: "Install the winget runtime and a list of packages on a fresh host.",
		Long: `Installs the shared-framework dependencies and the winget runtime, verifies it,
then installs every package identifier listed in the package list.

Must be run from an elevated prompt. With --offline, files staged in the offline
directory (see the stage command) are used instead of downloads.
Relative paths are resolved against the directory of the executable.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return logger.Configure(logLevel, quiet)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &bootstrap.Options{
				ConfigPath:  configPath,
				UseOffline:  useOffline,
				OfflineDir:  offlineDir,
				PackageList: packageList,
				Stdout:      cmd.OutOrStdout(),
			}

			return bootstrap.Run(ctx, options)
		},
	}
)

// Execute runs the winget-bootstrap CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error(context.Background(), err)
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVar(&offlineDir, "offline-dir", "", "offline artifact directory (default from settings: "+
		config.DefaultOfflineDir+")")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flags.BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")

	rootCmd.Flags().BoolVar(&useOffline, "offline", false, "install from staged files where present")
	rootCmd.Flags().StringVarP(&packageList, "packages", "p", "", "package list file (default from settings: "+
		config.DefaultPackageList+")")

	rootCmd.AddCommand(stageCmd, configCmd)
}
