package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/winget-bootstrap/internal/service/stager"
)

// force re-downloads files that are already staged.
var force bool

// stageCmd downloads artifacts for a later offline run.
var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Download the dependencies and the runtime into the offline directory.",
	Long: `Downloads the shared-framework dependencies and the runtime bundle into the offline
directory and writes manifest.yaml with their SHA-512 checksums.
Copy the directory to a host without internet access and run winget-bootstrap --offline there.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		return stager.Run(ctx, &stager.Options{
			ConfigPath: configPath,
			OfflineDir: offlineDir,
			Force:      force,
		})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	stageCmd.Flags().BoolVarP(&force, "force", "f", false, "download files even when an intact copy is staged")
}
