package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/winget-bootstrap/internal/config"
	"github.com/oshokin/winget-bootstrap/internal/logger"
)

var (
	// overwrite replaces an existing settings file.
	overwrite bool

	errConfigExists = errors.New("settings file already exists, use --overwrite to replace it")

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage the settings file.",
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write the default settings file for editing.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := config.ResolvePath(config.ExecutableDir(), configPath)

			if _, err := os.Stat(path); err == nil && !overwrite {
				return fmt.Errorf("%s: %w", path, errConfigExists)
			}

			if err := config.Save(path, config.Default()); err != nil {
				return err
			}

			logger.InfoKV(context.Background(), "Settings written", "path", path)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	configInitCmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing settings file")
	configCmd.AddCommand(configInitCmd)
}
