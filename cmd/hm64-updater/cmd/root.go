package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Jepvid/HM64Updatescripts/internal/config"
	"github.com/Jepvid/HM64Updatescripts/internal/logger"
	"github.com/Jepvid/HM64Updatescripts/internal/service/updater"
	"github.com/Jepvid/HM64Updatescripts/internal/version"
)

var (
	// configPath is the path to the settings YAML file.
	configPath string
	// presetName selects a built-in configuration instead of a settings file.
	presetName string
	// installRoot overrides the installation directory.
	installRoot string
	// logLevel sets the logging verbosity.
	logLevel string

	// rootCmd represents the base command that checks for and installs updates.
	rootCmd = &cobra.Command{
		Use:   "hm64-updater",
		Short: "Keep a HarbourMasters port installation up to date.",
		Long: `Checks the configured remote source (tagged releases, nightly workflow
artifacts, or a pull request's build artifacts) for a build matching this OS,
downloads it, and unpacks it over the installation directory. The installed
version is recorded in version.json, so repeated runs are no-ops until the
remote moves.

Pick a source either with --config pointing at a settings file or with
--preset naming a built-in configuration (see "hm64-updater init --list").`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			options := &updater.Options{
				ConfigPath:  configPath,
				Preset:      presetName,
				InstallRoot: installRoot,
			}

			return updater.Run(ctx, options)
		},
	}
)

// Execute runs the hm64-updater CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c",
		config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&presetName, "preset", "p", "",
		"built-in configuration to use instead of a settings file ("+
			strings.Join(config.PresetNames(), ", ")+")")
	rootCmd.Flags().StringVarP(&installRoot, "install-root", "r", "",
		"installation directory (default: directory of this executable)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info",
		"logging level (debug, info, warn, error)")
}
