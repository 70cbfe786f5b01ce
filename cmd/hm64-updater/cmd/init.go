package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jepvid/HM64Updatescripts/internal/config"
)

var (
	// listPresets prints the available presets instead of writing a file.
	listPresets bool

	// initCmd writes a starter settings file from a built-in preset.
	initCmd = &cobra.Command{
		Use:   "init [preset]",
		Short: "Write a starter settings file from a built-in preset.",
		Long: `Writes a settings YAML file for one of the built-in port configurations.
Edit the file afterwards to point at a different repository, branch or
pull request.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if listPresets {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(config.PresetNames(), "\n"))
				return err
			}

			if len(args) == 0 {
				return fmt.Errorf("preset name required, one of: %s", strings.Join(config.PresetNames(), ", "))
			}

			cfg, err := config.Preset(args[0])
			if err != nil {
				return err
			}

			if err = config.Save(configPath, cfg); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s settings to %s\n", args[0], configPath)

			return err
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	initCmd.Flags().BoolVar(&listPresets, "list", false, "list available presets")

	rootCmd.AddCommand(initCmd)
}
