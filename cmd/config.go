package cmd

import (
	"github.com/spf13/cobra"
	"github.com/survey-automation/routebatch/internal/configcmd"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		Long: `Create, read and patch the JSON configuration file.

The file holds the DCIM, GCP, output and script folders, the processing type
and route mode, the console script names and the last route selection.`,
	}

	cmd.AddCommand(configcmd.NewInitCmd())
	cmd.AddCommand(configcmd.NewShowCmd())
	cmd.AddCommand(configcmd.NewSetCmd())
	cmd.AddCommand(configcmd.NewExportCmd())

	return cmd
}

func newConsoleCmd() *cobra.Command {
	return configcmd.NewConsoleCmd()
}
