package cmd

import (
	"github.com/spf13/cobra"
	"github.com/survey-automation/routebatch/internal/routecmd"
)

func newRoutesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Discover and inspect route folders",
		Long: `Route discovery tools.

Scans a DCIM folder for route folders named <PREFIX>_<timestamp>_<route>_*,
classifies their RGB and multispectral images and reports what a processing
run would pick up.`,
	}

	cmd.AddCommand(routecmd.NewScanCmd())
	cmd.AddCommand(routecmd.NewShowCmd())
	cmd.AddCommand(routecmd.NewInspectCmd())
	cmd.AddCommand(routecmd.NewDiagnoseCmd())

	return cmd
}
