package routecmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// source holds the flags shared by every routes subcommand
type source struct {
	dcim   string
	typ    string
	prefix string
}

func (s *source) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.dcim, "dcim", "", "DCIM folder (defaults to paths.dcim from the config file)")
	cmd.Flags().StringVar(&s.typ, "type", "", "Processing type: RGB, MS or Combined (defaults to processing.type)")
	cmd.Flags().StringVar(&s.prefix, "prefix", "", "Route folder prefix (default DJI)")
}

func configFlag(cmd *cobra.Command) string {
	v, _ := cmd.Flags().GetString("config")
	return v
}

// NewScanCmd creates the scan command
func NewScanCmd() *cobra.Command {
	var src source
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Build the route catalog for a processing type",
		Long: `Scan the DCIM folder and list every route folder holding images for the
processing type, sorted by route number.

The catalog can be written to a file; the format follows the file extension
(.json, .jsonl, .csv, .yaml, .parquet). A saved catalog can be fed back to
"routebatch process --catalog".`,
		Example: `  # List RGB routes
  routebatch routes scan --dcim /data/DCIM --type RGB

  # Save the multispectral catalog as parquet
  routebatch routes scan --type MS --out ms_routes.parquet

  # Print the catalog as CSV
  routebatch routes scan --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeScan(cmd.OutOrStdout(), configFlag(cmd), src, format, out)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json, jsonl, csv, yaml or parquet")
	cmd.Flags().StringVar(&out, "out", "", "Write the catalog to this file instead of stdout")

	return cmd
}

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	var src source
	var gcpDir string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List routes with image counts, size category and GCP status",
		Example: `  routebatch routes show --dcim /data/DCIM --gcp /data/GCP --type Combined`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeShow(cmd.OutOrStdout(), configFlag(cmd), src, gcpDir)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&gcpDir, "gcp", "", "GCP folder (defaults to paths.gcp)")

	return cmd
}

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var src source
	var gcpDir string
	var gpsSample int
	var samples int

	cmd := &cobra.Command{
		Use:   "inspect <route>",
		Short: "Show the details of one route",
		Long: `Show everything discovery knows about one route: image counts, the
multispectral band distribution and dropped captures, how many images carry
GPS tags, the GCP file and a few sample file names.`,
		Example: `  routebatch routes inspect 003 --type MS
  routebatch routes inspect 003 --gps-sample 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeInspect(cmd.OutOrStdout(), configFlag(cmd), src, gcpDir, args[0], gpsSample, samples)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&gcpDir, "gcp", "", "GCP folder (defaults to paths.gcp)")
	cmd.Flags().IntVar(&gpsSample, "gps-sample", 20, "Number of images checked for GPS tags (0 for all, -1 to skip)")
	cmd.Flags().IntVar(&samples, "samples", 5, "Number of sample file names shown")

	return cmd
}

// NewDiagnoseCmd creates the diagnose command
func NewDiagnoseCmd() *cobra.Command {
	var src source
	var routes string

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Check whether routes can be merged into one project",
		Long: `Compare the selected routes before a multi-route run: image totals,
multispectral band distribution, incomplete captures and capture dates.`,
		Example: `  routebatch routes diagnose --routes 001,002,003 --type MS`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeDiagnose(cmd.OutOrStdout(), configFlag(cmd), src, splitRoutes(routes))
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&routes, "routes", "", "Comma separated route numbers (defaults to routes.selected_routes, then all)")

	return cmd
}

func splitRoutes(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func requireDir(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s folder is required (flag or config file)", name)
	}
	return nil
}
