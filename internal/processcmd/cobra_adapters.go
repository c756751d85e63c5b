package processcmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/survey-automation/routebatch/internal/engine"
	"github.com/survey-automation/routebatch/internal/engine/bridge"
	"github.com/survey-automation/routebatch/internal/engine/simulated"
	"github.com/survey-automation/routebatch/internal/pipeline"
	"github.com/survey-automation/routebatch/internal/publish"
)

// processFlags are the command line inputs of a processing run. Empty
// values are filled from the configuration file.
type processFlags struct {
	dcim    string
	gcp     string
	output  string
	typ     string
	mode    string
	prefix  string
	routes  string
	all     bool
	catalog string

	engine    string
	bridgeURL string

	full          bool
	sourceCRS     string
	targetCRS     string
	minAlignRatio float64

	publishURI    string
	publishPrefix string
	runsDir       string
}

func configFlag(cmd *cobra.Command) string {
	v, _ := cmd.Flags().GetString("config")
	return v
}

// NewProcessCmd creates the process command
func NewProcessCmd() *cobra.Command {
	var f processFlags

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the photogrammetry pipeline over selected routes",
		Long: `Process routes through the photogrammetry engine.

In single mode every route becomes its own versioned project. In multiple
mode the routes are imported into separate chunks, merged and processed as
one project. Every run writes a YAML record into the runs folder.

The engine is reached through its scripting bridge ($ROUTEBATCH_BRIDGE_URL,
default http://localhost:8765). The simulated engine runs the same stage
sequence without the engine and is meant for dry runs.`,
		Example: `  # Process two routes one project each
  routebatch process --routes 001,003 --type RGB

  # Merge every multispectral route into one project
  routebatch process --all --type MS --mode multiple

  # Full pipeline with products, published to a bucket
  routebatch process --routes 002 --full --publish file:///srv/products

  # Dry run from a saved catalog
  routebatch process --catalog routes.parquet --all --engine simulated`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.all && f.routes != "" {
				return fmt.Errorf("--routes and --all are mutually exclusive")
			}
			eng, err := newEngine(f.engine, f.bridgeURL)
			if err != nil {
				return err
			}
			return executeProcess(cmd.Context(), cmd.OutOrStdout(), configFlag(cmd), f, eng)
		},
	}

	cmd.Flags().StringVar(&f.dcim, "dcim", "", "DCIM folder (defaults to paths.dcim)")
	cmd.Flags().StringVar(&f.gcp, "gcp", "", "GCP folder (defaults to paths.gcp)")
	cmd.Flags().StringVar(&f.output, "output", "", "Output folder for projects (defaults to paths.output)")
	cmd.Flags().StringVar(&f.typ, "type", "", "Processing type: RGB, MS or Combined (defaults to processing.type)")
	cmd.Flags().StringVar(&f.mode, "mode", "", "Route mode: single or multiple (defaults to processing.mode)")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "Route folder prefix (default DJI)")
	cmd.Flags().StringVar(&f.routes, "routes", "", "Comma separated route numbers (defaults to routes.selected_routes)")
	cmd.Flags().BoolVar(&f.all, "all", false, "Process every discovered route")
	cmd.Flags().StringVar(&f.catalog, "catalog", "", "Load routes from a saved catalog instead of scanning")
	cmd.Flags().StringVar(&f.engine, "engine", "bridge", "Engine: bridge or simulated")
	cmd.Flags().StringVar(&f.bridgeURL, "bridge-url", "", "Engine bridge URL (defaults to $ROUTEBATCH_BRIDGE_URL)")
	cmd.Flags().BoolVar(&f.full, "full", false, "Build mesh, texture, DEM and orthomosaic and export them (always on for Combined single routes)")
	cmd.Flags().StringVar(&f.sourceCRS, "source-crs", pipeline.DefaultSourceCRS, "CRS of the image GPS tags")
	cmd.Flags().StringVar(&f.targetCRS, "target-crs", pipeline.DefaultTargetCRS, "CRS of the GCP markers and products")
	cmd.Flags().Float64Var(&f.minAlignRatio, "min-align", pipeline.DefaultMinAlignRatio, "Warn when fewer cameras than this share align")
	cmd.Flags().StringVar(&f.publishURI, "publish", "", "Upload products of successful projects to this bucket URL")
	cmd.Flags().StringVar(&f.publishPrefix, "publish-prefix", "", "Key prefix inside the publish bucket")
	cmd.Flags().StringVar(&f.runsDir, "runs-dir", "runs", "Folder for run records")

	return cmd
}

// NewPublishCmd creates the publish command
func NewPublishCmd() *cobra.Command {
	var bucketURI string
	var opts publish.Options

	cmd := &cobra.Command{
		Use:   "publish <project-folder>...",
		Short: "Upload exported products of project folders to a bucket",
		Long: `Upload the reports, orthomosaics, DEMs and point clouds of one or more
project folders. Objects are stored under <prefix>/<project folder name>/ and
unchanged files are skipped using a content fingerprint kept in the object
metadata.

Bucket URLs follow the gocloud.dev conventions, e.g. file:///srv/products.`,
		Example: `  routebatch publish out/route_001_Combined --bucket file:///srv/products
  routebatch publish out/route_00* --bucket file:///srv/products --prefix 2024-survey --verify`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executePublish(cmd.Context(), cmd.OutOrStdout(), bucketURI, args, opts)
		},
	}

	cmd.Flags().StringVar(&bucketURI, "bucket", "", "Destination bucket URL (required)")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "Key prefix inside the bucket")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 4, "Number of parallel uploads")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Upload even when the stored fingerprint matches")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "Re-read every uploaded object and compare fingerprints")

	_ = cmd.MarkFlagRequired("bucket")
	return cmd
}

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "report <run-record|runs-folder>",
		Short: "Print a processing run record",
		Long: `Print a run record written by "routebatch process". Given a folder, the
most recent record in it is printed.`,
		Example: `  routebatch report runs
  routebatch report runs/run-2024-05-01_10-00-00-1a2b3c4d.yaml --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd.OutOrStdout(), args[0], format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or csv")

	return cmd
}

func newEngine(name, bridgeURL string) (engine.Engine, error) {
	switch strings.ToLower(name) {
	case "bridge", "":
		return bridge.New(bridgeURL), nil
	case "simulated":
		return simulated.New(), nil
	default:
		return nil, fmt.Errorf("unknown engine %q (supported: bridge, simulated)", name)
	}
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
