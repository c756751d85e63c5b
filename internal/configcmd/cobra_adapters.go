package configcmd

import (
	"strings"

	"github.com/spf13/cobra"
)

func configFlag(cmd *cobra.Command) string {
	v, _ := cmd.Flags().GetString("config")
	return v
}

// overrides are the settings that can be given on the command line in
// place of the values stored in the configuration file
type overrides struct {
	dcim       string
	gcp        string
	output     string
	scriptBase string
	typ        string
	mode       string
	routes     string
}

func (o *overrides) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.dcim, "dcim", "", "DCIM folder")
	cmd.Flags().StringVar(&o.gcp, "gcp", "", "GCP folder")
	cmd.Flags().StringVar(&o.output, "output", "", "Output folder")
	cmd.Flags().StringVar(&o.scriptBase, "script-base", "", "Folder holding the console scripts")
	cmd.Flags().StringVar(&o.typ, "type", "", "Processing type: RGB, MS or Combined")
	cmd.Flags().StringVar(&o.mode, "mode", "", "Route mode: single or multiple")
	cmd.Flags().StringVar(&o.routes, "routes", "", "Comma separated route numbers")
}

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var o overrides
	var force bool
	var scan bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file",
		Long: `Create a configuration file with the default script names and the
given folders. With --scan the DCIM folder is scanned and the number of
detected routes is recorded.`,
		Example: `  routebatch config init --dcim /data/DCIM --gcp /data/GCP --output /data/out --script-base /opt/scripts
  routebatch config init --type MS --mode multiple --scan --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeInit(cmd.OutOrStdout(), configFlag(cmd), o, force, scan)
		},
	}

	o.register(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	cmd.Flags().BoolVar(&scan, "scan", false, "Scan the DCIM folder and record the detected route count")

	return cmd
}

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Example: `  routebatch config show
  routebatch config show --key paths.dcim`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeShow(cmd.OutOrStdout(), configFlag(cmd), key)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Print a single dotted key")

	return cmd
}

// NewSetCmd creates the set command
func NewSetCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one configuration value in place",
		Long: `Change one dotted key of the configuration file. Keys this tool does not
know are left untouched, so the file can carry extra settings.

List values such as routes.selected_routes take a comma separated string.`,
		Example: `  routebatch config set paths.dcim /data/DCIM
  routebatch config set processing.type ms
  routebatch config set routes.selected_routes 001,002,004
  routebatch config set --list`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return executeListKeys(cmd.OutOrStdout())
			}
			return executeSet(cmd.OutOrStdout(), configFlag(cmd), args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List the keys that can be set")

	return cmd
}

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var dir string
	var scan bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a timestamped copy of the configuration",
		Long: `Write a timestamped copy of the configuration file, e.g. for archiving
the settings of a survey. With --scan the copy also lists every detected
route with its image count.`,
		Example: `  routebatch config export --dir archive --scan`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeExport(cmd.OutOrStdout(), configFlag(cmd), dir, scan)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Folder for the exported file")
	cmd.Flags().BoolVar(&scan, "scan", false, "Include the routes detected in the DCIM folder")

	return cmd
}

// NewConsoleCmd creates the console command
func NewConsoleCmd() *cobra.Command {
	var o overrides
	var script string
	var save bool

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Print the lines to paste into the engine's scripting console",
		Long: `Print the console lines that load the processing script, configure the
folders and start processing for the selected routes. The lines are only
printed, never executed.

Values come from the configuration file; flags override them. With --save
the overrides are written back to the configuration file.`,
		Example: `  routebatch console
  routebatch console --routes 003
  routebatch console --type Combined --mode multiple --routes 001,002 --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeConsole(cmd.OutOrStdout(), configFlag(cmd), o, script, save)
		},
	}

	o.register(cmd)
	cmd.Flags().StringVar(&script, "script", "", "Script file name (defaults to the configured script for type and mode)")
	cmd.Flags().BoolVar(&save, "save", false, "Write the overrides back to the configuration file")

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
