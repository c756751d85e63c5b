package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "routebatch",
		Short: "Batch photogrammetry processing for drone survey routes",
		Long: `routebatch discovers drone flight routes in a DCIM folder and drives a
photogrammetry engine through alignment, georeferencing and product export.

Routes can be processed one project per route or merged into a single project.
The configuration file keeps the folders and selected routes between runs.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if logLevel == "" {
				logLevel = os.Getenv("LOG_LEVEL")
			}
			setupLogging(logLevel)
		},
	}

	cmd.PersistentFlags().String("config", "", "Configuration file (defaults to $ROUTEBATCH_CONFIG or ./routebatch_config.json)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (defaults to $LOG_LEVEL or info)")

	cmd.AddCommand(newRoutesCmd())
	cmd.AddCommand(newProcessCmd())
	cmd.AddCommand(newPublishCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newConsoleCmd())

	return cmd
}

func setupLogging(level string) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(handler))
}
