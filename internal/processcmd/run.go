package processcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/survey-automation/routebatch/internal/catalog"
	"github.com/survey-automation/routebatch/internal/config"
	"github.com/survey-automation/routebatch/internal/discovery"
	"github.com/survey-automation/routebatch/internal/engine"
	"github.com/survey-automation/routebatch/internal/models"
	"github.com/survey-automation/routebatch/internal/pipeline"
	"github.com/survey-automation/routebatch/internal/publish"
	"github.com/survey-automation/routebatch/internal/report"
)

// settings are the flags after the configuration file filled the gaps
type settings struct {
	dcim   string
	gcp    string
	output string
	typ    models.ProcessingType
	mode   models.RouteMode
	routes []string
}

func resolveSettings(configPath string, f processFlags) (settings, error) {
	cfg, err := config.Load(config.Path(configPath))
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}

	s := settings{
		dcim:   firstNonEmpty(f.dcim, cfg.Paths.DCIM),
		gcp:    firstNonEmpty(f.gcp, cfg.Paths.GCP),
		output: firstNonEmpty(f.output, cfg.Paths.Output),
		typ:    cfg.Processing.Type,
		mode:   cfg.Processing.Mode,
	}
	if f.typ != "" {
		if s.typ, err = models.ParseProcessingType(f.typ); err != nil {
			return settings{}, err
		}
	}
	if f.mode != "" {
		if s.mode, err = models.ParseRouteMode(f.mode); err != nil {
			return settings{}, err
		}
	}
	if !f.all {
		s.routes = splitRoutes(f.routes)
		if len(s.routes) == 0 {
			s.routes = cfg.Routes.SelectedRoutes
		}
		if len(s.routes) == 0 {
			return settings{}, fmt.Errorf("no routes selected: pass --routes, --all or set routes.selected_routes")
		}
	}
	if f.catalog == "" && s.dcim == "" {
		return settings{}, fmt.Errorf("DCIM folder is required (flag or config file)")
	}
	return s, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func loadRoutes(f processFlags, s settings) ([]models.RouteFolder, error) {
	if f.catalog != "" {
		all, err := catalog.NewLoader(f.catalog).Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		var routes []models.RouteFolder
		for _, r := range all {
			if r.Type != s.typ {
				slog.Warn("Skipping catalog entry of another type", "route", r.RouteNumber, "type", r.Type)
				continue
			}
			routes = append(routes, r)
		}
		return routes, nil
	}

	scanner, err := discovery.NewScanner(f.prefix)
	if err != nil {
		return nil, err
	}
	routes, err := scanner.Scan(s.dcim, s.typ)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.dcim, err)
	}
	return routes, nil
}

func selectRoutes(available []models.RouteFolder, requested []string) ([]models.RouteFolder, error) {
	if requested == nil {
		if len(available) == 0 {
			return nil, fmt.Errorf("no routes found")
		}
		return available, nil
	}
	found, missing := discovery.Find(available, requested)
	for _, n := range missing {
		slog.Warn("Route not found, skipping", "route", n)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("none of the selected routes were found")
	}
	return found, nil
}

func executeProcess(ctx context.Context, w io.Writer, configPath string, f processFlags, eng engine.Engine) error {
	s, err := resolveSettings(configPath, f)
	if err != nil {
		return err
	}

	opts := pipeline.DefaultOptions(s.typ, s.gcp, s.output)
	opts.Full = f.full
	if f.sourceCRS != "" {
		opts.SourceCRS = f.sourceCRS
	}
	if f.targetCRS != "" {
		opts.TargetCRS = f.targetCRS
	}
	if f.minAlignRatio > 0 {
		opts.MinAlignRatio = f.minAlignRatio
	}
	runner, err := pipeline.NewRunner(eng, opts)
	if err != nil {
		return err
	}

	available, err := loadRoutes(f, s)
	if err != nil {
		return err
	}
	routes, err := selectRoutes(available, s.routes)
	if err != nil {
		return err
	}

	slog.Info("Starting processing run",
		"type", s.typ,
		"mode", s.mode,
		"routes", len(routes),
		"engine", f.engine,
		"output", s.output)

	var results []pipeline.RouteResult
	if s.mode == models.ModeMultiple {
		results = []pipeline.RouteResult{runner.ProcessMerged(ctx, routes)}
	} else {
		results = runner.ProcessAll(ctx, routes)
	}

	if f.publishURI != "" {
		publishResults(ctx, f.publishURI, publish.Options{Prefix: f.publishPrefix}, results)
	}

	run := report.NewRun(report.RunConfig{
		Engine: f.engine,
		Type:   string(s.typ),
		Mode:   string(s.mode),
		Full:   f.full,
		DCIM:   s.dcim,
		GCP:    s.gcp,
		Output: s.output,
		Routes: discovery.RouteNumbers(routes),
	}, results)

	fmt.Fprintln(w, "\n========================================")
	fmt.Fprintln(w, "Processing Summary")
	fmt.Fprintln(w, "========================================")
	report.PrintSummary(w, run.Summary)
	fmt.Fprintln(w, "========================================")

	path, err := report.SaveYAML(f.runsDir, run)
	if err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}
	fmt.Fprintf(w, "\nRun record saved to: %s\n", path)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("processing interrupted: %w", err)
	}
	if run.Summary.Failed > 0 {
		return fmt.Errorf("%d of %d projects failed", run.Summary.Failed, run.Summary.Total)
	}
	return nil
}

// publishResults uploads the products of every successful project. Upload
// failures are recorded as warnings on the result.
func publishResults(ctx context.Context, uri string, opts publish.Options, results []pipeline.RouteResult) {
	p, err := publish.Open(ctx, uri, opts)
	if err != nil {
		slog.Error("Failed to open publish bucket", "uri", uri, "err", err)
		return
	}
	defer p.Close()

	for i := range results {
		res := &results[i]
		if !res.Succeeded() || res.ProjectFile == "" {
			continue
		}
		items, err := p.Publish(ctx, filepath.Dir(res.ProjectFile))
		if err != nil {
			slog.Error("Failed to publish products", "project", res.Label(), "err", err)
			res.Warnings = append(res.Warnings, fmt.Sprintf("publish failed: %v", err))
			continue
		}
		slog.Info("Published products", "project", res.Label(), "files", len(items))
	}
}
