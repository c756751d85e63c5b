package configcmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/survey-automation/routebatch/internal/config"
	"github.com/survey-automation/routebatch/internal/discovery"
	"github.com/survey-automation/routebatch/internal/models"
)

// apply copies the non-empty overrides into cfg
func (o overrides) apply(cfg *config.Config) error {
	if o.dcim != "" {
		cfg.Paths.DCIM = o.dcim
	}
	if o.gcp != "" {
		cfg.Paths.GCP = o.gcp
	}
	if o.output != "" {
		cfg.Paths.Output = o.output
	}
	if o.scriptBase != "" {
		cfg.Paths.ScriptBase = o.scriptBase
	}
	if o.typ != "" {
		t, err := models.ParseProcessingType(o.typ)
		if err != nil {
			return err
		}
		cfg.Processing.Type = t
	}
	if o.mode != "" {
		m, err := models.ParseRouteMode(o.mode)
		if err != nil {
			return err
		}
		cfg.Processing.Mode = m
	}
	if routes := splitRoutes(o.routes); len(routes) > 0 {
		cfg.Routes.SelectedRoutes = routes
	}
	return nil
}

func detectRoutes(cfg *config.Config) ([]models.RouteFolder, error) {
	if cfg.Paths.DCIM == "" {
		return nil, fmt.Errorf("DCIM folder is required for --scan")
	}
	scanner, err := discovery.NewScanner(discovery.DefaultPrefix)
	if err != nil {
		return nil, err
	}
	routes, err := scanner.Scan(cfg.Paths.DCIM, cfg.Processing.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", cfg.Paths.DCIM, err)
	}
	return routes, nil
}

func executeInit(w io.Writer, configPath string, o overrides, force, scan bool) error {
	path := config.Path(configPath)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.Default()
	if err := o.apply(cfg); err != nil {
		return err
	}
	if scan {
		routes, err := detectRoutes(cfg)
		if err != nil {
			return err
		}
		cfg.Routes.DetectedCount = len(routes)
		fmt.Fprintf(w, "Detected %d %s routes in %s\n", len(routes), cfg.Processing.Type, cfg.Paths.DCIM)
	}

	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(w, "Configuration written to %s\n", path)
	return nil
}

func executeShow(w io.Writer, configPath, key string) error {
	path := config.Path(configPath)
	if key != "" {
		v, err := config.Get(path, key)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, v)
		return nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "# %s\n", path)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cfg); err != nil {
		return err
	}
	fmt.Fprintf(w, "# script: %s\n", cfg.ScriptPaths.For(cfg.Processing.Type, cfg.Processing.Mode))
	return nil
}

func executeListKeys(w io.Writer) error {
	for _, k := range config.Keys() {
		fmt.Fprintln(w, k)
	}
	return nil
}

func executeSet(w io.Writer, configPath, key, value string) error {
	path := config.Path(configPath)
	if err := config.Set(path, key, value); err != nil {
		return err
	}
	fmt.Fprintf(w, "Set %s in %s\n", key, path)
	return nil
}

func executeExport(w io.Writer, configPath, dir string, scan bool) error {
	path := config.Path(configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	var routes []models.RouteFolder
	if scan {
		if routes, err = detectRoutes(cfg); err != nil {
			return err
		}
		if routes == nil {
			routes = []models.RouteFolder{}
		}
	}

	out, err := config.Export(dir, path, cfg, routes)
	if err != nil {
		return fmt.Errorf("failed to export config: %w", err)
	}
	fmt.Fprintf(w, "Configuration exported to %s\n", out)
	return nil
}
