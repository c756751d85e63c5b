package routecmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/survey-automation/routebatch/internal/catalog"
	"github.com/survey-automation/routebatch/internal/config"
	"github.com/survey-automation/routebatch/internal/discovery"
	"github.com/survey-automation/routebatch/internal/models"
)

// resolved is a source with the config file defaults applied
type resolved struct {
	cfg  *config.Config
	dcim string
	typ  models.ProcessingType
}

func resolve(configPath string, src source) (resolved, error) {
	cfg, err := config.Load(config.Path(configPath))
	if err != nil {
		return resolved{}, fmt.Errorf("failed to load config: %w", err)
	}

	r := resolved{cfg: cfg, dcim: src.dcim, typ: cfg.Processing.Type}
	if r.dcim == "" {
		r.dcim = cfg.Paths.DCIM
	}
	if err := requireDir("DCIM", r.dcim); err != nil {
		return resolved{}, err
	}
	if src.typ != "" {
		if r.typ, err = models.ParseProcessingType(src.typ); err != nil {
			return resolved{}, err
		}
	}
	return r, nil
}

func scanRoutes(configPath string, src source) (resolved, []models.RouteFolder, error) {
	r, err := resolve(configPath, src)
	if err != nil {
		return r, nil, err
	}

	scanner, err := discovery.NewScanner(src.prefix)
	if err != nil {
		return r, nil, err
	}
	routes, err := scanner.Scan(r.dcim, r.typ)
	if err != nil {
		return r, nil, fmt.Errorf("failed to scan %s: %w", r.dcim, err)
	}
	slog.Debug("Route catalog built", "dcim", r.dcim, "type", r.typ, "routes", len(routes))
	return r, routes, nil
}

func executeScan(w io.Writer, configPath string, src source, format, out string) error {
	r, routes, err := scanRoutes(configPath, src)
	if err != nil {
		return err
	}

	if out != "" {
		if err := catalog.WriteFile(out, routes); err != nil {
			return fmt.Errorf("failed to write catalog: %w", err)
		}
		fmt.Fprintf(w, "Wrote %d %s routes to %s\n", len(routes), r.typ, out)
		return nil
	}

	if format == "text" {
		printCatalog(w, r, routes)
		return nil
	}
	return catalog.Write(w, catalog.Format(format), routes)
}

func printCatalog(w io.Writer, r resolved, routes []models.RouteFolder) {
	fmt.Fprintf(w, "Found %d %s routes in %s\n", len(routes), r.typ, r.dcim)
	if len(routes) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, route := range routes {
		fmt.Fprintf(w, "  Route %s: %4d images  %s\n", route.RouteNumber, route.ImageCount(), route.FolderName)
		switch r.typ {
		case models.TypeMS:
			fmt.Fprintf(w, "             %d complete sets, %d dropped\n", route.CompleteSets, route.DroppedCaptures)
		case models.TypeCombined:
			fmt.Fprintf(w, "             %d RGB + %d MS files\n", route.RGBCount, route.MSFilesCount)
		}
	}
}
