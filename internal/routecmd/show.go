package routecmd

import (
	"fmt"
	"io"

	"github.com/survey-automation/routebatch/internal/gcp"
	"github.com/survey-automation/routebatch/internal/models"
)

func executeShow(w io.Writer, configPath string, src source, gcpDir string) error {
	r, routes, err := scanRoutes(configPath, src)
	if err != nil {
		return err
	}
	if gcpDir == "" {
		gcpDir = r.cfg.Paths.GCP
	}

	fmt.Fprintf(w, "%s routes in %s\n", r.typ, r.dcim)
	if len(routes) == 0 {
		fmt.Fprintln(w, "  No routes found")
		return nil
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-6s %-8s %-7s %-9s %-8s %s\n", "Route", "Images", "Size", "Date", "GCP", "Folder")

	missing := 0
	for _, route := range routes {
		status := "-"
		if gcpDir != "" {
			ref := gcp.Locate(gcpDir, route.RouteNumber, r.typ)
			status = ref.Status()
			if !ref.Exists {
				missing++
			}
		}
		fmt.Fprintf(w, "  %-6s %-8d %-7s %-9s %-8s %s\n",
			route.RouteNumber, route.ImageCount(), route.SizeCategory(), displayDate(route), status, route.FolderName)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total: %d routes, %d images\n", len(routes), totalImages(routes))
	if missing > 0 {
		fmt.Fprintf(w, "⚠ %d routes have no GCP file in %s\n", missing, gcpDir)
	}
	return nil
}

func displayDate(r models.RouteFolder) string {
	if d := r.CaptureDate(); d != "" {
		return d
	}
	return "unknown"
}

func totalImages(routes []models.RouteFolder) int {
	total := 0
	for _, r := range routes {
		total += r.ImageCount()
	}
	return total
}
