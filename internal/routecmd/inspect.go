package routecmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/survey-automation/routebatch/internal/discovery"
	"github.com/survey-automation/routebatch/internal/gcp"
	"github.com/survey-automation/routebatch/internal/models"
)

func executeInspect(w io.Writer, configPath string, src source, gcpDir, routeNumber string, gpsSample, samples int) error {
	r, routes, err := scanRoutes(configPath, src)
	if err != nil {
		return err
	}
	found, _ := discovery.Find(routes, []string{routeNumber})
	if len(found) == 0 {
		return fmt.Errorf("route %s has no %s images in %s", routeNumber, r.typ, r.dcim)
	}
	route := found[0]
	if gcpDir == "" {
		gcpDir = r.cfg.Paths.GCP
	}

	fmt.Fprintf(w, "ROUTE %s (%s)\n", route.RouteNumber, r.typ)
	fmt.Fprintln(w, strings.Repeat("-", 80))
	fmt.Fprintf(w, "Folder:         %s\n", route.FolderName)
	fmt.Fprintf(w, "Path:           %s\n", route.FolderPath)
	fmt.Fprintf(w, "Capture date:   %s\n", displayDate(route))
	fmt.Fprintf(w, "Images:         %d (%s)\n", route.ImageCount(), route.SizeCategory())

	if r.typ != models.TypeMS {
		fmt.Fprintf(w, "RGB images:     %d\n", route.RGBCount)
	}
	if r.typ != models.TypeRGB {
		fmt.Fprintf(w, "MS files:       %d\n", route.MSFilesCount)
		fmt.Fprintf(w, "Complete sets:  %d\n", route.CompleteSets)
		fmt.Fprintf(w, "Dropped:        %d incomplete captures\n", route.DroppedCaptures)
		if route.BandCounts != nil {
			fmt.Fprintf(w, "Bands:          %s\n", route.BandCounts)
		}
	}

	if gpsSample >= 0 {
		// GPS tags are only read from the RGB images; the TIFF bands carry them in XMP.
		files := route.RGBFiles
		if r.typ == models.TypeRGB {
			files = route.ImageFiles
		}
		if len(files) > 0 {
			fmt.Fprintf(w, "GPS:            %s\n", discovery.SummarizeGPS(files, gpsSample))
		}
	}

	if gcpDir != "" {
		ref := gcp.Locate(gcpDir, route.RouteNumber, r.typ)
		fmt.Fprintf(w, "GCP:            %s (%s)\n", ref.Path, ref.Status())
	} else {
		fmt.Fprintln(w, "GCP:            no GCP folder configured")
	}

	if samples > 0 && len(route.ImageFiles) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Sample files:")
		for i, f := range route.ImageFiles {
			if i >= samples {
				fmt.Fprintf(w, "  ... and %d more\n", len(route.ImageFiles)-samples)
				break
			}
			fmt.Fprintf(w, "  %s\n", filepath.Base(f))
		}
	}
	return nil
}
