package routecmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/survey-automation/routebatch/internal/discovery"
	"github.com/survey-automation/routebatch/internal/models"
)

// diagnosis summarizes whether a set of routes can be merged
type diagnosis struct {
	Routes       []models.RouteFolder
	Missing      []string
	TotalImages  int
	CompleteSets int
	Dropped      int
	Bands        models.BandCounts
	Dates        []string
	Issues       []string
}

func diagnose(catalog []models.RouteFolder, selected []string) diagnosis {
	var d diagnosis
	if len(selected) == 0 {
		d.Routes = catalog
	} else {
		d.Routes, d.Missing = discovery.Find(catalog, selected)
	}

	dates := map[string]bool{}
	for _, r := range d.Routes {
		d.TotalImages += r.ImageCount()
		d.CompleteSets += r.CompleteSets
		d.Dropped += r.DroppedCaptures
		if r.BandCounts != nil {
			d.Bands.G += r.BandCounts.G
			d.Bands.NIR += r.BandCounts.NIR
			d.Bands.R += r.BandCounts.R
			d.Bands.RE += r.BandCounts.RE
		}
		if date := r.CaptureDate(); date != "" {
			dates[date] = true
		}
	}
	for date := range dates {
		d.Dates = append(d.Dates, date)
	}
	sort.Strings(d.Dates)

	if len(d.Missing) > 0 {
		d.Issues = append(d.Issues, fmt.Sprintf("routes not found: %s", strings.Join(d.Missing, ", ")))
	}
	if len(d.Routes) < 2 {
		d.Issues = append(d.Issues, fmt.Sprintf("merging needs at least 2 routes, have %d", len(d.Routes)))
	}
	if len(d.Dates) > 1 {
		d.Issues = append(d.Issues, fmt.Sprintf("routes were captured on %d different dates", len(d.Dates)))
	}
	if b := d.Bands; b.Total() > 0 && (b.G != b.NIR || b.G != b.R || b.G != b.RE) {
		d.Issues = append(d.Issues, "multispectral bands have unequal file counts")
	}
	if d.Dropped > 0 {
		d.Issues = append(d.Issues, fmt.Sprintf("%d incomplete captures will be skipped", d.Dropped))
	}
	return d
}

func executeDiagnose(w io.Writer, configPath string, src source, selected []string) error {
	r, routes, err := scanRoutes(configPath, src)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		selected = r.cfg.Routes.SelectedRoutes
	}

	d := diagnose(routes, selected)

	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Dataset Diagnosis (%s)\n", r.typ)
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Routes:         %d\n", len(d.Routes))
	for _, route := range d.Routes {
		fmt.Fprintf(w, "  %s: %d images (%s)\n", route.RouteNumber, route.ImageCount(), displayDate(route))
	}
	fmt.Fprintf(w, "Total images:   %d\n", d.TotalImages)
	if d.Bands.Total() > 0 {
		fmt.Fprintf(w, "Complete sets:  %d\n", d.CompleteSets)
		fmt.Fprintf(w, "Bands:          %s\n", d.Bands)
	}
	if len(d.Dates) > 0 {
		fmt.Fprintf(w, "Capture dates:  %s\n", strings.Join(d.Dates, ", "))
	}
	fmt.Fprintln(w)

	if len(d.Issues) == 0 {
		fmt.Fprintln(w, "✅ Routes look compatible for merging")
		return nil
	}
	for _, issue := range d.Issues {
		fmt.Fprintf(w, "⚠ %s\n", issue)
	}
	return nil
}
