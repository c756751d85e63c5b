package discovery

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/survey-automation/routebatch/internal/models"
)

// Scanner builds route catalogs from a DCIM directory
type Scanner struct {
	matcher *Matcher
}

// NewScanner creates a scanner for folders carrying prefix
func NewScanner(prefix string) (*Scanner, error) {
	m, err := NewMatcher(prefix)
	if err != nil {
		return nil, err
	}
	return &Scanner{matcher: m}, nil
}

// Matcher exposes the folder matcher used by the scanner
func (s *Scanner) Matcher() *Matcher {
	return s.matcher
}

// Scan lists the route folders directly below dcimPath that hold images for
// the requested processing type. Folders that do not follow the naming
// grammar or hold no usable images are left out. A missing DCIM directory
// produces an empty catalog, not an error.
func (s *Scanner) Scan(dcimPath string, t models.ProcessingType) ([]models.RouteFolder, error) {
	absPath, err := filepath.Abs(dcimPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DCIM path: %w", err)
	}

	entries, err := os.ReadDir(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("DCIM folder not found", "path", absPath)
			return []models.RouteFolder{}, nil
		}
		return nil, fmt.Errorf("failed to read DCIM folder: %w", err)
	}

	slog.Debug("Scanning DCIM directory", "path", absPath, "type", t, "entries", len(entries))

	routes := make([]models.RouteFolder, 0)
	seen := make(map[string]string)

	for _, entry := range entries {
		folderPath := filepath.Join(absPath, entry.Name())
		info, err := os.Stat(folderPath)
		if err != nil || !info.IsDir() {
			continue
		}

		routeNumber, ok := s.matcher.Match(entry.Name())
		if !ok {
			continue
		}

		if first, dup := seen[routeNumber]; dup {
			slog.Warn("Duplicate route number, keeping first folder", "route", routeNumber, "kept", first, "skipped", entry.Name())
			continue
		}

		route, ok, err := classifyFolder(entry.Name(), folderPath, routeNumber, t)
		if err != nil {
			return nil, err
		}
		if !ok {
			slog.Debug("No usable images in route folder", "folder", entry.Name(), "type", t)
			continue
		}

		seen[routeNumber] = entry.Name()
		routes = append(routes, route)
		slog.Debug("Found route", "route", routeNumber, "images", route.ImageCount())
	}

	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].RouteNumber < routes[j].RouteNumber
	})

	return routes, nil
}

func classifyFolder(name, path, routeNumber string, t models.ProcessingType) (models.RouteFolder, bool, error) {
	route := models.RouteFolder{
		FolderName:  name,
		FolderPath:  path,
		RouteNumber: routeNumber,
		Type:        t,
	}

	switch t {
	case models.TypeRGB:
		rgb, err := FindRGB(path)
		if err != nil {
			return route, false, err
		}
		if len(rgb) == 0 {
			return route, false, nil
		}
		route.RGBCount = len(rgb)
		route.RGBFiles = rgb
		route.ImageFiles = rgb

	case models.TypeMS:
		ms, err := FindMS(path)
		if err != nil {
			return route, false, err
		}
		grouping := GroupCaptures(ms)
		if len(grouping.Complete) == 0 {
			if len(ms) > 0 {
				slog.Warn("No complete multispectral captures", "folder", name, "ms_files", len(ms), "incomplete", len(grouping.Incomplete))
			}
			return route, false, nil
		}
		if len(grouping.Incomplete) > 0 {
			slog.Warn("Dropping incomplete multispectral captures", "folder", name, "dropped", len(grouping.Incomplete))
		}
		counts := grouping.BandCounts
		route.MSFiles = ms
		route.MSFilesCount = len(ms)
		route.CompleteSets = len(grouping.Complete)
		route.DroppedCaptures = len(grouping.Incomplete)
		route.BandCounts = &counts
		route.ImageFiles = grouping.Files()
		route.MSCount = len(route.ImageFiles)

	case models.TypeCombined:
		rgb, err := FindRGB(path)
		if err != nil {
			return route, false, err
		}
		ms, err := FindMS(path)
		if err != nil {
			return route, false, err
		}
		if len(rgb) == 0 || len(ms) == 0 {
			return route, false, nil
		}
		counts := GroupCaptures(ms).BandCounts
		route.RGBCount = len(rgb)
		route.MSCount = len(ms)
		route.MSFilesCount = len(ms)
		route.BandCounts = &counts
		route.RGBFiles = rgb
		route.MSFiles = ms
		route.ImageFiles = append(append(make([]string, 0, len(rgb)+len(ms)), rgb...), ms...)

	default:
		return route, false, fmt.Errorf("unsupported processing type: %s", t)
	}

	return route, true, nil
}

// Find picks the requested route numbers from a catalog, in request order.
// Route numbers absent from the catalog are returned separately.
func Find(catalog []models.RouteFolder, routeNumbers []string) ([]models.RouteFolder, []string) {
	index := make(map[string]models.RouteFolder, len(catalog))
	for _, r := range catalog {
		index[r.RouteNumber] = r
	}

	var found []models.RouteFolder
	var missing []string
	for _, n := range routeNumbers {
		if r, ok := index[n]; ok {
			found = append(found, r)
		} else {
			missing = append(missing, n)
		}
	}
	return found, missing
}

// RouteNumbers lists the route numbers of a catalog
func RouteNumbers(catalog []models.RouteFolder) []string {
	numbers := make([]string, 0, len(catalog))
	for _, r := range catalog {
		numbers = append(numbers, r.RouteNumber)
	}
	return numbers
}
