package gcp

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/survey-automation/routebatch/internal/models"
)

// Reference points at the marker file expected for a route
type Reference struct {
	RouteNumber string
	Path        string
	Exists      bool
}

// FileName is the marker file name for a route and processing type
func FileName(routeNumber string, t models.ProcessingType) string {
	if t == models.TypeMS {
		return fmt.Sprintf("gcp_route_%s_MS.xml", routeNumber)
	}
	return fmt.Sprintf("gcp_route_%s.xml", routeNumber)
}

// Locate builds the marker file path under dir and checks that it exists.
// A missing file is reported through Exists, never as an error.
func Locate(dir, routeNumber string, t models.ProcessingType) Reference {
	path := filepath.Join(dir, FileName(routeNumber, t))
	info, err := os.Stat(path)
	return Reference{
		RouteNumber: routeNumber,
		Path:        path,
		Exists:      err == nil && !info.IsDir(),
	}
}

// Status is a short label for listings
func (r Reference) Status() string {
	if r.Exists {
		return "OK"
	}
	return "MISSING"
}
