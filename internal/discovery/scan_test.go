package discovery

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/survey-automation/routebatch/internal/models"
)

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	s, err := NewScanner(DefaultPrefix)
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}
	return s
}

func rgbNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("DJI_20240101080000_%04d_D.JPG", i+1)
	}
	return names
}

func msNames(captures int) []string {
	var names []string
	for i := 0; i < captures; i++ {
		for _, b := range Bands {
			names = append(names, fmt.Sprintf("DJI_20240101080000_%04d_MS_%s.TIF", i+1, b))
		}
	}
	return names
}

func TestScanRGB(t *testing.T) {
	dcim := t.TempDir()
	touch(t, filepath.Join(dcim, "DJI_202401010800_001_x"), rgbNames(10)...)
	touch(t, filepath.Join(dcim, "DJI_202401010800_002_x"))
	touch(t, filepath.Join(dcim, "not_a_route"), rgbNames(3)...)

	routes, err := newTestScanner(t).Scan(dcim, models.TypeRGB)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(routes) != 1 {
		t.Fatalf("Expected exactly 1 route, got %d", len(routes))
	}
	if routes[0].RouteNumber != "001" {
		t.Errorf("Expected route 001, got %s", routes[0].RouteNumber)
	}
	if routes[0].RGBCount != 10 {
		t.Errorf("Expected rgb_count 10, got %d", routes[0].RGBCount)
	}
	if !filepath.IsAbs(routes[0].ImageFiles[0]) {
		t.Errorf("Expected absolute image paths, got %s", routes[0].ImageFiles[0])
	}
}

func TestScanMS(t *testing.T) {
	dcim := t.TempDir()
	touch(t, filepath.Join(dcim, "DJI_20240101080000_003_ms"), msNames(2)...)

	routes, err := newTestScanner(t).Scan(dcim, models.TypeMS)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("Expected 1 route, got %d", len(routes))
	}

	r := routes[0]
	if r.CompleteSets != 2 {
		t.Errorf("Expected complete_sets 2, got %d", r.CompleteSets)
	}
	if r.MSFilesCount != 8 {
		t.Errorf("Expected ms_files_count 8, got %d", r.MSFilesCount)
	}
	if r.BandCounts == nil || r.BandCounts.Total() != 8 {
		t.Errorf("Expected band counts totalling 8, got %v", r.BandCounts)
	}
	if len(r.ImageFiles) != 8 {
		t.Errorf("Expected 8 image files, got %d", len(r.ImageFiles))
	}
}

func TestScanMSIncompleteOnly(t *testing.T) {
	dcim := t.TempDir()
	touch(t, filepath.Join(dcim, "DJI_20240101080000_004_ms"),
		"DJI_20240101080000_0001_MS_G.TIF",
		"DJI_20240101080000_0001_MS_R.TIF",
		"DJI_20240101080000_0001_MS_NIR.TIF",
	)

	routes, err := newTestScanner(t).Scan(dcim, models.TypeMS)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(routes) != 0 {
		t.Errorf("Expected route with only incomplete captures to be excluded, got %d routes", len(routes))
	}
}

func TestScanCombinedRequiresBoth(t *testing.T) {
	dcim := t.TempDir()
	touch(t, filepath.Join(dcim, "DJI_202401010800_001_x"), append(rgbNames(2), msNames(1)...)...)
	touch(t, filepath.Join(dcim, "DJI_202401010800_002_x"), rgbNames(2)...)

	routes, err := newTestScanner(t).Scan(dcim, models.TypeCombined)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("Expected 1 combined route, got %d", len(routes))
	}
	r := routes[0]
	if r.RGBCount != 2 || r.MSCount != 4 {
		t.Errorf("Expected 2 RGB + 4 MS, got %d + %d", r.RGBCount, r.MSCount)
	}
	if len(r.ImageFiles) != 6 {
		t.Errorf("Expected 6 image files, got %d", len(r.ImageFiles))
	}
	if filepath.Ext(r.ImageFiles[0]) != ".JPG" {
		t.Errorf("Expected RGB files first, got %s", r.ImageFiles[0])
	}
}

func TestScanSortedByRoute(t *testing.T) {
	dcim := t.TempDir()
	for _, folder := range []string{"DJI_202401010800_010_a", "DJI_202401010800_002_b", "DJI_202401010800_005_c"} {
		touch(t, filepath.Join(dcim, folder), rgbNames(1)...)
	}

	routes, err := newTestScanner(t).Scan(dcim, models.TypeRGB)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := RouteNumbers(routes)
	want := []string{"002", "005", "010"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
			break
		}
	}
}

func TestScanDuplicateRouteNumber(t *testing.T) {
	dcim := t.TempDir()
	touch(t, filepath.Join(dcim, "DJI_202401010800_001_a"), rgbNames(1)...)
	touch(t, filepath.Join(dcim, "DJI_202401020800_001_b"), rgbNames(2)...)

	routes, err := newTestScanner(t).Scan(dcim, models.TypeRGB)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("Expected duplicate route number to be collapsed, got %d routes", len(routes))
	}
	if routes[0].FolderName != "DJI_202401010800_001_a" {
		t.Errorf("Expected first folder to win, got %s", routes[0].FolderName)
	}
}

func TestScanMissingDCIM(t *testing.T) {
	routes, err := newTestScanner(t).Scan(filepath.Join(t.TempDir(), "missing"), models.TypeRGB)
	if err != nil {
		t.Fatalf("Expected no error for a missing DCIM folder, got %v", err)
	}
	if len(routes) != 0 {
		t.Errorf("Expected empty catalog, got %d routes", len(routes))
	}
}

func TestFind(t *testing.T) {
	catalog := []models.RouteFolder{{RouteNumber: "001"}, {RouteNumber: "002"}, {RouteNumber: "003"}}

	found, missing := Find(catalog, []string{"003", "009", "001"})
	if len(found) != 2 || found[0].RouteNumber != "003" || found[1].RouteNumber != "001" {
		t.Errorf("Expected routes 003 and 001 in request order, got %v", RouteNumbers(found))
	}
	if len(missing) != 1 || missing[0] != "009" {
		t.Errorf("Expected 009 missing, got %v", missing)
	}
}
