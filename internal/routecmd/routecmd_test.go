package routecmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/survey-automation/routebatch/internal/catalog"
	"github.com/survey-automation/routebatch/internal/models"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func rgbImages(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("DJI_20240101080000_%04d_D.JPG", i+1)
	}
	return names
}

// fixture lays out a DCIM folder with routes 001 (12 images) and 002 (3
// images) and a GCP folder holding only route 001's file
func fixture(t *testing.T) (configPath string, src source, gcpDir string) {
	t.Helper()
	root := t.TempDir()
	dcim := filepath.Join(root, "DCIM")
	touch(t, filepath.Join(dcim, "DJI_202401010800_001_north"), rgbImages(12)...)
	touch(t, filepath.Join(dcim, "DJI_202401020900_002_south"), rgbImages(3)...)
	touch(t, filepath.Join(dcim, "misc"), rgbImages(2)...)

	gcpDir = filepath.Join(root, "GCP")
	touch(t, gcpDir, "gcp_route_001.xml")

	return filepath.Join(root, "missing_config.json"), source{dcim: dcim, typ: "rgb"}, gcpDir
}

func TestExecuteScanText(t *testing.T) {
	configPath, src, _ := fixture(t)

	var buf bytes.Buffer
	if err := executeScan(&buf, configPath, src, "text", ""); err != nil {
		t.Fatalf("executeScan failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Found 2 RGB routes") {
		t.Errorf("Expected route count in output, got:\n%s", out)
	}
	if strings.Index(out, "Route 001") > strings.Index(out, "Route 002") {
		t.Errorf("Expected routes sorted by number, got:\n%s", out)
	}
}

func TestExecuteScanToFile(t *testing.T) {
	configPath, src, _ := fixture(t)
	out := filepath.Join(t.TempDir(), "routes.yaml")

	var buf bytes.Buffer
	if err := executeScan(&buf, configPath, src, "text", out); err != nil {
		t.Fatalf("executeScan failed: %v", err)
	}

	routes, err := catalog.NewLoader(out).Load()
	if err != nil {
		t.Fatalf("Failed to reload catalog: %v", err)
	}
	if len(routes) != 2 || routes[0].RGBCount != 12 {
		t.Errorf("Unexpected catalog contents: %+v", routes)
	}
}

func TestExecuteScanRequiresDCIM(t *testing.T) {
	configPath, _, _ := fixture(t)
	err := executeScan(&bytes.Buffer{}, configPath, source{typ: "rgb"}, "text", "")
	if err == nil {
		t.Fatal("Expected error without a DCIM folder")
	}
}

func TestExecuteScanRejectsUnknownType(t *testing.T) {
	configPath, src, _ := fixture(t)
	src.typ = "thermal"
	if err := executeScan(&bytes.Buffer{}, configPath, src, "text", ""); err == nil {
		t.Fatal("Expected error for an unknown processing type")
	}
}

func TestExecuteShow(t *testing.T) {
	configPath, src, gcpDir := fixture(t)

	var buf bytes.Buffer
	if err := executeShow(&buf, configPath, src, gcpDir); err != nil {
		t.Fatalf("executeShow failed: %v", err)
	}
	out := buf.String()

	tests := []struct {
		name string
		want string
	}{
		{"gcp ok", "OK"},
		{"gcp missing", "MISSING"},
		{"size", "Small"},
		{"date", "20240102"},
		{"total", "Total: 2 routes, 15 images"},
		{"warning", "1 routes have no GCP file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(out, tt.want) {
				t.Errorf("Expected %q in output, got:\n%s", tt.want, out)
			}
		})
	}
}

func TestExecuteInspect(t *testing.T) {
	configPath, src, gcpDir := fixture(t)

	var buf bytes.Buffer
	if err := executeInspect(&buf, configPath, src, gcpDir, "001", 5, 3); err != nil {
		t.Fatalf("executeInspect failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Images:         12 (Small)") {
		t.Errorf("Expected image count, got:\n%s", out)
	}
	if !strings.Contains(out, "0/5 images with GPS") {
		t.Errorf("Expected GPS summary for untagged images, got:\n%s", out)
	}
	if !strings.Contains(out, "... and 9 more") {
		t.Errorf("Expected truncated sample list, got:\n%s", out)
	}

	if err := executeInspect(&bytes.Buffer{}, configPath, src, gcpDir, "009", 0, 0); err == nil {
		t.Error("Expected error for an unknown route")
	}
}

func TestDiagnose(t *testing.T) {
	ms := func(number, folder string, bands models.BandCounts, dropped int) models.RouteFolder {
		b := bands
		return models.RouteFolder{
			RouteNumber:     number,
			FolderName:      folder,
			Type:            models.TypeMS,
			CompleteSets:    b.G,
			DroppedCaptures: dropped,
			BandCounts:      &b,
			ImageFiles:      make([]string, b.Total()),
		}
	}
	routes := []models.RouteFolder{
		ms("001", "DJI_202401010800_001_a", models.BandCounts{G: 4, NIR: 4, R: 4, RE: 4}, 0),
		ms("002", "DJI_202401010900_002_b", models.BandCounts{G: 2, NIR: 2, R: 2, RE: 2}, 0),
		ms("003", "DJI_202402010800_003_c", models.BandCounts{G: 3, NIR: 2, R: 3, RE: 3}, 1),
	}

	tests := []struct {
		name       string
		selected   []string
		wantRoutes int
		wantIssues int
		wantImages int
	}{
		{"compatible pair", []string{"001", "002"}, 2, 0, 24},
		{"single route", []string{"001"}, 1, 1, 16},
		{"missing route", []string{"001", "002", "007"}, 2, 1, 24},
		{"all routes", nil, 3, 3, 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := diagnose(routes, tt.selected)
			if len(d.Routes) != tt.wantRoutes {
				t.Errorf("Expected %d routes, got %d", tt.wantRoutes, len(d.Routes))
			}
			if len(d.Issues) != tt.wantIssues {
				t.Errorf("Expected %d issues, got %v", tt.wantIssues, d.Issues)
			}
			if d.TotalImages != tt.wantImages {
				t.Errorf("Expected %d images, got %d", tt.wantImages, d.TotalImages)
			}
		})
	}
}

func TestSplitRoutes(t *testing.T) {
	got := splitRoutes(" 001, 003,,005 ")
	if strings.Join(got, ",") != "001,003,005" {
		t.Errorf("Expected [001 003 005], got %v", got)
	}
	if splitRoutes("") != nil {
		t.Error("Expected nil for empty input")
	}
}
