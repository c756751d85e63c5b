package gcp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/survey-automation/routebatch/internal/models"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		typ  models.ProcessingType
		want string
	}{
		{name: "rgb", typ: models.TypeRGB, want: "gcp_route_007.xml"},
		{name: "combined", typ: models.TypeCombined, want: "gcp_route_007.xml"},
		{name: "multispectral", typ: models.TypeMS, want: "gcp_route_007_MS.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileName("007", tt.typ); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "gcp_route_001.xml"), []byte("<document/>"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "gcp_route_003.xml"), 0755); err != nil {
		t.Fatal(err)
	}

	present := Locate(dir, "001", models.TypeRGB)
	if !present.Exists || present.Status() != "OK" {
		t.Errorf("Expected gcp_route_001.xml to exist, got %+v", present)
	}

	missing := Locate(dir, "001", models.TypeMS)
	if missing.Exists {
		t.Error("Expected MS marker file to be missing")
	}
	if missing.Path != filepath.Join(dir, "gcp_route_001_MS.xml") {
		t.Errorf("Unexpected path %s", missing.Path)
	}
	if _, err := os.Stat(missing.Path); !os.IsNotExist(err) {
		t.Error("Locate must never create marker files")
	}

	if Locate(dir, "003", models.TypeRGB).Exists {
		t.Error("A directory must not count as a marker file")
	}
}
