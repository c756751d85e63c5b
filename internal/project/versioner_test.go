package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/survey-automation/routebatch/internal/models"
)

func TestNames(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "single RGB", got: SingleRouteName("005", models.TypeRGB), want: "route_005_RGB"},
		{name: "single MS", got: SingleRouteName("005", models.TypeMS), want: "route_005_MS"},
		{name: "single combined", got: SingleRouteName("005", models.TypeCombined), want: "route_005_Combined"},
		{name: "multi RGB", got: MultiRouteName([]string{"001", "002"}, models.TypeRGB), want: "combined_routes_001_002_RGB"},
		{name: "multi combined", got: MultiRouteName([]string{"001", "002"}, models.TypeCombined), want: "combined_routes_001_002_RGB_MS"},
		{name: "version 1", got: VersionedName("route_005_RGB", 1), want: "route_005_RGB"},
		{name: "version 3", got: VersionedName("route_005_RGB", 3), want: "route_005_RGB_v3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, tt.got)
			}
		})
	}
}

func TestResolveAbsent(t *testing.T) {
	base := t.TempDir()

	p, err := Resolve(base, "route_005_RGB")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if p.Version != 1 {
		t.Errorf("Expected version 1, got %d", p.Version)
	}
	if p.File != filepath.Join(base, "route_005_RGB", "route_005_RGB.psx") {
		t.Errorf("Unexpected project file %s", p.File)
	}
	if _, err := os.Stat(p.Dir); !os.IsNotExist(err) {
		t.Error("Resolve must not create the folder")
	}
}

func TestResolveNonEmptyIncrements(t *testing.T) {
	base := t.TempDir()
	existing := filepath.Join(base, "route_005_RGB")
	if err := os.MkdirAll(existing, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(existing, "route_005_RGB.psx"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		p, err := Resolve(base, "route_005_RGB")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if p.Name != "route_005_RGB_v2" {
			t.Errorf("Call %d: expected route_005_RGB_v2, got %s", i+1, p.Name)
		}
		if filepath.Base(p.File) != "route_005_RGB_v2.psx" {
			t.Errorf("Call %d: unexpected file %s", i+1, p.File)
		}
	}
}

func TestResolveReusesEmptyFolder(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "route_005_RGB"), 0755); err != nil {
		t.Fatal(err)
	}

	p, err := Resolve(base, "route_005_RGB")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if p.Version != 1 {
		t.Errorf("Expected empty folder to be reused at version 1, got %d", p.Version)
	}
}

func TestResolveSkipsSeveralVersions(t *testing.T) {
	base := t.TempDir()
	for _, name := range []string{"route_001_MS", "route_001_MS_v2"} {
		dir := filepath.Join(base, name)
		if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
			t.Fatal(err)
		}
	}

	p, err := Resolve(base, "route_001_MS")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if p.Version != 3 {
		t.Errorf("Expected version 3, got %d", p.Version)
	}
}

func TestCreateWithProducts(t *testing.T) {
	base := t.TempDir()

	p, err := Create(base, "route_002_Combined", true)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for _, sub := range ProductDirs {
		if info, err := os.Stat(filepath.Join(p.Dir, sub)); err != nil || !info.IsDir() {
			t.Errorf("Expected %s subfolder to exist", sub)
		}
	}

	// The folder now holds subfolders, so the next project gets a new version.
	next, err := Create(base, "route_002_Combined", false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if next.Version != 2 {
		t.Errorf("Expected version 2, got %d", next.Version)
	}
}
