package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", dir, err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

func TestFindRGBTierOrder(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []string
	}{
		{
			name:  "specific suffix tier is not supplemented by generic tier",
			files: []string{"DJI_0001_D.JPG", "DJI_0002_D.JPG", "other.JPG", "thumb.jpg"},
			want:  []string{"DJI_0001_D.JPG", "DJI_0002_D.JPG"},
		},
		{
			name:  "falls back to D.JPG suffix",
			files: []string{"DJI_0001D.JPG", "other.JPG"},
			want:  []string{"DJI_0001D.JPG"},
		},
		{
			name:  "falls back to any JPG in both cases",
			files: []string{"a.JPG", "b.jpg", "c.tif"},
			want:  []string{"a.JPG", "b.jpg"},
		},
		{
			name:  "lowercase suffix is not the specific tier",
			files: []string{"DJI_0001_d.jpg", "DJI_0002_d.jpg"},
			want:  []string{"DJI_0001_d.jpg", "DJI_0002_d.jpg"},
		},
		{
			name:  "no images",
			files: []string{"notes.txt"},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, tt.files...)

			got, err := FindRGB(dir)
			if err != nil {
				t.Fatalf("FindRGB failed: %v", err)
			}
			names := baseNames(got)
			if len(names) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, names)
			}
			for i := range names {
				if names[i] != tt.want[i] {
					t.Errorf("Expected %v, got %v", tt.want, names)
					break
				}
			}
		})
	}
}

func TestFindMSTierOrder(t *testing.T) {
	tests := []struct {
		name      string
		files     []string
		wantCount int
		wantTier  string
	}{
		{
			name:      "exact band patterns",
			files:     []string{"DJI_20240101080000_0001_MS_G.TIF", "DJI_20240101080000_0001_MS_NIR.TIF", "DJI_20240101080000_0001_MS_XX.TIF"},
			wantCount: 2,
			wantTier:  "per-band",
		},
		{
			name:      "lowercase variants",
			files:     []string{"dji_20240101080000_0001_ms_g.tif", "dji_20240101080000_0001_ms_re.tif"},
			wantCount: 2,
			wantTier:  "per-band lowercase",
		},
		{
			name:      "generic MS fallback",
			files:     []string{"IMG_MS_PAN.TIF", "img_ms_x.tif", "rgb.JPG"},
			wantCount: 2,
			wantTier:  "any MS TIF",
		},
		{
			name:      "nothing",
			files:     []string{"DJI_0001_D.JPG"},
			wantCount: 0,
			wantTier:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, tt.files...)

			got, tier, err := FirstMatch(dir, MSTiers)
			if err != nil {
				t.Fatalf("FirstMatch failed: %v", err)
			}
			if len(got) != tt.wantCount {
				t.Errorf("Expected %d files, got %d (%v)", tt.wantCount, len(got), baseNames(got))
			}
			if tier != tt.wantTier {
				t.Errorf("Expected tier %q, got %q", tt.wantTier, tier)
			}
		})
	}
}

func TestFirstMatchEscapesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "flight [1]")
	touch(t, dir, "DJI_0001_D.JPG")

	got, err := FindRGB(dir)
	if err != nil {
		t.Fatalf("FindRGB failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected 1 file in a directory with glob metacharacters, got %d", len(got))
	}
}
