package catalog

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/survey-automation/routebatch/internal/models"
)

func sampleRoutes() []models.RouteFolder {
	return []models.RouteFolder{
		{
			FolderName:  "DJI_202401010800_001_north",
			FolderPath:  "/data/DCIM/DJI_202401010800_001_north",
			RouteNumber: "001",
			Type:        models.TypeRGB,
			RGBCount:    2,
			ImageFiles:  []string{"/data/a_D.JPG", "/data/b_D.JPG"},
			RGBFiles:    []string{"/data/a_D.JPG", "/data/b_D.JPG"},
		},
		{
			FolderName:      "DJI_202401010900_002_south",
			FolderPath:      "/data/DCIM/DJI_202401010900_002_south",
			RouteNumber:     "002",
			Type:            models.TypeMS,
			MSCount:         4,
			MSFilesCount:    7,
			CompleteSets:    1,
			DroppedCaptures: 1,
			BandCounts:      &models.BandCounts{G: 2, NIR: 2, R: 2, RE: 1},
			ImageFiles:      []string{"/data/x_MS_G.TIF", "/data/x_MS_NIR.TIF", "/data/x_MS_R.TIF", "/data/x_MS_RE.TIF"},
			MSFiles:         []string{"/data/x_MS_G.TIF", "/data/x_MS_NIR.TIF", "/data/x_MS_R.TIF", "/data/x_MS_RE.TIF"},
		},
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "routes.json", want: FormatJSON},
		{path: "routes.JSONL", want: FormatJSONL},
		{path: "routes.yml", want: FormatYAML},
		{path: "routes.parquet", want: FormatParquet},
		{path: "routes.csv", want: FormatCSV},
		{path: "routes.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unexpected error state: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestWriteAndLoad(t *testing.T) {
	for _, ext := range []string{".json", ".jsonl", ".yaml", ".parquet"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog"+ext)
			if err := WriteFile(path, sampleRoutes()); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			got, err := NewLoader(path).Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if !reflect.DeepEqual(got, sampleRoutes()) {
				t.Errorf("Catalog changed on reload:\n%+v\n%+v", got, sampleRoutes())
			}
		})
	}
}

func TestCSVSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, sampleRoutes()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d", len(records))
	}
	ms := records[2]
	if ms[0] != "002" || ms[3] != "4" || ms[4] != "Small" || ms[5] != "20240101" {
		t.Errorf("Unexpected MS row %v", ms)
	}
	if ms[10] != "1" || ms[14] != "1" {
		t.Errorf("Expected dropped captures and RE band count, got %v", ms)
	}
}

func TestLoadCSVRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := WriteFile(path, sampleRoutes()); err != nil {
		t.Fatal(err)
	}
	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected CSV catalogs to be rejected")
	}
}
