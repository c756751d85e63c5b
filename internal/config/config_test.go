package config

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/survey-automation/routebatch/internal/models"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Processing.Type != models.TypeRGB || cfg.Processing.Mode != models.ModeSingle {
		t.Errorf("Unexpected defaults %+v", cfg.Processing)
	}
	if cfg.ScriptPaths != DefaultScriptPaths() {
		t.Errorf("Expected default script paths, got %+v", cfg.ScriptPaths)
	}
}

func TestLoadLenient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	doc := `{
  "paths": {"dcim": "D:\\DCIM", "gcp": "D:\\GCP"},
  "processing": {"type": "Combined", "mode": "sideways"},
  "script_paths": {"ms_single": "custom_ms.py"},
  "routes": {"selected_routes": ["001", "003"]},
  "unrelated": true
}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Paths.DCIM != `D:\DCIM` || cfg.Paths.Output != "" {
		t.Errorf("Unexpected paths %+v", cfg.Paths)
	}
	if cfg.Processing.Type != models.TypeCombined {
		t.Errorf("Expected Combined, got %s", cfg.Processing.Type)
	}
	if cfg.Processing.Mode != models.ModeSingle {
		t.Errorf("Expected unknown mode to fall back to Single, got %s", cfg.Processing.Mode)
	}
	if cfg.ScriptPaths.MSSingle != "custom_ms.py" {
		t.Errorf("Expected saved script to override default, got %s", cfg.ScriptPaths.MSSingle)
	}
	if cfg.ScriptPaths.RGBSingle != "rgb_single_automation_generic.py" {
		t.Errorf("Expected other scripts to keep defaults, got %s", cfg.ScriptPaths.RGBSingle)
	}
	if len(cfg.Routes.SelectedRoutes) != 2 {
		t.Errorf("Expected 2 selected routes, got %v", cfg.Routes.SelectedRoutes)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Paths.DCIM = "/data/DCIM"
	cfg.Processing.Type = models.TypeMS
	cfg.Routes.SelectedRoutes = []string{"002"}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if gjson.GetBytes(body, "version").String() != "1.0" {
		t.Errorf("Expected version 1.0 in %s", body)
	}
	if _, err := time.Parse(time.RFC3339, gjson.GetBytes(body, "timestamp").String()); err != nil {
		t.Errorf("Expected RFC 3339 timestamp: %v", err)
	}
	if !regexp.MustCompile("\n  \"paths\"").Match(body) {
		t.Error("Expected two-space indentation")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Paths.DCIM != "/data/DCIM" || loaded.Processing.Type != models.TypeMS {
		t.Errorf("Round trip lost values: %+v", loaded)
	}
}

func TestSet(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		check   string
		want    string
		wantErr error
	}{
		{name: "string path", key: "paths.dcim", value: `E:\DCIM`, check: "paths.dcim", want: `E:\DCIM`},
		{name: "type is normalized", key: "processing.type", value: "ms", check: "processing.type", want: "MS"},
		{name: "mode is normalized", key: "processing.mode", value: "multiple", check: "processing.mode", want: "Multiple"},
		{name: "route list", key: "routes.selected_routes", value: "001, 004", check: "routes.selected_routes.1", want: "004"},
		{name: "count", key: "routes.detected_count", value: "7", check: "routes.detected_count", want: "7"},
		{name: "unknown key", key: "paths.nowhere", value: "x", wantErr: ErrUnknownKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(`{"paths": {"gcp": "/gcp"}, "custom": 1}`), 0644); err != nil {
				t.Fatal(err)
			}

			err := Set(path, tt.key, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			body, _ := os.ReadFile(path)
			if got := gjson.GetBytes(body, tt.check).String(); got != tt.want {
				t.Errorf("Expected %s=%s, got %s", tt.check, tt.want, got)
			}
			if gjson.GetBytes(body, "paths.gcp").String() != "/gcp" || !gjson.GetBytes(body, "custom").Exists() {
				t.Errorf("Set must keep other members: %s", body)
			}
		})
	}
}

func TestSetInvalidValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := Set(path, "processing.type", "thermal"); err == nil {
		t.Error("Expected error for unknown processing type")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("A rejected value must not create the file")
	}
}

func TestSetCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := Set(path, "paths.output", "/out"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Paths.Output != "/out" || cfg.ScriptPaths != DefaultScriptPaths() {
		t.Errorf("Unexpected config %+v", cfg)
	}
}

func TestGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}
	got, err := Get(path, "processing.type")
	if err != nil || got != "RGB" {
		t.Errorf("Expected RGB, got %q (%v)", got, err)
	}
	if _, err := Get(path, "bogus"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Expected ErrUnknownKey, got %v", err)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths.DCIM = "/data/DCIM"
	routes := []models.RouteFolder{
		{RouteNumber: "001", FolderName: "DJI_202401010800_001_a", ImageFiles: []string{"a", "b"}},
	}

	out, err := Export(dir, "routebatch_config.json", cfg, routes)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !regexp.MustCompile(`^routebatch_config_\d{8}_\d{6}\.json$`).MatchString(filepath.Base(out)) {
		t.Errorf("Unexpected export name %s", filepath.Base(out))
	}
	body, _ := os.ReadFile(out)
	if gjson.GetBytes(body, "exported_from").String() != "routebatch_config.json" {
		t.Errorf("Expected exported_from, got %s", body)
	}
	if gjson.GetBytes(body, "routes.route_details.0.image_count").Int() != 2 {
		t.Errorf("Expected route details, got %s", body)
	}
	if gjson.GetBytes(body, "routes.detected_count").Int() != 1 {
		t.Errorf("Expected detected_count 1, got %s", body)
	}
}

func TestScriptFor(t *testing.T) {
	s := DefaultScriptPaths()
	tests := []struct {
		typ  models.ProcessingType
		mode models.RouteMode
		want string
	}{
		{models.TypeRGB, models.ModeSingle, "rgb_single_automation_generic.py"},
		{models.TypeMS, models.ModeSingle, "ms_single_automation_generic.py"},
		{models.TypeCombined, models.ModeSingle, "rgb_ms_single_automation_generic.py"},
		{models.TypeRGB, models.ModeMultiple, "rgb_combined_automation_generic.py"},
		{models.TypeMS, models.ModeMultiple, "ms_combined_automation_generic.py"},
		{models.TypeCombined, models.ModeMultiple, "rgb_ms_combined_automation_generic.py"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ)+"_"+string(tt.mode), func(t *testing.T) {
			if got := s.For(tt.typ, tt.mode); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}
