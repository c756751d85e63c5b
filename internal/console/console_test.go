package console

import (
	"errors"
	"testing"

	"github.com/survey-automation/routebatch/internal/config"
	"github.com/survey-automation/routebatch/internal/models"
)

func validRequest() Request {
	return Request{
		ScriptBase: `C:\scripts`,
		Script:     "rgb_single_automation_generic.py",
		DCIM:       `D:\flight\DCIM`,
		GCP:        `D:\flight\GCP`,
		Output:     `D:\flight\out`,
		Type:       models.TypeRGB,
		Mode:       models.ModeSingle,
		Routes:     []string{"003"},
	}
}

func TestLinesSingle(t *testing.T) {
	lines, err := Lines(validRequest())
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	want := []string{
		`exec(open(r'C:/scripts/rgb_single_automation_generic.py',encoding='utf-8').read())`,
		`configure_paths(dcim=r'D:\\flight\\DCIM', gcp=r'D:\\flight\\GCP', output=r'D:\\flight\\out')`,
		`process_single_route_by_number('003')`,
	}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %d: %v", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Line %d:\nexpected %s\ngot      %s", i+1, want[i], lines[i])
		}
	}
}

func TestLinesMultiple(t *testing.T) {
	tests := []struct {
		name string
		typ  models.ProcessingType
		want string
	}{
		{name: "rgb", typ: models.TypeRGB, want: "run_combined_rgb_automation()"},
		{name: "ms", typ: models.TypeMS, want: "run_combined_ms_automation()"},
		{name: "combined", typ: models.TypeCombined, want: "run_combined_rgb_ms_automation()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.Mode = models.ModeMultiple
			req.Type = tt.typ
			req.Routes = []string{"001", "002", "004"}

			lines, err := Lines(req)
			if err != nil {
				t.Fatalf("Lines failed: %v", err)
			}
			if len(lines) != 4 {
				t.Fatalf("Expected 4 lines, got %v", lines)
			}
			if lines[2] != "configure_routes(['001', '002', '004'])" {
				t.Errorf("Unexpected routes line %s", lines[2])
			}
			if lines[3] != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, lines[3])
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{name: "no script folder", mutate: func(r *Request) { r.ScriptBase = "" }},
		{name: "no dcim", mutate: func(r *Request) { r.DCIM = "" }},
		{name: "no gcp", mutate: func(r *Request) { r.GCP = "" }},
		{name: "no output", mutate: func(r *Request) { r.Output = "" }},
		{name: "no routes", mutate: func(r *Request) { r.Routes = nil }},
		{name: "multiple with one route", mutate: func(r *Request) { r.Mode = models.ModeMultiple }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			if _, err := Lines(req); !errors.Is(err, ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths = config.Paths{DCIM: "/d", GCP: "/g", Output: "/o", ScriptBase: "/scripts"}
	cfg.Processing = config.Processing{Type: models.TypeMS, Mode: models.ModeMultiple}
	cfg.Routes.SelectedRoutes = []string{"001", "002"}

	req := FromConfig(cfg)
	if req.Script != "ms_combined_automation_generic.py" {
		t.Errorf("Unexpected script %s", req.Script)
	}
	if got := req.ScriptPath(); got != "/scripts/ms_combined_automation_generic.py" {
		t.Errorf("Unexpected script path %s", got)
	}
}
