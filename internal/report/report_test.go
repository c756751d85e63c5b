package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/survey-automation/routebatch/internal/pipeline"
)

func sampleResults() []pipeline.RouteResult {
	failed := pipeline.RouteResult{
		Routes:       []string{"002"},
		ReachedStage: pipeline.StageMatched,
		Duration:     10 * time.Second,
	}
	failed.FailedStage = pipeline.StageAligned
	failed.Err = &pipeline.StageError{Stage: pipeline.StageAligned, Route: "002", Err: pipeline.ErrNoAlignment}
	failed.Error = failed.Err.Error()

	gcpMissing := pipeline.RouteResult{
		Routes:      []string{"003"},
		FailedStage: pipeline.StageMarkersImported,
		Err:         errors.New("gcp file not found"),
		Error:       "gcp file not found",
	}

	return []pipeline.RouteResult{
		{
			Routes:         []string{"001"},
			ProjectFile:    "/out/route_001_RGB/route_001_RGB.psx",
			ReachedStage:   pipeline.StageFinalSaved,
			Cameras:        100,
			AlignedCameras: 90,
			Verified:       true,
			Warnings:       []string{"Point cloud is empty"},
			Duration:       30 * time.Second,
		},
		failed,
		gcpMissing,
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleResults())
	if s.Total != 3 || s.Succeeded != 1 || s.Failed != 2 || s.Verified != 1 {
		t.Errorf("Unexpected counts %+v", s)
	}
	if s.Warnings != 1 {
		t.Errorf("Expected 1 warning, got %d", s.Warnings)
	}
	if s.AlignmentRate() != 0.9 {
		t.Errorf("Expected alignment rate 0.9, got %f", s.AlignmentRate())
	}
	if s.AverageRoute != 30*time.Second {
		t.Errorf("Expected average of successful routes only, got %s", s.AverageRoute)
	}
	stages := s.FailureStages()
	if len(stages) != 2 || stages[0] != "MarkersImported" || stages[1] != "Aligned" {
		t.Errorf("Expected failures in pipeline order, got %v", stages)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.StageFailures != nil || s.AlignmentRate() != 0 {
		t.Errorf("Unexpected empty summary %+v", s)
	}
}

func TestPrintFormats(t *testing.T) {
	run := NewRun(RunConfig{Engine: "simulated", Type: "RGB", Mode: "Single"}, sampleResults())

	tests := []struct {
		format string
		want   []string
	}{
		{format: "text", want: []string{"Route Processing Report", "Route 001", "Failed at Aligned", "failed at MarkersImported: 1"}},
		{format: "json", want: []string{`"run_id"`, `"reached_stage": "FinalSaved"`}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Print(&buf, run, tt.format); err != nil {
				t.Fatalf("Print failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("Expected output to contain %q:\n%s", want, buf.String())
				}
			}
		})
	}

	var buf bytes.Buffer
	if err := Print(&buf, run, "xml"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestPrintCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, NewRun(RunConfig{}, sampleResults()), "csv"); err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected header and 3 rows, got %d", len(records))
	}
	if records[1][1] != "ok" || records[2][1] != "failed" || records[2][3] != "Aligned" {
		t.Errorf("Unexpected rows %v", records[1:])
	}
}

func TestSaveAndLoadYAML(t *testing.T) {
	dir := t.TempDir()
	run := NewRun(RunConfig{Engine: "simulated", Routes: []string{"001", "002", "003"}}, sampleResults())
	if run.Config.RunID == "" || run.Config.Timestamp == "" {
		t.Fatal("Expected run id and timestamp to be assigned")
	}

	path, err := SaveYAML(dir, run)
	if err != nil {
		t.Fatalf("SaveYAML failed: %v", err)
	}
	if filepath.Dir(path) != dir || !strings.HasPrefix(filepath.Base(path), "run-") {
		t.Errorf("Unexpected record path %s", path)
	}

	loaded, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if loaded.Config.RunID != run.Config.RunID {
		t.Errorf("Run id changed: %s vs %s", loaded.Config.RunID, run.Config.RunID)
	}
	if got := Summarize(loaded.Results); got.Succeeded != 1 || got.Failed != 2 {
		t.Errorf("Expected loaded results to keep their outcome, got %+v", got)
	}
	if loaded.Results[0].Duration != 30*time.Second {
		t.Errorf("Expected duration to survive, got %s", loaded.Results[0].Duration)
	}
}
