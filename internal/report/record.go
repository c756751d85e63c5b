package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/survey-automation/routebatch/internal/pipeline"
)

// RunConfig records the settings a run was started with
type RunConfig struct {
	RunID     string   `json:"run_id" yaml:"run_id"`
	Timestamp string   `json:"timestamp" yaml:"timestamp"`
	Engine    string   `json:"engine" yaml:"engine"`
	Type      string   `json:"type" yaml:"type"`
	Mode      string   `json:"mode" yaml:"mode"`
	Full      bool     `json:"full" yaml:"full"`
	DCIM      string   `json:"dcim" yaml:"dcim"`
	GCP       string   `json:"gcp" yaml:"gcp"`
	Output    string   `json:"output" yaml:"output"`
	Routes    []string `json:"routes" yaml:"routes"`
}

// Run is the complete record of one processing run
type Run struct {
	Config  RunConfig              `json:"config" yaml:"config"`
	Summary Summary                `json:"summary" yaml:"summary"`
	Results []pipeline.RouteResult `json:"results" yaml:"results"`
}

// NewRun assigns a run id and timestamp and summarizes results
func NewRun(cfg RunConfig, results []pipeline.RouteResult) *Run {
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.Timestamp == "" {
		cfg.Timestamp = time.Now().Format(time.RFC3339)
	}
	return &Run{Config: cfg, Summary: Summarize(results), Results: results}
}

// FileName is the record file name for a run
func (r *Run) FileName() string {
	ts, err := time.Parse(time.RFC3339, r.Config.Timestamp)
	if err != nil {
		ts = time.Now()
	}
	id := r.Config.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("run-%s-%s.yaml", ts.Format("2006-01-02_15-04-05"), id)
}

// SaveYAML writes the run record into dir and returns its path
func SaveYAML(dir string, run *Run) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create runs directory: %w", err)
	}

	data, err := yaml.Marshal(run)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	path := filepath.Join(dir, run.FileName())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}
	return path, nil
}

// LoadYAML reads a run record written by SaveYAML
func LoadYAML(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run record: %w", err)
	}
	var run Run
	if err := yaml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to parse run record: %w", err)
	}
	return &run, nil
}
