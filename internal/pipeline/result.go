package pipeline

import (
	"strings"
	"time"
)

// RouteResult describes how far one project got. Multi-route projects list
// every merged route in Routes.
type RouteResult struct {
	Routes       []string      `json:"routes" yaml:"routes"`
	Skipped      []string      `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	FailedRoutes []string      `json:"failed_routes,omitempty" yaml:"failed_routes,omitempty"`
	ProjectFile  string        `json:"project_file,omitempty" yaml:"project_file,omitempty"`
	ReachedStage Stage         `json:"reached_stage" yaml:"reached_stage"`
	FailedStage  Stage         `json:"failed_stage,omitempty" yaml:"failed_stage,omitempty"`
	Err          error         `json:"-" yaml:"-"`
	Error        string        `json:"error,omitempty" yaml:"error,omitempty"`
	Warnings     []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Duration     time.Duration `json:"duration" yaml:"duration"`

	Cameras          int      `json:"cameras" yaml:"cameras"`
	AlignedCameras   int      `json:"aligned_cameras" yaml:"aligned_cameras"`
	Markers          int      `json:"markers" yaml:"markers"`
	EnabledMarkers   int      `json:"enabled_markers" yaml:"enabled_markers"`
	PointCloudPoints int      `json:"point_cloud_points" yaml:"point_cloud_points"`
	ReportPath       string   `json:"report_path,omitempty" yaml:"report_path,omitempty"`
	Exports          []string `json:"exports,omitempty" yaml:"exports,omitempty"`

	Verified    bool   `json:"verified" yaml:"verified"`
	VerifyError string `json:"verify_error,omitempty" yaml:"verify_error,omitempty"`
}

// Succeeded reports whether the project reached its final save
func (r RouteResult) Succeeded() bool {
	return r.Err == nil && r.Error == "" && r.ReachedStage == StageFinalSaved
}

// Label is a short name for listings, e.g. "001" or "001+002"
func (r RouteResult) Label() string {
	return strings.Join(r.Routes, "+")
}

func (r *RouteResult) fail(stage Stage, route string, err error) {
	r.FailedStage = stage
	r.Err = &StageError{Stage: stage, Route: route, Err: err}
	r.Error = r.Err.Error()
}

func (r *RouteResult) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
