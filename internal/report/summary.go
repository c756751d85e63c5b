// Package report summarizes processing runs and keeps a YAML record of each run.
package report

import (
	"sort"
	"time"

	"github.com/survey-automation/routebatch/internal/pipeline"
)

// Summary aggregates the results of one run
type Summary struct {
	Total          int            `json:"total" yaml:"total"`
	Succeeded      int            `json:"succeeded" yaml:"succeeded"`
	Failed         int            `json:"failed" yaml:"failed"`
	Verified       int            `json:"verified" yaml:"verified"`
	Warnings       int            `json:"warnings" yaml:"warnings"`
	StageFailures  map[string]int `json:"stage_failures,omitempty" yaml:"stage_failures,omitempty"`
	Cameras        int            `json:"cameras" yaml:"cameras"`
	AlignedCameras int            `json:"aligned_cameras" yaml:"aligned_cameras"`
	TotalDuration  time.Duration  `json:"total_duration" yaml:"total_duration"`
	AverageRoute   time.Duration  `json:"average_route" yaml:"average_route"`
}

// Summarize aggregates route results
func Summarize(results []pipeline.RouteResult) Summary {
	s := Summary{Total: len(results), StageFailures: map[string]int{}}
	var successDuration time.Duration

	for _, r := range results {
		s.TotalDuration += r.Duration
		s.Warnings += len(r.Warnings)
		if !r.Succeeded() {
			s.Failed++
			stage := string(r.FailedStage)
			if stage == "" {
				stage = "unknown"
			}
			s.StageFailures[stage]++
			continue
		}
		s.Succeeded++
		successDuration += r.Duration
		s.Cameras += r.Cameras
		s.AlignedCameras += r.AlignedCameras
		if r.Verified {
			s.Verified++
		}
	}

	if s.Succeeded > 0 {
		s.AverageRoute = successDuration / time.Duration(s.Succeeded)
	}
	if len(s.StageFailures) == 0 {
		s.StageFailures = nil
	}
	return s
}

// AlignmentRate is the share of cameras aligned over successful routes
func (s Summary) AlignmentRate() float64 {
	if s.Cameras == 0 {
		return 0
	}
	return float64(s.AlignedCameras) / float64(s.Cameras)
}

// FailureStages returns the failed stages in pipeline order
func (s Summary) FailureStages() []string {
	order := map[string]int{}
	for i, st := range pipeline.Stages {
		order[string(st)] = i
	}
	var stages []string
	for st := range s.StageFailures {
		stages = append(stages, st)
	}
	sort.Slice(stages, func(i, j int) bool {
		oi, iok := order[stages[i]]
		oj, jok := order[stages[j]]
		if iok != jok {
			return iok
		}
		if oi != oj {
			return oi < oj
		}
		return stages[i] < stages[j]
	})
	return stages
}
