package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Print writes a run in the given format: text, json or csv
func Print(w io.Writer, run *Run, format string) error {
	switch format {
	case "text":
		return printText(w, run)
	case "json":
		return printJSON(w, run)
	case "csv":
		return printCSV(w, run)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printText(w io.Writer, run *Run) error {
	c := run.Config
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Route Processing Report")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Run:    %s\n", c.RunID)
	fmt.Fprintf(w, "Engine: %s\n", c.Engine)
	fmt.Fprintf(w, "Type:   %s (%s)\n", c.Type, c.Mode)
	fmt.Fprintf(w, "Output: %s\n", c.Output)
	fmt.Fprintln(w)

	printSummary(w, run.Summary)

	fmt.Fprintln(w, "\nDetailed Results:")
	fmt.Fprintln(w, "========================================")
	for i, r := range run.Results {
		fmt.Fprintf(w, "\n[%d] Route %s\n", i+1, r.Label())
		if !r.Succeeded() {
			fmt.Fprintf(w, "  ❌ Failed at %s: %s\n", r.FailedStage, r.Error)
		} else {
			fmt.Fprintf(w, "  ✅ %s\n", r.ProjectFile)
			fmt.Fprintf(w, "  Cameras: %d/%d aligned\n", r.AlignedCameras, r.Cameras)
			fmt.Fprintf(w, "  Markers: %d (%d enabled)\n", r.Markers, r.EnabledMarkers)
			fmt.Fprintf(w, "  Points:  %d\n", r.PointCloudPoints)
			if r.ReportPath != "" {
				fmt.Fprintf(w, "  Report:  %s\n", r.ReportPath)
			}
			for _, e := range r.Exports {
				fmt.Fprintf(w, "  Export:  %s\n", e)
			}
			if r.Verified {
				fmt.Fprintln(w, "  Verified: yes")
			} else {
				fmt.Fprintf(w, "  Verified: no (%s)\n", r.VerifyError)
			}
		}
		if len(r.Skipped) > 0 {
			fmt.Fprintf(w, "  Skipped (no GCP): %s\n", strings.Join(r.Skipped, ", "))
		}
		if len(r.FailedRoutes) > 0 {
			fmt.Fprintf(w, "  Dropped from merge: %s\n", strings.Join(r.FailedRoutes, ", "))
		}
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "  ⚠ %s\n", warning)
		}
		fmt.Fprintf(w, "  Duration: %s\n", r.Duration.Round(time.Second))
	}
	return nil
}

// PrintSummary writes only the summary block
func PrintSummary(w io.Writer, s Summary) {
	printSummary(w, s)
}

func printSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "Routes:    %d\n", s.Total)
	fmt.Fprintf(w, "Succeeded: %d\n", s.Succeeded)
	fmt.Fprintf(w, "Failed:    %d\n", s.Failed)
	fmt.Fprintf(w, "Verified:  %d\n", s.Verified)
	if s.Cameras > 0 {
		fmt.Fprintf(w, "Alignment: %.1f%% (%d/%d cameras)\n", s.AlignmentRate()*100, s.AlignedCameras, s.Cameras)
	}
	if s.Warnings > 0 {
		fmt.Fprintf(w, "Warnings:  %d\n", s.Warnings)
	}
	for _, stage := range s.FailureStages() {
		fmt.Fprintf(w, "  failed at %s: %d\n", stage, s.StageFailures[stage])
	}
	fmt.Fprintf(w, "Duration:  %s total, %s per successful route\n",
		s.TotalDuration.Round(time.Second), s.AverageRoute.Round(time.Second))
}

func printJSON(w io.Writer, run *Run) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(run)
}

func printCSV(w io.Writer, run *Run) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"Routes", "Status", "Reached Stage", "Failed Stage", "Cameras", "Aligned",
		"Markers", "Points", "Verified", "Project", "Duration Seconds", "Error"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range run.Results {
		status := "ok"
		if !r.Succeeded() {
			status = "failed"
		}
		row := []string{
			r.Label(),
			status,
			string(r.ReachedStage),
			string(r.FailedStage),
			strconv.Itoa(r.Cameras),
			strconv.Itoa(r.AlignedCameras),
			strconv.Itoa(r.Markers),
			strconv.Itoa(r.PointCloudPoints),
			strconv.FormatBool(r.Verified),
			r.ProjectFile,
			fmt.Sprintf("%.1f", r.Duration.Seconds()),
			r.Error,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return nil
}
