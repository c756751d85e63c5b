// Package catalog saves and reloads route catalogs so a scan can be
// reviewed, shared, or fed back into processing without rescanning.
package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/survey-automation/routebatch/internal/models"
)

// Format is a catalog serialization
type Format string

const (
	FormatJSON    Format = "json"
	FormatJSONL   Format = "jsonl"
	FormatCSV     Format = "csv"
	FormatYAML    Format = "yaml"
	FormatParquet Format = "parquet"
)

// FormatFromPath picks a format from a file extension
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return FormatJSON, nil
	case ".jsonl":
		return FormatJSONL, nil
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported file format: %s (supported: .json, .jsonl, .csv, .yaml, .parquet)", ext)
	}
}

// row is the flat parquet layout of a route
type row struct {
	RouteNumber     string   `parquet:"route_number"`
	FolderName      string   `parquet:"folder_name"`
	FolderPath      string   `parquet:"folder_path"`
	Type            string   `parquet:"type"`
	RGBCount        int64    `parquet:"rgb_count"`
	MSCount         int64    `parquet:"ms_count"`
	MSFilesCount    int64    `parquet:"ms_files_count"`
	CompleteSets    int64    `parquet:"complete_sets"`
	DroppedCaptures int64    `parquet:"dropped_captures"`
	HasBandCounts   bool     `parquet:"has_band_counts"`
	BandG           int64    `parquet:"band_g"`
	BandNIR         int64    `parquet:"band_nir"`
	BandR           int64    `parquet:"band_r"`
	BandRE          int64    `parquet:"band_re"`
	ImageFiles      []string `parquet:"image_files"`
	RGBFiles        []string `parquet:"rgb_files"`
	MSFiles         []string `parquet:"ms_files"`
}

func toRow(r models.RouteFolder) row {
	out := row{
		RouteNumber:     r.RouteNumber,
		FolderName:      r.FolderName,
		FolderPath:      r.FolderPath,
		Type:            string(r.Type),
		RGBCount:        int64(r.RGBCount),
		MSCount:         int64(r.MSCount),
		MSFilesCount:    int64(r.MSFilesCount),
		CompleteSets:    int64(r.CompleteSets),
		DroppedCaptures: int64(r.DroppedCaptures),
		ImageFiles:      r.ImageFiles,
		RGBFiles:        r.RGBFiles,
		MSFiles:         r.MSFiles,
	}
	if r.BandCounts != nil {
		out.HasBandCounts = true
		out.BandG = int64(r.BandCounts.G)
		out.BandNIR = int64(r.BandCounts.NIR)
		out.BandR = int64(r.BandCounts.R)
		out.BandRE = int64(r.BandCounts.RE)
	}
	return out
}

func (r row) route() models.RouteFolder {
	out := models.RouteFolder{
		RouteNumber:     r.RouteNumber,
		FolderName:      r.FolderName,
		FolderPath:      r.FolderPath,
		Type:            models.ProcessingType(r.Type),
		RGBCount:        int(r.RGBCount),
		MSCount:         int(r.MSCount),
		MSFilesCount:    int(r.MSFilesCount),
		CompleteSets:    int(r.CompleteSets),
		DroppedCaptures: int(r.DroppedCaptures),
		ImageFiles:      cloneStrings(r.ImageFiles),
		RGBFiles:        cloneStrings(r.RGBFiles),
		MSFiles:         cloneStrings(r.MSFiles),
	}
	if r.HasBandCounts {
		out.BandCounts = &models.BandCounts{
			G:   int(r.BandG),
			NIR: int(r.BandNIR),
			R:   int(r.BandR),
			RE:  int(r.BandRE),
		}
	}
	return out
}

// cloneStrings detaches a slice from the parquet reader's reused buffers
func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return append([]string(nil), s...)
}

// Write serializes routes to w in the given format
func Write(w io.Writer, format Format, routes []models.RouteFolder) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(routes)
	case FormatJSONL:
		encoder := json.NewEncoder(w)
		for _, r := range routes {
			if err := encoder.Encode(r); err != nil {
				return fmt.Errorf("failed to encode route %s: %w", r.RouteNumber, err)
			}
		}
		return nil
	case FormatCSV:
		return writeCSV(w, routes)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(routes); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return encoder.Close()
	case FormatParquet:
		return writeParquet(w, routes)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteFile writes routes to path, choosing the format from its extension
func WriteFile(path string, routes []models.RouteFolder) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create catalog file: %w", err)
	}
	if err := Write(f, format, routes); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var csvHeader = []string{
	"route_number", "folder_name", "type", "image_count", "size_category", "capture_date",
	"rgb_count", "ms_count", "ms_files_count", "complete_sets", "dropped_captures",
	"band_g", "band_nir", "band_r", "band_re", "folder_path",
}

func writeCSV(w io.Writer, routes []models.RouteFolder) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range routes {
		bands := models.BandCounts{}
		if r.BandCounts != nil {
			bands = *r.BandCounts
		}
		record := []string{
			r.RouteNumber,
			r.FolderName,
			string(r.Type),
			strconv.Itoa(r.ImageCount()),
			r.SizeCategory(),
			r.CaptureDate(),
			strconv.Itoa(r.RGBCount),
			strconv.Itoa(r.MSCount),
			strconv.Itoa(r.MSFilesCount),
			strconv.Itoa(r.CompleteSets),
			strconv.Itoa(r.DroppedCaptures),
			strconv.Itoa(bands.G),
			strconv.Itoa(bands.NIR),
			strconv.Itoa(bands.R),
			strconv.Itoa(bands.RE),
			r.FolderPath,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeParquet(w io.Writer, routes []models.RouteFolder) error {
	rows := make([]row, 0, len(routes))
	for _, r := range routes {
		rows = append(rows, toRow(r))
	}
	writer := parquet.NewGenericWriter[row](w)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
