package models

import (
	"fmt"
	"strings"
)

// ProcessingType selects which images of a route are processed
type ProcessingType string

const (
	TypeRGB      ProcessingType = "RGB"
	TypeMS       ProcessingType = "MS"
	TypeCombined ProcessingType = "Combined"
)

// ParseProcessingType accepts the config-file spelling as well as lowercase CLI input
func ParseProcessingType(s string) (ProcessingType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rgb":
		return TypeRGB, nil
	case "ms", "multispectral":
		return TypeMS, nil
	case "combined", "rgb+ms", "rgb_ms":
		return TypeCombined, nil
	default:
		return "", fmt.Errorf("unknown processing type %q (supported: RGB, MS, Combined)", s)
	}
}

// Tag is the suffix used in single-route project and chunk names
func (t ProcessingType) Tag() string {
	return string(t)
}

// MultiTag is the suffix used in multi-route project and chunk names
func (t ProcessingType) MultiTag() string {
	if t == TypeCombined {
		return "RGB_MS"
	}
	return string(t)
}

// RouteMode selects single-route or merged multi-route processing
type RouteMode string

const (
	ModeSingle   RouteMode = "Single"
	ModeMultiple RouteMode = "Multiple"
)

// ParseRouteMode accepts "single"/"multiple" in any case
func ParseRouteMode(s string) (RouteMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single":
		return ModeSingle, nil
	case "multiple", "multi":
		return ModeMultiple, nil
	default:
		return "", fmt.Errorf("unknown route mode %q (supported: Single, Multiple)", s)
	}
}

// BandCounts tallies multispectral files per band
type BandCounts struct {
	G   int `json:"G" yaml:"g"`
	NIR int `json:"NIR" yaml:"nir"`
	R   int `json:"R" yaml:"r"`
	RE  int `json:"RE" yaml:"re"`
}

// Add increments the counter for band, ignoring unknown bands
func (b *BandCounts) Add(band string) {
	switch band {
	case "G":
		b.G++
	case "NIR":
		b.NIR++
	case "R":
		b.R++
	case "RE":
		b.RE++
	}
}

// Total is the sum over all four bands
func (b BandCounts) Total() int {
	return b.G + b.NIR + b.R + b.RE
}

func (b BandCounts) String() string {
	return fmt.Sprintf("G=%d, NIR=%d, R=%d, RE=%d", b.G, b.NIR, b.R, b.RE)
}

// RouteFolder is one route discovered in a DCIM directory
type RouteFolder struct {
	FolderName  string         `json:"folder_name" yaml:"folder_name"`
	FolderPath  string         `json:"folder_path" yaml:"folder_path"`
	RouteNumber string         `json:"route_number" yaml:"route_number"`
	Type        ProcessingType `json:"type" yaml:"type"`

	RGBCount        int         `json:"rgb_count" yaml:"rgb_count"`
	MSCount         int         `json:"ms_count" yaml:"ms_count"`
	MSFilesCount    int         `json:"ms_files_count" yaml:"ms_files_count"`
	CompleteSets    int         `json:"complete_sets" yaml:"complete_sets"`
	DroppedCaptures int         `json:"dropped_captures" yaml:"dropped_captures"`
	BandCounts      *BandCounts `json:"band_counts,omitempty" yaml:"band_counts,omitempty"`
	ImageFiles      []string    `json:"image_files" yaml:"image_files"`
	RGBFiles        []string    `json:"rgb_files,omitempty" yaml:"rgb_files,omitempty"`
	MSFiles         []string    `json:"ms_files,omitempty" yaml:"ms_files,omitempty"`
}

// ImageCount is the number of images handed to the engine
func (r RouteFolder) ImageCount() int {
	return len(r.ImageFiles)
}

// SizeCategory buckets a route by image count for listings
func (r RouteFolder) SizeCategory() string {
	n := r.ImageCount()
	switch {
	case n < 200:
		return "Small"
	case n < 400:
		return "Medium"
	default:
		return "Large"
	}
}

// CaptureDate returns the YYYYMMDD part of the folder timestamp, or "" if unknown
func (r RouteFolder) CaptureDate() string {
	parts := strings.Split(r.FolderName, "_")
	if len(parts) < 2 || len(parts[1]) < 8 {
		return ""
	}
	return parts[1][:8]
}
