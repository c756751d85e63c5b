package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/survey-automation/routebatch/internal/models"
)

// ErrUnknownKey is returned by Set and Get for keys outside the document schema
var ErrUnknownKey = errors.New("unknown config key")

type keyKind int

const (
	kindString keyKind = iota
	kindType
	kindMode
	kindInt
	kindList
)

var keys = map[string]keyKind{
	"paths.dcim":                   kindString,
	"paths.gcp":                    kindString,
	"paths.output":                 kindString,
	"paths.script_base":            kindString,
	"processing.type":              kindType,
	"processing.mode":              kindMode,
	"script_paths.rgb_single":      kindString,
	"script_paths.ms_single":       kindString,
	"script_paths.rgb_ms_single":   kindString,
	"script_paths.rgb_combined":    kindString,
	"script_paths.ms_combined":     kindString,
	"script_paths.rgb_ms_combined": kindString,
	"routes.detected_count":        kindInt,
	"routes.selected_routes":       kindList,
}

// Keys lists every settable key in sorted order
func Keys() []string {
	result := make([]string, 0, len(keys))
	for k := range keys {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// Set patches one dotted key in place and refreshes the timestamp. Other
// members of the document, including ones this tool does not know, are kept.
// A missing file is created from the defaults first.
func Set(path, key, value string) error {
	kind, ok := keys[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	typed, err := convert(kind, value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	body, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		body, err = encode(Default())
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("config file %s is not valid JSON", path)
	}

	body, err = sjson.SetBytes(body, key, typed)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	body, err = sjson.SetBytes(body, "version", Version)
	if err != nil {
		return fmt.Errorf("failed to set version: %w", err)
	}
	body, err = sjson.SetBytes(body, "timestamp", time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to set timestamp: %w", err)
	}

	return writeFile(path, pretty.PrettyOptions(body, &pretty.Options{Indent: "  ", Width: 80}))
}

func convert(kind keyKind, value string) (any, error) {
	switch kind {
	case kindType:
		t, err := models.ParseProcessingType(value)
		return string(t), err
	case kindMode:
		m, err := models.ParseRouteMode(value)
		return string(m), err
	case kindInt:
		return strconv.Atoi(value)
	case kindList:
		items := []string{}
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	default:
		return value, nil
	}
}

// Get returns the raw JSON value stored under key, or "" when it is unset
func Get(path, key string) (string, error) {
	if _, ok := keys[key]; !ok && key != "version" && key != "timestamp" {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read config file: %w", err)
	}
	v := gjson.GetBytes(body, key)
	if !v.Exists() {
		return "", nil
	}
	if v.Type == gjson.String {
		return v.String(), nil
	}
	return v.Raw, nil
}

// ExportFileName is the name of a timestamped configuration export
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("routebatch_config_%s.json", now.Format("20060102_150405"))
}

type routeDetail struct {
	RouteNumber string `json:"route_number"`
	ImageCount  int    `json:"image_count"`
	FolderName  string `json:"folder_name"`
}

// Export writes a timestamped copy of cfg into dir. The copy records the
// source file and, when routes are given, a summary of each detected route.
func Export(dir, source string, cfg *Config, routes []models.RouteFolder) (string, error) {
	now := time.Now()
	snapshot := *cfg
	snapshot.Version = Version
	snapshot.Timestamp = now.Format(time.RFC3339)
	if routes != nil {
		snapshot.Routes.DetectedCount = len(routes)
	}

	body, err := encode(&snapshot)
	if err != nil {
		return "", err
	}
	body, err = sjson.SetBytes(body, "exported_from", source)
	if err != nil {
		return "", fmt.Errorf("failed to set exported_from: %w", err)
	}
	if routes != nil {
		details := make([]routeDetail, 0, len(routes))
		for _, r := range routes {
			details = append(details, routeDetail{
				RouteNumber: r.RouteNumber,
				ImageCount:  r.ImageCount(),
				FolderName:  r.FolderName,
			})
		}
		body, err = sjson.SetBytes(body, "routes.route_details", details)
		if err != nil {
			return "", fmt.Errorf("failed to set route details: %w", err)
		}
	}

	out := filepath.Join(dir, ExportFileName(now))
	if err := writeFile(out, pretty.PrettyOptions(body, &pretty.Options{Indent: "  ", Width: 80})); err != nil {
		return "", err
	}
	return out, nil
}
