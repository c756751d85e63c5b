// Package config reads and writes the operator's JSON configuration document.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"

	"github.com/survey-automation/routebatch/internal/models"
)

const (
	// Version is stamped into every saved document
	Version = "1.0"
	// DefaultFileName is used when neither --config nor ROUTEBATCH_CONFIG is set
	DefaultFileName = "routebatch_config.json"
)

type Paths struct {
	DCIM       string `json:"dcim"`
	GCP        string `json:"gcp"`
	Output     string `json:"output"`
	ScriptBase string `json:"script_base"`
}

type Processing struct {
	Type models.ProcessingType `json:"type"`
	Mode models.RouteMode      `json:"mode"`
}

// ScriptPaths names the console script for every type and mode
type ScriptPaths struct {
	RGBSingle     string `json:"rgb_single"`
	MSSingle      string `json:"ms_single"`
	RGBMSSingle   string `json:"rgb_ms_single"`
	RGBCombined   string `json:"rgb_combined"`
	MSCombined    string `json:"ms_combined"`
	RGBMSCombined string `json:"rgb_ms_combined"`
}

type Routes struct {
	DetectedCount  int      `json:"detected_count"`
	SelectedRoutes []string `json:"selected_routes"`
}

// Config is the persisted configuration document
type Config struct {
	Version     string      `json:"version"`
	Timestamp   string      `json:"timestamp"`
	Paths       Paths       `json:"paths"`
	Processing  Processing  `json:"processing"`
	ScriptPaths ScriptPaths `json:"script_paths"`
	Routes      Routes      `json:"routes"`
}

// DefaultScriptPaths returns the stock script file names
func DefaultScriptPaths() ScriptPaths {
	return ScriptPaths{
		RGBSingle:     "rgb_single_automation_generic.py",
		MSSingle:      "ms_single_automation_generic.py",
		RGBMSSingle:   "rgb_ms_single_automation_generic.py",
		RGBCombined:   "rgb_combined_automation_generic.py",
		MSCombined:    "ms_combined_automation_generic.py",
		RGBMSCombined: "rgb_ms_combined_automation_generic.py",
	}
}

// Default returns an empty configuration with RGB single-route processing
func Default() *Config {
	return &Config{
		Version:     Version,
		Processing:  Processing{Type: models.TypeRGB, Mode: models.ModeSingle},
		ScriptPaths: DefaultScriptPaths(),
		Routes:      Routes{SelectedRoutes: []string{}},
	}
}

// For returns the script for a processing type and route mode
func (s ScriptPaths) For(t models.ProcessingType, m models.RouteMode) string {
	if m == models.ModeMultiple {
		switch t {
		case models.TypeMS:
			return s.MSCombined
		case models.TypeCombined:
			return s.RGBMSCombined
		default:
			return s.RGBCombined
		}
	}
	switch t {
	case models.TypeMS:
		return s.MSSingle
	case models.TypeCombined:
		return s.RGBMSSingle
	default:
		return s.RGBSingle
	}
}

// Path resolves the configuration file location from a flag value,
// ROUTEBATCH_CONFIG and finally the default file name
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("ROUTEBATCH_CONFIG"); env != "" {
		return env
	}
	return DefaultFileName
}

// Load reads a configuration file. A missing file yields the defaults.
// Every field is optional; unknown enum values fall back to the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("No saved configuration found", "path", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("config file %s is not valid JSON", path)
	}
	cfg.apply(gjson.ParseBytes(data))
	return cfg, nil
}

func (c *Config) apply(doc gjson.Result) {
	if v := doc.Get("version"); v.Exists() {
		c.Version = v.String()
	}
	c.Timestamp = doc.Get("timestamp").String()

	c.Paths.DCIM = doc.Get("paths.dcim").String()
	c.Paths.GCP = doc.Get("paths.gcp").String()
	c.Paths.Output = doc.Get("paths.output").String()
	c.Paths.ScriptBase = doc.Get("paths.script_base").String()

	if v := doc.Get("processing.type"); v.Exists() {
		t, err := models.ParseProcessingType(v.String())
		if err != nil {
			slog.Warn("Ignoring processing type from config", "value", v.String(), "err", err)
		} else {
			c.Processing.Type = t
		}
	}
	if v := doc.Get("processing.mode"); v.Exists() {
		m, err := models.ParseRouteMode(v.String())
		if err != nil {
			slog.Warn("Ignoring route mode from config", "value", v.String(), "err", err)
		} else {
			c.Processing.Mode = m
		}
	}

	scripts := map[string]*string{
		"rgb_single":      &c.ScriptPaths.RGBSingle,
		"ms_single":       &c.ScriptPaths.MSSingle,
		"rgb_ms_single":   &c.ScriptPaths.RGBMSSingle,
		"rgb_combined":    &c.ScriptPaths.RGBCombined,
		"ms_combined":     &c.ScriptPaths.MSCombined,
		"rgb_ms_combined": &c.ScriptPaths.RGBMSCombined,
	}
	for key, dst := range scripts {
		if v := doc.Get("script_paths." + key); v.Exists() && v.String() != "" {
			*dst = v.String()
		}
	}

	c.Routes.DetectedCount = int(doc.Get("routes.detected_count").Int())
	for _, r := range doc.Get("routes.selected_routes").Array() {
		c.Routes.SelectedRoutes = append(c.Routes.SelectedRoutes, r.String())
	}
}

// Save stamps the version and timestamp and writes the document
func Save(path string, cfg *Config) error {
	cfg.Version = Version
	cfg.Timestamp = time.Now().Format(time.RFC3339)
	if cfg.Routes.SelectedRoutes == nil {
		cfg.Routes.SelectedRoutes = []string{}
	}

	data, err := encode(cfg)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
