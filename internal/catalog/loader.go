package catalog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/survey-automation/routebatch/internal/models"
)

// Loader reads a catalog previously written by Write
type Loader struct {
	path string
}

// NewLoader creates a loader for a catalog file
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads every route in the file. CSV catalogs are summaries without
// file lists and cannot be loaded.
func (l *Loader) Load() ([]models.RouteFolder, error) {
	format, err := FormatFromPath(l.path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatParquet:
		return l.loadParquet()
	case FormatJSONL:
		return l.loadJSONL()
	case FormatJSON:
		return l.loadJSON()
	case FormatYAML:
		return l.loadYAML()
	default:
		return nil, fmt.Errorf("cannot load routes from %s catalogs", format)
	}
}

func (l *Loader) loadJSON() ([]models.RouteFolder, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	var routes []models.RouteFolder
	if err := json.Unmarshal(data, &routes); err != nil {
		return nil, fmt.Errorf("failed to parse JSON catalog: %w", err)
	}
	slog.Debug("Loaded JSON catalog", "path", l.path, "routes", len(routes))
	return routes, nil
}

func (l *Loader) loadYAML() ([]models.RouteFolder, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	var routes []models.RouteFolder
	if err := yaml.Unmarshal(data, &routes); err != nil {
		return nil, fmt.Errorf("failed to parse YAML catalog: %w", err)
	}
	slog.Debug("Loaded YAML catalog", "path", l.path, "routes", len(routes))
	return routes, nil
}

func (l *Loader) loadJSONL() ([]models.RouteFolder, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	var routes []models.RouteFolder
	scanner := bufio.NewScanner(file)

	// route lines carry every image path
	const maxCapacity = 10 * 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var route models.RouteFolder
		if err := json.Unmarshal(line, &route); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		routes = append(routes, route)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading catalog: %w", err)
	}

	slog.Debug("Loaded JSONL catalog", "path", l.path, "routes", len(routes), "lines", lineNum)
	return routes, nil
}

func (l *Loader) loadParquet() ([]models.RouteFolder, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}
	slog.Debug("Parquet catalog opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[row](pf)
	defer reader.Close()

	var routes []models.RouteFolder
	rows := make([]row, 64)
	for {
		n, err := reader.Read(rows)
		for _, r := range rows[:n] {
			routes = append(routes, r.route())
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return routes, nil
}
