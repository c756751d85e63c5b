// Package console builds the command lines an operator pastes into the
// engine's scripting console. The lines are printed, never executed.
package console

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/survey-automation/routebatch/internal/config"
	"github.com/survey-automation/routebatch/internal/models"
)

// ErrValidation is wrapped by every Validate failure
var ErrValidation = errors.New("invalid console request")

// Request holds everything needed to render the console lines
type Request struct {
	ScriptBase string
	Script     string
	DCIM       string
	GCP        string
	Output     string
	Type       models.ProcessingType
	Mode       models.RouteMode
	Routes     []string
}

// FromConfig builds a request from a configuration document, picking the
// script for the configured type and mode
func FromConfig(cfg *config.Config) Request {
	return Request{
		ScriptBase: cfg.Paths.ScriptBase,
		Script:     cfg.ScriptPaths.For(cfg.Processing.Type, cfg.Processing.Mode),
		DCIM:       cfg.Paths.DCIM,
		GCP:        cfg.Paths.GCP,
		Output:     cfg.Paths.Output,
		Type:       cfg.Processing.Type,
		Mode:       cfg.Processing.Mode,
		Routes:     cfg.Routes.SelectedRoutes,
	}
}

// Validate reports the first missing input
func (r Request) Validate() error {
	switch {
	case r.ScriptBase == "":
		return fmt.Errorf("%w: script folder is required", ErrValidation)
	case r.DCIM == "":
		return fmt.Errorf("%w: DCIM folder is required", ErrValidation)
	case r.GCP == "":
		return fmt.Errorf("%w: GCP folder is required", ErrValidation)
	case r.Output == "":
		return fmt.Errorf("%w: output folder is required", ErrValidation)
	case len(r.Routes) == 0:
		return fmt.Errorf("%w: select at least one route", ErrValidation)
	case r.Mode == models.ModeMultiple && len(r.Routes) < 2:
		return fmt.Errorf("%w: multiple route mode requires at least 2 routes", ErrValidation)
	}
	return nil
}

// ScriptPath joins the script folder and name using forward slashes
func (r Request) ScriptPath() string {
	p := r.Script
	if !filepath.IsAbs(p) && !isWindowsAbs(p) {
		p = filepath.Join(r.ScriptBase, r.Script)
	}
	return strings.ReplaceAll(p, `\`, "/")
}

func isWindowsAbs(p string) bool {
	return len(p) >= 3 && p[1] == ':' && (p[2] == '\\' || p[2] == '/')
}

// escape doubles backslashes for use inside a raw console string
func escape(p string) string {
	return strings.ReplaceAll(p, `\`, `\\`)
}

// Lines validates the request and returns the console lines in paste order
func Lines(r Request) ([]string, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	lines := []string{
		fmt.Sprintf("exec(open(r'%s',encoding='utf-8').read())", r.ScriptPath()),
		fmt.Sprintf("configure_paths(dcim=r'%s', gcp=r'%s', output=r'%s')",
			escape(r.DCIM), escape(r.GCP), escape(r.Output)),
	}
	if r.Mode != models.ModeMultiple {
		return append(lines, fmt.Sprintf("process_single_route_by_number('%s')", r.Routes[0])), nil
	}
	return append(lines,
		fmt.Sprintf("configure_routes(['%s'])", strings.Join(r.Routes, "', '")),
		fmt.Sprintf("run_combined_%s_automation()", automationName(r.Type)),
	), nil
}

func automationName(t models.ProcessingType) string {
	switch t {
	case models.TypeMS:
		return "ms"
	case models.TypeCombined:
		return "rgb_ms"
	default:
		return "rgb"
	}
}
