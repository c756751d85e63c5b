package configcmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/survey-automation/routebatch/internal/config"
	"github.com/survey-automation/routebatch/internal/console"
)

func executeConsole(w io.Writer, configPath string, o overrides, script string, save bool) error {
	path := config.Path(configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := o.apply(cfg); err != nil {
		return err
	}

	req := console.FromConfig(cfg)
	if script != "" {
		req.Script = script
	}
	lines, err := console.Lines(req)
	if err != nil {
		return err
	}

	if save {
		if err := config.Save(path, cfg); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "# %s, %s mode, routes %s\n", req.Type, strings.ToLower(string(req.Mode)), strings.Join(req.Routes, ", "))
	fmt.Fprintln(w, "# Paste these lines into the engine's Python console:")
	fmt.Fprintln(w)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return nil
}
