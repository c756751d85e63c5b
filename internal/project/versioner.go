package project

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/survey-automation/routebatch/internal/models"
)

// ProjectExt is the engine's project file extension
const ProjectExt = ".psx"

// ProductDirs are created next to the project file for full pipelines
var ProductDirs = []string{"orthomosaic", "dem", "pointcloud", "report"}

// Path is a versioned project location
type Path struct {
	Dir     string
	File    string
	Name    string
	Version int
}

// SingleRouteName is the canonical project name of one route
func SingleRouteName(routeNumber string, t models.ProcessingType) string {
	return fmt.Sprintf("route_%s_%s", routeNumber, t.Tag())
}

// MultiRouteName is the canonical project name of merged routes
func MultiRouteName(routeNumbers []string, t models.ProcessingType) string {
	return fmt.Sprintf("combined_routes_%s_%s", strings.Join(routeNumbers, "_"), t.MultiTag())
}

// VersionedName appends _v<version> for versions above 1
func VersionedName(name string, version int) string {
	if version <= 1 {
		return name
	}
	return fmt.Sprintf("%s_v%d", name, version)
}

// Resolve finds the first version of name under baseDir whose folder is
// absent or empty. It does not touch the filesystem, so repeated calls over
// the same state return the same path.
func Resolve(baseDir, name string) (Path, error) {
	for version := 1; ; version++ {
		folder := VersionedName(name, version)
		dir := filepath.Join(baseDir, folder)

		empty, err := isEmptyOrAbsent(dir)
		if err != nil {
			return Path{}, fmt.Errorf("failed to inspect project folder %s: %w", dir, err)
		}
		if empty {
			return Path{
				Dir:     dir,
				File:    filepath.Join(dir, folder+ProjectExt),
				Name:    folder,
				Version: version,
			}, nil
		}
		slog.Debug("Project folder in use, trying next version", "folder", folder)
	}
}

// Create resolves the next free version of name and creates its folder,
// plus the product subfolders when withProducts is set.
func Create(baseDir, name string, withProducts bool) (Path, error) {
	p, err := Resolve(baseDir, name)
	if err != nil {
		return Path{}, err
	}

	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return Path{}, fmt.Errorf("failed to create project folder: %w", err)
	}

	if withProducts {
		for _, sub := range ProductDirs {
			if err := os.MkdirAll(filepath.Join(p.Dir, sub), 0755); err != nil {
				return Path{}, fmt.Errorf("failed to create %s folder: %w", sub, err)
			}
		}
	}

	if p.Version > 1 {
		slog.Info("Created versioned project folder", "folder", p.Name, "version", p.Version)
	}
	return p, nil
}

// isEmptyOrAbsent reports whether dir can host a new project. A regular file
// at dir counts as occupied.
func isEmptyOrAbsent(dir string) (bool, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if !info.IsDir() {
		return false, nil
	}

	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}
