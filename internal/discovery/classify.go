package discovery

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Tier is one level of glob patterns tried against a folder
type Tier struct {
	Name     string
	Patterns []string
}

// RGBTiers are tried in order; the first tier yielding files wins.
var RGBTiers = []Tier{
	{Name: "_D.JPG suffix", Patterns: []string{"*_D.JPG"}},
	{Name: "D.JPG suffix", Patterns: []string{"*D.JPG"}},
	{Name: "any JPG", Patterns: []string{"*.JPG", "*.jpg"}},
}

// MSTiers are tried in order; the first tier yielding files wins.
var MSTiers = []Tier{
	{Name: "per-band", Patterns: []string{"*_MS_G.TIF", "*_MS_R.TIF", "*_MS_RE.TIF", "*_MS_NIR.TIF"}},
	{Name: "per-band lowercase", Patterns: []string{"*_ms_g.tif", "*_ms_r.tif", "*_ms_re.tif", "*_ms_nir.tif"}},
	{Name: "any MS TIF", Patterns: []string{"*MS*.TIF", "*ms*.tif"}},
}

// FirstMatch globs dir with each tier in order and returns the files of the
// first non-empty tier together with that tier's name. Later tiers are never
// consulted once a tier matched.
func FirstMatch(dir string, tiers []Tier) ([]string, string, error) {
	base := escapeGlob(dir)
	for _, tier := range tiers {
		seen := make(map[string]bool)
		var files []string
		for _, pattern := range tier.Patterns {
			matches, err := filepath.Glob(filepath.Join(base, pattern))
			if err != nil {
				return nil, "", fmt.Errorf("failed to glob %s in %s: %w", pattern, dir, err)
			}
			for _, m := range matches {
				if !seen[m] {
					seen[m] = true
					files = append(files, m)
				}
			}
		}
		if len(files) > 0 {
			sort.Strings(files)
			return files, tier.Name, nil
		}
	}
	return nil, "", nil
}

// FindRGB returns the RGB images of a route folder
func FindRGB(dir string) ([]string, error) {
	files, _, err := FirstMatch(dir, RGBTiers)
	return files, err
}

// FindMS returns the multispectral band files of a route folder
func FindMS(dir string) ([]string, error) {
	files, _, err := FirstMatch(dir, MSTiers)
	return files, err
}

// escapeGlob quotes glob metacharacters in a literal directory path
func escapeGlob(path string) string {
	// Windows globbing has no escape character.
	if filepath.Separator == '\\' {
		return path
	}
	var b strings.Builder
	for _, r := range path {
		switch r {
		case '*', '?', '[', ']':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
