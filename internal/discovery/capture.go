package discovery

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/survey-automation/routebatch/internal/models"
)

// Bands lists the required multispectral bands in canonical order
var Bands = []string{"G", "NIR", "R", "RE"}

var captureFilePattern = regexp.MustCompile(`(?i)^DJI_(\d{14})_(\d+)_MS_(\w+)\.TIF$`)

// CaptureSet is one synchronized multispectral capture
type CaptureSet struct {
	Timestamp string
	Sequence  string
	Bands     map[string]string
}

// Key identifies the capture by timestamp and sequence number
func (c CaptureSet) Key() string {
	return c.Timestamp + "_" + c.Sequence
}

// Complete reports whether every required band is present
func (c CaptureSet) Complete() bool {
	for _, band := range Bands {
		if _, ok := c.Bands[band]; !ok {
			return false
		}
	}
	return true
}

// Files returns the band files in canonical order, skipping missing bands
func (c CaptureSet) Files() []string {
	files := make([]string, 0, len(Bands))
	for _, band := range Bands {
		if f, ok := c.Bands[band]; ok {
			files = append(files, f)
		}
	}
	return files
}

// Grouping is the result of grouping band files into captures
type Grouping struct {
	Complete   []CaptureSet
	Incomplete []CaptureSet
	BandCounts models.BandCounts
	Unparsed   []string
}

// Files flattens the complete captures, band by band in canonical order
func (g Grouping) Files() []string {
	files := make([]string, 0, len(g.Complete)*len(Bands))
	for _, c := range g.Complete {
		files = append(files, c.Files()...)
	}
	return files
}

// ParseCaptureFile extracts timestamp, sequence and upper-cased band from a band file name
func ParseCaptureFile(path string) (timestamp, sequence, band string, ok bool) {
	sub := captureFilePattern.FindStringSubmatch(filepath.Base(path))
	if sub == nil {
		return "", "", "", false
	}
	return sub[1], sub[2], strings.ToUpper(sub[3]), true
}

// GroupCaptures groups band files by capture key. Only captures holding all
// four bands are complete; a capture missing any band is dropped as a whole.
func GroupCaptures(paths []string) Grouping {
	var g Grouping
	captures := make(map[string]*CaptureSet)

	for _, path := range paths {
		ts, seq, band, ok := ParseCaptureFile(path)
		if !ok {
			g.Unparsed = append(g.Unparsed, path)
			continue
		}
		key := ts + "_" + seq
		c, exists := captures[key]
		if !exists {
			c = &CaptureSet{Timestamp: ts, Sequence: seq, Bands: make(map[string]string)}
			captures[key] = c
		}
		c.Bands[band] = path
		g.BandCounts.Add(band)
	}

	keys := make([]string, 0, len(captures))
	for k := range captures {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		c := *captures[k]
		// Extra bands beyond the four required ones do not make a capture incomplete.
		if c.Complete() {
			g.Complete = append(g.Complete, c)
		} else {
			g.Incomplete = append(g.Incomplete, c)
		}
	}
	return g
}
