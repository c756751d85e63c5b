package discovery

import (
	"fmt"
	"os"

	"github.com/rwcarlsen/goexif/exif"
)

// GPSSummary counts how many sampled images carry a GPS position in EXIF
type GPSSummary struct {
	Sampled int
	Tagged  int
	Errors  int
}

func (g GPSSummary) String() string {
	return fmt.Sprintf("%d/%d images with GPS (%d unreadable)", g.Tagged, g.Sampled, g.Errors)
}

// ImageLocation reads the EXIF GPS position of an image
func ImageLocation(path string) (lat, long float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return 0, 0, fmt.Errorf("no EXIF data: %w", err)
	}

	lat, long, err = x.LatLong()
	if err != nil {
		return 0, 0, fmt.Errorf("no GPS data: %w", err)
	}
	return lat, long, nil
}

// SummarizeGPS checks up to limit files (all when limit <= 0) for GPS tags.
// Images without EXIF count as sampled but untagged.
func SummarizeGPS(files []string, limit int) GPSSummary {
	var s GPSSummary
	for i, path := range files {
		if limit > 0 && i >= limit {
			break
		}
		s.Sampled++
		if _, err := os.Stat(path); err != nil {
			s.Errors++
			continue
		}
		if _, _, err := ImageLocation(path); err == nil {
			s.Tagged++
		}
	}
	return s
}
