package simulated

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/survey-automation/routebatch/internal/engine"
)

// chunkState is everything the simulation tracks for one chunk
type chunkState struct {
	ID                string        `json:"id"`
	Label             string        `json:"label"`
	CRS               string        `json:"crs"`
	Layout            engine.Layout `json:"layout,omitempty"`
	Photos            []string      `json:"photos"`
	Markers           int           `json:"markers"`
	EnabledMarkers    int           `json:"enabled_markers"`
	MarkerProjections int           `json:"marker_projections"`
	TiePoints         int           `json:"tie_points"`
	AlignedCameras    int           `json:"aligned_cameras"`
	DepthMaps         int           `json:"depth_maps"`
	PointCloudPoints  int           `json:"point_cloud_points"`
	HasModel          bool          `json:"has_model"`
	HasTexture        bool          `json:"has_texture"`
	HasDEM            bool          `json:"has_dem"`
	HasOrthomosaic    bool          `json:"has_orthomosaic"`
}

const (
	tiePointsPerCamera = 120
	pointsPerDepthMap  = 2500
	maxProjections     = 3
)

type chunk struct {
	doc   *document
	state chunkState
}

func (c *chunk) ID() string    { return c.state.ID }
func (c *chunk) Label() string { return c.state.Label }

// begin locks the owning document and applies cancellation and fault checks
func (c *chunk) begin(ctx context.Context, op string) error {
	c.doc.mu.Lock()
	if err := c.doc.check(ctx, c.state.Label, op); err != nil {
		c.doc.mu.Unlock()
		return err
	}
	return nil
}

func (c *chunk) end() { c.doc.mu.Unlock() }

func (c *chunk) SetLabel(ctx context.Context, label string) error {
	if err := c.begin(ctx, "SetLabel"); err != nil {
		return err
	}
	defer c.end()
	c.state.Label = label
	return nil
}

func (c *chunk) SetCRS(ctx context.Context, code string) error {
	if err := c.begin(ctx, "SetCRS"); err != nil {
		return err
	}
	defer c.end()
	if code == "" {
		return errors.New("empty coordinate reference system")
	}
	c.state.CRS = code
	return nil
}

func (c *chunk) AddPhotos(ctx context.Context, paths []string, layout engine.Layout) error {
	if err := c.begin(ctx, "AddPhotos"); err != nil {
		return err
	}
	defer c.end()
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("failed to add photo %s: %w", p, err)
		}
	}
	c.state.Photos = append(c.state.Photos, paths...)
	c.state.Layout = layout
	return nil
}

func (c *chunk) ImportMarkers(ctx context.Context, path string) error {
	if err := c.begin(ctx, "ImportMarkers"); err != nil {
		return err
	}
	defer c.end()

	counts, err := countMarkers(path)
	if err != nil {
		return err
	}
	if counts.markers == 0 {
		return fmt.Errorf("no markers found in %s", filepath.Base(path))
	}
	c.state.Markers += counts.markers
	c.state.EnabledMarkers += counts.markers - counts.disabled
	projections := counts.projections
	if projections == 0 {
		projections = counts.markers * min(len(c.state.Photos), maxProjections)
	}
	c.state.MarkerProjections += projections
	return nil
}

type markerCounts struct {
	markers     int
	disabled    int
	projections int
}

// countMarkers reads a marker XML document. Markers are <marker> elements
// carrying a label, projections are <location> elements inside frame markers.
func countMarkers(path string) (markerCounts, error) {
	var counts markerCounts
	f, err := os.Open(path)
	if err != nil {
		return counts, fmt.Errorf("failed to open marker file: %w", err)
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	inMarker := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return counts, fmt.Errorf("failed to parse marker file: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "marker":
				if attr(el, "label") != "" {
					counts.markers++
					inMarker = true
					if attr(el, "enabled") == "false" {
						counts.disabled++
					}
				}
			case "reference":
				if inMarker && attr(el, "enabled") == "false" {
					counts.disabled++
				}
			case "location":
				counts.projections++
			}
		case xml.EndElement:
			if el.Name.Local == "marker" {
				inMarker = false
			}
		}
	}
	if counts.disabled > counts.markers {
		counts.disabled = counts.markers
	}
	return counts, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (c *chunk) MatchPhotos(ctx context.Context, opts engine.MatchOptions) error {
	if err := c.begin(ctx, "MatchPhotos"); err != nil {
		return err
	}
	defer c.end()
	downscale := max(opts.Downscale, 1)
	c.state.TiePoints = len(c.state.Photos) * tiePointsPerCamera / downscale
	return nil
}

func (c *chunk) AlignCameras(ctx context.Context, opts engine.AlignOptions) error {
	if err := c.begin(ctx, "AlignCameras"); err != nil {
		return err
	}
	defer c.end()
	if c.state.TiePoints == 0 {
		c.state.AlignedCameras = 0
		return nil
	}
	c.state.AlignedCameras = int(float64(len(c.state.Photos)) * c.doc.engine.alignRatio())
	return nil
}

func (c *chunk) BuildDepthMaps(ctx context.Context, opts engine.DepthMapOptions) error {
	if err := c.begin(ctx, "BuildDepthMaps"); err != nil {
		return err
	}
	defer c.end()
	if c.state.AlignedCameras == 0 {
		return errors.New("no aligned cameras to build depth maps from")
	}
	c.state.DepthMaps = c.state.AlignedCameras
	return nil
}

func (c *chunk) BuildPointCloud(ctx context.Context, opts engine.PointCloudOptions) error {
	if err := c.begin(ctx, "BuildPointCloud"); err != nil {
		return err
	}
	defer c.end()
	if c.state.DepthMaps == 0 {
		return errors.New("no depth maps to build a point cloud from")
	}
	c.state.PointCloudPoints = c.state.DepthMaps * pointsPerDepthMap
	return nil
}

func (c *chunk) BuildModel(ctx context.Context, opts engine.ModelOptions) error {
	if err := c.begin(ctx, "BuildModel"); err != nil {
		return err
	}
	defer c.end()
	if c.state.DepthMaps == 0 {
		return errors.New("no depth maps to build a model from")
	}
	c.state.HasModel = true
	return nil
}

func (c *chunk) BuildTexture(ctx context.Context, opts engine.TextureOptions) error {
	if err := c.begin(ctx, "BuildTexture"); err != nil {
		return err
	}
	defer c.end()
	if !c.state.HasModel {
		return errors.New("no model to texture")
	}
	c.state.HasTexture = true
	return nil
}

func (c *chunk) BuildDEM(ctx context.Context, opts engine.DEMOptions) error {
	if err := c.begin(ctx, "BuildDEM"); err != nil {
		return err
	}
	defer c.end()
	if c.state.PointCloudPoints == 0 {
		return errors.New("no point cloud to build an elevation model from")
	}
	c.state.HasDEM = true
	return nil
}

func (c *chunk) BuildOrthomosaic(ctx context.Context, opts engine.OrthomosaicOptions) error {
	if err := c.begin(ctx, "BuildOrthomosaic"); err != nil {
		return err
	}
	defer c.end()
	if !c.state.HasDEM {
		return errors.New("no elevation model to project onto")
	}
	c.state.HasOrthomosaic = true
	return nil
}

func (c *chunk) ExportRaster(ctx context.Context, path string, source engine.RasterSource) error {
	if err := c.begin(ctx, "ExportRaster"); err != nil {
		return err
	}
	defer c.end()
	switch source {
	case engine.RasterOrthomosaic:
		if !c.state.HasOrthomosaic {
			return errors.New("no orthomosaic to export")
		}
	case engine.RasterElevation:
		if !c.state.HasDEM {
			return errors.New("no elevation model to export")
		}
	default:
		return fmt.Errorf("unknown raster source %q", source)
	}
	return writeProduct(path, fmt.Sprintf("%s raster of %s\n", source, c.state.Label))
}

func (c *chunk) ExportPoints(ctx context.Context, path string) error {
	if err := c.begin(ctx, "ExportPoints"); err != nil {
		return err
	}
	defer c.end()
	if c.state.PointCloudPoints == 0 {
		return errors.New("no point cloud to export")
	}
	return writeProduct(path, fmt.Sprintf("%d points of %s\n", c.state.PointCloudPoints, c.state.Label))
}

func (c *chunk) ExportReport(ctx context.Context, path, title string) error {
	if err := c.begin(ctx, "ExportReport"); err != nil {
		return err
	}
	defer c.end()
	return writeProduct(path, fmt.Sprintf("%%PDF-1.4\n%% %s\n%% cameras %d aligned %d\n",
		title, len(c.state.Photos), c.state.AlignedCameras))
}

func (c *chunk) Stats(ctx context.Context) (engine.Stats, error) {
	if err := c.begin(ctx, "Stats"); err != nil {
		return engine.Stats{}, err
	}
	defer c.end()
	st := c.state
	return engine.Stats{
		Label:             st.Label,
		CRS:               st.CRS,
		Cameras:           len(st.Photos),
		AlignedCameras:    st.AlignedCameras,
		Markers:           st.Markers,
		EnabledMarkers:    st.EnabledMarkers,
		MarkerProjections: st.MarkerProjections,
		TiePoints:         st.TiePoints,
		DepthMaps:         st.DepthMaps,
		PointCloudPoints:  st.PointCloudPoints,
		HasModel:          st.HasModel,
		HasTexture:        st.HasTexture,
		HasDEM:            st.HasDEM,
		HasOrthomosaic:    st.HasOrthomosaic,
	}, nil
}

func writeProduct(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
