package bridge

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/survey-automation/routebatch/internal/engine"
)

type chunk struct {
	doc   *document
	id    string
	label string
}

func (c *chunk) ID() string    { return c.id }
func (c *chunk) Label() string { return c.label }

func (c *chunk) call(ctx context.Context, method string, params any) (gjson.Result, error) {
	return c.doc.client.call(ctx, callRequest{
		Target:   "chunk",
		Document: c.doc.id,
		Chunk:    c.id,
		Method:   method,
		Params:   params,
	})
}

func (c *chunk) exec(ctx context.Context, method string, params any) error {
	_, err := c.call(ctx, method, params)
	return err
}

func (c *chunk) SetLabel(ctx context.Context, label string) error {
	if err := c.exec(ctx, "set_label", map[string]any{"label": label}); err != nil {
		return err
	}
	c.label = label
	return nil
}

func (c *chunk) SetCRS(ctx context.Context, code string) error {
	return c.exec(ctx, "set_crs", map[string]any{"crs": code})
}

func (c *chunk) AddPhotos(ctx context.Context, paths []string, layout engine.Layout) error {
	return c.exec(ctx, "add_photos", map[string]any{"filenames": paths, "layout": layout})
}

func (c *chunk) ImportMarkers(ctx context.Context, path string) error {
	return c.exec(ctx, "import_markers", map[string]any{"path": path})
}

func (c *chunk) MatchPhotos(ctx context.Context, opts engine.MatchOptions) error {
	return c.exec(ctx, "match_photos", opts)
}

func (c *chunk) AlignCameras(ctx context.Context, opts engine.AlignOptions) error {
	return c.exec(ctx, "align_cameras", opts)
}

func (c *chunk) BuildDepthMaps(ctx context.Context, opts engine.DepthMapOptions) error {
	return c.exec(ctx, "build_depth_maps", opts)
}

func (c *chunk) BuildPointCloud(ctx context.Context, opts engine.PointCloudOptions) error {
	return c.exec(ctx, "build_point_cloud", opts)
}

func (c *chunk) BuildModel(ctx context.Context, opts engine.ModelOptions) error {
	return c.exec(ctx, "build_model", opts)
}

func (c *chunk) BuildTexture(ctx context.Context, opts engine.TextureOptions) error {
	return c.exec(ctx, "build_texture", opts)
}

func (c *chunk) BuildDEM(ctx context.Context, opts engine.DEMOptions) error {
	return c.exec(ctx, "build_dem", opts)
}

func (c *chunk) BuildOrthomosaic(ctx context.Context, opts engine.OrthomosaicOptions) error {
	return c.exec(ctx, "build_orthomosaic", opts)
}

func (c *chunk) ExportRaster(ctx context.Context, path string, source engine.RasterSource) error {
	return c.exec(ctx, "export_raster", map[string]any{"path": path, "source_data": source})
}

func (c *chunk) ExportPoints(ctx context.Context, path string) error {
	return c.exec(ctx, "export_points", map[string]any{"path": path})
}

func (c *chunk) ExportReport(ctx context.Context, path, title string) error {
	return c.exec(ctx, "export_report", map[string]any{"path": path, "title": title})
}

// Stats reads the statistics object leniently; missing members count as zero
func (c *chunk) Stats(ctx context.Context) (engine.Stats, error) {
	result, err := c.call(ctx, "stats", nil)
	if err != nil {
		return engine.Stats{}, err
	}
	label := result.Get("label").String()
	if label == "" {
		label = c.label
	}
	return engine.Stats{
		Label:             label,
		CRS:               result.Get("crs").String(),
		Cameras:           int(result.Get("cameras").Int()),
		AlignedCameras:    int(result.Get("aligned_cameras").Int()),
		Markers:           int(result.Get("markers").Int()),
		EnabledMarkers:    int(result.Get("enabled_markers").Int()),
		MarkerProjections: int(result.Get("marker_projections").Int()),
		TiePoints:         int(result.Get("tie_points").Int()),
		DepthMaps:         int(result.Get("depth_maps").Int()),
		PointCloudPoints:  int(result.Get("point_cloud_points").Int()),
		HasModel:          result.Get("has_model").Bool(),
		HasTexture:        result.Get("has_texture").Bool(),
		HasDEM:            result.Get("has_dem").Bool(),
		HasOrthomosaic:    result.Get("has_orthomosaic").Bool(),
	}, nil
}
