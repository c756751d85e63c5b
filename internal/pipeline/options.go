package pipeline

import (
	"fmt"

	"github.com/survey-automation/routebatch/internal/engine"
	"github.com/survey-automation/routebatch/internal/models"
)

const (
	DefaultSourceCRS     = "EPSG::4326"
	DefaultTargetCRS     = "EPSG::4258"
	DefaultMinAlignRatio = 0.8
)

// Options carries everything one orchestrator run needs
type Options struct {
	GCPDir    string
	OutputDir string
	Type      models.ProcessingType

	// SourceCRS applies while photos are imported with raw GPS tags,
	// TargetCRS once the markers are in.
	SourceCRS string
	TargetCRS string

	// Full adds mesh, texture, DEM, orthomosaic and product exports.
	// Combined single-route runs always use the full pipeline.
	Full bool

	MinAlignRatio float64

	Match       engine.MatchOptions
	Align       engine.AlignOptions
	DepthMaps   engine.DepthMapOptions
	PointCloud  engine.PointCloudOptions
	Model       engine.ModelOptions
	Texture     engine.TextureOptions
	DEM         engine.DEMOptions
	Orthomosaic engine.OrthomosaicOptions
}

// DefaultOptions returns options with the engine settings used in production
func DefaultOptions(t models.ProcessingType, gcpDir, outputDir string) Options {
	return Options{
		GCPDir:        gcpDir,
		OutputDir:     outputDir,
		Type:          t,
		SourceCRS:     DefaultSourceCRS,
		TargetCRS:     DefaultTargetCRS,
		MinAlignRatio: DefaultMinAlignRatio,
		Match:         engine.DefaultMatchOptions(),
		Align:         engine.DefaultAlignOptions(),
		DepthMaps:     engine.DefaultDepthMapOptions(),
		PointCloud:    engine.DefaultPointCloudOptions(),
		Model:         engine.DefaultModelOptions(),
		Texture:       engine.DefaultTextureOptions(),
		DEM:           engine.DefaultDEMOptions(),
		Orthomosaic:   engine.DefaultOrthomosaicOptions(),
	}
}

// Validate checks the options before any engine call is made
func (o Options) Validate() error {
	if o.GCPDir == "" {
		return fmt.Errorf("%w: gcp directory is required", ErrConfig)
	}
	if o.OutputDir == "" {
		return fmt.Errorf("%w: output directory is required", ErrConfig)
	}
	switch o.Type {
	case models.TypeRGB, models.TypeMS, models.TypeCombined:
	default:
		return fmt.Errorf("%w: unknown processing type %q", ErrConfig, o.Type)
	}
	if o.SourceCRS == "" || o.TargetCRS == "" {
		return fmt.Errorf("%w: coordinate reference systems are required", ErrConfig)
	}
	return nil
}

func (o Options) fullPipeline() bool {
	return o.Full || o.Type == models.TypeCombined
}

func (o Options) layout() engine.Layout {
	if o.Type == models.TypeRGB {
		return engine.LayoutSingle
	}
	return engine.LayoutMultiCamera
}

// multiMatch is the match configuration for merged chunks
func (o Options) multiMatch() engine.MatchOptions {
	m := o.Match
	if o.Type == models.TypeMS && m.Downscale < 2 {
		m.Downscale = 2
	}
	return m
}
