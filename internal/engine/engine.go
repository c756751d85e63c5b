package engine

import (
	"context"
	"errors"
)

// ErrChunkNotFound is returned when a chunk label or id is unknown to a document
var ErrChunkNotFound = errors.New("chunk not found")

// Layout describes how photos are grouped into cameras on import
type Layout string

const (
	// LayoutSingle treats every file as an independent camera
	LayoutSingle Layout = "single"
	// LayoutMultiCamera groups band files of one capture into a multi-camera system
	LayoutMultiCamera Layout = "multi_camera"
)

// RasterSource selects which raster product an export reads from
type RasterSource string

const (
	RasterOrthomosaic RasterSource = "orthomosaic"
	RasterElevation   RasterSource = "elevation"
)

// Engine opens and creates project documents
type Engine interface {
	NewDocument(ctx context.Context) (Document, error)
	OpenDocument(ctx context.Context, path string) (Document, error)
}

// Document is one engine project holding any number of chunks
type Document interface {
	AddChunk(ctx context.Context, label string) (Chunk, error)
	Chunks(ctx context.Context) ([]Chunk, error)
	Save(ctx context.Context, path string, opts SaveOptions) error
	AlignChunks(ctx context.Context, chunks []Chunk, reference Chunk) error
	MergeChunks(ctx context.Context, chunks []Chunk, opts MergeOptions) (Chunk, error)
	RemoveChunk(ctx context.Context, chunk Chunk) error
	Close(ctx context.Context) error
}

// Chunk is a single reconstructable dataset inside a document
type Chunk interface {
	ID() string
	Label() string
	SetLabel(ctx context.Context, label string) error
	SetCRS(ctx context.Context, code string) error
	AddPhotos(ctx context.Context, paths []string, layout Layout) error
	ImportMarkers(ctx context.Context, path string) error
	MatchPhotos(ctx context.Context, opts MatchOptions) error
	AlignCameras(ctx context.Context, opts AlignOptions) error
	BuildDepthMaps(ctx context.Context, opts DepthMapOptions) error
	BuildPointCloud(ctx context.Context, opts PointCloudOptions) error
	BuildModel(ctx context.Context, opts ModelOptions) error
	BuildTexture(ctx context.Context, opts TextureOptions) error
	BuildDEM(ctx context.Context, opts DEMOptions) error
	BuildOrthomosaic(ctx context.Context, opts OrthomosaicOptions) error
	ExportRaster(ctx context.Context, path string, source RasterSource) error
	ExportPoints(ctx context.Context, path string) error
	ExportReport(ctx context.Context, path, title string) error
	Stats(ctx context.Context) (Stats, error)
}

// Stats is a snapshot of what a chunk currently holds
type Stats struct {
	Label             string `json:"label"`
	CRS               string `json:"crs"`
	Cameras           int    `json:"cameras"`
	AlignedCameras    int    `json:"aligned_cameras"`
	Markers           int    `json:"markers"`
	EnabledMarkers    int    `json:"enabled_markers"`
	MarkerProjections int    `json:"marker_projections"`
	TiePoints         int    `json:"tie_points"`
	DepthMaps         int    `json:"depth_maps"`
	PointCloudPoints  int    `json:"point_cloud_points"`
	HasModel          bool   `json:"has_model"`
	HasTexture        bool   `json:"has_texture"`
	HasDEM            bool   `json:"has_dem"`
	HasOrthomosaic    bool   `json:"has_orthomosaic"`
}

// AlignmentRatio is the share of cameras that were aligned
func (s Stats) AlignmentRatio() float64 {
	if s.Cameras == 0 {
		return 0
	}
	return float64(s.AlignedCameras) / float64(s.Cameras)
}
