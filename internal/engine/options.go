package engine

// SaveOptions scopes a save to specific chunks and optionally archives the project
type SaveOptions struct {
	Chunks  []Chunk
	Archive bool
}

// MergeOptions selects what is carried over when chunks are merged
type MergeOptions struct {
	Markers   bool `json:"merge_markers"`
	TiePoints bool `json:"merge_tiepoints"`
}

type MatchOptions struct {
	Downscale             int  `json:"downscale"`
	GenericPreselection   bool `json:"generic_preselection"`
	ReferencePreselection bool `json:"reference_preselection"`
}

type AlignOptions struct {
	AdaptiveFitting bool `json:"adaptive_fitting"`
}

// FilterMode is the depth map filtering strength
type FilterMode string

const (
	FilterNone       FilterMode = "none"
	FilterMild       FilterMode = "mild"
	FilterModerate   FilterMode = "moderate"
	FilterAggressive FilterMode = "aggressive"
)

type DepthMapOptions struct {
	Downscale    int        `json:"downscale"`
	Filter       FilterMode `json:"filter_mode"`
	MaxNeighbors int        `json:"max_neighbors"`
}

type PointCloudOptions struct {
	Source      string  `json:"source_data"`
	PointColors bool    `json:"point_colors"`
	Spacing     float64 `json:"points_spacing"`
}

type ModelOptions struct {
	Surface       string `json:"surface_type"`
	Interpolation bool   `json:"interpolation"`
	Source        string `json:"source_data"`
}

type TextureOptions struct {
	Blending string `json:"blending_mode"`
	Size     int    `json:"texture_size"`
}

type DEMOptions struct {
	Source string `json:"source_data"`
}

type OrthomosaicOptions struct {
	Surface string `json:"surface_data"`
}

// DefaultMatchOptions matches at full resolution with generic and reference preselection
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{Downscale: 1, GenericPreselection: true, ReferencePreselection: true}
}

func DefaultAlignOptions() AlignOptions {
	return AlignOptions{AdaptiveFitting: false}
}

func DefaultDepthMapOptions() DepthMapOptions {
	return DepthMapOptions{Downscale: 4, Filter: FilterMild, MaxNeighbors: 16}
}

func DefaultPointCloudOptions() PointCloudOptions {
	return PointCloudOptions{Source: "depth_maps", PointColors: true, Spacing: 0.1}
}

func DefaultModelOptions() ModelOptions {
	return ModelOptions{Surface: "arbitrary", Interpolation: true, Source: "depth_maps"}
}

func DefaultTextureOptions() TextureOptions {
	return TextureOptions{Blending: "mosaic", Size: 4096}
}

func DefaultDEMOptions() DEMOptions {
	return DEMOptions{Source: "point_cloud"}
}

func DefaultOrthomosaicOptions() OrthomosaicOptions {
	return OrthomosaicOptions{Surface: "elevation"}
}
