package pipeline

// Stage is a step of the per-route state machine
type Stage string

const (
	StageNone             Stage = ""
	StageCreated          Stage = "Created"
	StageImagesAdded      Stage = "ImagesAdded"
	StageMarkersImported  Stage = "MarkersImported"
	StageCrsFinalized     Stage = "CrsFinalized"
	StageMerged           Stage = "Merged"
	StageMatched          Stage = "Matched"
	StageAligned          Stage = "Aligned"
	StageDepthMapped      Stage = "DepthMapped"
	StagePointCloudBuilt  Stage = "PointCloudBuilt"
	StageMeshBuilt        Stage = "MeshBuilt"
	StageTextured         Stage = "Textured"
	StageDemBuilt         Stage = "DemBuilt"
	StageOrthomosaic      Stage = "Orthomosaic"
	StageProductsExported Stage = "ProductsExported"
	StageReportExported   Stage = "ReportExported"
	StageFinalSaved       Stage = "FinalSaved"
)

// Stages lists every stage in execution order
var Stages = []Stage{
	StageCreated,
	StageImagesAdded,
	StageMarkersImported,
	StageCrsFinalized,
	StageMerged,
	StageMatched,
	StageAligned,
	StageDepthMapped,
	StagePointCloudBuilt,
	StageMeshBuilt,
	StageTextured,
	StageDemBuilt,
	StageOrthomosaic,
	StageProductsExported,
	StageReportExported,
	StageFinalSaved,
}
