// Package pipeline drives the reconstruction engine through the fixed stage
// sequence for single routes and merged multi-route projects.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/survey-automation/routebatch/internal/engine"
	"github.com/survey-automation/routebatch/internal/gcp"
	"github.com/survey-automation/routebatch/internal/models"
	"github.com/survey-automation/routebatch/internal/project"
)

// Runner processes routes one at a time against an engine
type Runner struct {
	engine engine.Engine
	opts   Options
}

// NewRunner validates opts and returns a runner
func NewRunner(e engine.Engine, opts Options) (*Runner, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: engine is required", ErrConfig)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Runner{engine: e, opts: opts}, nil
}

// ChunkLabel is the label of a single route's chunk
func ChunkLabel(routeNumber, tag string) string {
	return fmt.Sprintf("Route_%s_%s", routeNumber, tag)
}

// MergedLabel is the label of the chunk produced by a multi-route merge
func MergedLabel(t models.ProcessingType) string {
	return fmt.Sprintf("Merged_%s_Routes", t.MultiTag())
}

// ProcessAll runs every route on its own. A failed route does not stop the others.
func (r *Runner) ProcessAll(ctx context.Context, routes []models.RouteFolder) []RouteResult {
	results := make([]RouteResult, 0, len(routes))
	for i, route := range routes {
		if err := ctx.Err(); err != nil {
			slog.Warn("Processing cancelled", "remaining", len(routes)-i, "err", err)
			break
		}
		slog.Info("Processing route", "route", route.RouteNumber, "position", i+1, "total", len(routes))
		res := r.ProcessRoute(ctx, route)
		if res.Succeeded() {
			slog.Info("Route complete", "route", route.RouteNumber, "duration", res.Duration.Round(time.Second))
		} else {
			slog.Error("Route failed", "route", route.RouteNumber, "stage", res.FailedStage, "err", res.Err)
		}
		results = append(results, res)
	}
	return results
}

// ProcessRoute runs the full stage sequence for one route
func (r *Runner) ProcessRoute(ctx context.Context, route models.RouteFolder) (result RouteResult) {
	start := time.Now()
	n := route.RouteNumber
	result.Routes = []string{n}
	defer func() { result.Duration = time.Since(start) }()

	ref := gcp.Locate(r.opts.GCPDir, n, r.opts.Type)
	if !ref.Exists {
		result.fail(StageMarkersImported, n, fmt.Errorf("%w: %s", ErrGCPMissing, ref.Path))
		return result
	}

	full := r.opts.fullPipeline()
	path, err := project.Create(r.opts.OutputDir, project.SingleRouteName(n, r.opts.Type), full)
	if err != nil {
		result.fail(StageCreated, n, err)
		return result
	}
	result.ProjectFile = path.File

	doc, err := r.engine.NewDocument(ctx)
	if err != nil {
		result.fail(StageCreated, n, fmt.Errorf("failed to create document: %w", err))
		return result
	}
	defer closeDocument(ctx, doc)

	s := &session{ctx: ctx, doc: doc, path: path, route: n, result: &result}
	tag := r.opts.Type.Tag()

	err = s.step(StageCreated, func() error {
		c, err := doc.AddChunk(ctx, ChunkLabel(n, tag))
		if err != nil {
			return fmt.Errorf("failed to add chunk: %w", err)
		}
		s.chunk = c
		return c.SetCRS(ctx, r.opts.SourceCRS)
	})
	if err != nil {
		return result
	}

	err = s.step(StageImagesAdded, func() error {
		if err := s.chunk.AddPhotos(ctx, route.ImageFiles, r.opts.layout()); err != nil {
			return fmt.Errorf("failed to add photos: %w", err)
		}
		stats, err := s.stats()
		if err != nil {
			return err
		}
		if stats.Cameras == 0 {
			return ErrNoCameras
		}
		slog.Info("Photos added", "route", n, "cameras", stats.Cameras, "files", route.ImageCount())
		return nil
	})
	if err != nil {
		return result
	}

	err = s.step(StageMarkersImported, func() error {
		if err := s.chunk.ImportMarkers(ctx, ref.Path); err != nil {
			return fmt.Errorf("%w: %w", ErrMarkerImport, err)
		}
		return nil
	})
	if err != nil {
		return result
	}

	err = s.step(StageCrsFinalized, func() error {
		return s.chunk.SetCRS(ctx, r.opts.TargetCRS)
	})
	if err != nil {
		return result
	}

	out := outputs{
		match:       r.opts.Match,
		full:        full,
		productBase: path.Name,
		reportTitle: fmt.Sprintf("Route %s %s Processing Report", n, tag),
	}
	if full {
		out.reportPath = filepath.Join(path.Dir, "report",
			fmt.Sprintf("route_%s_%s_report.pdf", n, strings.ToLower(tag)))
	} else {
		out.reportPath = filepath.Join(path.Dir, fmt.Sprintf("processing_report_%s.pdf", tag))
	}
	r.runShared(s, out)
	return result
}

// outputs configures the stages shared by single and merged projects
type outputs struct {
	match       engine.MatchOptions
	full        bool
	productBase string
	reportPath  string
	reportTitle string
}

func (r *Runner) runShared(s *session, out outputs) {
	ctx := s.ctx
	err := s.step(StageMatched, func() error {
		if err := s.chunk.MatchPhotos(ctx, out.match); err != nil {
			return fmt.Errorf("failed to match photos: %w", err)
		}
		stats, err := s.stats()
		if err != nil {
			return err
		}
		if stats.TiePoints == 0 {
			s.warn("Matching produced no tie points")
		}
		return nil
	})
	if err != nil {
		return
	}

	err = s.step(StageAligned, func() error {
		if err := s.chunk.AlignCameras(ctx, r.opts.Align); err != nil {
			return fmt.Errorf("failed to align cameras: %w", err)
		}
		stats, err := s.stats()
		if err != nil {
			return err
		}
		if stats.AlignedCameras == 0 {
			if err := s.save(false); err != nil {
				slog.Warn("Could not save failed alignment state", "route", s.route, "err", err)
			}
			return ErrNoAlignment
		}
		if ratio := stats.AlignmentRatio(); ratio < r.opts.MinAlignRatio {
			s.warn(fmt.Sprintf("Only %d of %d cameras aligned", stats.AlignedCameras, stats.Cameras),
				"ratio", ratio)
		}
		return nil
	})
	if err != nil {
		return
	}

	err = s.step(StageDepthMapped, func() error {
		return s.chunk.BuildDepthMaps(ctx, r.opts.DepthMaps)
	})
	if err != nil {
		return
	}

	err = s.step(StagePointCloudBuilt, func() error {
		if err := s.chunk.BuildPointCloud(ctx, r.opts.PointCloud); err != nil {
			return err
		}
		stats, err := s.stats()
		if err != nil {
			return err
		}
		if stats.PointCloudPoints == 0 {
			s.warn("Point cloud is empty")
		}
		return nil
	})
	if err != nil {
		return
	}

	if out.full && !r.runProducts(s, out.productBase) {
		return
	}

	err = s.step(StageReportExported, func() error {
		if err := s.chunk.ExportReport(ctx, out.reportPath, out.reportTitle); err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
		s.result.ReportPath = out.reportPath
		return nil
	})
	if err != nil {
		return
	}

	if err := s.step(StageFinalSaved, func() error { return nil }); err != nil {
		return
	}

	if stats, err := s.stats(); err == nil {
		s.result.Cameras = stats.Cameras
		s.result.AlignedCameras = stats.AlignedCameras
		s.result.Markers = stats.Markers
		s.result.EnabledMarkers = stats.EnabledMarkers
		s.result.PointCloudPoints = stats.PointCloudPoints
	}

	if err := r.verify(ctx, s.path.File, s.chunk.Label()); err != nil {
		s.result.VerifyError = err.Error()
		slog.Warn("Project verification failed", "route", s.route, "project", s.path.File, "err", err)
		return
	}
	s.result.Verified = true
}

// runProducts builds and exports the mesh, DEM and orthomosaic products
func (r *Runner) runProducts(s *session, base string) bool {
	ctx := s.ctx
	steps := []struct {
		stage Stage
		run   func() error
	}{
		{StageMeshBuilt, func() error { return s.chunk.BuildModel(ctx, r.opts.Model) }},
		{StageTextured, func() error { return s.chunk.BuildTexture(ctx, r.opts.Texture) }},
		{StageDemBuilt, func() error { return s.chunk.BuildDEM(ctx, r.opts.DEM) }},
		{StageOrthomosaic, func() error { return s.chunk.BuildOrthomosaic(ctx, r.opts.Orthomosaic) }},
		{StageProductsExported, func() error { return r.exportProducts(s, base) }},
	}
	for _, st := range steps {
		if err := s.step(st.stage, st.run); err != nil {
			return false
		}
	}
	return true
}

func (r *Runner) exportProducts(s *session, base string) error {
	dir := s.path.Dir
	ortho := filepath.Join(dir, "orthomosaic", base+"_orthomosaic.tif")
	dem := filepath.Join(dir, "dem", base+"_dem.tif")
	points := filepath.Join(dir, "pointcloud", base+"_pointcloud.las")

	if err := s.chunk.ExportRaster(s.ctx, ortho, engine.RasterOrthomosaic); err != nil {
		return fmt.Errorf("failed to export orthomosaic: %w", err)
	}
	if err := s.chunk.ExportRaster(s.ctx, dem, engine.RasterElevation); err != nil {
		return fmt.Errorf("failed to export DEM: %w", err)
	}
	if err := s.chunk.ExportPoints(s.ctx, points); err != nil {
		return fmt.Errorf("failed to export point cloud: %w", err)
	}
	s.result.Exports = append(s.result.Exports, ortho, dem, points)
	return nil
}

func closeDocument(ctx context.Context, doc engine.Document) {
	if err := doc.Close(context.WithoutCancel(ctx)); err != nil {
		slog.Warn("Failed to close document", "err", err)
	}
}
