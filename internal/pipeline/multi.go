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

// ProcessMerged imports every route into its own chunk, merges them and runs
// the shared stages on the merged chunk. Routes without a GCP file are
// skipped and routes that fail to import are dropped from the merge.
func (r *Runner) ProcessMerged(ctx context.Context, routes []models.RouteFolder) (result RouteResult) {
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	for _, route := range routes {
		result.Routes = append(result.Routes, route.RouteNumber)
	}
	if len(routes) < 2 {
		result.fail(StageCreated, result.Label(), fmt.Errorf("%w: got %d", ErrTooFewRoutes, len(routes)))
		return result
	}

	type candidate struct {
		route models.RouteFolder
		ref   gcp.Reference
	}
	var valid []candidate
	for _, route := range routes {
		ref := gcp.Locate(r.opts.GCPDir, route.RouteNumber, r.opts.Type)
		if !ref.Exists {
			slog.Warn("Skipping route without GCP file", "route", route.RouteNumber, "path", ref.Path)
			result.Skipped = append(result.Skipped, route.RouteNumber)
			result.warn(fmt.Sprintf("route %s skipped: no GCP file", route.RouteNumber))
			continue
		}
		valid = append(valid, candidate{route: route, ref: ref})
	}

	result.Routes = result.Routes[:0]
	for _, c := range valid {
		result.Routes = append(result.Routes, c.route.RouteNumber)
	}
	if len(valid) < 2 {
		result.fail(StageMarkersImported, result.Label(),
			fmt.Errorf("%w: only %d routes have GCP files: %w", ErrTooFewRoutes, len(valid), ErrGCPMissing))
		return result
	}

	path, err := project.Create(r.opts.OutputDir, project.MultiRouteName(result.Routes, r.opts.Type), false)
	if err != nil {
		result.fail(StageCreated, result.Label(), err)
		return result
	}
	result.ProjectFile = path.File

	doc, err := r.engine.NewDocument(ctx)
	if err != nil {
		result.fail(StageCreated, result.Label(), fmt.Errorf("failed to create document: %w", err))
		return result
	}
	defer closeDocument(ctx, doc)

	s := &session{ctx: ctx, doc: doc, path: path, route: result.Label(), result: &result}

	var chunks []engine.Chunk
	var imported []string
	for _, c := range valid {
		n := c.route.RouteNumber
		if err := ctx.Err(); err != nil {
			result.fail(StageCrsFinalized, s.route, err)
			return result
		}
		chunk, stage, err := r.importRoute(ctx, doc, c.route, c.ref)
		if err != nil {
			importErr := &StageError{Stage: stage, Route: n, Err: err}
			slog.Error("Route import failed", "route", n, "stage", stage, "err", err)
			result.FailedRoutes = append(result.FailedRoutes, n)
			result.warn(importErr.Error())
			if chunk != nil {
				if err := doc.RemoveChunk(ctx, chunk); err != nil {
					slog.Warn("Failed to remove chunk of failed route", "route", n, "err", err)
				}
			}
			continue
		}
		chunks = append(chunks, chunk)
		imported = append(imported, n)
		if err := s.save(false); err != nil {
			result.fail(StageCrsFinalized, n, err)
			return result
		}
		slog.Info("Route imported", "route", n)
	}

	result.Routes = imported
	s.route = result.Label()
	if len(chunks) < 2 {
		result.fail(StageMerged, s.route,
			fmt.Errorf("%w: only %d routes imported", ErrTooFewRoutes, len(chunks)))
		return result
	}
	result.ReachedStage = StageCrsFinalized

	err = s.step(StageMerged, func() error {
		merged, err := r.mergeChunks(s, chunks)
		if err != nil {
			return err
		}
		s.chunk = merged
		return nil
	})
	if err != nil {
		return result
	}

	tag := r.opts.Type.MultiTag()
	joined := strings.Join(result.Routes, "_")
	r.runShared(s, outputs{
		match:       r.opts.multiMatch(),
		productBase: path.Name,
		reportPath:  filepath.Join(path.Dir, fmt.Sprintf("processing_report_combined_routes_%s_%s.pdf", joined, tag)),
		reportTitle: fmt.Sprintf("Combined Routes %s %s Processing Report", joined, tag),
	})
	return result
}

// importRoute adds one route as its own chunk. On failure the chunk, if it was
// created, is returned so the caller can remove it.
func (r *Runner) importRoute(ctx context.Context, doc engine.Document, route models.RouteFolder, ref gcp.Reference) (engine.Chunk, Stage, error) {
	n := route.RouteNumber
	c, err := doc.AddChunk(ctx, ChunkLabel(n, r.opts.Type.MultiTag()))
	if err != nil {
		return nil, StageCreated, fmt.Errorf("failed to add chunk: %w", err)
	}
	if err := c.SetCRS(ctx, r.opts.SourceCRS); err != nil {
		return c, StageCreated, err
	}
	if err := c.AddPhotos(ctx, route.ImageFiles, r.opts.layout()); err != nil {
		return c, StageImagesAdded, fmt.Errorf("failed to add photos: %w", err)
	}
	stats, err := c.Stats(ctx)
	if err != nil {
		return c, StageImagesAdded, err
	}
	if stats.Cameras == 0 {
		return c, StageImagesAdded, ErrNoCameras
	}
	if err := c.ImportMarkers(ctx, ref.Path); err != nil {
		return c, StageMarkersImported, fmt.Errorf("%w: %w", ErrMarkerImport, err)
	}
	if err := c.SetCRS(ctx, r.opts.TargetCRS); err != nil {
		return c, StageCrsFinalized, err
	}
	return c, StageCrsFinalized, nil
}

func (r *Runner) mergeChunks(s *session, chunks []engine.Chunk) (engine.Chunk, error) {
	ctx := s.ctx
	camerasBefore := 0
	crs := map[string]bool{}
	for _, c := range chunks {
		stats, err := c.Stats(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read chunk statistics: %w", err)
		}
		camerasBefore += stats.Cameras
		crs[stats.CRS] = true
	}

	if len(crs) > 1 {
		slog.Info("Aligning chunks with differing coordinate systems", "route", s.route, "systems", len(crs))
		if err := s.doc.AlignChunks(ctx, chunks, chunks[0]); err != nil {
			return nil, fmt.Errorf("failed to align chunks: %w", err)
		}
	}

	merged, err := s.doc.MergeChunks(ctx, chunks, engine.MergeOptions{Markers: true, TiePoints: true})
	if err != nil {
		return nil, fmt.Errorf("failed to merge chunks: %w", err)
	}
	for _, c := range chunks {
		if err := s.doc.RemoveChunk(ctx, c); err != nil {
			return nil, fmt.Errorf("failed to remove chunk %s: %w", c.Label(), err)
		}
	}
	if err := merged.SetLabel(ctx, MergedLabel(r.opts.Type)); err != nil {
		return nil, fmt.Errorf("failed to label merged chunk: %w", err)
	}

	stats, err := merged.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read merged statistics: %w", err)
	}
	if stats.Cameras != camerasBefore {
		s.warn(fmt.Sprintf("Merged chunk has %d cameras, expected %d", stats.Cameras, camerasBefore))
	}
	if stats.MarkerProjections == 0 {
		return nil, ErrMergeProjections
	}
	slog.Info("Chunks merged", "route", s.route, "cameras", stats.Cameras, "markers", stats.Markers,
		"projections", stats.MarkerProjections)
	return merged, nil
}
