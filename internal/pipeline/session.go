package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/survey-automation/routebatch/internal/engine"
	"github.com/survey-automation/routebatch/internal/project"
)

// session is the state of one project while its stages run
type session struct {
	ctx    context.Context
	doc    engine.Document
	chunk  engine.Chunk
	path   project.Path
	route  string
	result *RouteResult
}

// save persists the project scoped to the working chunk, falling back once
// to an unscoped save
func (s *session) save(archive bool) error {
	opts := engine.SaveOptions{Archive: archive}
	if s.chunk != nil {
		opts.Chunks = []engine.Chunk{s.chunk}
	}
	err := s.doc.Save(s.ctx, s.path.File, opts)
	if err == nil {
		return nil
	}
	if len(opts.Chunks) == 0 {
		return fmt.Errorf("failed to save project: %w", err)
	}

	slog.Warn("Scoped save failed, retrying without chunk scope", "route", s.route, "err", err)
	if err := s.doc.Save(s.ctx, s.path.File, engine.SaveOptions{Archive: archive}); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// step runs fn, saves, and advances the reached stage. Any error is recorded
// on the result as a StageError.
func (s *session) step(stage Stage, fn func() error) error {
	if err := s.ctx.Err(); err != nil {
		s.result.fail(stage, s.route, err)
		return s.result.Err
	}
	if err := fn(); err != nil {
		s.result.fail(stage, s.route, err)
		slog.Error("Stage failed", "route", s.route, "stage", stage, "err", err)
		return s.result.Err
	}
	if err := s.save(stage == StageFinalSaved); err != nil {
		s.result.fail(stage, s.route, err)
		slog.Error("Save failed", "route", s.route, "stage", stage, "err", err)
		return s.result.Err
	}
	s.result.ReachedStage = stage
	slog.Info("Stage complete", "route", s.route, "stage", stage)
	return nil
}

func (s *session) stats() (engine.Stats, error) {
	stats, err := s.chunk.Stats(s.ctx)
	if err != nil {
		return engine.Stats{}, fmt.Errorf("failed to read chunk statistics: %w", err)
	}
	return stats, nil
}

func (s *session) warn(msg string, args ...any) {
	slog.Warn(msg, append([]any{"route", s.route}, args...)...)
	s.result.warn(msg)
}
