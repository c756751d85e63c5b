package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/survey-automation/routebatch/internal/engine"
)

// verify reopens a saved project and checks that the critical products of
// the named chunk survived the save
func (r *Runner) verify(ctx context.Context, file, label string) error {
	doc, err := r.engine.OpenDocument(ctx, file)
	if err != nil {
		return fmt.Errorf("failed to reopen project: %w", err)
	}
	defer closeDocument(ctx, doc)

	chunks, err := doc.Chunks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list chunks: %w", err)
	}
	var target engine.Chunk
	for _, c := range chunks {
		if c.Label() == label {
			target = c
			break
		}
	}
	if target == nil {
		return fmt.Errorf("chunk %s: %w", label, engine.ErrChunkNotFound)
	}

	stats, err := target.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read chunk statistics: %w", err)
	}

	var missing []string
	if stats.AlignedCameras == 0 {
		missing = append(missing, "camera alignment")
	}
	if stats.PointCloudPoints == 0 {
		missing = append(missing, "point cloud")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing critical products: %s", strings.Join(missing, ", "))
	}
	return nil
}
