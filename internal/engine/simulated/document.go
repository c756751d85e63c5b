package simulated

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/survey-automation/routebatch/internal/engine"
)

type document struct {
	id     string
	engine *Engine

	mu     sync.Mutex
	chunks []*chunk
	closed bool
}

func (d *document) check(ctx context.Context, label, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.closed {
		return fmt.Errorf("document %s is closed", d.id)
	}
	return d.engine.fault(label, op)
}

func (d *document) AddChunk(ctx context.Context, label string) (engine.Chunk, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(ctx, label, "AddChunk"); err != nil {
		return nil, err
	}
	c := &chunk{doc: d, state: chunkState{ID: uuid.NewString(), Label: label}}
	d.chunks = append(d.chunks, c)
	return c, nil
}

func (d *document) Chunks(ctx context.Context) ([]engine.Chunk, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(ctx, "", "Chunks"); err != nil {
		return nil, err
	}
	result := make([]engine.Chunk, 0, len(d.chunks))
	for _, c := range d.chunks {
		result = append(result, c)
	}
	return result, nil
}

func (d *document) Save(ctx context.Context, path string, opts engine.SaveOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(ctx, "", "Save"); err != nil {
		return err
	}

	states := make([]chunkState, 0, len(d.chunks))
	if len(opts.Chunks) > 0 {
		if err := d.engine.fault("", "Save.scoped"); err != nil {
			return err
		}
		for _, want := range opts.Chunks {
			c, ok := d.find(want.ID())
			if !ok {
				return fmt.Errorf("failed to scope save to %s: %w", want.Label(), engine.ErrChunkNotFound)
			}
			states = append(states, c.state)
		}
	} else {
		for _, c := range d.chunks {
			states = append(states, c.state)
		}
	}

	return writeProject(path, projectFile{
		Format:   projectFormat,
		Archived: opts.Archive,
		Chunks:   states,
	})
}

func (d *document) AlignChunks(ctx context.Context, chunks []engine.Chunk, reference engine.Chunk) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(ctx, "", "AlignChunks"); err != nil {
		return err
	}
	ref, ok := d.find(reference.ID())
	if !ok {
		return engine.ErrChunkNotFound
	}
	for _, want := range chunks {
		c, ok := d.find(want.ID())
		if !ok {
			return engine.ErrChunkNotFound
		}
		c.state.CRS = ref.state.CRS
	}
	return nil
}

func (d *document) MergeChunks(ctx context.Context, chunks []engine.Chunk, opts engine.MergeOptions) (engine.Chunk, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(ctx, "", "MergeChunks"); err != nil {
		return nil, err
	}
	if len(chunks) < 2 {
		return nil, fmt.Errorf("merge needs at least two chunks, got %d", len(chunks))
	}

	merged := chunkState{ID: uuid.NewString(), Label: "Merged Chunk"}
	for i, want := range chunks {
		c, ok := d.find(want.ID())
		if !ok {
			return nil, engine.ErrChunkNotFound
		}
		st := c.state
		if i == 0 {
			merged.CRS = st.CRS
			merged.Layout = st.Layout
		}
		merged.Photos = append(merged.Photos, st.Photos...)
		if opts.Markers {
			merged.Markers += st.Markers
			merged.EnabledMarkers += st.EnabledMarkers
			merged.MarkerProjections += st.MarkerProjections
		}
		if opts.TiePoints {
			merged.TiePoints += st.TiePoints
		}
	}
	if d.engine.DropMergeProjections {
		merged.MarkerProjections = 0
	}

	c := &chunk{doc: d, state: merged}
	d.chunks = append(d.chunks, c)
	return c, nil
}

func (d *document) RemoveChunk(ctx context.Context, target engine.Chunk) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(ctx, target.Label(), "RemoveChunk"); err != nil {
		return err
	}
	for i, c := range d.chunks {
		if c.state.ID == target.ID() {
			d.chunks = append(d.chunks[:i], d.chunks[i+1:]...)
			return nil
		}
	}
	return engine.ErrChunkNotFound
}

func (d *document) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.engine.store.Delete(d.id)
	return nil
}

// find must be called with d.mu held
func (d *document) find(id string) (*chunk, bool) {
	for _, c := range d.chunks {
		if c.state.ID == id {
			return c, true
		}
	}
	return nil, false
}
