package bridge

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/survey-automation/routebatch/internal/engine"
)

type document struct {
	client *Client
	id     string
}

func (d *document) call(ctx context.Context, method string, params any) (gjson.Result, error) {
	return d.client.call(ctx, callRequest{
		Target:   "document",
		Document: d.id,
		Method:   method,
		Params:   params,
	})
}

func (d *document) chunkFrom(result gjson.Result) (*chunk, error) {
	id := result.Get("id").String()
	if id == "" {
		return nil, fmt.Errorf("bridge did not return a chunk id")
	}
	return &chunk{doc: d, id: id, label: result.Get("label").String()}, nil
}

func chunkIDs(chunks []engine.Chunk) []string {
	ids := make([]string, 0, len(chunks))
	for _, c := range chunks {
		ids = append(ids, c.ID())
	}
	return ids
}

func (d *document) AddChunk(ctx context.Context, label string) (engine.Chunk, error) {
	result, err := d.call(ctx, "add_chunk", map[string]any{"label": label})
	if err != nil {
		return nil, err
	}
	c, err := d.chunkFrom(result)
	if err != nil {
		return nil, err
	}
	if c.label == "" {
		c.label = label
	}
	return c, nil
}

func (d *document) Chunks(ctx context.Context) ([]engine.Chunk, error) {
	result, err := d.call(ctx, "chunks", nil)
	if err != nil {
		return nil, err
	}
	var chunks []engine.Chunk
	for _, item := range result.Get("chunks").Array() {
		c, err := d.chunkFrom(item)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func (d *document) Save(ctx context.Context, path string, opts engine.SaveOptions) error {
	params := map[string]any{"path": path, "archive": opts.Archive}
	if len(opts.Chunks) > 0 {
		params["chunks"] = chunkIDs(opts.Chunks)
	}
	_, err := d.call(ctx, "save", params)
	return err
}

func (d *document) AlignChunks(ctx context.Context, chunks []engine.Chunk, reference engine.Chunk) error {
	_, err := d.call(ctx, "align_chunks", map[string]any{
		"chunks":    chunkIDs(chunks),
		"reference": reference.ID(),
	})
	return err
}

func (d *document) MergeChunks(ctx context.Context, chunks []engine.Chunk, opts engine.MergeOptions) (engine.Chunk, error) {
	result, err := d.call(ctx, "merge_chunks", map[string]any{
		"chunks":          chunkIDs(chunks),
		"merge_markers":   opts.Markers,
		"merge_tiepoints": opts.TiePoints,
	})
	if err != nil {
		return nil, err
	}
	return d.chunkFrom(result)
}

func (d *document) RemoveChunk(ctx context.Context, c engine.Chunk) error {
	_, err := d.call(ctx, "remove_chunk", map[string]any{"chunk": c.ID()})
	return err
}

func (d *document) Close(ctx context.Context) error {
	_, err := d.call(ctx, "close", nil)
	return err
}
