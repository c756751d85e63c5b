// Package simulated is an in-memory stand-in for the reconstruction engine.
// It keeps just enough state to drive the orchestrator through every stage
// and writes small JSON project files so versioning and verification see
// real files on disk.
package simulated

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/survey-automation/routebatch/internal/engine"
)

const projectFormat = "routebatch-simulated"

// Engine implements engine.Engine without any external process
type Engine struct {
	// AlignRatio is the share of cameras that align, 1.0 when zero
	AlignRatio float64
	// DropMergeProjections makes merges lose every marker projection
	DropMergeProjections bool

	store  *documentStore
	mu     sync.Mutex
	faults map[string]error
}

// New returns a simulated engine where every operation succeeds
func New() *Engine {
	return &Engine{
		store:  newDocumentStore(),
		faults: make(map[string]error),
	}
}

// Fail makes an operation return err. The key is either an operation name
// ("AlignCameras") or a chunk label and operation ("Route_002_RGB.AddPhotos").
// Scoped saves can be failed separately with "Save.scoped".
func (e *Engine) Fail(key string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.faults[key] = err
}

// OpenDocuments is the number of documents not yet closed
func (e *Engine) OpenDocuments() int {
	return e.store.Len()
}

func (e *Engine) fault(label, op string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if label != "" {
		if err, ok := e.faults[label+"."+op]; ok {
			return err
		}
	}
	return e.faults[op]
}

func (e *Engine) alignRatio() float64 {
	if e.AlignRatio <= 0 {
		return 1
	}
	if e.AlignRatio > 1 {
		return 1
	}
	return e.AlignRatio
}

func (e *Engine) NewDocument(ctx context.Context) (engine.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.fault("", "NewDocument"); err != nil {
		return nil, err
	}
	doc := &document{id: uuid.NewString(), engine: e}
	e.store.Set(doc.id, doc)
	return doc, nil
}

// projectFile is the on-disk representation written by Save
type projectFile struct {
	Format   string       `json:"format"`
	Archived bool         `json:"archived"`
	Chunks   []chunkState `json:"chunks"`
}

func (e *Engine) OpenDocument(ctx context.Context, path string) (engine.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.fault("", "OpenDocument"); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	var pf projectFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to decode project file: %w", err)
	}
	if pf.Format != projectFormat {
		return nil, fmt.Errorf("unsupported project format %q", pf.Format)
	}

	doc := &document{id: uuid.NewString(), engine: e}
	for _, st := range pf.Chunks {
		doc.chunks = append(doc.chunks, &chunk{doc: doc, state: st})
	}
	e.store.Set(doc.id, doc)
	slog.Debug("Opened simulated project", "path", path, "chunks", len(doc.chunks))
	return doc, nil
}

func writeProject(path string, pf projectFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	data, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}
