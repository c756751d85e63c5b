// Package publish uploads exported products of processed projects to a
// gocloud.dev blob bucket.
package publish

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"golang.org/x/sync/errgroup"

	"github.com/survey-automation/routebatch/internal/project"
)

const (
	fingerprintKey     = "fingerprint"
	defaultConcurrency = 4
)

// Options controls where and how products are uploaded
type Options struct {
	// Prefix is prepended to every object key
	Prefix string
	// Concurrency bounds simultaneous uploads, 4 when zero
	Concurrency int
	// Force uploads even when the stored fingerprint matches
	Force bool
	// Verify re-reads every uploaded object and compares fingerprints
	Verify bool
}

// Item is the outcome for one local file
type Item struct {
	Path        string `json:"path" yaml:"path"`
	Key         string `json:"key" yaml:"key"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	Size        int64  `json:"size" yaml:"size"`
	Skipped     bool   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Publisher copies project products into a bucket
type Publisher struct {
	bucket *blob.Bucket
	opts   Options
}

// Open opens a bucket URI such as file:///srv/products or mem://
func Open(ctx context.Context, uri string, opts Options) (*Publisher, error) {
	bucket, err := blob.OpenBucket(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", uri, err)
	}
	return NewWithBucket(bucket, opts), nil
}

// NewWithBucket wraps an already opened bucket
func NewWithBucket(bucket *blob.Bucket, opts Options) *Publisher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Publisher{bucket: bucket, opts: opts}
}

// Close closes the underlying bucket
func (p *Publisher) Close() error {
	return p.bucket.Close()
}

// Collect lists the product files of a project folder: everything below the
// product subfolders plus the PDF reports at the top level
func Collect(projectDir string) ([]string, error) {
	var files []string

	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read project folder: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			files = append(files, filepath.Join(projectDir, e.Name()))
		}
	}

	for _, sub := range project.ProductDirs {
		root := filepath.Join(projectDir, sub)
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return fs.SkipDir
				}
				return err
			}
			if !d.IsDir() {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", sub, err)
		}
	}
	return files, nil
}

// Publish uploads the products of projectDir under <prefix>/<project name>/
func (p *Publisher) Publish(ctx context.Context, projectDir string) ([]Item, error) {
	files, err := Collect(projectDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		slog.Info("No products to publish", "project", projectDir)
		return nil, nil
	}

	name := filepath.Base(projectDir)
	items := make([]Item, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(projectDir, f)
		if err != nil {
			return nil, fmt.Errorf("failed to compute key for %s: %w", f, err)
		}
		items[i] = Item{Path: f, Key: path.Join(p.opts.Prefix, name, filepath.ToSlash(rel))}
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.opts.Concurrency)
	for i := range items {
		item := &items[i]
		eg.Go(func() error {
			if err := p.upload(gctx, item); err != nil {
				return fmt.Errorf("%s: %w", item.Key, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return items, fmt.Errorf("one or more products failed to upload: %w", err)
	}

	uploaded := 0
	for _, it := range items {
		if !it.Skipped {
			uploaded++
		}
	}
	slog.Info("Published products", "project", name, "uploaded", uploaded, "unchanged", len(items)-uploaded)
	return items, nil
}

func (p *Publisher) upload(ctx context.Context, item *Item) error {
	fp, size, err := FingerprintLocal(item.Path)
	if err != nil {
		return err
	}
	item.Fingerprint = fp
	item.Size = size

	if !p.opts.Force {
		attrs, err := p.bucket.Attributes(ctx, item.Key)
		if err == nil && attrs.Metadata[fingerprintKey] == fp {
			item.Skipped = true
			slog.Debug("Product unchanged", "key", item.Key)
			return nil
		}
	}

	src, err := os.Open(item.Path)
	if err != nil {
		return fmt.Errorf("failed to open product: %w", err)
	}
	defer src.Close()

	wr, err := p.bucket.NewWriter(ctx, item.Key, &blob.WriterOptions{
		ContentType: contentType(item.Path),
		Metadata:    map[string]string{fingerprintKey: fp},
	})
	if err != nil {
		return fmt.Errorf("failed to create writer: %w", err)
	}
	if _, err := io.Copy(wr, src); err != nil {
		wr.Close()
		_ = p.bucket.Delete(ctx, item.Key)
		return fmt.Errorf("failed to copy product: %w", err)
	}
	if err := wr.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}

	if p.opts.Verify {
		remote, err := FingerprintObject(ctx, p.bucket, item.Key)
		if err != nil {
			return fmt.Errorf("failed to verify upload: %w", err)
		}
		if remote != fp {
			return fmt.Errorf("fingerprint mismatch after upload: local %s, remote %s", fp, remote)
		}
	}
	slog.Debug("Uploaded product", "key", item.Key, "size", item.Size)
	return nil
}

func contentType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".tif", ".tiff":
		return "image/tiff"
	case ".las":
		return "application/vnd.las"
	}
	if t := mime.TypeByExtension(filepath.Ext(p)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// FingerprintLocal returns the SHA-1 hash and size of a local file
func FingerprintLocal(p string) (string, int64, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open product: %w", err)
	}
	defer f.Close()

	h := sha1.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("failed to hash product: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// FingerprintObject returns the SHA-1 hash of an object stored in a bucket
func FingerprintObject(ctx context.Context, bucket *blob.Bucket, key string) (string, error) {
	fh, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return "", err
	}
	defer fh.Close()

	h := sha1.New()
	if _, err := io.Copy(h, fh); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
