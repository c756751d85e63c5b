package processcmd

import (
	"context"
	"fmt"
	"io"

	"github.com/survey-automation/routebatch/internal/publish"
)

func executePublish(ctx context.Context, w io.Writer, bucketURI string, projectDirs []string, opts publish.Options) error {
	p, err := publish.Open(ctx, bucketURI, opts)
	if err != nil {
		return err
	}
	defer p.Close()

	uploaded, skipped := 0, 0
	for _, dir := range projectDirs {
		items, err := p.Publish(ctx, dir)
		if err != nil {
			return fmt.Errorf("failed to publish %s: %w", dir, err)
		}
		fmt.Fprintf(w, "%s\n", dir)
		for _, it := range items {
			mark := "↑"
			if it.Skipped {
				mark = "="
				skipped++
			} else {
				uploaded++
			}
			fmt.Fprintf(w, "  %s %s (%d bytes)\n", mark, it.Key, it.Size)
		}
	}

	fmt.Fprintf(w, "\nUploaded %d files, %d unchanged\n", uploaded, skipped)
	return nil
}
