package extract

import (
	"context"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/invoice-tools/internal/imaging"
	"github.com/ironsheep/invoice-tools/internal/invoice"
)

// BatchResult pairs an image ID with its result or error.
type BatchResult struct {
	ImageID string
	Result  *Result
	Err     error
}

// DocumentFunc is called by RunBatchFunc inside the worker once a document
// has been processed, with the decoded image. It runs for failed extractions
// too (r.Err set), but not for images that could not be loaded. A returned
// error is recorded as the document's error when it has none yet.
type DocumentFunc func(ctx context.Context, r BatchResult, img image.Image) error

// RunBatch extracts every image in paths with at most workers documents in
// flight. workers <= 0 uses GOMAXPROCS. Results are returned in input order.
//
// A failing document never stops the others; its error is recorded in its
// BatchResult. Once ctx is canceled no further documents are started and
// the unstarted ones report ctx.Err().
func (e *Extractor) RunBatch(ctx context.Context, paths []string, workers int) []BatchResult {
	return e.RunBatchFunc(ctx, paths, workers, nil)
}

// RunBatchFunc is RunBatch with a per-document callback. Images are only
// referenced until done returns, so at most workers decoded images are held
// at a time.
func (e *Extractor) RunBatchFunc(ctx context.Context, paths []string, workers int, done DocumentFunc) []BatchResult {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	load := e.Load
	if load == nil {
		load = imaging.Open
	}

	results := make([]BatchResult, len(paths))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, path := range paths {
		results[i].ImageID = path
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		g.Go(func() error {
			img, err := load(path)
			if err != nil {
				results[i].Err = &invoice.CollaboratorError{Stage: invoice.StageLoad, ImageID: path, Err: err}
				return nil
			}
			results[i].Result, results[i].Err = e.Extract(ctx, path, img)
			if done != nil {
				if err := done(ctx, results[i], img); err != nil && results[i].Err == nil {
					results[i].Err = err
				}
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
