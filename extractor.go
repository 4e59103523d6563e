package medspan

import (
	"context"
	"fmt"
	"log/slog"
)

// Extractor extracts medication entities from clinical text. Construct one
// with New, then call Process or ProcessBatch from any goroutine: the
// resolved backend is read-only after construction.
type Extractor struct {
	backend   TokenLabeler // nil → pattern-only fallback mode
	batchSize int
	runner    Runner // nil → DefaultRunner per batch call
	log       *slog.Logger
}

// New resolves a model backend and returns a ready Extractor.
//
// Resolution tries the preferred model (WithModel), then the built-in
// candidates, in order. When every candidate fails and fallback is allowed
// (the default), the extractor still works: it answers from the regex
// pattern battery instead of a model. With WithoutFallback a load failure
// is returned as an error wrapping ErrStrictLoadFailed.
func New(ctx context.Context, optFns ...Option) (*Extractor, error) {
	opts := Options{AllowFallback: true}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BatchSize < 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", opts.BatchSize)
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultBatchSize
	}

	backend := opts.Labeler
	if backend == nil {
		var err error
		backend, err = resolveBackend(ctx, &opts, opts.Logger)
		if err != nil {
			return nil, err
		}
	}

	return &Extractor{
		backend:   backend,
		batchSize: opts.BatchSize,
		runner:    opts.Runner,
		log:       opts.Logger,
	}, nil
}

// FallbackMode reports whether the extractor operates without a model
// backend, answering from patterns only.
func (x *Extractor) FallbackMode() bool { return x.backend == nil }

// Backend returns the name of the active model backend, or "" in fallback
// mode.
func (x *Extractor) Backend() string {
	if x.backend == nil {
		return ""
	}
	return x.backend.Name()
}

// Process extracts entities from a single text. It never fails for
// well-formed input: empty strings, whitespace, arbitrary unicode all
// return a Document (possibly with zero entities). A backend inference
// failure degrades to pattern extraction for this call; only context
// cancellation is returned as an error.
func (x *Extractor) Process(ctx context.Context, text string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if x.backend == nil {
		return assemble(text, extractPatterns(text, x.log)), nil
	}

	labels, err := x.backend.LabelTokens(ctx, []string{text})
	if err != nil || len(labels) != 1 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		x.log.Warn("inference failed, using pattern fallback for this text",
			"model", x.backend.Name(), "error", err)
		return assemble(text, extractPatterns(text, x.log)), nil
	}
	return assemble(text, reconstruct(text, labels[0])), nil
}

// ProcessBatch extracts entities from each text. The result is
// order-preserving and has the same length as the input; an empty input
// returns an empty slice. Texts are independent, so reconstruction fans out
// across the runner; model inference is additionally chunked by the
// configured batch size.
func (x *Extractor) ProcessBatch(ctx context.Context, texts []string) ([]*Document, error) {
	docs := make([]*Document, len(texts))
	if len(texts) == 0 {
		return docs, nil
	}

	r := x.runner
	if r == nil {
		r = DefaultRunner(ctx)
	}

	if x.backend == nil {
		for i := range texts {
			r.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				docs[i] = assemble(texts[i], extractPatterns(texts[i], x.log))
				return nil
			})
		}
		if err := r.Wait(); err != nil {
			return nil, err
		}
		return docs, nil
	}

	for lo := 0; lo < len(texts); lo += x.batchSize {
		hi := min(lo+x.batchSize, len(texts))
		r.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			chunk := texts[lo:hi]
			labels, err := x.backend.LabelTokens(ctx, chunk)
			if err != nil || len(labels) != len(chunk) {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				x.log.Warn("batch inference failed, using pattern fallback for chunk",
					"model", x.backend.Name(), "chunk_size", len(chunk), "error", err)
				for i, t := range chunk {
					docs[lo+i] = assemble(t, extractPatterns(t, x.log))
				}
				return nil
			}
			for i, t := range chunk {
				docs[lo+i] = assemble(t, reconstruct(t, labels[i]))
			}
			return nil
		})
	}
	if err := r.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
