package medspan

import "log/slog"

// DefaultBatchSize is the number of texts handed to a model backend per
// inference call when no explicit batch size is configured. It only affects
// call chunking, never results.
const DefaultBatchSize = 8

// Options represents construction-time configuration for an Extractor.
type Options struct {
	Model         string       // preferred model name, tried before the built-in candidates
	BatchSize     int          // inference call chunk size; 0 → DefaultBatchSize
	AllowFallback bool         // degrade to pattern mode when no model loads
	Logger        *slog.Logger // nil → slog.Default()
	Loader        Loader       // nil → the ONNX loader
	Runner        Runner       // nil → DefaultRunner per batch call
	Labeler       TokenLabeler // pre-built backend; skips resolution entirely
}

// Option mutates Options during New.
type Option func(*Options)

// WithModel sets the preferred model name, tried before the built-in
// candidate list.
func WithModel(name string) Option {
	return func(o *Options) { o.Model = name }
}

// WithBatchSize sets how many texts are sent to the model backend per
// inference call. Must be positive.
func WithBatchSize(n int) Option {
	return func(o *Options) { o.BatchSize = n }
}

// WithoutFallback disables pattern-mode degradation: New fails with
// ErrStrictLoadFailed instead of returning a pattern-only extractor when the
// preferred model cannot be loaded.
func WithoutFallback() Option {
	return func(o *Options) { o.AllowFallback = false }
}

// WithLogger lets the caller supply their own logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *Options) { o.Logger = log }
}

// WithLoader overrides how named model backends are materialized.
func WithLoader(l Loader) Option {
	return func(o *Options) { o.Loader = l }
}

// WithRunner overrides the concurrency model used by ProcessBatch.
func WithRunner(r Runner) Option {
	return func(o *Options) { o.Runner = r }
}

// WithLabeler injects a ready backend directly, bypassing model resolution.
func WithLabeler(tl TokenLabeler) Option {
	return func(o *Options) { o.Labeler = tl }
}
