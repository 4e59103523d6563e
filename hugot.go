package medspan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	khugot "github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

var _ TokenLabeler = (*onnxLabeler)(nil)
var _ Loader = (*OnnxLoader)(nil)

// OnnxLoader materializes model backends as hugot ONNX token-classification
// pipelines. It is the default Loader used by New.
//
// ONNX Runtime allows a single session per process, so the loader creates
// one session lazily and shares it across every pipeline it builds. Call
// Close when no extractor built from this loader is in use anymore.
type OnnxLoader struct {
	// ModelRoot is the directory model names are resolved under. Empty
	// means names are used as paths verbatim.
	ModelRoot string

	log     *slog.Logger
	mu      sync.Mutex
	session *khugot.Session
}

// NewOnnxLoader returns a loader that logs with the given logger, or
// slog.Default() when nil.
func NewOnnxLoader(log *slog.Logger) *OnnxLoader {
	if log == nil {
		log = slog.Default()
	}
	return &OnnxLoader{log: log}
}

// Load builds a token-classification pipeline for the named model.
func (l *OnnxLoader) Load(ctx context.Context, name string) (TokenLabeler, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.session == nil {
		session, err := khugot.NewGoSession()
		if err != nil {
			return nil, fmt.Errorf("creating hugot session: %w", err)
		}
		l.session = session
		l.log.Debug("created hugot session")
	}

	modelPath := name
	if l.ModelRoot != "" {
		modelPath = filepath.Join(l.ModelRoot, name)
	}

	cfg := khugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      name,
	}
	pipeline, err := khugot.NewPipeline(l.session, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating token classification pipeline for %q: %w", name, err)
	}

	// Raw per-token tags, not hugot's grouped entities: grouping happens in
	// reconstruct, where the dangling I-tag repair lives.
	pipeline.AggregationStrategy = "NONE"

	l.log.Debug("loaded onnx model", "model", name, "path", modelPath)
	return &onnxLabeler{name: name, pipeline: pipeline}, nil
}

// Close destroys the shared session. Pipelines created by this loader must
// not be used afterwards.
func (l *OnnxLoader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.session == nil {
		return nil
	}
	err := l.session.Destroy()
	l.session = nil
	return err
}

// onnxLabeler adapts a hugot token-classification pipeline to TokenLabeler.
// Safe for concurrent use: RunPipeline holds no per-call pipeline state.
type onnxLabeler struct {
	name     string
	pipeline *pipelines.TokenClassificationPipeline
}

func (b *onnxLabeler) Name() string { return b.name }

// LabelTokens runs the pipeline over the batch and converts its byte-offset
// token entities into rune-offset token labels, one sequence per text.
func (b *onnxLabeler) LabelTokens(ctx context.Context, texts []string) ([][]TokenLabel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := b.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("running token classification: %w", err)
	}
	if len(out.Entities) != len(texts) {
		return nil, fmt.Errorf("token classification returned %d sequences for %d texts", len(out.Entities), len(texts))
	}

	labels := make([][]TokenLabel, len(texts))
	for i, toks := range out.Entities {
		text := texts[i]
		seq := make([]TokenLabel, 0, len(toks))
		for _, tok := range toks {
			seq = append(seq, TokenLabel{
				Start: byteToRune(text, int(tok.Start)),
				End:   byteToRune(text, int(tok.End)),
				Tag:   tok.Entity,
			})
		}
		labels[i] = seq
	}
	return labels, nil
}
