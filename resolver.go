package medspan

import (
	"context"
	"fmt"
	"log/slog"
)

// defaultModelCandidates is the built-in backend list, in fixed priority
// order. Resolution walks it front to back after any caller-preferred name.
var defaultModelCandidates = [...]string{
	"Clinical-AI-Apollo/Medical-NER",
	"d4data/biomedical-ner-all",
	"samrawal/bert-base-uncased_clinical-ner",
	"jsylee/scibert_scivocab_uncased-finetuned-ner",
	"pruas/bent-pubmedbert-ner-chemical",
}

// DefaultModelCandidates returns the built-in prioritized model list.
func DefaultModelCandidates() []string {
	out := make([]string, len(defaultModelCandidates))
	copy(out, defaultModelCandidates[:])
	return out
}

// resolveBackend picks the model backend for an Extractor.
//
// In the default (fallback allowed) mode it tries the preferred name, if
// any, then the built-in candidates, de-duplicated while preserving order.
// Every load failure is logged and the next candidate tried; if all fail the
// returned backend is nil, which puts the extractor in pattern-only mode.
//
// With fallback disabled only the preferred name is attempted, and a load
// failure surfaces as ErrStrictLoadFailed instead of degrading silently.
func resolveBackend(ctx context.Context, opts *Options, log *slog.Logger) (TokenLabeler, error) {
	loader := opts.Loader
	if loader == nil {
		loader = NewOnnxLoader(log)
	}

	if !opts.AllowFallback {
		if opts.Model == "" {
			return nil, fmt.Errorf("resolve: %w", ErrNoCandidates)
		}
		tl, err := loader.Load(ctx, opts.Model)
		if err != nil {
			return nil, fmt.Errorf("load %q: %w: %v", opts.Model, ErrStrictLoadFailed, err)
		}
		log.Debug("resolved model backend", "model", tl.Name(), "strict", true)
		return tl, nil
	}

	for _, name := range candidateList(opts.Model) {
		tl, err := loader.Load(ctx, name)
		if err != nil {
			log.Warn("model backend unavailable, trying next candidate", "model", name, "error", err)
			continue
		}
		log.Debug("resolved model backend", "model", tl.Name())
		return tl, nil
	}

	log.Warn("no model backend available, using pattern fallback")
	return nil, nil
}

// candidateList prepends the preferred name, if any, to the built-in
// candidates, dropping duplicates while preserving order.
func candidateList(preferred string) []string {
	names := make([]string, 0, len(defaultModelCandidates)+1)
	seen := make(map[string]bool, len(defaultModelCandidates)+1)
	add := func(n string) {
		if n == "" || seen[n] {
			return
		}
		seen[n] = true
		names = append(names, n)
	}
	add(preferred)
	for _, n := range defaultModelCandidates {
		add(n)
	}
	return names
}
