package medspan

import (
	"context"
	"log/slog"
)

// scriptedLabeler replays canned token sequences keyed by input text.
type scriptedLabeler struct {
	script map[string][]TokenLabel
}

func (s *scriptedLabeler) Name() string { return "scripted" }

func (s *scriptedLabeler) LabelTokens(ctx context.Context, texts []string) ([][]TokenLabel, error) {
	out := make([][]TokenLabel, len(texts))
	for i, t := range texts {
		out[i] = s.script[t]
	}
	return out, nil
}

// NewForTesting creates an Extractor backed by a scripted labeler that maps
// each input text to a canned token sequence. No model loading happens;
// texts missing from the script get an empty sequence.
func NewForTesting(script map[string][]TokenLabel) *Extractor {
	return &Extractor{
		backend:   &scriptedLabeler{script: script},
		batchSize: DefaultBatchSize,
		log:       slog.Default(),
	}
}
