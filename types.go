package medspan

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrStrictLoadFailed is returned by New when fallback is disabled and the
// requested model could not be loaded.
var ErrStrictLoadFailed = errors.New("model load failed and fallback is disabled")

// ErrNoCandidates is returned by New when fallback is disabled but no model
// name was given to load.
var ErrNoCandidates = errors.New("no model candidates to try")

// ErrUnsupportedContent is returned by ProcessFile for files that do not
// contain plain text.
var ErrUnsupportedContent = errors.New("unsupported file content type")

// EntityType classifies an extracted medication entity.
type EntityType string

// The seven canonical entity types. The set is fixed; labels outside it are
// discarded during reconstruction.
const (
	Drug      EntityType = "DRUG"
	Strength  EntityType = "STRENGTH"
	Dosage    EntityType = "DOSAGE"
	Duration  EntityType = "DURATION"
	Frequency EntityType = "FREQUENCY"
	Form      EntityType = "FORM"
	Route     EntityType = "ROUTE"
)

// entityTypes is the canonical ordering of the type set.
var entityTypes = [...]EntityType{Drug, Strength, Dosage, Duration, Frequency, Form, Route}

var validEntityType = map[EntityType]bool{
	Drug:      true,
	Strength:  true,
	Dosage:    true,
	Duration:  true,
	Frequency: true,
	Form:      true,
	Route:     true,
}

// EntityTypes returns the canonical entity type set in fixed order.
func EntityTypes() []EntityType {
	out := make([]EntityType, len(entityTypes))
	copy(out, entityTypes[:])
	return out
}

// Entity is a single extracted mention. Start and Stop are 1-based inclusive
// rune offsets into the source text, so Text always equals the rune slice of
// the source at [Start, Stop]. Entities are values and are never mutated
// after assembly.
type Entity struct {
	Start int        `json:"start"`
	Stop  int        `json:"stop"`
	Label EntityType `json:"label"`
	Text  string     `json:"text"`
}

// String returns a debug representation, e.g. DRUG("aspirin")[11:17].
func (e Entity) String() string {
	return fmt.Sprintf("%s(%q)[%d:%d]", e.Label, e.Text, e.Start, e.Stop)
}

// Document is the result of processing one text: the unmodified input plus
// the entities found in it, sorted by Start offset.
type Document struct {
	Text     string   `json:"text"`
	Entities []Entity `json:"entities"`
}

// TokenLabel is one labeled token from a model backend. Start and End are
// 0-based half-open rune offsets into the text the token came from; Tag is a
// raw BIO tag ("B-DRUG", "I-DRUG", "O", ...). Zero-width spans and bracketed
// marker tags ("[CLS]", "[SEP]") carry no content and are skipped during
// reconstruction.
type TokenLabel struct {
	Start int
	End   int
	Tag   string
}

// TokenLabeler is the model collaborator: it tokenizes each text and assigns
// a BIO tag per token. Implementations must be safe for concurrent use once
// constructed.
type TokenLabeler interface {
	// LabelTokens returns one token sequence per input text, order-preserving.
	LabelTokens(ctx context.Context, texts []string) ([][]TokenLabel, error)
	// Name identifies the backend, e.g. the model it was loaded from.
	Name() string
}

// Loader materializes a named model backend. Resolution tries candidates
// through a Loader in priority order.
type Loader interface {
	Load(ctx context.Context, name string) (TokenLabeler, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(ctx context.Context, name string) (TokenLabeler, error)

func (f LoaderFunc) Load(ctx context.Context, name string) (TokenLabeler, error) {
	return f(ctx, name)
}

// Runner lets ProcessBatch schedule per-text work with any concurrency model.
type Runner interface {
	Go(fn func() error) // schedule
	Wait() error        // join / propagate first err
}

// parseTag splits a raw BIO tag into its prefix ('B' or 'I') and entity
// type. It reports ok=false for "O", marker tags, unknown prefixes, and type
// suffixes outside the canonical set; all of those are treated as outside
// any entity.
func parseTag(tag string) (prefix byte, typ EntityType, ok bool) {
	if len(tag) < 3 || tag[1] != '-' {
		return 0, "", false
	}
	if tag[0] != 'B' && tag[0] != 'I' {
		return 0, "", false
	}
	typ = EntityType(strings.ToUpper(tag[2:]))
	if !validEntityType[typ] {
		return 0, "", false
	}
	return tag[0], typ, true
}

// isMarkerTag reports whether a tag belongs to a tokenizer marker rather
// than a word, e.g. "[CLS]", "[SEP]", "<s>", "</s>".
func isMarkerTag(tag string) bool {
	if tag == "" {
		return false
	}
	return tag[0] == '[' || tag[0] == '<'
}
