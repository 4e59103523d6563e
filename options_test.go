package medspan

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithModel(t *testing.T) {
	var opts Options
	WithModel("acme/clinical-ner")(&opts)

	assert.Equal(t, "acme/clinical-ner", opts.Model)
}

func TestWithBatchSize(t *testing.T) {
	var opts Options
	WithBatchSize(16)(&opts)

	assert.Equal(t, 16, opts.BatchSize)
}

func TestWithoutFallback(t *testing.T) {
	opts := Options{AllowFallback: true}
	WithoutFallback()(&opts)

	assert.False(t, opts.AllowFallback)
}

func TestWithLogger(t *testing.T) {
	log := slog.Default().With("component", "test")

	var opts Options
	WithLogger(log)(&opts)

	assert.Same(t, log, opts.Logger)
}

func TestWithLabeler(t *testing.T) {
	tl := &scriptedLabeler{}

	var opts Options
	WithLabeler(tl)(&opts)

	assert.Same(t, tl, opts.Labeler)
}

func TestOptionsMultipleOptions(t *testing.T) {
	var opts Options
	WithModel("acme/ner")(&opts)
	WithBatchSize(4)(&opts)
	WithoutFallback()(&opts)

	assert.Equal(t, "acme/ner", opts.Model)
	assert.Equal(t, 4, opts.BatchSize)
	assert.False(t, opts.AllowFallback)
}

func TestNewAppliesBatchSizeDefault(t *testing.T) {
	ex, err := New(context.Background(), WithLabeler(&scriptedLabeler{}))
	require.NoError(t, err)
	assert.Equal(t, DefaultBatchSize, ex.batchSize)
}

func TestEntityTypesIsACopy(t *testing.T) {
	types := EntityTypes()
	require.Len(t, types, 7)
	assert.Equal(t, Drug, types[0])

	types[0] = "MUTATED"
	assert.Equal(t, Drug, EntityTypes()[0])
}

func TestEntityString(t *testing.T) {
	e := Entity{Start: 11, Stop: 17, Label: Drug, Text: "aspirin"}
	assert.Equal(t, `DRUG("aspirin")[11:17]`, e.String())
}

func TestParseTag(t *testing.T) {
	cases := []struct {
		tag    string
		prefix byte
		typ    EntityType
		ok     bool
	}{
		{"B-DRUG", 'B', Drug, true},
		{"I-DOSAGE", 'I', Dosage, true},
		{"B-frequency", 'B', Frequency, true},
		{"O", 0, "", false},
		{"", 0, "", false},
		{"B-", 0, "", false},
		{"X-DRUG", 0, "", false},
		{"B-NOPE", 0, "", false},
		{"BDRUG", 0, "", false},
	}
	for _, tc := range cases {
		prefix, typ, ok := parseTag(tc.tag)
		assert.Equal(t, tc.ok, ok, "tag %q", tc.tag)
		if tc.ok {
			assert.Equal(t, tc.prefix, prefix, "tag %q", tc.tag)
			assert.Equal(t, tc.typ, typ, "tag %q", tc.tag)
		}
	}
}

func TestIsMarkerTag(t *testing.T) {
	assert.True(t, isMarkerTag("[CLS]"))
	assert.True(t, isMarkerTag("[SEP]"))
	assert.True(t, isMarkerTag("<s>"))
	assert.False(t, isMarkerTag("B-DRUG"))
	assert.False(t, isMarkerTag("O"))
	assert.False(t, isMarkerTag(""))
}
