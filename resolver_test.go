package medspan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLoader records every load attempt in order and fails the names
// listed in fail.
type recordingLoader struct {
	mu       sync.Mutex
	attempts []string
	fail     map[string]error
}

func (l *recordingLoader) Load(ctx context.Context, name string) (TokenLabeler, error) {
	l.mu.Lock()
	l.attempts = append(l.attempts, name)
	l.mu.Unlock()
	if err, ok := l.fail[name]; ok {
		return nil, err
	}
	return &scriptedLabeler{}, nil
}

// namedLabeler wraps scriptedLabeler with an explicit backend name.
type namedLabeler struct {
	scriptedLabeler
	name string
}

func (n *namedLabeler) Name() string { return n.name }

func TestResolutionTriesCandidatesInOrder(t *testing.T) {
	candidates := DefaultModelCandidates()
	loader := &recordingLoader{fail: map[string]error{
		candidates[0]: errors.New("download failed"),
		candidates[1]: errors.New("no onnx file"),
	}}

	ex, err := New(context.Background(), WithLoader(loader))
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(loader.attempts), 3)
	assert.Equal(t, candidates[:3], loader.attempts[:3])
	assert.False(t, ex.FallbackMode())
}

func TestResolutionPreferredModelTriedFirst(t *testing.T) {
	loader := &recordingLoader{}

	_, err := New(context.Background(), WithModel("acme/custom-ner"), WithLoader(loader))
	require.NoError(t, err)

	require.NotEmpty(t, loader.attempts)
	assert.Equal(t, "acme/custom-ner", loader.attempts[0])
	assert.Len(t, loader.attempts, 1)
}

func TestResolutionDeduplicatesPreferredName(t *testing.T) {
	// Preferring a name already in the built-in list must not try it twice.
	candidates := DefaultModelCandidates()
	fail := make(map[string]error)
	for _, c := range candidates {
		fail[c] = errors.New("unavailable")
	}
	loader := &recordingLoader{fail: fail}

	ex, err := New(context.Background(), WithModel(candidates[0]), WithLoader(loader))
	require.NoError(t, err)

	assert.Equal(t, candidates, loader.attempts)
	assert.True(t, ex.FallbackMode())
}

func TestResolutionExhaustionEntersFallbackMode(t *testing.T) {
	fail := make(map[string]error)
	for _, c := range DefaultModelCandidates() {
		fail[c] = errors.New("unavailable")
	}
	loader := &recordingLoader{fail: fail}

	ex, err := New(context.Background(), WithLoader(loader))
	require.NoError(t, err)

	assert.True(t, ex.FallbackMode())
	assert.Equal(t, "", ex.Backend())

	// Fallback mode still processes.
	doc, err := ex.Process(context.Background(), "Take 10mg aspirin daily")
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Entities)
}

func TestResolutionStrictModeFailure(t *testing.T) {
	loader := &recordingLoader{fail: map[string]error{
		"acme/unavailable": errors.New("not found"),
	}}

	ex, err := New(context.Background(),
		WithModel("acme/unavailable"),
		WithoutFallback(),
		WithLoader(loader),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStrictLoadFailed)
	assert.Nil(t, ex)
	// Strict mode exhausts only the requested name.
	assert.Equal(t, []string{"acme/unavailable"}, loader.attempts)
}

func TestResolutionStrictModeWithoutModelName(t *testing.T) {
	_, err := New(context.Background(), WithoutFallback(), WithLoader(&recordingLoader{}))
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestResolutionStrictModeSuccess(t *testing.T) {
	loader := LoaderFunc(func(ctx context.Context, name string) (TokenLabeler, error) {
		return &namedLabeler{name: name}, nil
	})

	ex, err := New(context.Background(),
		WithModel("acme/clinical-ner"),
		WithoutFallback(),
		WithLoader(loader),
	)
	require.NoError(t, err)
	assert.False(t, ex.FallbackMode())
	assert.Equal(t, "acme/clinical-ner", ex.Backend())
}

func TestDefaultModelCandidatesIsACopy(t *testing.T) {
	first := DefaultModelCandidates()
	require.Len(t, first, 5)

	first[0] = "mutated"
	assert.NotEqual(t, "mutated", DefaultModelCandidates()[0])
}

func TestCandidateListOrdering(t *testing.T) {
	names := candidateList("acme/preferred")
	require.Len(t, names, 6)
	assert.Equal(t, "acme/preferred", names[0])
	assert.Equal(t, DefaultModelCandidates(), names[1:])

	assert.Equal(t, DefaultModelCandidates(), candidateList(""))
}

func TestLoaderFuncAdapts(t *testing.T) {
	sentinel := fmt.Errorf("boom")
	loader := LoaderFunc(func(ctx context.Context, name string) (TokenLabeler, error) {
		return nil, sentinel
	})
	_, err := loader.Load(context.Background(), "anything")
	assert.ErrorIs(t, err, sentinel)
}
