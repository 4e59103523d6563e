package medspan

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRunnerRunsAllTasks(t *testing.T) {
	r := DefaultRunner(context.Background())

	var count atomic.Int32
	for i := 0; i < 50; i++ {
		r.Go(func() error {
			count.Add(1)
			return nil
		})
	}
	require.NoError(t, r.Wait())
	assert.Equal(t, int32(50), count.Load())
}

func TestLimitedRunnerBoundsConcurrency(t *testing.T) {
	const limit = 2
	r := NewLimitedRunner(context.Background(), limit)

	var mu sync.Mutex
	var active, peak int

	for i := 0; i < 20; i++ {
		r.Go(func() error {
			mu.Lock()
			active++
			if active > peak {
				peak = active
			}
			mu.Unlock()

			mu.Lock()
			active--
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, r.Wait())
	assert.LessOrEqual(t, peak, limit)
}

func TestRunnerPropagatesFirstError(t *testing.T) {
	r := DefaultRunner(context.Background())
	boom := errors.New("boom")

	r.Go(func() error { return boom })
	r.Go(func() error { return nil })

	assert.ErrorIs(t, r.Wait(), boom)
}
