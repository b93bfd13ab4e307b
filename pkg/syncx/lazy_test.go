package syncx

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazy_BuildsOnceUnderConcurrency(t *testing.T) {
	var builds atomic.Int32
	lazy := NewLazy(func() (string, error) {
		builds.Add(1)
		return "model", nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := lazy.Get()
			assert.NoError(t, err)
			assert.Equal(t, "model", v)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	assert.True(t, lazy.Ready())
}

func TestLazy_RetriesAfterFailure(t *testing.T) {
	calls := 0
	lazy := NewLazy(func() (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("not yet")
		}
		return 42, nil
	})

	_, err := lazy.Get()
	require.Error(t, err)
	assert.False(t, lazy.Ready())

	v, err := lazy.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, calls)
}
