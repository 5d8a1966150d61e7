package simulation

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateCellLoadBeforeInit(t *testing.T) {
	var cell stateCell[int]

	_, _, ok := cell.Load()
	assert.False(t, ok)
	assert.False(t, cell.CompareAndSwap(0, 1))
}

func TestStateCellCompareAndSwap(t *testing.T) {
	var cell stateCell[string]
	cell.Init("a")

	value, version, ok := cell.Load()
	require.True(t, ok)
	assert.Equal(t, "a", value)
	assert.Equal(t, uint64(1), version)

	assert.True(t, cell.CompareAndSwap(version, "b"))
	assert.False(t, cell.CompareAndSwap(version, "c"), "stale version must lose")

	value, version, ok = cell.Load()
	require.True(t, ok)
	assert.Equal(t, "b", value)
	assert.Equal(t, uint64(2), version)
}

func TestStateCellConcurrentWritersSingleWinnerPerVersion(t *testing.T) {
	var cell stateCell[int]
	cell.Init(0)

	_, version, _ := cell.Load()

	var wins atomic.Int32
	wg := sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if cell.CompareAndSwap(version, i) {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	_, next, _ := cell.Load()
	assert.Equal(t, version+1, next)
}

func TestStateCellVersionAdvancesMonotonically(t *testing.T) {
	var cell stateCell[int]
	cell.Init(0)

	for i := 0; i < 1000; i++ {
		_, version, ok := cell.Load()
		require.True(t, ok)
		require.True(t, cell.CompareAndSwap(version, i))
	}

	_, version, _ := cell.Load()
	assert.Equal(t, uint64(1001), version)
}
