package inmemorystore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/backgrid/internal/node"
	"github.com/vk/backgrid/internal/nodestore"
)

func TestSetAndGetStatus(t *testing.T) {
	s := New()
	ctx := context.Background()
	key := nodestore.Key{Node: "returns", Method: node.Predict}

	// Unknown pairs are pending.
	status, err := s.GetStatus(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, node.Pending, status)

	require.NoError(t, s.SetStatus(ctx, key, node.Running))

	status, err = s.GetStatus(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, node.Running, status)

	// The same node under another method is independent.
	status, err = s.GetStatus(ctx, nodestore.Key{Node: "returns", Method: node.Fit})
	require.NoError(t, err)
	assert.Equal(t, node.Pending, status)
}

func TestSetAndGetError(t *testing.T) {
	s := New()
	ctx := context.Background()
	key := nodestore.Key{Node: "signal", Method: node.Fit}

	retrievedErr, err := s.GetError(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, retrievedErr)

	expectedErr := errors.New("a test error occurred")
	require.NoError(t, s.SetError(ctx, key, expectedErr))

	retrievedErr, err = s.GetError(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, expectedErr, retrievedErr)
}

func TestCounts(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.SetStatus(ctx, nodestore.Key{Node: "a"}, node.Done))
	require.NoError(t, s.SetStatus(ctx, nodestore.Key{Node: "b"}, node.Done))
	require.NoError(t, s.SetStatus(ctx, nodestore.Key{Node: "c"}, node.Failed))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[node.State]int{node.Done: 2, node.Failed: 1}, counts)
}

// TestStore_ConcurrentAccess verifies that the store can be safely accessed by
// multiple goroutines simultaneously without data races or lost writes.
func TestStore_ConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	numGoroutines := 100
	var wg sync.WaitGroup

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(i int) {
			defer wg.Done()
			key := nodestore.Key{Node: fmt.Sprintf("node-%d", i), Method: node.Predict}
			_ = s.SetStatus(ctx, key, node.Failed)
			_ = s.SetError(ctx, key, fmt.Errorf("error for node %d", i))
		}(i)
	}
	wg.Wait()

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(i int) {
			defer wg.Done()
			key := nodestore.Key{Node: fmt.Sprintf("node-%d", i), Method: node.Predict}

			status, err := s.GetStatus(ctx, key)
			assert.NoError(t, err)
			assert.Equal(t, node.Failed, status, "mismatched status for node %d", i)

			nodeErr, err := s.GetError(ctx, key)
			assert.NoError(t, err)
			assert.EqualError(t, nodeErr, fmt.Sprintf("error for node %d", i))
		}(i)
	}
	wg.Wait()
}
