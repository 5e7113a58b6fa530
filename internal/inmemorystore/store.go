package inmemorystore

import (
	"context"
	"sync"

	"github.com/vk/backgrid/internal/node"
	"github.com/vk/backgrid/internal/nodestore"
)

// Store is an in-memory implementation of nodestore.Store.
//
// It keeps two independent sync.Maps keyed by nodestore.Key:
//   - states: node.State values
//   - errors: failure causes of failed pairs
type Store struct {
	states sync.Map
	errors sync.Map
}

// New creates a new, empty in-memory run-state store.
func New() *Store {
	return &Store{}
}

var _ nodestore.Store = (*Store)(nil)

// SetStatus records the state of a pair.
func (s *Store) SetStatus(_ context.Context, key nodestore.Key, state node.State) error {
	s.states.Store(key, state)
	return nil
}

// GetStatus returns the state of a pair. Unknown pairs are node.Pending.
func (s *Store) GetStatus(_ context.Context, key nodestore.Key) (node.State, error) {
	state, ok := s.states.Load(key)
	if !ok {
		return node.Pending, nil
	}
	return state.(node.State), nil
}

// SetError records the failure cause of a pair. A nil error clears it.
func (s *Store) SetError(_ context.Context, key nodestore.Key, nodeErr error) error {
	if nodeErr == nil {
		s.errors.Delete(key)
		return nil
	}
	s.errors.Store(key, nodeErr)
	return nil
}

// GetError returns the recorded failure cause of a pair.
func (s *Store) GetError(_ context.Context, key nodestore.Key) (error, error) {
	err, ok := s.errors.Load(key)
	if !ok {
		return nil, nil // If not found, there is no error.
	}
	return err.(error), nil
}

// Counts returns how many recorded pairs are in each state.
func (s *Store) Counts(_ context.Context) (map[node.State]int, error) {
	out := make(map[node.State]int)
	s.states.Range(func(_, v any) bool {
		out[v.(node.State)]++
		return true
	})
	return out, nil
}
