// Package memory is an in-process store for single-node runs and tests.
package memory

import (
	"context"
	"sync"

	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/maxviazov/equalplay-service/internal/repository"
)

// StateRepository keeps deep copies so callers can never mutate what is stored.
type StateRepository struct {
	mu     sync.RWMutex
	states map[string]model.MatchState
	saves  int
}

func NewStateRepository() *StateRepository {
	return &StateRepository{states: map[string]model.MatchState{}}
}

func (r *StateRepository) Ping(context.Context) error { return nil }

func (r *StateRepository) Load(_ context.Context, matchID string) (model.MatchState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.states[matchID]
	if !ok {
		return model.MatchState{}, repository.ErrNotFound
	}
	return st.Clone(), nil
}

func (r *StateRepository) Save(_ context.Context, matchID string, st model.MatchState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[matchID] = st.Clone()
	r.saves++
	return nil
}

func (r *StateRepository) Delete(_ context.Context, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.states[matchID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.states, matchID)
	return nil
}

// Saves reports how many times Save was called.
func (r *StateRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}

var _ repository.Store = (*StateRepository)(nil)
