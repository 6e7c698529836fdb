// Package memory is an in-process PityStore for tests and simulation.
package memory

import (
	"context"
	"sync"

	"github.com/xtding233/football-gacha/internal/gacha"
)

type key struct {
	player string
	banner string
}

// Store keeps pity counters in a map. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	m  map[key]gacha.PityState
}

func New() *Store {
	return &Store{m: make(map[key]gacha.PityState)}
}

func (s *Store) Load(ctx context.Context, playerID, bannerID string) (gacha.PityState, bool, error) {
	if err := ctx.Err(); err != nil {
		return gacha.PityState{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.m[key{playerID, bannerID}]
	return st, ok, nil
}

func (s *Store) Save(ctx context.Context, playerID, bannerID string, state gacha.PityState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key{playerID, bannerID}] = state
	return nil
}
