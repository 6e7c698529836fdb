// Package inventory tracks each player's card collection. The engine only
// consults it for is-new flags and forwards drawn cards; conversion of
// duplicates happens elsewhere in the game.
package inventory

import (
	"context"
	"sync"

	"github.com/xtding233/football-gacha/internal/gacha"
)

// Memory is an in-process collection keyed by player. Duplicate adds
// increment a copy count.
type Memory struct {
	mu    sync.RWMutex
	owned map[string]map[string]int // playerID -> cardID -> copies
}

func NewMemory() *Memory {
	return &Memory{owned: make(map[string]map[string]int)}
}

func (m *Memory) Owned(ctx context.Context, playerID, cardID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.owned[playerID][cardID] > 0, nil
}

func (m *Memory) Add(ctx context.Context, playerID string, cards []gacha.Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	col := m.owned[playerID]
	if col == nil {
		col = make(map[string]int)
		m.owned[playerID] = col
	}
	for _, c := range cards {
		col[c.ID]++
	}
	return nil
}

// Copies reports how many copies of a card the player holds.
func (m *Memory) Copies(playerID, cardID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.owned[playerID][cardID]
}

// CollectionSize reports how many distinct cards the player holds.
func (m *Memory) CollectionSize(playerID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.owned[playerID])
}
