package gacha

import (
	"context"
	"time"
)

// PityState tracks consecutive draws since the last result at/above a
// banner's guaranteed tier. One state per (player, banner); mutated only
// by the engine, persisted by the injected PityStore.
//
// Two conceptual states: accumulating (Count > 0) and just-reset
// (Count == 0). The counter never reaches the banner threshold in a
// persisted state: the draw that would reach it is forced and resets it.
type PityState struct {
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Remaining reports how many more sub-guarantee draws fit before the
// guarantee triggers.
func (s PityState) Remaining(threshold int) int {
	rem := threshold - s.Count
	if rem < 0 {
		rem = 0
	}
	return rem
}

// PityStore persists pity counters between sessions. Load reports ok=false
// when the pair has no history, which the engine treats as Count 0.
type PityStore interface {
	Load(ctx context.Context, playerID, bannerID string) (PityState, bool, error)
	Save(ctx context.Context, playerID, bannerID string, state PityState) error
}
