// Package redis provides a Redis-backed PityStore for deployments where
// a player can draw from multiple devices against shared state.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xtding233/football-gacha/internal/gacha"
)

// Store persists pity counters as JSON values under pity:<player>:<banner>.
type Store struct {
	client *goredis.Client
	ttl    time.Duration // 0 = no expiry
}

func New(client *goredis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Open dials a Redis instance and verifies connectivity.
func Open(ctx context.Context, addr string, ttl time.Duration) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, ttl), nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func pityKey(playerID, bannerID string) string {
	return "pity:" + playerID + ":" + bannerID
}

func (s *Store) Load(ctx context.Context, playerID, bannerID string) (gacha.PityState, bool, error) {
	raw, err := s.client.Get(ctx, pityKey(playerID, bannerID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return gacha.PityState{}, false, nil
		}
		return gacha.PityState{}, false, fmt.Errorf("load pity: %w", err)
	}
	var state gacha.PityState
	if err := json.Unmarshal(raw, &state); err != nil {
		return gacha.PityState{}, false, fmt.Errorf("decode pity: %w", err)
	}
	return state, true, nil
}

func (s *Store) Save(ctx context.Context, playerID, bannerID string, state gacha.PityState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode pity: %w", err)
	}
	if err := s.client.Set(ctx, pityKey(playerID, bannerID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save pity: %w", err)
	}
	return nil
}
