// Package wallet holds draw-cost math and a token wallet collaborator.
// The engine debits before rolling and refunds when a draw cannot commit.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrInsufficientFunds : the player cannot afford the draw.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Memory is an in-process wallet keyed by player.
type Memory struct {
	mu       sync.Mutex
	balances map[string]int
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[string]int)}
}

// Credit adds tokens to the player's balance.
func (m *Memory) Credit(playerID string, amount int) {
	if amount <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[playerID] += amount
}

// Balance returns the player's current balance.
func (m *Memory) Balance(playerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[playerID]
}

func (m *Memory) Debit(ctx context.Context, playerID string, amount int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount < 0 {
		return fmt.Errorf("debit amount must be >= 0, got %d", amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[playerID] < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, m.balances[playerID], amount)
	}
	m.balances[playerID] -= amount
	return nil
}

func (m *Memory) Refund(ctx context.Context, playerID string, amount int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount < 0 {
		return fmt.Errorf("refund amount must be >= 0, got %d", amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[playerID] += amount
	return nil
}
