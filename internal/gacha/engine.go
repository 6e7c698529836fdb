package gacha

import (
	"context"
	"fmt"
	"time"
)

// BatchSize is the number of draws in a multi-pull.
const BatchSize = 10

// Inventory receives resolved cards. The engine does not own the
// collection; it only reports ownership flags and forwards additions.
type Inventory interface {
	Owned(ctx context.Context, playerID, cardID string) (bool, error)
	Add(ctx context.Context, playerID string, cards []Card) error
}

// Wallet pairs draw cost with draw outcome: Debit happens before the roll
// and Refund undoes it when the draw cannot be committed.
type Wallet interface {
	Debit(ctx context.Context, playerID string, amount int) error
	Refund(ctx context.Context, playerID string, amount int) error
}

// EngineConfig wires the engine's collaborators. Banners, Cards and Store
// are required; Inventory, Wallet and RNG are optional (nil Wallet means
// free draws, nil RNG means the crypto default).
type EngineConfig struct {
	Banners   *Registry
	Cards     CardSource
	Store     PityStore
	Inventory Inventory
	Wallet    Wallet
	RNG       RandomSource
}

// Engine resolves gacha draws. Stateless apart from per-key draw locks;
// all durable state lives behind the injected PityStore.
type Engine struct {
	banners *Registry
	cards   CardSource
	store   PityStore
	inv     Inventory
	wallet  Wallet
	rng     RandomSource
	locks   *keyedLocks
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Banners == nil {
		return nil, fmt.Errorf("engine: banner registry is required")
	}
	if cfg.Cards == nil {
		return nil, fmt.Errorf("engine: card source is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("engine: pity store is required")
	}
	rng := cfg.RNG
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Engine{
		banners: cfg.Banners,
		cards:   cfg.Cards,
		store:   cfg.Store,
		inv:     cfg.Inventory,
		wallet:  cfg.Wallet,
		rng:     rng,
		locks:   newKeyedLocks(),
	}, nil
}

func pityKey(playerID, bannerID string) string {
	return playerID + "\x00" + bannerID
}

// DrawSingle resolves one draw on the banner for the player.
//
// The pity counter increments tentatively; at the banner threshold the
// tier is forced from the conditional distribution of guaranteed tiers
// and the counter resets. Any natural result at/above the guaranteed
// tier also resets it. Nothing is committed unless the pity save
// succeeds, and a charged cost is refunded on any failure.
func (e *Engine) DrawSingle(ctx context.Context, playerID, bannerID string) (*DrawResult, error) {
	b, ok := e.banners.Get(bannerID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBanner, bannerID)
	}

	unlock := e.locks.lock(pityKey(playerID, bannerID))
	defer unlock()

	refund, err := e.charge(ctx, playerID, b.CostPerDraw)
	if err != nil {
		return nil, err
	}

	state, _, err := e.store.Load(ctx, playerID, bannerID)
	if err != nil {
		refund()
		return nil, fmt.Errorf("%w: load %s/%s: %v", ErrStorage, playerID, bannerID, err)
	}

	res, next, err := e.resolveOne(b, state)
	if err != nil {
		refund()
		return nil, err
	}

	if err := e.store.Save(ctx, playerID, bannerID, next); err != nil {
		refund()
		return nil, fmt.Errorf("%w: save %s/%s: %v", ErrStorage, playerID, bannerID, err)
	}

	if err := e.deliver(ctx, playerID, []*DrawResult{&res}); err != nil {
		return nil, err
	}
	return &res, nil
}

// DrawTen resolves exactly ten sequential draws, each under the normal
// pity rules against a working counter. If none reaches the batch
// guarantee tier, the lowest-tier entry is replaced in place with a draw
// at that tier (item re-rolled; pity untouched). The counter is saved
// once at the end, so a storage failure leaves the whole batch
// uncommitted.
func (e *Engine) DrawTen(ctx context.Context, playerID, bannerID string) (*TenDrawResult, error) {
	b, ok := e.banners.Get(bannerID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBanner, bannerID)
	}

	unlock := e.locks.lock(pityKey(playerID, bannerID))
	defer unlock()

	refund, err := e.charge(ctx, playerID, b.TenCost())
	if err != nil {
		return nil, err
	}

	state, _, err := e.store.Load(ctx, playerID, bannerID)
	if err != nil {
		refund()
		return nil, fmt.Errorf("%w: load %s/%s: %v", ErrStorage, playerID, bannerID, err)
	}

	work := state
	results := make([]DrawResult, 0, BatchSize)
	for i := 0; i < BatchSize; i++ {
		res, next, rerr := e.resolveOne(b, work)
		if rerr != nil {
			refund()
			return nil, rerr
		}
		work = next
		results = append(results, res)
	}

	upgraded := -1
	if !hasTierAtLeast(results, b.BatchGuaranteeTier) {
		idx := lowestTierIndex(results)
		card, perr := e.pickCard(b, b.BatchGuaranteeTier)
		if perr != nil {
			refund()
			return nil, perr
		}
		results[idx].Card = card
		results[idx].Tier = b.BatchGuaranteeTier
		results[idx].ForcedByPity = false
		upgraded = idx
	}

	if err := e.store.Save(ctx, playerID, bannerID, work); err != nil {
		refund()
		return nil, fmt.Errorf("%w: save %s/%s: %v", ErrStorage, playerID, bannerID, err)
	}

	ptrs := make([]*DrawResult, len(results))
	for i := range results {
		ptrs[i] = &results[i]
	}
	if err := e.deliver(ctx, playerID, ptrs); err != nil {
		return nil, err
	}
	return &TenDrawResult{Results: results, UpgradedIndex: upgraded, PityAfter: work.Count}, nil
}

// PityCounter returns the persisted counter for the pair. Read-only.
func (e *Engine) PityCounter(ctx context.Context, playerID, bannerID string) (int, error) {
	if _, ok := e.banners.Get(bannerID); !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBanner, bannerID)
	}
	state, _, err := e.store.Load(ctx, playerID, bannerID)
	if err != nil {
		return 0, fmt.Errorf("%w: load %s/%s: %v", ErrStorage, playerID, bannerID, err)
	}
	return state.Count, nil
}

// PityRemaining returns how many draws remain before the guarantee.
func (e *Engine) PityRemaining(ctx context.Context, playerID, bannerID string) (int, error) {
	b, ok := e.banners.Get(bannerID)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBanner, bannerID)
	}
	state, _, err := e.store.Load(ctx, playerID, bannerID)
	if err != nil {
		return 0, fmt.Errorf("%w: load %s/%s: %v", ErrStorage, playerID, bannerID, err)
	}
	return state.Remaining(b.PityThreshold), nil
}

// resolveOne runs the draw algorithm against an in-memory pity state and
// returns the result plus the successor state. No I/O.
func (e *Engine) resolveOne(b *Banner, state PityState) (DrawResult, PityState, error) {
	count := state.Count + 1

	var tier Rarity
	forced := false
	if count >= b.PityThreshold {
		cond, err := b.Table.Conditional(b.GuaranteedTier)
		if err != nil {
			return DrawResult{}, state, err
		}
		tier, err = cond.Sample(e.rng)
		if err != nil {
			return DrawResult{}, state, err
		}
		forced = true
		count = 0
	} else {
		var err error
		tier, err = b.Table.Sample(e.rng)
		if err != nil {
			return DrawResult{}, state, err
		}
		if tier >= b.GuaranteedTier {
			count = 0
		}
	}

	card, err := e.pickCard(b, tier)
	if err != nil {
		return DrawResult{}, state, err
	}

	next := PityState{Count: count, UpdatedAt: time.Now().UTC()}
	return DrawResult{
		Card:         card,
		Tier:         tier,
		ForcedByPity: forced,
		PityAfter:    count,
	}, next, nil
}

// pickCard selects a concrete card at the tier: pickup pool first when the
// rate-up roll succeeds and the pool has cards at this tier, otherwise
// uniform over the full tier pool.
func (e *Engine) pickCard(b *Banner, tier Rarity) (Card, error) {
	if len(b.PickupIDs) > 0 {
		u := e.rng.Float64()
		if !(u >= 0 && u < 1) {
			return Card{}, fmt.Errorf("%w: sample %v outside [0,1)", ErrRNG, u)
		}
		if u < b.PickupRate {
			var candidates []Card
			for _, c := range e.cards.Cards(b.PickupIDs) {
				if c.Tier == tier {
					candidates = append(candidates, c)
				}
			}
			if len(candidates) > 0 {
				return candidates[e.rng.IntN(len(candidates))], nil
			}
		}
	}
	pool := e.cards.CardsAt(tier)
	if len(pool) == 0 {
		return Card{}, fmt.Errorf("%w: %s on banner %s", ErrEmptyTierPool, tier, b.ID)
	}
	return pool[e.rng.IntN(len(pool))], nil
}

// charge debits amount from the player's wallet and returns the matching
// refund func. With no wallet configured both are no-ops.
func (e *Engine) charge(ctx context.Context, playerID string, amount int) (func(), error) {
	if e.wallet == nil || amount <= 0 {
		return func() {}, nil
	}
	if err := e.wallet.Debit(ctx, playerID, amount); err != nil {
		return nil, fmt.Errorf("debit %d from %s: %w", amount, playerID, err)
	}
	return func() { _ = e.wallet.Refund(ctx, playerID, amount) }, nil
}

// deliver marks is-new flags against the collection and forwards the
// cards. Runs after the pity commit: a failure here leaves the draw
// awarded but the collection out of sync, which the caller can retry.
func (e *Engine) deliver(ctx context.Context, playerID string, results []*DrawResult) error {
	if e.inv == nil {
		return nil
	}
	seen := make(map[string]bool)
	cards := make([]Card, 0, len(results))
	for _, r := range results {
		owned, err := e.inv.Owned(ctx, playerID, r.Card.ID)
		if err != nil {
			return fmt.Errorf("inventory check %s: %w", r.Card.ID, err)
		}
		r.IsNew = !owned && !seen[r.Card.ID]
		seen[r.Card.ID] = true
		cards = append(cards, r.Card)
	}
	if err := e.inv.Add(ctx, playerID, cards); err != nil {
		return fmt.Errorf("inventory add: %w", err)
	}
	return nil
}

func hasTierAtLeast(results []DrawResult, min Rarity) bool {
	for _, r := range results {
		if r.Tier >= min {
			return true
		}
	}
	return false
}

// lowestTierIndex returns the first index holding the minimum tier.
func lowestTierIndex(results []DrawResult) int {
	idx := 0
	for i, r := range results {
		if r.Tier < results[idx].Tier {
			idx = i
		}
	}
	return idx
}
