package gacha

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/xtding233/football-gacha/internal/wallet"
)

// stubCards is a tiny in-test CardSource.
type stubCards map[Rarity][]Card

func (s stubCards) CardsAt(tier Rarity) []Card { return s[tier] }

func (s stubCards) Cards(ids []string) []Card {
	var out []Card
	for _, id := range ids {
		for _, pool := range s {
			for _, c := range pool {
				if c.ID == id {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

func testCards() stubCards {
	return stubCards{
		RarityOne:   {{ID: "c1a", Name: "Coach 1a", Tier: RarityOne}, {ID: "c1b", Name: "Coach 1b", Tier: RarityOne}},
		RarityTwo:   {{ID: "c2a", Name: "Coach 2a", Tier: RarityTwo}},
		RarityThree: {{ID: "c3a", Name: "Coach 3a", Tier: RarityThree}},
	}
}

// testStore is an in-test PityStore with failure injection.
type testStore struct {
	m        map[string]PityState
	loads    int
	saves    int
	failSave error
	failLoad error
}

func newTestStore() *testStore { return &testStore{m: make(map[string]PityState)} }

func (s *testStore) Load(_ context.Context, playerID, bannerID string) (PityState, bool, error) {
	s.loads++
	if s.failLoad != nil {
		return PityState{}, false, s.failLoad
	}
	st, ok := s.m[playerID+"/"+bannerID]
	return st, ok, nil
}

func (s *testStore) Save(_ context.Context, playerID, bannerID string, st PityState) error {
	s.saves++
	if s.failSave != nil {
		return s.failSave
	}
	s.m[playerID+"/"+bannerID] = st
	return nil
}

func testBanner() *Banner {
	return &Banner{
		ID:                 "trial",
		Name:               "Trial Scouting",
		Table:              testTable(), // 1:0.7 2:0.25 3:0.05
		PityThreshold:      10,
		GuaranteedTier:     RarityThree,
		BatchGuaranteeTier: RarityThree,
	}
}

func newTestEngine(t *testing.T, b *Banner, cards CardSource, store PityStore, rng RandomSource, w Wallet) *Engine {
	t.Helper()
	e, err := NewEngine(EngineConfig{
		Banners: NewRegistry(b),
		Cards:   cards,
		Store:   store,
		Wallet:  w,
		RNG:     rng,
	})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestDrawSinglePityForcesAtThreshold(t *testing.T) {
	store := newTestStore()
	// every tier sample lands in tier 1
	rng := &fixedRNG{floats: []float64{0.0}}
	e := newTestEngine(t, testBanner(), testCards(), store, rng, nil)
	ctx := context.Background()

	for i := 0; i < 9; i++ {
		res, err := e.DrawSingle(ctx, "p1", "trial")
		if err != nil {
			t.Fatal(err)
		}
		if res.Tier != RarityOne || res.ForcedByPity {
			t.Fatalf("draw %d: got tier %s forced=%v", i+1, res.Tier, res.ForcedByPity)
		}
		if res.PityAfter != i+1 {
			t.Fatalf("draw %d: pity after = %d", i+1, res.PityAfter)
		}
	}

	count, err := e.PityCounter(ctx, "p1", "trial")
	if err != nil || count != 9 {
		t.Fatalf("counter = %d err = %v, want 9", count, err)
	}

	// 10th draw hits the threshold: forced to the guaranteed tier, reset
	res, err := e.DrawSingle(ctx, "p1", "trial")
	if err != nil {
		t.Fatal(err)
	}
	if !res.ForcedByPity || res.Tier < RarityThree {
		t.Fatalf("10th draw: tier %s forced=%v", res.Tier, res.ForcedByPity)
	}
	if res.PityAfter != 0 {
		t.Fatalf("pity must reset, got %d", res.PityAfter)
	}
	count, _ = e.PityCounter(ctx, "p1", "trial")
	if count != 0 {
		t.Fatalf("persisted counter = %d, want 0", count)
	}
}

func TestDrawSingleNaturalHighResets(t *testing.T) {
	store := newTestStore()
	// first draw misses, second lands in tier 3 naturally
	rng := &fixedRNG{floats: []float64{0.0, 0.96}}
	e := newTestEngine(t, testBanner(), testCards(), store, rng, nil)
	ctx := context.Background()

	if _, err := e.DrawSingle(ctx, "p1", "trial"); err != nil {
		t.Fatal(err)
	}
	res, err := e.DrawSingle(ctx, "p1", "trial")
	if err != nil {
		t.Fatal(err)
	}
	if res.Tier != RarityThree || res.ForcedByPity {
		t.Fatalf("got tier %s forced=%v", res.Tier, res.ForcedByPity)
	}
	if res.PityAfter != 0 {
		t.Fatalf("natural high tier must reset pity, got %d", res.PityAfter)
	}
}

func TestUnknownBannerNoStoreAccess(t *testing.T) {
	store := newTestStore()
	e := newTestEngine(t, testBanner(), testCards(), store, &fixedRNG{}, nil)

	_, err := e.DrawSingle(context.Background(), "p1", "nope")
	if !errors.Is(err, ErrUnknownBanner) {
		t.Fatalf("want ErrUnknownBanner, got %v", err)
	}
	if store.loads != 0 || store.saves != 0 {
		t.Fatalf("store touched: loads=%d saves=%d", store.loads, store.saves)
	}
}

func TestPityCounterIdempotent(t *testing.T) {
	store := newTestStore()
	e := newTestEngine(t, testBanner(), testCards(), store, &fixedRNG{floats: []float64{0.0}}, nil)
	ctx := context.Background()

	if _, err := e.DrawSingle(ctx, "p1", "trial"); err != nil {
		t.Fatal(err)
	}
	a, err := e.PityCounter(ctx, "p1", "trial")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.PityCounter(ctx, "p1", "trial")
	if err != nil {
		t.Fatal(err)
	}
	if a != b || a != 1 {
		t.Fatalf("counter reads differ: %d vs %d", a, b)
	}
	rem, err := e.PityRemaining(ctx, "p1", "trial")
	if err != nil || rem != 9 {
		t.Fatalf("remaining = %d err = %v, want 9", rem, err)
	}
}

func TestDrawTenBatchUpgrade(t *testing.T) {
	store := newTestStore()
	// every draw lands in tier 1, so the batch guarantee must kick in
	rng := &fixedRNG{floats: []float64{0.0}}
	b := testBanner()
	b.PityThreshold = 100
	e := newTestEngine(t, b, testCards(), store, rng, nil)

	res, err := e.DrawTen(context.Background(), "p1", "trial")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != BatchSize {
		t.Fatalf("got %d results", len(res.Results))
	}
	if res.UpgradedIndex < 0 {
		t.Fatal("expected a batch upgrade")
	}
	upgraded := 0
	for i, r := range res.Results {
		if i == res.UpgradedIndex {
			if r.Tier != RarityThree {
				t.Fatalf("upgraded entry tier = %s", r.Tier)
			}
			if r.ForcedByPity {
				t.Fatal("batch upgrade must not be marked as pity")
			}
			upgraded++
			continue
		}
		if r.Tier != RarityOne {
			t.Fatalf("entry %d tier = %s, want tier 1", i, r.Tier)
		}
	}
	if upgraded != 1 {
		t.Fatalf("upgraded %d entries", upgraded)
	}
	// all ten sub-guarantee draws count toward pity, saved once
	if res.PityAfter != 10 {
		t.Fatalf("pity after batch = %d", res.PityAfter)
	}
	if store.saves != 1 {
		t.Fatalf("saves = %d, want 1", store.saves)
	}
}

func TestDrawTenNaturalGuaranteeNoUpgrade(t *testing.T) {
	store := newTestStore()
	// 6th draw lands in tier 3 naturally
	floats := []float64{0.0, 0.0, 0.0, 0.0, 0.0, 0.96, 0.0, 0.0, 0.0, 0.0}
	e := newTestEngine(t, testBanner(), testCards(), store, &fixedRNG{floats: floats}, nil)

	res, err := e.DrawTen(context.Background(), "p1", "trial")
	if err != nil {
		t.Fatal(err)
	}
	if res.UpgradedIndex != -1 {
		t.Fatalf("unexpected upgrade at %d", res.UpgradedIndex)
	}
	if res.Results[5].Tier != RarityThree {
		t.Fatalf("6th entry tier = %s", res.Results[5].Tier)
	}
	// pity reset at the 6th draw, then 4 more misses
	if res.PityAfter != 4 {
		t.Fatalf("pity after = %d, want 4", res.PityAfter)
	}
}

func TestDrawTenStorageFailureIsAtomic(t *testing.T) {
	store := newTestStore()
	store.failSave = fmt.Errorf("disk on fire")
	w := wallet.NewMemory()
	w.Credit("p1", 2000)

	b := testBanner()
	b.CostPerDraw = 160 // ten-pull costs 1600
	e := newTestEngine(t, b, testCards(), store, &fixedRNG{floats: []float64{0.0}}, w)

	_, err := e.DrawTen(context.Background(), "p1", "trial")
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("want ErrStorage, got %v", err)
	}
	if w.Balance("p1") != 2000 {
		t.Fatalf("balance = %d, cost must be refunded", w.Balance("p1"))
	}

	// counter must be unchanged for the next draw
	store.failSave = nil
	count, err := e.PityCounter(context.Background(), "p1", "trial")
	if err != nil || count != 0 {
		t.Fatalf("counter = %d err = %v, want 0", count, err)
	}
}

func TestDrawSingleStorageFailureRefunds(t *testing.T) {
	store := newTestStore()
	store.failSave = fmt.Errorf("disk on fire")
	w := wallet.NewMemory()
	w.Credit("p1", 160)

	b := testBanner()
	b.CostPerDraw = 160
	e := newTestEngine(t, b, testCards(), store, &fixedRNG{floats: []float64{0.0}}, w)

	res, err := e.DrawSingle(context.Background(), "p1", "trial")
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("want ErrStorage, got %v", err)
	}
	if res != nil {
		t.Fatal("no result may be returned on storage failure")
	}
	if w.Balance("p1") != 160 {
		t.Fatalf("balance = %d, want refund to 160", w.Balance("p1"))
	}
}

func TestInsufficientFundsBlocksDraw(t *testing.T) {
	store := newTestStore()
	w := wallet.NewMemory() // empty

	b := testBanner()
	b.CostPerDraw = 160
	e := newTestEngine(t, b, testCards(), store, &fixedRNG{floats: []float64{0.0}}, w)

	_, err := e.DrawSingle(context.Background(), "p1", "trial")
	if !errors.Is(err, wallet.ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	if store.loads != 0 {
		t.Fatal("store must not be read when the charge fails")
	}
}

func TestEmptyTierPool(t *testing.T) {
	store := newTestStore()
	cards := testCards()
	delete(cards, RarityOne)
	e := newTestEngine(t, testBanner(), cards, store, &fixedRNG{floats: []float64{0.0}}, nil)

	_, err := e.DrawSingle(context.Background(), "p1", "trial")
	if !errors.Is(err, ErrEmptyTierPool) {
		t.Fatalf("want ErrEmptyTierPool, got %v", err)
	}
	if store.saves != 0 {
		t.Fatal("nothing may be committed on a config bug")
	}
}

func TestPickupRateUp(t *testing.T) {
	b := testBanner()
	b.PickupIDs = []string{"c1b"}
	b.PickupRate = 0.5

	// tier roll 0.0 -> tier 1; pickup roll 0.1 < 0.5 -> featured card
	rng := &fixedRNG{floats: []float64{0.0, 0.1}}
	e := newTestEngine(t, b, testCards(), newTestStore(), rng, nil)
	res, err := e.DrawSingle(context.Background(), "p1", "trial")
	if err != nil {
		t.Fatal(err)
	}
	if res.Card.ID != "c1b" {
		t.Fatalf("got %s, want featured c1b", res.Card.ID)
	}

	// pickup roll 0.9 >= 0.5 -> regular pool, first entry via IntN=0
	rng = &fixedRNG{floats: []float64{0.0, 0.9}}
	e = newTestEngine(t, b, testCards(), newTestStore(), rng, nil)
	res, err = e.DrawSingle(context.Background(), "p1", "trial")
	if err != nil {
		t.Fatal(err)
	}
	if res.Card.ID != "c1a" {
		t.Fatalf("got %s, want regular c1a", res.Card.ID)
	}
}

func TestSeededDeterminism(t *testing.T) {
	run := func() []DrawResult {
		e := newTestEngine(t, testBanner(), testCards(), newTestStore(), NewSeededRNG(42), nil)
		var out []DrawResult
		for i := 0; i < 50; i++ {
			res, err := e.DrawSingle(context.Background(), "p1", "trial")
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, *res)
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i].Card.ID != b[i].Card.ID || a[i].Tier != b[i].Tier || a[i].ForcedByPity != b[i].ForcedByPity {
			t.Fatalf("draw %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestPityNeverExceedsThreshold(t *testing.T) {
	e := newTestEngine(t, testBanner(), testCards(), newTestStore(), NewSeededRNG(7), nil)
	ctx := context.Background()
	for i := 0; i < 500; i++ {
		res, err := e.DrawSingle(ctx, "p1", "trial")
		if err != nil {
			t.Fatal(err)
		}
		if res.PityAfter < 0 || res.PityAfter >= 10 {
			t.Fatalf("draw %d: pity after = %d outside [0,10)", i, res.PityAfter)
		}
		if res.ForcedByPity && res.Tier < RarityThree {
			t.Fatalf("forced draw below guaranteed tier: %s", res.Tier)
		}
	}
}
