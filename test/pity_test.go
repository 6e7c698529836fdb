package test

import (
	"context"
	"testing"

	"github.com/xtding233/football-gacha/internal/catalog"
	"github.com/xtding233/football-gacha/internal/gacha"
	"github.com/xtding233/football-gacha/internal/store/memory"
)

// zeroRNG always samples the lowest outcome, so every natural draw lands
// on the lowest tier.
type zeroRNG struct{}

func (zeroRNG) Float64() float64 { return 0 }
func (zeroRNG) IntN(n int) int   { return 0 }

func pityBanner() *gacha.Banner {
	return &gacha.Banner{
		ID:   "event",
		Name: "Event Scouting",
		Table: gacha.Table{
			gacha.RarityOne:   0.50,
			gacha.RarityTwo:   0.25,
			gacha.RarityThree: 0.15,
			gacha.RarityFour:  0.07,
			gacha.RarityFive:  0.03,
		},
		PityThreshold:      10,
		GuaranteedTier:     gacha.RarityFour,
		BatchGuaranteeTier: gacha.RarityThree,
	}
}

func TestPitySystem(t *testing.T) {
	eng, err := gacha.NewEngine(gacha.EngineConfig{
		Banners: gacha.NewRegistry(pityBanner()),
		Cards:   catalog.Default(),
		Store:   memory.New(),
		RNG:     zeroRNG{},
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	// first 9 draws land below the guaranteed tier and build the counter
	for i := 0; i < 9; i++ {
		res, err := eng.DrawSingle(ctx, "p1", "event")
		if err != nil {
			t.Fatal(err)
		}
		if res.ForcedByPity {
			t.Fatalf("should not force before pity, i=%d", i)
		}
		if res.Tier >= gacha.RarityFour {
			t.Fatalf("zero rng should draw low tiers; got %s at i=%d", res.Tier, i)
		}
		if res.PityAfter != i+1 {
			t.Fatalf("counter = %d after draw %d", res.PityAfter, i+1)
		}
	}
	if n, _ := eng.PityCounter(ctx, "p1", "event"); n != 9 {
		t.Fatalf("persisted counter = %d, want 9", n)
	}
	if rem, _ := eng.PityRemaining(ctx, "p1", "event"); rem != 1 {
		t.Fatalf("remaining = %d, want 1", rem)
	}

	// the 10th draw is guaranteed by pity and resets the counter
	res, err := eng.DrawSingle(ctx, "p1", "event")
	if err != nil {
		t.Fatal(err)
	}
	if !res.ForcedByPity {
		t.Fatal("expected pity hit at 10th draw")
	}
	if res.Tier < gacha.RarityFour {
		t.Fatalf("forced tier %s below guarantee", res.Tier)
	}
	if res.PityAfter != 0 {
		t.Fatalf("counter should reset after pity hit; got %d", res.PityAfter)
	}
	if n, _ := eng.PityCounter(ctx, "p1", "event"); n != 0 {
		t.Fatalf("persisted counter = %d after reset", n)
	}
}

func TestPityIsPerPlayerAndBanner(t *testing.T) {
	other := pityBanner()
	other.ID = "other"
	eng, err := gacha.NewEngine(gacha.EngineConfig{
		Banners: gacha.NewRegistry(pityBanner(), other),
		Cards:   catalog.Default(),
		Store:   memory.New(),
		RNG:     zeroRNG{},
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := eng.DrawSingle(ctx, "p1", "event"); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := eng.PityCounter(ctx, "p1", "event"); n != 5 {
		t.Fatalf("p1/event = %d, want 5", n)
	}
	if n, _ := eng.PityCounter(ctx, "p1", "other"); n != 0 {
		t.Fatalf("p1/other = %d, want 0", n)
	}
	if n, _ := eng.PityCounter(ctx, "p2", "event"); n != 0 {
		t.Fatalf("p2/event = %d, want 0", n)
	}
}
