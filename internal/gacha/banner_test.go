package gacha

import (
	"context"
	"testing"
)

func TestBannerValidate(t *testing.T) {
	b := testBanner()
	if err := b.Validate(); err != nil {
		t.Fatalf("valid banner rejected: %v", err)
	}

	bad := *b
	bad.PityThreshold = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("zero pity threshold must fail")
	}

	bad = *b
	bad.GuaranteedTier = RarityFive // not in the test table
	if err := bad.Validate(); err == nil {
		t.Fatal("guaranteed tier missing from table must fail")
	}

	bad = *b
	bad.PickupIDs = []string{"c1b"}
	bad.PickupRate = 1.5
	if err := bad.Validate(); err == nil {
		t.Fatal("pickup rate outside (0,1) must fail")
	}
}

func TestBannerTenCost(t *testing.T) {
	b := &Banner{CostPerDraw: 160}
	if got := b.TenCost(); got != 1600 {
		t.Fatalf("ten cost = %d", got)
	}
	b.CostPerTen = 1500 // discounted bundle
	if got := b.TenCost(); got != 1500 {
		t.Fatalf("ten cost = %d", got)
	}
}

func TestRegistryReplaceVisibleToNextDraw(t *testing.T) {
	reg := NewRegistry(testBanner())
	e, err := NewEngine(EngineConfig{
		Banners: reg,
		Cards:   testCards(),
		Store:   newTestStore(),
		RNG:     &fixedRNG{floats: []float64{0.0}},
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := e.DrawSingle(ctx, "p1", "trial"); err != nil {
		t.Fatal(err)
	}

	swapped := testBanner()
	swapped.ID = "replaced"
	reg.Replace([]*Banner{swapped})

	if _, err := e.DrawSingle(ctx, "p1", "trial"); err == nil {
		t.Fatal("old banner must be gone after replace")
	}
	if _, err := e.DrawSingle(ctx, "p1", "replaced"); err != nil {
		t.Fatalf("new banner not drawable: %v", err)
	}

	ids := reg.IDs()
	if len(ids) != 1 || ids[0] != "replaced" {
		t.Fatalf("ids = %v", ids)
	}
}
