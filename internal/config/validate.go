package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/xtding233/football-gacha/internal/catalog"
	"github.com/xtding233/football-gacha/internal/gacha"
)

// ValidateRaw checks semantic constraints of a merged RawBanner.
func ValidateRaw(cfg RawBanner) error {
	var errs []string

	if len(cfg.Probabilities) == 0 {
		errs = append(errs, "probabilities are required")
	}
	sum := 0.0
	for stars, p := range cfg.Probabilities {
		if stars < 1 || stars > int(gacha.MaxRarity) {
			errs = append(errs, fmt.Sprintf("probabilities[%d]: stars must be 1..%d", stars, int(gacha.MaxRarity)))
		}
		if p < 0 || p > 1 || math.IsNaN(p) {
			errs = append(errs, fmt.Sprintf("probabilities[%d] must be in [0,1]", stars))
		}
		sum += p
	}
	if len(cfg.Probabilities) > 0 && math.Abs(sum-1.0) > gacha.SumEpsilon {
		errs = append(errs, fmt.Sprintf("probabilities sum to %.9f, want 1.0", sum))
	}

	if cfg.Pity == nil || cfg.Pity.Threshold == nil {
		errs = append(errs, "pity.threshold is required")
	} else if *cfg.Pity.Threshold < 1 {
		errs = append(errs, "pity.threshold must be >= 1")
	}
	if cfg.Pity == nil || cfg.Pity.GuaranteedTier == nil {
		errs = append(errs, "pity.guaranteed_tier is required")
	} else if _, ok := cfg.Probabilities[*cfg.Pity.GuaranteedTier]; !ok {
		errs = append(errs, "pity.guaranteed_tier must appear in probabilities")
	}

	if cfg.Batch == nil || cfg.Batch.GuaranteedTier == nil {
		errs = append(errs, "batch.guaranteed_tier is required")
	} else if _, ok := cfg.Probabilities[*cfg.Batch.GuaranteedTier]; !ok {
		errs = append(errs, "batch.guaranteed_tier must appear in probabilities")
	}

	if cfg.Pickup != nil {
		if len(cfg.Pickup.CardIDs) == 0 {
			errs = append(errs, "pickup.card_ids must be non-empty when pickup is set")
		}
		if cfg.Pickup.Rate == nil {
			errs = append(errs, "pickup.rate is required when pickup is set")
		} else if !(*cfg.Pickup.Rate > 0 && *cfg.Pickup.Rate < 1) {
			errs = append(errs, "pickup.rate must be in (0,1)")
		}
	}

	if cfg.Cost != nil {
		if cfg.Cost.PerDraw != nil && *cfg.Cost.PerDraw < 0 {
			errs = append(errs, "cost.per_draw must be >= 0")
		}
		if cfg.Cost.PerTen != nil && *cfg.Cost.PerTen < 0 {
			errs = append(errs, "cost.per_ten must be >= 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ValidateAgainstCatalog ensures every reachable tier has cards and every
// pickup id resolves. A tier with zero probability may legitimately have
// no cards.
func ValidateAgainstCatalog(b *gacha.Banner, cat *catalog.Catalog) error {
	var errs []string

	for tier, p := range b.Table {
		if p > 0 && len(cat.CardsAt(tier)) == 0 {
			errs = append(errs, fmt.Sprintf("tier %s has probability %v but no cards", tier, p))
		}
	}
	for _, id := range b.PickupIDs {
		if _, ok := cat.Get(id); !ok {
			errs = append(errs, fmt.Sprintf("pickup card %s not in catalog", id))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog check failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
