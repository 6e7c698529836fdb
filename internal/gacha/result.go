package gacha

import (
	"fmt"
	"sort"
	"strings"
)

// Card is one drawable item. The catalog package builds and indexes these;
// the engine only selects among them.
type Card struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Tier  Rarity `json:"tier"`
	Kind  string `json:"kind"`            // manager | coach | tactics
	Trait string `json:"trait,omitempty"` // training specialty or tactical style
}

// CardSource supplies draw candidates. Implemented by internal/catalog.
type CardSource interface {
	// CardsAt returns every card at the given tier.
	CardsAt(tier Rarity) []Card
	// Cards resolves ids to cards, dropping unknown ids.
	Cards(ids []string) []Card
}

// DrawResult is one resolved draw, handed to the caller immediately; the
// engine retains nothing beyond the pity counter.
type DrawResult struct {
	Card         Card   `json:"card"`
	Tier         Rarity `json:"tier"`
	ForcedByPity bool   `json:"forced_by_pity"`
	IsNew        bool   `json:"is_new"`
	PityAfter    int    `json:"pity_after"`
}

// TenDrawResult is an ordered 10-pull. At least one entry sits at/above
// the banner's batch guarantee tier; UpgradedIndex marks the entry the
// batch rule replaced, or -1 when the guarantee was met naturally.
type TenDrawResult struct {
	Results       []DrawResult `json:"results"`
	UpgradedIndex int          `json:"upgraded_index"`
	PityAfter     int          `json:"pity_after"`
}

// Best returns the highest-tier result (first on ties).
func (t *TenDrawResult) Best() DrawResult {
	best := t.Results[0]
	for _, r := range t.Results[1:] {
		if r.Tier > best.Tier {
			best = r
		}
	}
	return best
}

// NewCount reports how many results are first copies for the player.
func (t *TenDrawResult) NewCount() int {
	n := 0
	for _, r := range t.Results {
		if r.IsNew {
			n++
		}
	}
	return n
}

// AnimationOrder returns the results sorted ascending by tier, preserving
// draw order within a tier. The reveal sequence builds toward the best pull.
func (t *TenDrawResult) AnimationOrder() []DrawResult {
	out := append([]DrawResult(nil), t.Results...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tier < out[j].Tier })
	return out
}

// Summary renders a per-tier count plus the best card, for logs and debug
// endpoints.
func (t *TenDrawResult) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "10-pull: ")
	counts := make(map[Rarity]int)
	for _, r := range t.Results {
		counts[r.Tier]++
	}
	for tier := RarityOne; tier <= MaxRarity; tier++ {
		if counts[tier] > 0 {
			fmt.Fprintf(&sb, "%s x%d ", tier, counts[tier])
		}
	}
	best := t.Best()
	fmt.Fprintf(&sb, "| best %s %s", best.Tier, best.Card.Name)
	if n := t.NewCount(); n > 0 {
		fmt.Fprintf(&sb, " | new %d", n)
	}
	return sb.String()
}
