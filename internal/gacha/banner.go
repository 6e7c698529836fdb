package gacha

import (
	"fmt"
	"sort"
	"sync"
)

// Banner is one gacha offering: its probability table, pity rules, batch
// guarantee, optional pickup (rate-up) pool and draw costs. Loaded from
// static config at startup and read-only afterwards.
type Banner struct {
	ID   string
	Name string

	Table Table

	// PityThreshold draws without a tier >= GuaranteedTier force one.
	PityThreshold  int
	GuaranteedTier Rarity

	// BatchGuaranteeTier : a 10-pull always contains at least one result
	// at/above this tier. Independent of the pity counter.
	BatchGuaranteeTier Rarity

	// PickupIDs are featured cards; when a tier resolves and the pickup
	// pool has cards at that tier, they win with probability PickupRate.
	PickupIDs  []string
	PickupRate float64

	// Costs in tokens. CostPerTen == 0 means 10 * CostPerDraw.
	CostPerDraw int
	CostPerTen  int
}

// Validate checks the banner's internal invariants. Cross-checks against
// the card catalog happen in the config layer.
func (b *Banner) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("banner id is required")
	}
	if err := b.Table.Validate(); err != nil {
		return fmt.Errorf("banner %s: %w", b.ID, err)
	}
	if b.PityThreshold < 1 {
		return fmt.Errorf("banner %s: pity threshold must be >= 1", b.ID)
	}
	if _, ok := b.Table[b.GuaranteedTier]; !ok {
		return fmt.Errorf("banner %s: guaranteed tier %s not in table", b.ID, b.GuaranteedTier)
	}
	if _, ok := b.Table[b.BatchGuaranteeTier]; !ok {
		return fmt.Errorf("banner %s: batch guarantee tier %s not in table", b.ID, b.BatchGuaranteeTier)
	}
	if len(b.PickupIDs) > 0 {
		if !(b.PickupRate > 0 && b.PickupRate < 1) {
			return fmt.Errorf("banner %s: pickup rate must be in (0,1)", b.ID)
		}
	}
	if b.CostPerDraw < 0 || b.CostPerTen < 0 {
		return fmt.Errorf("banner %s: costs must be >= 0", b.ID)
	}
	return nil
}

// TenCost is the token cost of a 10-pull.
func (b *Banner) TenCost() int {
	if b.CostPerTen > 0 {
		return b.CostPerTen
	}
	return 10 * b.CostPerDraw
}

// Registry holds the loaded banner set. Replace swaps the whole set
// atomically, which is how config hot-reload publishes changes.
type Registry struct {
	mu      sync.RWMutex
	banners map[string]*Banner
}

func NewRegistry(banners ...*Banner) *Registry {
	r := &Registry{banners: make(map[string]*Banner)}
	r.Replace(banners)
	return r
}

func (r *Registry) Get(id string) (*Banner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.banners[id]
	return b, ok
}

// Replace installs a new banner set. In-flight draws keep the banner
// pointer they already resolved.
func (r *Registry) Replace(banners []*Banner) {
	next := make(map[string]*Banner, len(banners))
	for _, b := range banners {
		next[b.ID] = b
	}
	r.mu.Lock()
	r.banners = next
	r.mu.Unlock()
}

// IDs returns the loaded banner ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.banners))
	for id := range r.banners {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
