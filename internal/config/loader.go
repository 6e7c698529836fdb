package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/football-gacha/internal/catalog"
	"github.com/xtding233/football-gacha/internal/gacha"
)

// Paths helper for the config tree layout.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/app/configs
}

func (p Paths) BannerDir() string {
	return filepath.Join(p.BaseDir, "banners")
}
func (p Paths) DefaultPath() string {
	return filepath.Join(p.BannerDir(), "default.yaml")
}
func (p Paths) CatalogPath() string {
	return filepath.Join(p.BaseDir, "catalog.yaml")
}

// Loader reads YAML banner configs and overlays default → banner.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache []*gacha.Banner
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{paths: Paths{BaseDir: baseDir}}
}

// BannerDir exposes the banner config directory, for watchers.
func (l *Loader) BannerDir() string { return l.paths.BannerDir() }

// LoadCatalog reads the card catalog, falling back to the stock pool when
// no catalog file exists.
func (l *Loader) LoadCatalog() (*catalog.Catalog, error) {
	path := l.paths.CatalogPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}

// LoadBanners reads default.yaml plus every banner file, overlays, validates
// each against the catalog and returns the banner set. Results are cached
// until Invalidate.
func (l *Loader) LoadBanners(cat *catalog.Catalog) ([]*gacha.Banner, error) {
	l.mu.RLock()
	if l.cache != nil {
		cached := l.cache
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	def, err := readBannerYAML(l.paths.DefaultPath())
	if err != nil {
		return nil, fmt.Errorf("read default: %w", err)
	}

	entries, err := os.ReadDir(l.paths.BannerDir())
	if err != nil {
		return nil, fmt.Errorf("read banner dir: %w", err)
	}

	var banners []*gacha.Banner
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") || name == "default.yaml" {
			continue
		}
		raw, err := readBannerYAML(filepath.Join(l.paths.BannerDir(), name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		merged := mergeRaw(def, raw)
		if merged.ID == "" {
			merged.ID = strings.TrimSuffix(name, ".yaml")
		}
		if err := ValidateRaw(merged); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		b, err := toBanner(merged)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if err := ValidateAgainstCatalog(b, cat); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		banners = append(banners, b)
	}
	if len(banners) == 0 {
		return nil, fmt.Errorf("no banner files in %s", l.paths.BannerDir())
	}
	sort.Slice(banners, func(i, j int) bool { return banners[i].ID < banners[j].ID })

	l.mu.Lock()
	l.cache = banners
	l.mu.Unlock()
	return banners, nil
}

// Invalidate clears the cache. Call after the watcher detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = nil
}

// readBannerYAML loads one file. A missing file returns a zero config.
func readBannerYAML(path string) (RawBanner, error) {
	var cfg RawBanner
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawBanner{}, nil
		}
		return RawBanner{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawBanner{}, err
	}
	return cfg, nil
}

// mergeRaw overlays b onto a: fields set in b win, the probability map
// replaces wholesale when provided.
func mergeRaw(a, b RawBanner) RawBanner {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.ID != "" {
		out.ID = b.ID
	}
	if b.Name != "" {
		out.Name = b.Name
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if len(b.Probabilities) > 0 {
		out.Probabilities = make(map[int]float64, len(b.Probabilities))
		for k, v := range b.Probabilities {
			out.Probabilities[k] = v
		}
	}

	switch {
	case out.Pity == nil && b.Pity != nil:
		c := *b.Pity
		out.Pity = &c
	case out.Pity != nil && b.Pity != nil:
		merged := *out.Pity
		if b.Pity.Threshold != nil {
			merged.Threshold = b.Pity.Threshold
		}
		if b.Pity.GuaranteedTier != nil {
			merged.GuaranteedTier = b.Pity.GuaranteedTier
		}
		out.Pity = &merged
	}

	switch {
	case out.Batch == nil && b.Batch != nil:
		c := *b.Batch
		out.Batch = &c
	case out.Batch != nil && b.Batch != nil:
		merged := *out.Batch
		if b.Batch.GuaranteedTier != nil {
			merged.GuaranteedTier = b.Batch.GuaranteedTier
		}
		out.Batch = &merged
	}

	// pickup never comes from default.yaml; a banner defines its own or has none
	if b.Pickup != nil {
		c := *b.Pickup
		c.CardIDs = append([]string(nil), b.Pickup.CardIDs...)
		out.Pickup = &c
	}

	switch {
	case out.Cost == nil && b.Cost != nil:
		c := *b.Cost
		out.Cost = &c
	case out.Cost != nil && b.Cost != nil:
		merged := *out.Cost
		if b.Cost.PerDraw != nil {
			merged.PerDraw = b.Cost.PerDraw
		}
		if b.Cost.PerTen != nil {
			merged.PerTen = b.Cost.PerTen
		}
		out.Cost = &merged
	}

	return out
}

// toBanner converts a merged RawBanner into the engine's banner type.
// ValidateRaw must pass first.
func toBanner(raw RawBanner) (*gacha.Banner, error) {
	table := make(gacha.Table, len(raw.Probabilities))
	for stars, p := range raw.Probabilities {
		tier, err := gacha.ParseRarity(stars)
		if err != nil {
			return nil, err
		}
		table[tier] = p
	}

	b := &gacha.Banner{
		ID:    raw.ID,
		Name:  raw.Name,
		Table: table,
	}
	if raw.Pity != nil {
		if raw.Pity.Threshold != nil {
			b.PityThreshold = *raw.Pity.Threshold
		}
		if raw.Pity.GuaranteedTier != nil {
			b.GuaranteedTier = gacha.Rarity(*raw.Pity.GuaranteedTier)
		}
	}
	if raw.Batch != nil && raw.Batch.GuaranteedTier != nil {
		b.BatchGuaranteeTier = gacha.Rarity(*raw.Batch.GuaranteedTier)
	}
	if raw.Pickup != nil {
		b.PickupIDs = append([]string(nil), raw.Pickup.CardIDs...)
		if raw.Pickup.Rate != nil {
			b.PickupRate = *raw.Pickup.Rate
		}
	}
	if raw.Cost != nil {
		if raw.Cost.PerDraw != nil {
			b.CostPerDraw = *raw.Cost.PerDraw
		}
		if raw.Cost.PerTen != nil {
			b.CostPerTen = *raw.Cost.PerTen
		}
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}
