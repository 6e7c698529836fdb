// Package catalog indexes the drawable card pool and implements the
// engine's CardSource.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/football-gacha/internal/gacha"
)

// Card kinds.
const (
	KindManager = "manager"
	KindCoach   = "coach"
	KindTactics = "tactics"
)

// Catalog is the immutable card pool, indexed by id and by tier.
type Catalog struct {
	all    []gacha.Card
	byID   map[string]gacha.Card
	byTier map[gacha.Rarity][]gacha.Card
}

// New builds a catalog, rejecting duplicate ids and invalid tiers.
func New(cards []gacha.Card) (*Catalog, error) {
	c := &Catalog{
		byID:   make(map[string]gacha.Card, len(cards)),
		byTier: make(map[gacha.Rarity][]gacha.Card),
	}
	for _, card := range cards {
		if card.ID == "" {
			return nil, fmt.Errorf("card with empty id")
		}
		if !card.Tier.Valid() {
			return nil, fmt.Errorf("card %s: invalid tier %d", card.ID, int(card.Tier))
		}
		if _, dup := c.byID[card.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %s", card.ID)
		}
		c.byID[card.ID] = card
		c.byTier[card.Tier] = append(c.byTier[card.Tier], card)
		c.all = append(c.all, card)
	}
	return c, nil
}

// CardsAt returns every card at the tier. The slice is shared; callers
// must not mutate it.
func (c *Catalog) CardsAt(tier gacha.Rarity) []gacha.Card {
	return c.byTier[tier]
}

// Cards resolves ids to cards, dropping unknown ids.
func (c *Catalog) Cards(ids []string) []gacha.Card {
	out := make([]gacha.Card, 0, len(ids))
	for _, id := range ids {
		if card, ok := c.byID[id]; ok {
			out = append(out, card)
		}
	}
	return out
}

// Get looks up a card by id.
func (c *Catalog) Get(id string) (gacha.Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}

// Size is the total card count.
func (c *Catalog) Size() int { return len(c.all) }

type rawCard struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Stars int    `yaml:"stars"`
	Kind  string `yaml:"kind"`
	Trait string `yaml:"trait,omitempty"`
}

type rawCatalog struct {
	Cards []rawCard `yaml:"cards"`
}

// LoadFile reads a YAML card catalog.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var raw rawCatalog
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	cards := make([]gacha.Card, 0, len(raw.Cards))
	for _, rc := range raw.Cards {
		tier, err := gacha.ParseRarity(rc.Stars)
		if err != nil {
			return nil, fmt.Errorf("card %s: %w", rc.ID, err)
		}
		cards = append(cards, gacha.Card{
			ID:    rc.ID,
			Name:  rc.Name,
			Tier:  tier,
			Kind:  rc.Kind,
			Trait: rc.Trait,
		})
	}
	return New(cards)
}
