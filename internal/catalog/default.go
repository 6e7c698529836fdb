package catalog

import (
	"fmt"

	"github.com/xtding233/football-gacha/internal/gacha"
)

var specialties = []string{"balanced", "speed", "power", "technical", "mental"}

var tacticalStyles = []string{
	"wing_play", "defensive", "balanced", "attacking",
	"counter_attack", "possession", "pressing", "direct_play",
}

// Default builds the stock card pool: 20 managers, 60 coaches and 40
// tactics cards with fixed rarity banding. Deployments with a data-driven
// pool use LoadFile instead.
func Default() *Catalog {
	cards := make([]gacha.Card, 0, 120)

	for i := 1; i <= 20; i++ {
		var tier gacha.Rarity
		switch {
		case i <= 10:
			tier = gacha.RarityOne
		case i <= 15:
			tier = gacha.RarityTwo
		case i <= 18:
			tier = gacha.RarityThree
		case i == 19:
			tier = gacha.RarityFour
		default:
			tier = gacha.RarityFive
		}
		cards = append(cards, gacha.Card{
			ID:    fmt.Sprintf("manager_%03d", i),
			Name:  fmt.Sprintf("Manager %d", i),
			Tier:  tier,
			Kind:  KindManager,
			Trait: specialties[i%len(specialties)],
		})
	}

	for i := 1; i <= 60; i++ {
		var tier gacha.Rarity
		switch {
		case i <= 30:
			tier = gacha.RarityOne
		case i <= 45:
			tier = gacha.RarityTwo
		case i <= 54:
			tier = gacha.RarityThree
		case i <= 58:
			tier = gacha.RarityFour
		default:
			tier = gacha.RarityFive
		}
		cards = append(cards, gacha.Card{
			ID:    fmt.Sprintf("coach_%03d", i),
			Name:  fmt.Sprintf("Coach %d", i),
			Tier:  tier,
			Kind:  KindCoach,
			Trait: specialties[i%len(specialties)],
		})
	}

	for i := 1; i <= 40; i++ {
		var tier gacha.Rarity
		switch {
		case i <= 20:
			tier = gacha.RarityOne
		case i <= 30:
			tier = gacha.RarityTwo
		case i <= 36:
			tier = gacha.RarityThree
		case i <= 39:
			tier = gacha.RarityFour
		default:
			tier = gacha.RarityFive
		}
		cards = append(cards, gacha.Card{
			ID:    fmt.Sprintf("tactics_%03d", i),
			Name:  fmt.Sprintf("Tactics %d", i),
			Tier:  tier,
			Kind:  KindTactics,
			Trait: tacticalStyles[i%len(tacticalStyles)],
		})
	}

	// banding above covers every tier, so New cannot fail here
	c, err := New(cards)
	if err != nil {
		panic(err)
	}
	return c
}
