package gacha

import (
	"fmt"
	"strings"
)

// Rarity is a star tier. Tiers are totally ordered: One < Two < ... < Five.
type Rarity int

const (
	RarityOne Rarity = iota + 1
	RarityTwo
	RarityThree
	RarityFour
	RarityFive
)

// MaxRarity is the highest configurable tier.
const MaxRarity = RarityFive

func (r Rarity) Valid() bool { return r >= RarityOne && r <= MaxRarity }

func (r Rarity) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Rarity(%d)", int(r))
	}
	return strings.Repeat("★", int(r))
}

// ParseRarity converts a star count (1..5) into a Rarity.
func ParseRarity(stars int) (Rarity, error) {
	r := Rarity(stars)
	if !r.Valid() {
		return 0, fmt.Errorf("rarity must be 1..%d, got %d", int(MaxRarity), stars)
	}
	return r, nil
}
