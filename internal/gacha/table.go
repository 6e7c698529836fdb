package gacha

import (
	"fmt"
	"math"
	"sort"
)

// SumEpsilon is the tolerance when checking that a table sums to 1.
const SumEpsilon = 1e-6

// Table maps each rarity tier to its draw probability.
// Immutable after load; Validate is called once by the config layer.
type Table map[Rarity]float64

func validateProb(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return ErrInvalidProb
	}
	if p < 0 || p > 1 {
		return ErrInvalidProb
	}
	return nil
}

// Validate checks every entry is a probability and the total is 1 ± SumEpsilon.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("probability table is empty")
	}
	sum := 0.0
	for tier, p := range t {
		if !tier.Valid() {
			return fmt.Errorf("invalid tier %d in table", int(tier))
		}
		if err := validateProb(p); err != nil {
			return fmt.Errorf("tier %s: %w", tier, err)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > SumEpsilon {
		return fmt.Errorf("table probabilities sum to %.9f, want 1.0", sum)
	}
	return nil
}

// tiers returns the configured tiers in ascending order.
func (t Table) tiers() []Rarity {
	out := make([]Rarity, 0, len(t))
	for tier := range t {
		out = append(out, tier)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Sample draws one tier with a single uniform sample mapped through the
// cumulative distribution in ascending tier order: the result is the first
// tier whose cumulative probability exceeds the sample.
func (t Table) Sample(rng RandomSource) (Rarity, error) {
	if rng == nil {
		rng = DefaultRNG()
	}
	u := rng.Float64()
	if !(u >= 0 && u < 1) {
		return 0, fmt.Errorf("%w: sample %v outside [0,1)", ErrRNG, u)
	}
	tiers := t.tiers()
	cum := 0.0
	for _, tier := range tiers {
		cum += t[tier]
		if u < cum {
			return tier, nil
		}
	}
	// float slack: the sum is 1 only within epsilon, so u can land past it
	return tiers[len(tiers)-1], nil
}

// Conditional returns the renormalized sub-distribution over tiers >= min.
// Used when pity forces a draw: the guaranteed tiers keep their relative odds.
func (t Table) Conditional(min Rarity) (Table, error) {
	mass := 0.0
	for tier, p := range t {
		if tier >= min {
			mass += p
		}
	}
	if mass <= 0 {
		return nil, fmt.Errorf("no probability mass at tier %s or above", min)
	}
	out := make(Table)
	for tier, p := range t {
		if tier >= min {
			out[tier] = p / mass
		}
	}
	return out, nil
}
