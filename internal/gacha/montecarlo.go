package gacha

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// TrialGoal selects what the simulation measures per trial.
type TrialGoal string

const (
	// Draws until the first result at/above TargetTier.
	GoalFirstAtLeast TrialGoal = "first_at_least"
	// Given a fixed budget of draws, count of results at/above TargetTier.
	GoalFixedBudget TrialGoal = "fixed_budget"
)

// SimParams describes one simulation run. Draws run through the real
// resolve path (pity, conditional forcing, pickup) with a seeded stream,
// so tuned tables behave in simulation exactly as in production.
type SimParams struct {
	Banner     *Banner
	Cards      CardSource
	TargetTier Rarity
	StartCount int // carried pity when entering the pool
	Seed       uint64
}

// SimBudget controls the number of draws in GoalFixedBudget.
type SimBudget struct {
	NumDraws int
}

// Stats summarizes simulation results.
type Stats struct {
	Mean    float64
	StdDev  float64
	P50     float64
	P90     float64
	P99     float64
	Samples []float64 `json:"-"`
}

func calcStats(xs []float64) Stats {
	if len(xs) == 0 {
		return Stats{}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return Stats{
		Mean:    stat.Mean(sorted, nil),
		StdDev:  stat.StdDev(sorted, nil),
		P50:     stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:     stat.Quantile(0.90, stat.Empirical, sorted, nil),
		P99:     stat.Quantile(0.99, stat.Empirical, sorted, nil),
		Samples: xs,
	}
}

// simulateOne runs a single trial with its own pity state and RNG stream.
func simulateOne(p SimParams, goal TrialGoal, budget *SimBudget, seed uint64) (int, error) {
	eng := &Engine{cards: p.Cards, rng: NewSeededRNG(seed)}
	state := PityState{Count: p.StartCount}

	switch goal {
	case GoalFirstAtLeast:
		draws := 0
		for {
			draws++
			res, next, err := eng.resolveOne(p.Banner, state)
			if err != nil {
				return 0, err
			}
			state = next
			if res.Tier >= p.TargetTier {
				return draws, nil
			}
		}

	case GoalFixedBudget:
		if budget == nil || budget.NumDraws <= 0 {
			return 0, nil
		}
		count := 0
		for i := 0; i < budget.NumDraws; i++ {
			res, next, err := eng.resolveOne(p.Banner, state)
			if err != nil {
				return 0, err
			}
			state = next
			if res.Tier >= p.TargetTier {
				count++
			}
		}
		return count, nil
	}

	return 0, fmt.Errorf("unknown trial goal %q", goal)
}

// RunMonteCarlo repeats trials and returns summary stats. Each trial uses
// a distinct sub-seed derived from SimParams.Seed, so runs are replicable.
func RunMonteCarlo(p SimParams, goal TrialGoal, trials int, budget *SimBudget) (Stats, error) {
	if p.Banner == nil || p.Cards == nil {
		return Stats{}, fmt.Errorf("simulation needs a banner and a card source")
	}
	if trials <= 0 {
		return Stats{}, nil
	}
	samples := make([]float64, trials)
	for i := 0; i < trials; i++ {
		v, err := simulateOne(p, goal, budget, p.Seed+uint64(i))
		if err != nil {
			return Stats{}, err
		}
		samples[i] = float64(v)
	}
	return calcStats(samples), nil
}
