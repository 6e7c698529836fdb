package pricing

import (
	"math"
	"sort"
)

const unreachable = math.MaxInt

// effPack is one purchasable line: a repeatable pack, or the one-shot
// first-time x2 form of a pack.
type effPack struct {
	id    string
	name  string
	coins int
	price int
}

// splitVariants separates the catalog into repeatable packs and the
// one-shot x2 offers still available to this player.
func splitVariants(cat Catalog, first FirstTimeState) (repeat, once []effPack) {
	for _, p := range cat.Packs {
		if p.Coins+p.BonusCoins <= 0 || p.PriceCents <= 0 {
			continue
		}
		repeat = append(repeat, effPack{p.ID, p.Name, p.Coins + p.BonusCoins, p.PriceCents})
		if p.FirstTimeX2 && first != nil && first[p.ID] {
			// x2 applies to base Coins only, not BonusCoins
			once = append(once, effPack{p.ID + "#x2", p.Name + " (x2)", p.Coins*2 + p.BonusCoins, p.PriceCents})
		}
	}
	return repeat, once
}

// buildPlan turns chosen variant counts into a plan with totals and tax.
func buildPlan(cat Catalog, counts map[effPack]int) Plan {
	var plan Plan
	plan.Currency = cat.Currency
	for e, qty := range counts {
		sub := e.price * qty
		plan.Purchases = append(plan.Purchases, Purchase{
			PackID:    e.id,
			Name:      e.name,
			Qty:       qty,
			UnitPrice: e.price,
			UnitCoins: e.coins,
			Subtotal:  sub,
		})
		plan.SubCents += sub
		plan.TotalCoins += e.coins * qty
	}
	sort.Slice(plan.Purchases, func(i, j int) bool {
		return plan.Purchases[i].PackID < plan.Purchases[j].PackID
	})
	plan.TaxCents, plan.TotalCents = applyTax(plan.SubCents, cat.TaxRate)
	return plan
}

// minCostTable fills dp[t] = minimum cents to collect t coins from
// repeatable packs, with totals above limit clamped to limit. pick and
// prev record the choice chain for reconstruction.
func minCostTable(packs []effPack, limit int) (dp, pick, prev []int) {
	dp = make([]int, limit+1)
	pick = make([]int, limit+1)
	prev = make([]int, limit+1)
	for t := range dp {
		dp[t] = unreachable
		pick[t] = -1
		prev[t] = -1
	}
	dp[0] = 0
	for t := 0; t <= limit; t++ {
		if dp[t] == unreachable {
			continue
		}
		for i, e := range packs {
			nt := t + e.coins
			if nt > limit {
				nt = limit
			}
			if c := dp[t] + e.price; c < dp[nt] {
				dp[nt], pick[nt], prev[nt] = c, i, t
			}
		}
	}
	return dp, pick, prev
}

// MinCostAtLeastCoins finds the cheapest pack combination granting at
// least targetCoins. Repeatable packs may be bought any number of times;
// each available first-time x2 offer at most once, so the one-shot
// subsets are enumerated around a single unbounded DP. Catalogs are a
// handful of SKUs, so the subset count stays tiny.
func MinCostAtLeastCoins(cat Catalog, targetCoins int, first FirstTimeState) Plan {
	if targetCoins <= 0 {
		return Plan{Currency: cat.Currency}
	}
	repeat, once := splitVariants(cat, first)
	if len(repeat) == 0 && len(once) == 0 {
		return Plan{Currency: cat.Currency}
	}

	maxCoins := 0
	for _, e := range repeat {
		if e.coins > maxCoins {
			maxCoins = e.coins
		}
	}
	for _, e := range once {
		if e.coins > maxCoins {
			maxCoins = e.coins
		}
	}
	limit := targetCoins + maxCoins

	dp, pick, prev := minCostTable(repeat, limit)

	// cheapestAt[r]: coin total t >= r with the lowest repeat-pack cost
	cheapestAt := make([]int, limit+1)
	cheapestAt[limit] = limit
	for r := limit - 1; r >= 0; r-- {
		cheapestAt[r] = cheapestAt[r+1]
		if dp[r] < dp[cheapestAt[r]] {
			cheapestAt[r] = r
		}
	}

	bestCost := unreachable
	bestMask, bestT := -1, -1
	for mask := 0; mask < 1<<uint(len(once)); mask++ {
		baseCoins, baseCost := 0, 0
		for i, e := range once {
			if mask&(1<<uint(i)) != 0 {
				baseCoins += e.coins
				baseCost += e.price
			}
		}
		need := targetCoins - baseCoins
		if need < 0 {
			need = 0
		}
		t := cheapestAt[need]
		if dp[t] == unreachable {
			continue
		}
		if total := baseCost + dp[t]; total < bestCost {
			bestCost, bestMask, bestT = total, mask, t
		}
	}
	if bestMask < 0 {
		return Plan{Currency: cat.Currency}
	}

	counts := map[effPack]int{}
	for i, e := range once {
		if bestMask&(1<<uint(i)) != 0 {
			counts[e]++
		}
	}
	for t := bestT; t > 0 && pick[t] != -1; t = prev[t] {
		counts[repeat[pick[t]]]++
	}
	return buildPlan(cat, counts)
}

// maxCoinsTable fills coins[c] = best coin haul for spending exactly c
// cents on repeatable packs, -1 where c is not reachable.
func maxCoinsTable(packs []effPack, budget int) (coins, pick, prev []int) {
	coins = make([]int, budget+1)
	pick = make([]int, budget+1)
	prev = make([]int, budget+1)
	for c := range coins {
		coins[c] = -1
		pick[c] = -1
		prev[c] = -1
	}
	coins[0] = 0
	for c := 0; c <= budget; c++ {
		if coins[c] < 0 {
			continue
		}
		for i, e := range packs {
			nc := c + e.price
			if nc > budget {
				continue
			}
			if v := coins[c] + e.coins; v > coins[nc] {
				coins[nc], pick[nc], prev[nc] = v, i, c
			}
		}
	}
	return coins, pick, prev
}

// MaxCoinsUnderBudget computes the biggest coin haul purchasable within
// budgetCents, x2 offers counted once each like MinCostAtLeastCoins.
func MaxCoinsUnderBudget(cat Catalog, budgetCents int, first FirstTimeState) Plan {
	if budgetCents <= 0 {
		return Plan{Currency: cat.Currency}
	}
	repeat, once := splitVariants(cat, first)
	if len(repeat) == 0 && len(once) == 0 {
		return Plan{Currency: cat.Currency}
	}

	// When prices are pre-tax, shrink the effective budget so the taxed
	// total still fits.
	effBudget := budgetCents
	if cat.TaxRate > 0 {
		effBudget = int(math.Floor(float64(budgetCents) / (1 + cat.TaxRate)))
	}
	if effBudget <= 0 {
		return Plan{Currency: cat.Currency}
	}

	coins, pick, prev := maxCoinsTable(repeat, effBudget)

	// bestUnder[c]: spend <= c with the highest haul
	bestUnder := make([]int, effBudget+1)
	for c := 1; c <= effBudget; c++ {
		bestUnder[c] = bestUnder[c-1]
		if coins[c] > coins[bestUnder[c]] {
			bestUnder[c] = c
		}
	}

	bestHaul, bestMask, bestC := -1, -1, -1
	for mask := 0; mask < 1<<uint(len(once)); mask++ {
		baseCoins, baseCost := 0, 0
		for i, e := range once {
			if mask&(1<<uint(i)) != 0 {
				baseCoins += e.coins
				baseCost += e.price
			}
		}
		if baseCost > effBudget {
			continue
		}
		c := bestUnder[effBudget-baseCost]
		if haul := baseCoins + coins[c]; haul > bestHaul {
			bestHaul, bestMask, bestC = haul, mask, c
		}
	}
	if bestMask < 0 || bestHaul <= 0 {
		return Plan{Currency: cat.Currency}
	}

	counts := map[effPack]int{}
	for i, e := range once {
		if bestMask&(1<<uint(i)) != 0 {
			counts[e]++
		}
	}
	for c := bestC; c > 0 && pick[c] != -1; c = prev[c] {
		counts[repeat[pick[c]]]++
	}
	return buildPlan(cat, counts)
}
