// Package pricing answers "what is the cheapest way to afford N draws"
// over the coin-pack store catalog.
package pricing

import "math"

// Pack models a purchasable coin SKU in the store.
type Pack struct {
	ID          string // SKU id, e.g. "coins_6480"
	Name        string // display name
	Coins       int    // base coins granted
	BonusCoins  int    // permanent extra coins (non-first-time)
	FirstTimeX2 bool   // first purchase doubles base Coins (not BonusCoins)
	PriceCents  int    // price in minor currency units
}

// Catalog is a regional pack catalog plus tax info.
type Catalog struct {
	CoinName string // e.g. "Star Coin"
	Currency string // ISO code, e.g. "USD"
	// TaxRate applies on the subtotal when prices are pre-tax. For
	// tax-inclusive prices set TaxRate = 0.
	TaxRate float64
	Packs   []Pack
}

// FirstTimeState describes per-pack first-time eligibility.
type FirstTimeState map[string]bool // packID -> x2 still available

// Plan summarizes a purchase plan.
type Plan struct {
	Purchases  []Purchase
	SubCents   int
	TaxCents   int
	TotalCents int
	TotalCoins int
	Currency   string
}

// Purchase is one line item in the plan.
type Purchase struct {
	PackID    string
	Name      string
	Qty       int
	UnitPrice int // cents
	UnitCoins int // coins received per unit in this plan (x2/bonus applied)
	Subtotal  int // cents
}

// DefaultCatalog is the stock store lineup.
func DefaultCatalog() Catalog {
	return Catalog{
		CoinName: "Star Coin",
		Currency: "USD",
		Packs: []Pack{
			{ID: "coins_60", Name: "Handful of Coins", Coins: 60, PriceCents: 99, FirstTimeX2: true},
			{ID: "coins_330", Name: "Pouch of Coins", Coins: 300, BonusCoins: 30, PriceCents: 499, FirstTimeX2: true},
			{ID: "coins_1090", Name: "Bag of Coins", Coins: 980, BonusCoins: 110, PriceCents: 1499, FirstTimeX2: true},
			{ID: "coins_2240", Name: "Chest of Coins", Coins: 1980, BonusCoins: 260, PriceCents: 2999, FirstTimeX2: true},
			{ID: "coins_3880", Name: "Crate of Coins", Coins: 3280, BonusCoins: 600, PriceCents: 4999, FirstTimeX2: true},
			{ID: "coins_8080", Name: "Vault of Coins", Coins: 6480, BonusCoins: 1600, PriceCents: 9999, FirstTimeX2: true},
		},
	}
}

// applyTax computes tax and total for a subtotal.
func applyTax(sub int, taxRate float64) (tax int, total int) {
	if taxRate <= 0 {
		return 0, sub
	}
	t := int(math.Round(float64(sub) * taxRate))
	return t, sub + t
}
