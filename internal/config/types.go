// types.go
package config

// RawBanner mirrors the YAML banner schema. Pointer fields distinguish
// "absent" from zero so the default file can be overlaid per banner.
type RawBanner struct {
	Version       string          `yaml:"version,omitempty"`
	ID            string          `yaml:"id"`
	Name          string          `yaml:"name,omitempty"`
	Probabilities map[int]float64 `yaml:"probabilities,omitempty"` // stars -> probability
	Pity          *PityCfg        `yaml:"pity,omitempty"`
	Batch         *BatchCfg       `yaml:"batch,omitempty"`
	Pickup        *PickupCfg      `yaml:"pickup,omitempty"`
	Cost          *CostCfg        `yaml:"cost,omitempty"`
	Notes         string          `yaml:"notes,omitempty"`
}

type PityCfg struct {
	Threshold      *int `yaml:"threshold,omitempty"`
	GuaranteedTier *int `yaml:"guaranteed_tier,omitempty"`
}

type BatchCfg struct {
	GuaranteedTier *int `yaml:"guaranteed_tier,omitempty"`
}

type PickupCfg struct {
	CardIDs []string `yaml:"card_ids,omitempty"`
	Rate    *float64 `yaml:"rate,omitempty"`
}

type CostCfg struct {
	PerDraw *int `yaml:"per_draw,omitempty"`
	PerTen  *int `yaml:"per_ten,omitempty"`
}
