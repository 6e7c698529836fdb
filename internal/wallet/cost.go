package wallet

// Cost defines how many tokens a draw requires on a banner.

type Cost struct {
	Name       string // e.g. "Star Coin"
	PerDraw    int    // tokens per single draw
	PerTen     int    // optional; if 0 -> equal to 10 * PerDraw
	PerBundle  int    // optional; if 0 -> equal to BundleSize * PerDraw
	BundleSize int    // optional; if <= 1, PerBundle is ignored
}

// ForDraws returns how many tokens are required for n draws, applying the
// ten-pull discount and any custom bundle pricing.
func (c Cost) ForDraws(n int) int {
	if n <= 0 {
		return 0
	}
	if c.PerTen > 0 && n >= 10 && c.BundleSize <= 1 {
		tens := n / 10
		rem := n % 10
		return tens*c.PerTen + rem*c.PerDraw
	}
	if c.PerBundle > 0 && c.BundleSize > 1 && n >= c.BundleSize {
		bundles := n / c.BundleSize
		rem := n % c.BundleSize
		return bundles*c.PerBundle + rem*c.PerDraw
	}

	return n * c.PerDraw
}
