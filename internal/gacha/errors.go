package gacha

import "errors"

// Error taxonomy. Callers match with errors.Is; everything the engine
// returns wraps one of these sentinels.
var (
	// ErrUnknownBanner : the banner id is not in the registry. Caller bug
	// or stale client; not retryable.
	ErrUnknownBanner = errors.New("unknown banner")

	// ErrEmptyTierPool : a tier was resolved but no card exists at it.
	// Configuration bug; must be fixed in data, never retried.
	ErrEmptyTierPool = errors.New("no cards configured at tier")

	// ErrRNG : the random source produced an out-of-range sample.
	ErrRNG = errors.New("random source failure")

	// ErrStorage : pity state could not be read or written. The draw is
	// not committed; retry is safe.
	ErrStorage = errors.New("pity storage failure")

	// ErrInvalidProb : probability outside 0..1 (or NaN/Inf).
	ErrInvalidProb = errors.New("invalid probability; must be 0..1")
)
