package checker

import "time"

// Jittered shifts base by a uniform offset in [-spread, +spread].
// When the result would not be a positive delay, base is returned unchanged.
func Jittered(base, spread time.Duration, rnd func() float64) time.Duration {
	if spread <= 0 || rnd == nil {
		return base
	}
	offset := time.Duration((rnd()*2 - 1) * float64(spread))
	d := base + offset
	if d <= 0 {
		return base
	}
	return d
}

// Spread returns a uniform delay in [0, max].
func Spread(max time.Duration, rnd func() float64) time.Duration {
	if max <= 0 || rnd == nil {
		return 0
	}
	return time.Duration(rnd() * float64(max))
}
