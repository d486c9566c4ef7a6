package rig

import "math/big"

// EmissionRate returns the emission rate in force at the given time:
// initialRate halved once per full halvingPeriod elapsed since startTime,
// floored at tailRate. Times at or before startTime see zero halvings.
//
// Shift counts at or beyond the rate's bit width saturate to zero before the
// tail clamp is applied, so arbitrarily distant times settle on tailRate
// rather than wrapping.
//
// The result is frozen into the epoch at rollover; it is never re-evaluated
// while a holder accrues mid-epoch, even across halving boundaries.
func EmissionRate(initialRate, tailRate *big.Int, halvingPeriod, startTime, now int64) *big.Int {
	if initialRate == nil || initialRate.Sign() <= 0 {
		return clampTail(big.NewInt(0), tailRate)
	}
	var halvings int64
	if now > startTime && halvingPeriod > 0 {
		halvings = (now - startTime) / halvingPeriod
	}
	if halvings >= int64(initialRate.BitLen()) {
		return clampTail(big.NewInt(0), tailRate)
	}
	rate := new(big.Int).Rsh(initialRate, uint(halvings))
	return clampTail(rate, tailRate)
}

func clampTail(rate, tailRate *big.Int) *big.Int {
	if tailRate != nil && rate.Cmp(tailRate) < 0 {
		return new(big.Int).Set(tailRate)
	}
	return rate
}
