package auction

import "math/big"

// PricePrecision scales the epoch price multiplier: a multiplier of 2e18
// doubles the clearing price when the next epoch opens.
var PricePrecision = new(big.Int).SetUint64(1_000_000_000_000_000_000)

var (
	// AbsMinInitPrice is the smallest opening price any epoch may carry.
	AbsMinInitPrice = big.NewInt(1_000_000)
	// AbsMaxInitPrice caps opening prices so that multiplier arithmetic can
	// never overflow a 256-bit host ledger.
	AbsMaxInitPrice = new(big.Int).Lsh(big.NewInt(1), 192)
	// MinPriceMultiplier is 1.1x scaled by PricePrecision.
	MinPriceMultiplier = new(big.Int).SetUint64(1_100_000_000_000_000_000)
	// MaxPriceMultiplier is 3.0x scaled by PricePrecision.
	MaxPriceMultiplier = new(big.Int).SetUint64(3_000_000_000_000_000_000)
)

// MaxEpochPeriod bounds epoch lengths for both auction flavours, in seconds.
const MaxEpochPeriod int64 = 365 * 24 * 60 * 60

// CurrentPrice returns the linearly decayed Dutch-auction price at the given
// time. The price opens at initPrice when the epoch starts, reaches zero when
// epochPeriod has fully elapsed, and stays at zero for any later time. The
// computation multiplies before dividing so intermediate truncation can never
// push the result above initPrice or below zero.
func CurrentPrice(initPrice *big.Int, epochStart, epochPeriod, now int64) *big.Int {
	if initPrice == nil || initPrice.Sign() <= 0 || epochPeriod <= 0 {
		return big.NewInt(0)
	}
	elapsed := now - epochStart
	if elapsed <= 0 {
		return new(big.Int).Set(initPrice)
	}
	if elapsed >= epochPeriod {
		return big.NewInt(0)
	}
	decay := new(big.Int).Mul(initPrice, big.NewInt(elapsed))
	decay.Quo(decay, big.NewInt(epochPeriod))
	price := new(big.Int).Sub(initPrice, decay)
	if price.Sign() < 0 {
		return big.NewInt(0)
	}
	return price
}

// NextInitPrice derives the opening price for the next epoch from the clearing
// price of the one just settled: price*multiplier/PricePrecision clamped to
// [minInitPrice, AbsMaxInitPrice].
func NextInitPrice(price, multiplier, minInitPrice *big.Int) *big.Int {
	next := new(big.Int)
	if price != nil && price.Sign() > 0 && multiplier != nil {
		next.Mul(price, multiplier)
		next.Quo(next, PricePrecision)
	}
	if minInitPrice != nil && next.Cmp(minInitPrice) < 0 {
		return new(big.Int).Set(minInitPrice)
	}
	if next.Cmp(AbsMaxInitPrice) > 0 {
		return new(big.Int).Set(AbsMaxInitPrice)
	}
	return next
}
