package rig

import (
	"errors"
	"fmt"
	"math/big"

	"rignet/native/auction"
)

// ErrInvalidConfig wraps every constructor bounds violation. A config that
// fails validation never produces an engine instance.
var ErrInvalidConfig = errors.New("rig config: invalid")

const (
	// MinEpochPeriod is the shortest permitted rig epoch, in seconds.
	MinEpochPeriod int64 = 10 * 60
	// MinHalvingPeriod bounds how quickly the emission rate may halve.
	MinHalvingPeriod int64 = 24 * 60 * 60
)

// MaxInitialRate caps the emission rate per second at genesis.
var MaxInitialRate = new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil)

// Config captures the immutable parameters fixed when a rig is launched.
type Config struct {
	// InitialRate is the emission rate per second during the first halving
	// period.
	InitialRate *big.Int `toml:"InitialRateWei"`
	// TailRate floors the emission rate once halvings have decayed it.
	TailRate *big.Int `toml:"TailRateWei"`
	// HalvingPeriod is the interval, in seconds, between emission halvings.
	HalvingPeriod int64 `toml:"HalvingPeriodSeconds"`
	// EpochPeriod is the time, in seconds, for the auction price to decay
	// from the epoch's opening price to zero.
	EpochPeriod int64 `toml:"EpochPeriodSeconds"`
	// PriceMultiplier scales the clearing price into the next epoch's
	// opening price, fixed-point with auction.PricePrecision.
	PriceMultiplier *big.Int `toml:"PriceMultiplier"`
	// MinInitPrice floors the opening price of every epoch.
	MinInitPrice *big.Int `toml:"MinInitPriceWei"`
	// StartTime anchors the halving schedule, unix seconds.
	StartTime int64 `toml:"StartTime"`
}

// Validate checks every constructor bound. The returned error wraps
// ErrInvalidConfig with the offending field.
func (c Config) Validate() error {
	if c.InitialRate == nil || c.InitialRate.Sign() <= 0 {
		return fmt.Errorf("%w: initial rate must be positive", ErrInvalidConfig)
	}
	if c.InitialRate.Cmp(MaxInitialRate) > 0 {
		return fmt.Errorf("%w: initial rate exceeds maximum", ErrInvalidConfig)
	}
	if c.TailRate == nil || c.TailRate.Sign() <= 0 {
		return fmt.Errorf("%w: tail rate must be positive", ErrInvalidConfig)
	}
	if c.TailRate.Cmp(c.InitialRate) > 0 {
		return fmt.Errorf("%w: tail rate must not exceed initial rate", ErrInvalidConfig)
	}
	if c.HalvingPeriod < MinHalvingPeriod {
		return fmt.Errorf("%w: halving period below minimum", ErrInvalidConfig)
	}
	if c.EpochPeriod < MinEpochPeriod || c.EpochPeriod > auction.MaxEpochPeriod {
		return fmt.Errorf("%w: epoch period out of range", ErrInvalidConfig)
	}
	if c.PriceMultiplier == nil || c.PriceMultiplier.Cmp(auction.MinPriceMultiplier) < 0 || c.PriceMultiplier.Cmp(auction.MaxPriceMultiplier) > 0 {
		return fmt.Errorf("%w: price multiplier out of range", ErrInvalidConfig)
	}
	if c.MinInitPrice == nil || c.MinInitPrice.Cmp(auction.AbsMinInitPrice) < 0 || c.MinInitPrice.Cmp(auction.AbsMaxInitPrice) > 0 {
		return fmt.Errorf("%w: minimum init price out of range", ErrInvalidConfig)
	}
	return nil
}

// Clone returns a deep copy of the config.
func (c Config) Clone() Config {
	clone := Config{
		HalvingPeriod: c.HalvingPeriod,
		EpochPeriod:   c.EpochPeriod,
		StartTime:     c.StartTime,
	}
	if c.InitialRate != nil {
		clone.InitialRate = new(big.Int).Set(c.InitialRate)
	}
	if c.TailRate != nil {
		clone.TailRate = new(big.Int).Set(c.TailRate)
	}
	if c.PriceMultiplier != nil {
		clone.PriceMultiplier = new(big.Int).Set(c.PriceMultiplier)
	}
	if c.MinInitPrice != nil {
		clone.MinInitPrice = new(big.Int).Set(c.MinInitPrice)
	}
	return clone
}
