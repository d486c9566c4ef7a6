package treasury

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"rignet/crypto"
	"rignet/native/auction"
)

// ErrInvalidConfig wraps every constructor bounds violation.
var ErrInvalidConfig = errors.New("treasury auction: invalid config")

// MinEpochPeriod is the shortest permitted auction epoch, in seconds. The
// treasury auction turns over far less often than the rig, so its floor is an
// hour rather than ten minutes.
const MinEpochPeriod int64 = 60 * 60

// Config captures the immutable parameters fixed when a treasury auction is
// launched.
type Config struct {
	// EpochPeriod is the time, in seconds, for the payment price to decay
	// from the epoch's opening price to zero.
	EpochPeriod int64 `toml:"EpochPeriodSeconds"`
	// PriceMultiplier scales the clearing payment into the next epoch's
	// opening price, fixed-point with auction.PricePrecision.
	PriceMultiplier *big.Int `toml:"PriceMultiplier"`
	// MinInitPrice floors the opening price of every epoch.
	MinInitPrice *big.Int `toml:"MinInitPriceWei"`
	// InitPrice optionally seeds the launch epoch's opening price; when nil
	// the launch epoch opens at MinInitPrice.
	InitPrice *big.Int `toml:"InitPriceWei"`
	// StartTime is when the launch epoch opens, unix seconds.
	StartTime int64 `toml:"StartTime"`
	// PaymentToken is the burn-bound asset buyers pay with. At launch this
	// is the permanently-locked liquidity pool receipt.
	PaymentToken string `toml:"PaymentToken"`
	// PaymentReceiver is the burn sink every payment is forwarded to.
	PaymentReceiver crypto.Address `toml:"-"`
}

// Validate checks every constructor bound.
func (c Config) Validate() error {
	if c.EpochPeriod < MinEpochPeriod || c.EpochPeriod > auction.MaxEpochPeriod {
		return fmt.Errorf("%w: epoch period out of range", ErrInvalidConfig)
	}
	if c.PriceMultiplier == nil || c.PriceMultiplier.Cmp(auction.MinPriceMultiplier) < 0 || c.PriceMultiplier.Cmp(auction.MaxPriceMultiplier) > 0 {
		return fmt.Errorf("%w: price multiplier out of range", ErrInvalidConfig)
	}
	if c.MinInitPrice == nil || c.MinInitPrice.Cmp(auction.AbsMinInitPrice) < 0 || c.MinInitPrice.Cmp(auction.AbsMaxInitPrice) > 0 {
		return fmt.Errorf("%w: minimum init price out of range", ErrInvalidConfig)
	}
	if c.InitPrice != nil && (c.InitPrice.Cmp(c.MinInitPrice) < 0 || c.InitPrice.Cmp(auction.AbsMaxInitPrice) > 0) {
		return fmt.Errorf("%w: init price out of range", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.PaymentToken) == "" {
		return fmt.Errorf("%w: payment token required", ErrInvalidConfig)
	}
	if c.PaymentReceiver.IsZero() {
		return fmt.Errorf("%w: payment receiver required", ErrInvalidConfig)
	}
	return nil
}

// Clone returns a deep copy of the config.
func (c Config) Clone() Config {
	clone := Config{
		EpochPeriod:     c.EpochPeriod,
		StartTime:       c.StartTime,
		PaymentToken:    c.PaymentToken,
		PaymentReceiver: c.PaymentReceiver,
	}
	if c.PriceMultiplier != nil {
		clone.PriceMultiplier = new(big.Int).Set(c.PriceMultiplier)
	}
	if c.MinInitPrice != nil {
		clone.MinInitPrice = new(big.Int).Set(c.MinInitPrice)
	}
	if c.InitPrice != nil {
		clone.InitPrice = new(big.Int).Set(c.InitPrice)
	}
	return clone
}
