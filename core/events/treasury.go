package events

import (
	"math/big"
	"strings"

	"rignet/core/types"
	"rignet/crypto"
)

const (
	TypeTreasuryBought = "treasury.bought"
)

// TreasuryBought is emitted when a buyer sweeps the treasury auction's asset
// balances in exchange for the burn-bound payment token.
type TreasuryBought struct {
	Buyer    [20]byte
	Receiver [20]byte
	Payment  *big.Int
	EpochID  uint64
	Assets   []string
}

func (TreasuryBought) EventType() string { return TypeTreasuryBought }

func (e TreasuryBought) Event() *types.Event {
	assets := make([]string, 0, len(e.Assets))
	for _, asset := range e.Assets {
		if normalized := normalizeAsset(asset); normalized != "" {
			assets = append(assets, normalized)
		}
	}
	return &types.Event{
		Type: TypeTreasuryBought,
		Attributes: map[string]string{
			"buyer":    crypto.NewAddress(crypto.RigPrefix, e.Buyer[:]).String(),
			"receiver": crypto.NewAddress(crypto.RigPrefix, e.Receiver[:]).String(),
			"payment":  formatAmount(e.Payment),
			"epochId":  uintToString(e.EpochID),
			"assets":   strings.Join(assets, ","),
		},
	}
}
