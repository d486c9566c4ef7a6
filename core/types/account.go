package types

import "math/big"

// Account tracks the balances held by a single rignet address. Amounts are
// denominated in the asset's smallest unit and expressed as big integers to
// match on-chain precision.
type Account struct {
	Nonce uint64 `json:"nonce"`
	// BalanceORE is the emitted mining token credited to rig holders.
	BalanceORE *big.Int `json:"balanceORE"`
	// BalanceFUEL is the payment asset pulled from miners when an epoch is
	// taken over.
	BalanceFUEL *big.Int `json:"balanceFUEL"`
}

// EnsureDefaults populates nil big.Int fields so callers can mutate balances
// without nil checks.
func (a *Account) EnsureDefaults() {
	if a.BalanceORE == nil {
		a.BalanceORE = big.NewInt(0)
	}
	if a.BalanceFUEL == nil {
		a.BalanceFUEL = big.NewInt(0)
	}
}
