package state

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/holiman/uint256"

	"rignet/core/types"
	"rignet/crypto"
	"rignet/native/rig"
	"rignet/native/treasury"
)

// Token symbols with dedicated account fields. Any other symbol lives in the
// auxiliary token table, which is how the treasury auction accumulates
// arbitrary inventory.
const (
	TokenORE  = "ORE"
	TokenFUEL = "FUEL"
)

var (
	errNilAccount      = errors.New("state: nil account")
	errEmptyAddress    = errors.New("state: address must not be empty")
	errEmptySymbol     = errors.New("state: token symbol required")
	errMinterGranted   = errors.New("state: minter capability already granted")
	ErrBalanceOverflow = errors.New("state: balance overflows 256 bits")
)

// Ledger is the in-memory host ledger backing the rig and treasury engines.
// It implements both engines' state interfaces plus the one-way minting
// capability for the emitted token. The host serializes calls per engine
// instance; the ledger's own lock only protects the shared maps.
type Ledger struct {
	mu            sync.RWMutex
	accounts      map[string]*types.Account
	tokens        map[string]map[string]*big.Int
	supply        map[string]*big.Int
	rigState      *rig.State
	auctionState  *treasury.State
	minterGranted bool
}

// NewLedger constructs an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[string]*types.Account),
		tokens:   make(map[string]map[string]*big.Int),
		supply:   make(map[string]*big.Int),
	}
}

func accountKey(addr crypto.Address) string { return string(addr.Bytes()) }

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// --- rig engine state ---

// RigState returns the current rig epoch state, nil before genesis.
func (l *Ledger) RigState() (*rig.State, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rigState.Clone(), nil
}

// PutRigState replaces the rig epoch state.
func (l *Ledger) PutRigState(st *rig.State) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rigState = st.Clone()
	return nil
}

// GetAccount loads the account stored at addr, nil when absent.
func (l *Ledger) GetAccount(addr crypto.Address) (*types.Account, error) {
	if len(addr.Bytes()) == 0 {
		return nil, errEmptyAddress
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	acc, ok := l.accounts[accountKey(addr)]
	if !ok {
		return nil, nil
	}
	clone := &types.Account{Nonce: acc.Nonce}
	if acc.BalanceORE != nil {
		clone.BalanceORE = new(big.Int).Set(acc.BalanceORE)
	}
	if acc.BalanceFUEL != nil {
		clone.BalanceFUEL = new(big.Int).Set(acc.BalanceFUEL)
	}
	clone.EnsureDefaults()
	return clone, nil
}

// PutAccount persists the provided account state under the supplied address.
// Balances must fit the 256-bit width of the host ledger.
func (l *Ledger) PutAccount(addr crypto.Address, account *types.Account) error {
	if len(addr.Bytes()) == 0 {
		return errEmptyAddress
	}
	if account == nil {
		return errNilAccount
	}
	account.EnsureDefaults()
	if account.BalanceORE.Sign() < 0 || account.BalanceFUEL.Sign() < 0 {
		return fmt.Errorf("state: negative balance for %s", addr.String())
	}
	if _, overflow := uint256.FromBig(account.BalanceORE); overflow {
		return ErrBalanceOverflow
	}
	if _, overflow := uint256.FromBig(account.BalanceFUEL); overflow {
		return ErrBalanceOverflow
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[accountKey(addr)] = &types.Account{
		Nonce:       account.Nonce,
		BalanceORE:  new(big.Int).Set(account.BalanceORE),
		BalanceFUEL: new(big.Int).Set(account.BalanceFUEL),
	}
	return nil
}

// --- treasury auction state ---

// AuctionState returns the current auction epoch state, nil before genesis.
func (l *Ledger) AuctionState() (*treasury.State, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.auctionState.Clone(), nil
}

// PutAuctionState replaces the auction epoch state.
func (l *Ledger) PutAuctionState(st *treasury.State) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.auctionState = st.Clone()
	return nil
}

// TokenBalance returns addr's balance of the named token. Missing entries
// default to zero.
func (l *Ledger) TokenBalance(token string, addr crypto.Address) (*big.Int, error) {
	symbol := normalizeSymbol(token)
	if symbol == "" {
		return nil, errEmptySymbol
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceLocked(symbol, addr), nil
}

func (l *Ledger) balanceLocked(symbol string, addr crypto.Address) *big.Int {
	key := accountKey(addr)
	switch symbol {
	case TokenORE:
		if acc, ok := l.accounts[key]; ok && acc.BalanceORE != nil {
			return new(big.Int).Set(acc.BalanceORE)
		}
	case TokenFUEL:
		if acc, ok := l.accounts[key]; ok && acc.BalanceFUEL != nil {
			return new(big.Int).Set(acc.BalanceFUEL)
		}
	default:
		if balances, ok := l.tokens[symbol]; ok {
			if balance, ok := balances[key]; ok {
				return new(big.Int).Set(balance)
			}
		}
	}
	return big.NewInt(0)
}

func (l *Ledger) setBalanceLocked(symbol string, addr crypto.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("state: negative %s balance for %s", symbol, addr.String())
	}
	if _, overflow := uint256.FromBig(amount); overflow {
		return ErrBalanceOverflow
	}
	key := accountKey(addr)
	switch symbol {
	case TokenORE, TokenFUEL:
		acc, ok := l.accounts[key]
		if !ok {
			acc = &types.Account{}
			l.accounts[key] = acc
		}
		acc.EnsureDefaults()
		if symbol == TokenORE {
			acc.BalanceORE = new(big.Int).Set(amount)
		} else {
			acc.BalanceFUEL = new(big.Int).Set(amount)
		}
	default:
		balances, ok := l.tokens[symbol]
		if !ok {
			balances = make(map[string]*big.Int)
			l.tokens[symbol] = balances
		}
		balances[key] = new(big.Int).Set(amount)
	}
	return nil
}

// TokenTransfer moves amount of the named token between accounts with
// all-or-nothing semantics. Zero transfers are no-ops.
func (l *Ledger) TokenTransfer(token string, from, to crypto.Address, amount *big.Int) error {
	symbol := normalizeSymbol(token)
	if symbol == "" {
		return errEmptySymbol
	}
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("state: negative %s transfer", symbol)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fromBalance := l.balanceLocked(symbol, from)
	if fromBalance.Cmp(amount) < 0 {
		return fmt.Errorf("state: insufficient %s balance for %s", symbol, from.String())
	}
	toBalance := l.balanceLocked(symbol, to)
	if err := l.setBalanceLocked(symbol, from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	return l.setBalanceLocked(symbol, to, new(big.Int).Add(toBalance, amount))
}

// TokenSupply returns the tracked total supply for the provided token.
func (l *Ledger) TokenSupply(symbol string) (*big.Int, error) {
	normalized := normalizeSymbol(symbol)
	if normalized == "" {
		return nil, errEmptySymbol
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if total, ok := l.supply[normalized]; ok {
		return new(big.Int).Set(total), nil
	}
	return big.NewInt(0), nil
}

// Credit increases addr's balance of the named token without touching total
// supply. Intended for genesis funding and for seeding the treasury
// auction's inventory in tests and simulations.
func (l *Ledger) Credit(token string, addr crypto.Address, amount *big.Int) error {
	symbol := normalizeSymbol(token)
	if symbol == "" {
		return errEmptySymbol
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	balance := l.balanceLocked(symbol, addr)
	return l.setBalanceLocked(symbol, addr, new(big.Int).Add(balance, amount))
}

// --- mint capability ---

type minterGrant struct {
	ledger *Ledger
}

// Mint credits the emitted token to the recipient and grows total supply.
func (g minterGrant) Mint(to crypto.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	l := g.ledger
	l.mu.Lock()
	defer l.mu.Unlock()
	balance := l.balanceLocked(TokenORE, to)
	if err := l.setBalanceLocked(TokenORE, to, new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	total, ok := l.supply[TokenORE]
	if !ok {
		total = big.NewInt(0)
	}
	l.supply[TokenORE] = new(big.Int).Add(total, amount)
	return nil
}

// GrantMinter hands out the emitted token's minting capability. The grant is
// one-way: it succeeds exactly once for the ledger's lifetime, so only the
// engine launched with it can ever mint.
func (l *Ledger) GrantMinter() (rig.Minter, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.minterGranted {
		return nil, errMinterGranted
	}
	l.minterGranted = true
	return minterGrant{ledger: l}, nil
}
