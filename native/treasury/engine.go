package treasury

import (
	"errors"
	"math/big"
	"strings"
	"time"

	"rignet/core/events"
	"rignet/crypto"
	"rignet/native/auction"
)

var (
	errNilState          = errors.New("treasury auction: state not configured")
	ErrEmptyAssetList    = errors.New("treasury auction: asset list must not be empty")
	ErrInvalidReceiver   = errors.New("treasury auction: receiver must not be the zero address")
	ErrDeadlineExpired   = errors.New("treasury auction: deadline has passed")
	ErrStaleEpoch        = errors.New("treasury auction: expected epoch id does not match current epoch")
	ErrSlippage          = errors.New("treasury auction: current price exceeds max payment")
	ErrInsufficientFunds = errors.New("treasury auction: buyer balance below current price")
)

type engineState interface {
	AuctionState() (*State, error)
	PutAuctionState(*State) error
	TokenBalance(token string, addr crypto.Address) (*big.Int, error)
	TokenTransfer(token string, from, to crypto.Address, amount *big.Int) error
}

// State is the mutable epoch record for the treasury auction.
type State struct {
	EpochID    uint64
	InitPrice  *big.Int
	EpochStart int64
}

// Clone returns a deep copy of the epoch state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	clone := &State{EpochID: s.EpochID, EpochStart: s.EpochStart}
	if s.InitPrice != nil {
		clone.InitPrice = new(big.Int).Set(s.InitPrice)
	}
	return clone
}

// Engine runs the repeating Dutch auction that liquidates the treasury. Each
// epoch it offers the full balances of caller-named assets for a single
// payment in the burn-bound payment token; the payment is forwarded to the
// burn sink and destroyed.
//
// The buyer names the assets to sweep, so any balance the engine happens to
// hold is claimable at the current price, including assets sent to it by
// mistake. That is a documented property of the design, not an oversight, and
// it shares the rig's anti-deadlock posture: once the price decays to zero
// the inventory can be swept for free.
type Engine struct {
	state         engineState
	emitter       events.Emitter
	cfg           Config
	engineAddress crypto.Address
	nowFn         func() int64
}

// NewEngine validates the launch parameters and constructs a treasury auction
// engine. engineAddress is the account whose balances are on sale.
func NewEngine(cfg Config, engineAddress crypto.Address) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if engineAddress.IsZero() {
		return nil, ErrInvalidReceiver
	}
	return &Engine{
		emitter:       events.NoopEmitter{},
		cfg:           cfg.Clone(),
		engineAddress: engineAddress,
		nowFn:         func() int64 { return time.Now().Unix() },
	}, nil
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// Address returns the account holding the auctioned inventory.
func (e *Engine) Address() crypto.Address { return e.engineAddress }

// CurrentPrice returns the payment price at the engine's current time.
func (e *Engine) CurrentPrice() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	st, err := e.ensureState()
	if err != nil {
		return nil, err
	}
	return auction.CurrentPrice(st.InitPrice, st.EpochStart, e.cfg.EpochPeriod, e.now()), nil
}

// Snapshot returns a copy of the current epoch state.
func (e *Engine) Snapshot() (*State, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	st, err := e.ensureState()
	if err != nil {
		return nil, err
	}
	return st.Clone(), nil
}

// Buy pulls the current price in the payment token from caller, forwards it
// to the burn sink, and sweeps the engine's entire balance of every asset in
// assets to receiver. Duplicate entries are harmless: the second sweep finds
// a zero balance and moves nothing. The payment actually made is returned.
func (e *Engine) Buy(caller crypto.Address, assets []string, receiver crypto.Address, expectedEpochID uint64, deadline int64, maxPayment *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if len(assets) == 0 {
		return nil, ErrEmptyAssetList
	}
	if receiver.IsZero() {
		return nil, ErrInvalidReceiver
	}
	now := e.now()
	if now > deadline {
		return nil, ErrDeadlineExpired
	}
	st, err := e.ensureState()
	if err != nil {
		return nil, err
	}
	if expectedEpochID != st.EpochID {
		return nil, ErrStaleEpoch
	}
	price := auction.CurrentPrice(st.InitPrice, st.EpochStart, e.cfg.EpochPeriod, now)
	if price.Sign() > 0 && (maxPayment == nil || price.Cmp(maxPayment) > 0) {
		return nil, ErrSlippage
	}
	if price.Sign() > 0 {
		balance, err := e.state.TokenBalance(e.cfg.PaymentToken, caller)
		if err != nil {
			return nil, err
		}
		if balance == nil || balance.Cmp(price) < 0 {
			return nil, ErrInsufficientFunds
		}
	}

	next := &State{
		EpochID:    st.EpochID + 1,
		InitPrice:  auction.NextInitPrice(price, e.cfg.PriceMultiplier, e.cfg.MinInitPrice),
		EpochStart: now,
	}
	if err := e.state.PutAuctionState(next); err != nil {
		return nil, err
	}

	if price.Sign() > 0 {
		if err := e.state.TokenTransfer(e.cfg.PaymentToken, caller, e.cfg.PaymentReceiver, price); err != nil {
			return nil, err
		}
	}

	swept := make([]string, 0, len(assets))
	for _, asset := range assets {
		token := strings.ToUpper(strings.TrimSpace(asset))
		if token == "" {
			continue
		}
		balance, err := e.state.TokenBalance(token, e.engineAddress)
		if err != nil {
			return nil, err
		}
		if balance == nil || balance.Sign() == 0 {
			continue
		}
		if err := e.state.TokenTransfer(token, e.engineAddress, receiver, balance); err != nil {
			return nil, err
		}
		swept = append(swept, token)
	}

	e.emit(events.TreasuryBought{
		Buyer:    addr20(caller),
		Receiver: addr20(receiver),
		Payment:  new(big.Int).Set(price),
		EpochID:  next.EpochID,
		Assets:   swept,
	})

	return price, nil
}

func (e *Engine) ensureState() (*State, error) {
	st, err := e.state.AuctionState()
	if err != nil {
		return nil, err
	}
	if st != nil {
		return st, nil
	}
	initPrice := e.cfg.MinInitPrice
	if e.cfg.InitPrice != nil {
		initPrice = e.cfg.InitPrice
	}
	st = &State{
		EpochID:    0,
		InitPrice:  new(big.Int).Set(initPrice),
		EpochStart: e.cfg.StartTime,
	}
	if err := e.state.PutAuctionState(st); err != nil {
		return nil, err
	}
	return st, nil
}

func (e *Engine) emit(event events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(event)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func addr20(addr crypto.Address) [20]byte {
	var out [20]byte
	copy(out[:], addr.Bytes())
	return out
}
