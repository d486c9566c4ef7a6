package rig

import (
	"errors"
	"math/big"
	"time"

	"rignet/core/events"
	"rignet/core/types"
	"rignet/crypto"
	"rignet/native/auction"
	nativecommon "rignet/native/common"
)

var (
	errNilState          = errors.New("rig engine: state not configured")
	errNilMinter         = errors.New("rig engine: minter capability not configured")
	errNilTreasury       = errors.New("rig engine: treasury address not configured")
	errNilInitialHolder  = errors.New("rig engine: initial holder not configured")
	ErrInvalidRecipient  = errors.New("rig engine: recipient must not be the zero address")
	ErrDeadlineExpired   = errors.New("rig engine: deadline has passed")
	ErrStaleEpoch        = errors.New("rig engine: expected epoch id does not match current epoch")
	ErrSlippage          = errors.New("rig engine: current price exceeds max price")
	ErrInsufficientFunds = errors.New("rig engine: caller balance below current price")
)

type engineState interface {
	RigState() (*State, error)
	PutRigState(*State) error
	GetAccount(addr crypto.Address) (*types.Account, error)
	PutAccount(addr crypto.Address, account *types.Account) error
}

// Minter is the one-way minting capability granted to exactly one engine by
// the token ledger. Once granted it must not be reachable from any other
// caller.
type Minter interface {
	Mint(to crypto.Address, amount *big.Int) error
}

// ProtocolFeeSource resolves the protocol fee recipient. It is consulted
// fresh on every mine call rather than cached, so a registry update takes
// effect immediately. A false return disables the protocol share.
type ProtocolFeeSource interface {
	ProtocolFeeAddress() (crypto.Address, bool)
}

// Engine is the mining state machine. Each epoch it runs a linear Dutch
// auction for the right to hold the rig; the clearing price funds the
// displaced holder and the emission they accrued is minted to them on the way
// out.
//
// Once the auction price decays to zero the rig can be taken over for free by
// anyone. That is deliberate: it guarantees the machine can never deadlock
// from inactivity, at the cost of allowing a zero-cost takeover after
// prolonged idling.
type Engine struct {
	state         engineState
	emitter       events.Emitter
	minter        Minter
	protocolFees  ProtocolFeeSource
	owner         *nativecommon.Capability
	cfg           Config
	initialHolder crypto.Address
	treasury      crypto.Address
	team          crypto.Address
	nowFn         func() int64
}

// NewEngine validates the launch parameters and constructs a rig engine. The
// initial holder occupies epoch 0 at the configured minimum init price; the
// treasury address receives the residual fee share and owner holds the
// capability guarding the mutable fee addresses.
func NewEngine(cfg Config, owner, initialHolder, treasury crypto.Address) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if initialHolder.IsZero() {
		return nil, errNilInitialHolder
	}
	if treasury.IsZero() {
		return nil, errNilTreasury
	}
	capability, err := nativecommon.NewCapability(owner)
	if err != nil {
		return nil, err
	}
	return &Engine{
		emitter:       events.NoopEmitter{},
		owner:         capability,
		cfg:           cfg.Clone(),
		initialHolder: initialHolder,
		treasury:      treasury,
		nowFn:         func() int64 { return time.Now().Unix() },
	}, nil
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetMinter installs the minting capability for the emitted token.
func (e *Engine) SetMinter(minter Minter) {
	if e == nil {
		return
	}
	e.minter = minter
}

// SetProtocolFeeSource wires the registry consulted for the protocol fee
// address. Passing nil disables the protocol share.
func (e *Engine) SetProtocolFeeSource(source ProtocolFeeSource) {
	if e == nil {
		return
	}
	e.protocolFees = source
}

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

// Owner returns the current capability holder.
func (e *Engine) Owner() crypto.Address { return e.owner.Holder() }

// TransferOwnership hands the configuration capability to a successor.
func (e *Engine) TransferOwnership(caller, next crypto.Address) error {
	return e.owner.Transfer(caller, next)
}

// SetTreasuryAddress updates the treasury fee recipient. Only the capability
// holder may call, and the treasury can never be cleared.
func (e *Engine) SetTreasuryAddress(caller, addr crypto.Address) error {
	if err := e.owner.Authorize(caller); err != nil {
		return err
	}
	if addr.IsZero() {
		return errNilTreasury
	}
	e.treasury = addr
	return nil
}

// SetTeamAddress updates the optional team fee recipient. A zero address
// clears it, folding the team share into the treasury.
func (e *Engine) SetTeamAddress(caller, addr crypto.Address) error {
	if err := e.owner.Authorize(caller); err != nil {
		return err
	}
	e.team = addr
	return nil
}

// TreasuryAddress returns the current treasury fee recipient.
func (e *Engine) TreasuryAddress() crypto.Address { return e.treasury }

// CurrentPrice returns the auction price at the engine's current time.
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

// Mine transfers the rig to recipient at the current auction price. The
// payment is pulled from caller and split between the outgoing holder, the
// treasury, and the optional team and protocol recipients; the emission the
// outgoing holder accrued since the epoch opened is minted to them even when
// the price has decayed to zero. The price actually paid is returned.
//
// The epoch rollover is persisted before any balance movement, so a transfer
// recipient observing the call mid-flight already sees the next epoch.
func (e *Engine) Mine(caller, recipient crypto.Address, expectedEpochID uint64, deadline int64, maxPrice *big.Int, metadata string) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if recipient.IsZero() {
		return nil, ErrInvalidRecipient
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
	if price.Sign() > 0 && (maxPrice == nil || price.Cmp(maxPrice) > 0) {
		return nil, ErrSlippage
	}

	minted := big.NewInt(0)
	if elapsed := now - st.EpochStart; elapsed > 0 && st.Rate != nil {
		minted.Mul(big.NewInt(elapsed), st.Rate)
	}
	if minted.Sign() > 0 && e.minter == nil {
		return nil, errNilMinter
	}

	var split FeeSplit
	protocolAddr := crypto.Address{}
	if price.Sign() > 0 {
		callerAcc, err := e.state.GetAccount(caller)
		if err != nil {
			return nil, err
		}
		if callerAcc == nil || callerAcc.BalanceFUEL == nil || callerAcc.BalanceFUEL.Cmp(price) < 0 {
			return nil, ErrInsufficientFunds
		}
		// The protocol fee address is resolved at call time, never cached.
		protocolEnabled := false
		if e.protocolFees != nil {
			if addr, ok := e.protocolFees.ProtocolFeeAddress(); ok && !addr.IsZero() {
				protocolAddr = addr
				protocolEnabled = true
			}
		}
		split = SplitPayment(price, !e.team.IsZero(), protocolEnabled)
	}

	previousHolder := st.Holder
	settledEpoch := st.EpochID

	next := &State{
		EpochID:    st.EpochID + 1,
		InitPrice:  auction.NextInitPrice(price, e.cfg.PriceMultiplier, e.cfg.MinInitPrice),
		EpochStart: now,
		Rate:       EmissionRate(e.cfg.InitialRate, e.cfg.TailRate, e.cfg.HalvingPeriod, e.cfg.StartTime, now),
		Holder:     recipient,
		Metadata:   metadata,
	}
	if err := e.state.PutRigState(next); err != nil {
		return nil, err
	}

	if price.Sign() > 0 {
		if err := e.debit(caller, price); err != nil {
			return nil, err
		}
		if err := e.disburse(events.FeeRolePreviousHolder, previousHolder, split.PreviousHolder, settledEpoch); err != nil {
			return nil, err
		}
		if err := e.disburse(events.FeeRoleTreasury, e.treasury, split.Treasury, settledEpoch); err != nil {
			return nil, err
		}
		if err := e.disburse(events.FeeRoleTeam, e.team, split.Team, settledEpoch); err != nil {
			return nil, err
		}
		if err := e.disburse(events.FeeRoleProtocol, protocolAddr, split.Protocol, settledEpoch); err != nil {
			return nil, err
		}
	}

	if minted.Sign() > 0 {
		if err := e.minter.Mint(previousHolder, minted); err != nil {
			return nil, err
		}
		e.emit(events.RigMinted{
			Holder:  addr20(previousHolder),
			Amount:  new(big.Int).Set(minted),
			EpochID: settledEpoch,
		})
	}

	e.emit(events.RigTransferred{
		Actor:     addr20(caller),
		NewHolder: addr20(recipient),
		Price:     new(big.Int).Set(price),
		EpochID:   next.EpochID,
		Metadata:  metadata,
	})

	return price, nil
}

func (e *Engine) ensureState() (*State, error) {
	st, err := e.state.RigState()
	if err != nil {
		return nil, err
	}
	if st != nil {
		return st, nil
	}
	st = &State{
		EpochID:    0,
		InitPrice:  new(big.Int).Set(e.cfg.MinInitPrice),
		EpochStart: e.cfg.StartTime,
		Rate:       EmissionRate(e.cfg.InitialRate, e.cfg.TailRate, e.cfg.HalvingPeriod, e.cfg.StartTime, e.cfg.StartTime),
		Holder:     e.initialHolder,
	}
	if err := e.state.PutRigState(st); err != nil {
		return nil, err
	}
	return st, nil
}

func (e *Engine) debit(addr crypto.Address, amount *big.Int) error {
	acc, err := e.state.GetAccount(addr)
	if err != nil {
		return err
	}
	if acc == nil {
		return ErrInsufficientFunds
	}
	acc.EnsureDefaults()
	if acc.BalanceFUEL.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	acc.BalanceFUEL = new(big.Int).Sub(acc.BalanceFUEL, amount)
	return e.state.PutAccount(addr, acc)
}

func (e *Engine) disburse(role string, addr crypto.Address, amount *big.Int, epochID uint64) error {
	if amount == nil || amount.Sign() == 0 || addr.IsZero() {
		return nil
	}
	acc, err := e.state.GetAccount(addr)
	if err != nil {
		return err
	}
	if acc == nil {
		acc = &types.Account{}
	}
	acc.EnsureDefaults()
	acc.BalanceFUEL = new(big.Int).Add(acc.BalanceFUEL, amount)
	if err := e.state.PutAccount(addr, acc); err != nil {
		return err
	}
	e.emit(events.RigFeePaid{
		Role:      role,
		Recipient: addr20(addr),
		Amount:    new(big.Int).Set(amount),
		EpochID:   epochID,
	})
	return nil
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
