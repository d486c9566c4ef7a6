package treasury

import (
	"errors"
	"math/big"
	"testing"

	"rignet/core/events"
	"rignet/crypto"
)

type mockAuctionState struct {
	auctionState *State
	balances     map[string]map[string]*big.Int
}

func newMockAuctionState() *mockAuctionState {
	return &mockAuctionState{balances: make(map[string]map[string]*big.Int)}
}

func (m *mockAuctionState) AuctionState() (*State, error) { return m.auctionState, nil }

func (m *mockAuctionState) PutAuctionState(st *State) error {
	m.auctionState = st
	return nil
}

func (m *mockAuctionState) TokenBalance(token string, addr crypto.Address) (*big.Int, error) {
	if holders, ok := m.balances[token]; ok {
		if balance, ok := holders[string(addr.Bytes())]; ok {
			return new(big.Int).Set(balance), nil
		}
	}
	return big.NewInt(0), nil
}

func (m *mockAuctionState) TokenTransfer(token string, from, to crypto.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	holders, ok := m.balances[token]
	if !ok {
		return errors.New("mock: unknown token")
	}
	fromKey := string(from.Bytes())
	balance, ok := holders[fromKey]
	if !ok || balance.Cmp(amount) < 0 {
		return errors.New("mock: insufficient balance")
	}
	holders[fromKey] = new(big.Int).Sub(balance, amount)
	toKey := string(to.Bytes())
	current, ok := holders[toKey]
	if !ok {
		current = big.NewInt(0)
	}
	holders[toKey] = new(big.Int).Add(current, amount)
	return nil
}

func (m *mockAuctionState) setBalance(token string, addr crypto.Address, amount int64) {
	holders, ok := m.balances[token]
	if !ok {
		holders = make(map[string]*big.Int)
		m.balances[token] = holders
	}
	holders[string(addr.Bytes())] = big.NewInt(amount)
}

func (m *mockAuctionState) balance(token string, addr crypto.Address) *big.Int {
	if holders, ok := m.balances[token]; ok {
		if balance, ok := holders[string(addr.Bytes())]; ok {
			return balance
		}
	}
	return big.NewInt(0)
}

type captureEmitter struct {
	events []events.Event
}

func (c *captureEmitter) Emit(event events.Event) { c.events = append(c.events, event) }

func makeAddress(suffix byte) crypto.Address {
	raw := make([]byte, 20)
	raw[len(raw)-1] = suffix
	return crypto.NewAddress(crypto.RigPrefix, raw)
}

var (
	testEngineAddr = makeAddress(0xaa)
	testBurnSink   = makeAddress(0xbb)
	testBuyer      = makeAddress(0x01)
	testReceiver   = makeAddress(0x02)
)

func testConfig() Config {
	return Config{
		EpochPeriod:     7_200,
		PriceMultiplier: big.NewInt(2_000_000_000_000_000_000),
		MinInitPrice:    big.NewInt(1_000_000),
		StartTime:       0,
		PaymentToken:    "LPR",
		PaymentReceiver: testBurnSink,
	}
}

func newTestEngine(t *testing.T) (*Engine, *mockAuctionState, *int64) {
	t.Helper()
	engine, err := NewEngine(testConfig(), testEngineAddr)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	state := newMockAuctionState()
	engine.SetState(state)
	now := new(int64)
	engine.SetNowFunc(func() int64 { return *now })
	return engine, state, now
}

func TestBuySweepsNamedAssets(t *testing.T) {
	engine, state, now := newTestEngine(t)
	emitter := &captureEmitter{}
	engine.SetEmitter(emitter)
	state.setBalance("LPR", testBuyer, 1_000_000)
	state.setBalance("FUEL", testEngineAddr, 40_000)
	state.setBalance("WETH", testEngineAddr, 7)
	state.setBalance("USDC", testEngineAddr, 0)

	*now = 3_600 // half the epoch elapsed: price 500000
	paid, err := engine.Buy(testBuyer, []string{"fuel", "WETH", "usdc"}, testReceiver, 0, 4_000, big.NewInt(500_000))
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if paid.Cmp(big.NewInt(500_000)) != 0 {
		t.Fatalf("payment: got %s want 500000", paid)
	}

	// Payment lands in the burn sink.
	if got := state.balance("LPR", testBurnSink); got.Cmp(big.NewInt(500_000)) != 0 {
		t.Fatalf("burn sink: got %s want 500000", got)
	}
	if got := state.balance("LPR", testBuyer); got.Cmp(big.NewInt(500_000)) != 0 {
		t.Fatalf("buyer change: got %s want 500000", got)
	}
	// The full inventory of each named asset moves to the receiver.
	if got := state.balance("FUEL", testReceiver); got.Cmp(big.NewInt(40_000)) != 0 {
		t.Fatalf("swept fuel: got %s want 40000", got)
	}
	if got := state.balance("WETH", testReceiver); got.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("swept weth: got %s want 7", got)
	}
	if got := state.balance("FUEL", testEngineAddr); got.Sign() != 0 {
		t.Fatalf("engine kept fuel: %s", got)
	}

	st := state.auctionState
	if st.EpochID != 1 {
		t.Fatalf("epoch id: got %d want 1", st.EpochID)
	}
	if st.EpochStart != 3_600 {
		t.Fatalf("epoch start: got %d want 3600", st.EpochStart)
	}
	if st.InitPrice.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("next init price: got %s want 1000000", st.InitPrice)
	}

	if len(emitter.events) != 1 {
		t.Fatalf("expected one event, got %d", len(emitter.events))
	}
	bought, ok := emitter.events[0].(events.TreasuryBought)
	if !ok {
		t.Fatalf("unexpected event type %T", emitter.events[0])
	}
	// The zero-balance asset is dropped from the swept list.
	if len(bought.Assets) != 2 || bought.Assets[0] != "FUEL" || bought.Assets[1] != "WETH" {
		t.Fatalf("swept assets: %v", bought.Assets)
	}
}

func TestBuyDuplicateAssetIsHarmless(t *testing.T) {
	engine, state, now := newTestEngine(t)
	state.setBalance("LPR", testBuyer, 1_000_000)
	state.setBalance("FUEL", testEngineAddr, 40_000)

	*now = 3_600
	if _, err := engine.Buy(testBuyer, []string{"FUEL", "FUEL"}, testReceiver, 0, 4_000, big.NewInt(500_000)); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if got := state.balance("FUEL", testReceiver); got.Cmp(big.NewInt(40_000)) != 0 {
		t.Fatalf("swept fuel: got %s want 40000", got)
	}
}

func TestBuyPreconditions(t *testing.T) {
	engine, state, now := newTestEngine(t)
	state.setBalance("LPR", testBuyer, 1_000_000)

	*now = 3_600
	if _, err := engine.Buy(testBuyer, nil, testReceiver, 0, 4_000, big.NewInt(500_000)); !errors.Is(err, ErrEmptyAssetList) {
		t.Fatalf("expected empty asset list error, got %v", err)
	}
	if _, err := engine.Buy(testBuyer, []string{"FUEL"}, crypto.Address{}, 0, 4_000, big.NewInt(500_000)); !errors.Is(err, ErrInvalidReceiver) {
		t.Fatalf("expected receiver error, got %v", err)
	}
	if _, err := engine.Buy(testBuyer, []string{"FUEL"}, testReceiver, 0, 3_599, big.NewInt(500_000)); !errors.Is(err, ErrDeadlineExpired) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if _, err := engine.Buy(testBuyer, []string{"FUEL"}, testReceiver, 7, 4_000, big.NewInt(500_000)); !errors.Is(err, ErrStaleEpoch) {
		t.Fatalf("expected stale epoch error, got %v", err)
	}
	if _, err := engine.Buy(testBuyer, []string{"FUEL"}, testReceiver, 0, 4_000, big.NewInt(499_999)); !errors.Is(err, ErrSlippage) {
		t.Fatalf("expected slippage error, got %v", err)
	}
	if state.auctionState.EpochID != 0 {
		t.Fatalf("epoch advanced by failed buys")
	}
}

func TestBuyInsufficientFunds(t *testing.T) {
	engine, state, now := newTestEngine(t)
	state.setBalance("LPR", testBuyer, 100)
	state.setBalance("FUEL", testEngineAddr, 40_000)

	*now = 3_600
	_, err := engine.Buy(testBuyer, []string{"FUEL"}, testReceiver, 0, 4_000, big.NewInt(500_000))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if got := state.balance("FUEL", testEngineAddr); got.Cmp(big.NewInt(40_000)) != 0 {
		t.Fatalf("inventory moved on failed buy: %s", got)
	}
}

func TestBuyFreeSweepAfterExpiry(t *testing.T) {
	engine, state, now := newTestEngine(t)
	state.setBalance("FUEL", testEngineAddr, 40_000)

	// The buyer holds no payment token at all; after full decay none is
	// needed.
	*now = 10_000
	paid, err := engine.Buy(testBuyer, []string{"FUEL"}, testReceiver, 0, 11_000, big.NewInt(0))
	if err != nil {
		t.Fatalf("free sweep: %v", err)
	}
	if paid.Sign() != 0 {
		t.Fatalf("expected free sweep, paid %s", paid)
	}
	if got := state.balance("FUEL", testReceiver); got.Cmp(big.NewInt(40_000)) != 0 {
		t.Fatalf("swept fuel: got %s want 40000", got)
	}
	if got := state.balance("LPR", testBurnSink); got.Sign() != 0 {
		t.Fatalf("burn sink credited on a free sweep: %s", got)
	}
	// The next epoch reopens at the floor price.
	if state.auctionState.InitPrice.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("next init price: got %s want 1000000", state.auctionState.InitPrice)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := testConfig()
	cfg.EpochPeriod = 60 // below the one hour floor
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected config error, got %v", err)
	}

	cfg = testConfig()
	cfg.PaymentToken = "  "
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected config error, got %v", err)
	}

	cfg = testConfig()
	cfg.InitPrice = big.NewInt(1) // below the configured minimum
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected config error, got %v", err)
	}

	cfg = testConfig()
	cfg.PaymentReceiver = crypto.Address{}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}
