package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rignet/config"
	"rignet/core/events"
	"rignet/core/state"
	"rignet/core/types"
	"rignet/crypto"
	"rignet/native/rig"
	"rignet/native/treasury"
	"rignet/observability"
	"rignet/observability/logging"
)

// logEmitter forwards engine events to the structured log and the metrics
// registry.
type logEmitter struct {
	logger  *slog.Logger
	metrics *observability.EngineMetrics
}

type renderable interface {
	Event() *types.Event
}

func (e logEmitter) Emit(event events.Event) {
	switch ev := event.(type) {
	case events.RigFeePaid:
		e.metrics.ObserveFee(ev.Role, ev.Amount)
	case events.RigMinted:
		e.metrics.ObserveEmission(ev.Amount)
	}
	if typed, ok := event.(renderable); ok {
		rendered := typed.Event()
		attrs := make([]any, 0, 2*len(rendered.Attributes))
		for key, value := range rendered.Attributes {
			attrs = append(attrs, slog.String(key, value))
		}
		e.logger.Info(rendered.Type, attrs...)
		return
	}
	e.logger.Info(event.EventType())
}

// staticFeeSource resolves the protocol fee address from daemon config.
type staticFeeSource struct {
	addr crypto.Address
}

func (s staticFeeSource) ProtocolFeeAddress() (crypto.Address, bool) {
	if s.addr.IsZero() {
		return crypto.Address{}, false
	}
	return s.addr, true
}

// simClock is the deterministic time source stepped by scenario entries.
type simClock struct {
	base   int64
	offset atomic.Int64
}

func (c *simClock) now() int64 { return c.base + c.offset.Load() }

func main() {
	configPath := flag.String("config", "config.toml", "path to the daemon TOML config")
	scenarioPath := flag.String("scenario", "", "override the scenario file from config")
	flag.Parse()

	if err := run(*configPath, *scenarioPath); err != nil {
		fmt.Fprintf(os.Stderr, "rigsimd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, scenarioPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.Setup("rigsimd", cfg.Env, logging.ParseLevel(cfg.LogLevel))

	if scenarioPath == "" {
		scenarioPath = cfg.ScenarioFile
	}
	scenario, err := LoadScenario(scenarioPath)
	if err != nil {
		return err
	}

	metrics := observability.Metrics()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddress, mux); err != nil {
			logger.Error("metrics listener stopped", slog.String("error", err.Error()))
		}
	}()

	ledger := state.NewLedger()

	ownerKey, err := crypto.GeneratePrivateKey()
	if err != nil {
		return fmt.Errorf("generate owner key: %w", err)
	}
	owner := ownerKey.PubKey().Address()

	auctionKey, err := crypto.GeneratePrivateKey()
	if err != nil {
		return fmt.Errorf("generate auction key: %w", err)
	}
	auctionAddr := auctionKey.PubKey().Address()

	burnKey, err := crypto.GeneratePrivateKey()
	if err != nil {
		return fmt.Errorf("generate burn sink key: %w", err)
	}
	burnAddr := burnKey.PubKey().Address()

	if cfg.Rig.StartTime == 0 {
		cfg.Rig.StartTime = time.Now().Unix()
	}
	if cfg.Treasury.StartTime == 0 {
		cfg.Treasury.StartTime = cfg.Rig.StartTime
	}
	cfg.Treasury.PaymentReceiver = burnAddr

	clock := &simClock{base: cfg.Rig.StartTime}
	emitter := logEmitter{logger: logger, metrics: metrics}

	rigEngine, err := rig.NewEngine(cfg.Rig, owner, owner, auctionAddr)
	if err != nil {
		return err
	}
	rigEngine.SetState(ledger)
	rigEngine.SetEmitter(emitter)
	rigEngine.SetNowFunc(clock.now)
	minter, err := ledger.GrantMinter()
	if err != nil {
		return err
	}
	rigEngine.SetMinter(minter)
	if addr := strings.TrimSpace(cfg.ProtocolFeeAddress); addr != "" {
		protocolAddr, err := crypto.DecodeAddress(addr)
		if err != nil {
			return fmt.Errorf("protocol fee address: %w", err)
		}
		rigEngine.SetProtocolFeeSource(staticFeeSource{addr: protocolAddr})
	}
	if addr := strings.TrimSpace(cfg.TeamAddress); addr != "" {
		teamAddr, err := crypto.DecodeAddress(addr)
		if err != nil {
			return fmt.Errorf("team address: %w", err)
		}
		if err := rigEngine.SetTeamAddress(owner, teamAddr); err != nil {
			return err
		}
	}

	auctionEngine, err := treasury.NewEngine(cfg.Treasury, auctionAddr)
	if err != nil {
		return err
	}
	auctionEngine.SetState(ledger)
	auctionEngine.SetEmitter(emitter)
	auctionEngine.SetNowFunc(clock.now)

	actors := make(map[string]crypto.Address, len(scenario.Actors))
	for _, actor := range scenario.Actors {
		key, err := crypto.GeneratePrivateKey()
		if err != nil {
			return fmt.Errorf("generate actor key: %w", err)
		}
		addr := key.PubKey().Address()
		actors[actor.Name] = addr
		if fuel, err := parseWei(actor.FuelWei); err != nil {
			return fmt.Errorf("actor %s: %w", actor.Name, err)
		} else if fuel != nil {
			if err := ledger.Credit(state.TokenFUEL, addr, fuel); err != nil {
				return err
			}
		}
		if lpr, err := parseWei(actor.LPRWei); err != nil {
			return fmt.Errorf("actor %s: %w", actor.Name, err)
		} else if lpr != nil {
			if err := ledger.Credit(cfg.Treasury.PaymentToken, addr, lpr); err != nil {
				return err
			}
		}
		logger.Info("actor funded",
			slog.String("actor", actor.Name),
			slog.String("address", addr.String()),
		)
	}

	for _, step := range scenario.Steps {
		clock.offset.Store(step.At)
		actor := actors[strings.TrimSpace(step.Actor)]
		switch step.Action {
		case actionMine:
			if err := runMine(logger, metrics, rigEngine, step, actor, actors, clock); err != nil {
				logger.Warn("mine rejected",
					slog.Int64("at", step.At),
					slog.String("actor", step.Actor),
					slog.String("error", err.Error()),
				)
			}
		case actionBuy:
			if err := runBuy(logger, metrics, auctionEngine, step, actor, actors, clock); err != nil {
				logger.Warn("buy rejected",
					slog.Int64("at", step.At),
					slog.String("actor", step.Actor),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	supply, err := ledger.TokenSupply(state.TokenORE)
	if err != nil {
		return err
	}
	logger.Info("scenario complete",
		slog.Int("steps", len(scenario.Steps)),
		slog.String("oreSupply", supply.String()),
	)
	return nil
}

func runMine(logger *slog.Logger, metrics *observability.EngineMetrics, engine *rig.Engine, step Step, actor crypto.Address, actors map[string]crypto.Address, clock *simClock) error {
	recipient := actor
	if name := strings.TrimSpace(step.Recipient); name != "" {
		if addr, ok := actors[name]; ok {
			recipient = addr
		}
	}
	snapshot, err := engine.Snapshot()
	if err != nil {
		metrics.ObserveMine("error")
		return err
	}
	maxPrice, err := parseWei(step.MaxPrice)
	if err != nil {
		metrics.ObserveMine("error")
		return err
	}
	if maxPrice == nil {
		if maxPrice, err = engine.CurrentPrice(); err != nil {
			metrics.ObserveMine("error")
			return err
		}
	}
	price, err := engine.Mine(actor, recipient, snapshot.EpochID, clock.now()+60, maxPrice, step.Metadata)
	if err != nil {
		metrics.ObserveMine("rejected")
		return err
	}
	metrics.ObserveMine("ok")
	metrics.SetRigPrice(price)
	metrics.SetEpochID("rig", snapshot.EpochID+1)
	logger.Info("mined",
		slog.Int64("at", step.At),
		slog.String("actor", step.Actor),
		slog.String("price", price.String()),
	)
	return nil
}

func runBuy(logger *slog.Logger, metrics *observability.EngineMetrics, engine *treasury.Engine, step Step, actor crypto.Address, actors map[string]crypto.Address, clock *simClock) error {
	receiver := actor
	if name := strings.TrimSpace(step.Recipient); name != "" {
		if addr, ok := actors[name]; ok {
			receiver = addr
		}
	}
	snapshot, err := engine.Snapshot()
	if err != nil {
		metrics.ObserveBuy("error")
		return err
	}
	maxPayment, err := parseWei(step.MaxPrice)
	if err != nil {
		metrics.ObserveBuy("error")
		return err
	}
	if maxPayment == nil {
		if maxPayment, err = engine.CurrentPrice(); err != nil {
			metrics.ObserveBuy("error")
			return err
		}
	}
	payment, err := engine.Buy(actor, step.Assets, receiver, snapshot.EpochID, clock.now()+60, maxPayment)
	if err != nil {
		metrics.ObserveBuy("rejected")
		return err
	}
	metrics.ObserveBuy("ok")
	metrics.SetAuctionPrice(payment)
	metrics.SetEpochID("treasury", snapshot.EpochID+1)
	logger.Info("treasury swept",
		slog.Int64("at", step.At),
		slog.String("actor", step.Actor),
		slog.String("payment", payment.String()),
	)
	return nil
}
