package observability

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records rig and treasury auction activity for the metrics
// endpoint.
type EngineMetrics struct {
	mines        *prometheus.CounterVec
	buys         *prometheus.CounterVec
	feesPaid     *prometheus.CounterVec
	emission     prometheus.Counter
	rigPrice     prometheus.Gauge
	auctionPrice prometheus.Gauge
	epochID      *prometheus.GaugeVec
}

var (
	engineMetricsOnce sync.Once
	engineRegistry    *EngineMetrics
)

// Metrics returns the lazily-initialised engine metrics registry.
func Metrics() *EngineMetrics {
	engineMetricsOnce.Do(func() {
		engineRegistry = &EngineMetrics{
			mines: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "rignet",
				Subsystem: "rig",
				Name:      "mines_total",
				Help:      "Total mine calls segmented by outcome.",
			}, []string{"outcome"}),
			buys: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "rignet",
				Subsystem: "treasury",
				Name:      "buys_total",
				Help:      "Total treasury auction purchases segmented by outcome.",
			}, []string{"outcome"}),
			feesPaid: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "rignet",
				Subsystem: "rig",
				Name:      "fees_paid_wei_total",
				Help:      "Cumulative fee disbursements segmented by recipient role.",
			}, []string{"role"}),
			emission: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "rignet",
				Subsystem: "rig",
				Name:      "emission_minted_wei_total",
				Help:      "Cumulative emission minted to displaced holders.",
			}),
			rigPrice: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "rignet",
				Subsystem: "rig",
				Name:      "current_price_wei",
				Help:      "Dutch auction price of the rig at the last observation.",
			}),
			auctionPrice: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "rignet",
				Subsystem: "treasury",
				Name:      "current_price_wei",
				Help:      "Dutch auction price of the treasury inventory at the last observation.",
			}),
			epochID: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "rignet",
				Subsystem: "engine",
				Name:      "epoch_id",
				Help:      "Current epoch id per engine.",
			}, []string{"engine"}),
		}
		prometheus.MustRegister(
			engineRegistry.mines,
			engineRegistry.buys,
			engineRegistry.feesPaid,
			engineRegistry.emission,
			engineRegistry.rigPrice,
			engineRegistry.auctionPrice,
			engineRegistry.epochID,
		)
	})
	return engineRegistry
}

// ObserveMine records the outcome of a mine call.
func (m *EngineMetrics) ObserveMine(outcome string) {
	if m == nil {
		return
	}
	m.mines.WithLabelValues(outcome).Inc()
}

// ObserveBuy records the outcome of a treasury purchase.
func (m *EngineMetrics) ObserveBuy(outcome string) {
	if m == nil {
		return
	}
	m.buys.WithLabelValues(outcome).Inc()
}

// ObserveFee accumulates a fee disbursement under its recipient role.
func (m *EngineMetrics) ObserveFee(role string, amount *big.Int) {
	if m == nil || amount == nil {
		return
	}
	m.feesPaid.WithLabelValues(role).Add(bigToFloat(amount))
}

// ObserveEmission accumulates minted emission.
func (m *EngineMetrics) ObserveEmission(amount *big.Int) {
	if m == nil || amount == nil {
		return
	}
	m.emission.Add(bigToFloat(amount))
}

// SetRigPrice publishes the rig's current auction price.
func (m *EngineMetrics) SetRigPrice(price *big.Int) {
	if m == nil {
		return
	}
	m.rigPrice.Set(bigToFloat(price))
}

// SetAuctionPrice publishes the treasury auction's current price.
func (m *EngineMetrics) SetAuctionPrice(price *big.Int) {
	if m == nil {
		return
	}
	m.auctionPrice.Set(bigToFloat(price))
}

// SetEpochID publishes the named engine's epoch counter.
func (m *EngineMetrics) SetEpochID(engine string, epochID uint64) {
	if m == nil {
		return
	}
	m.epochID.WithLabelValues(engine).Set(float64(epochID))
}

func bigToFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
