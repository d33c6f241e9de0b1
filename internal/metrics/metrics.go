// Package metrics wires engine observations to Prometheus, entirely outside
// the matching path: every method here is best-effort and must never
// influence or block a Book operation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"glacier/internal/common"
	"glacier/internal/engine"
)

// Collector implements engine.Observer, turning accepted orders, trades and
// cancellations into a small set of counters, including a cumulative
// traded-quantity counter.
type Collector struct {
	ordersAccepted *prometheus.CounterVec
	tradesTotal    prometheus.Counter
	volumeTraded   prometheus.Counter
	cancelsTotal   *prometheus.CounterVec
}

// NewCollector registers its metrics against reg and returns the collector.
// reg is typically prometheus.NewRegistry() for an isolated test or process
// registry; callers wanting the default global registry can pass
// prometheus.DefaultRegisterer-backed wrapper instead.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ordersAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "glacier",
			Subsystem: "book",
			Name:      "orders_accepted_total",
			Help:      "Orders accepted by the book, partitioned by side.",
		}, []string{"side"}),
		tradesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "glacier",
			Subsystem: "book",
			Name:      "trades_total",
			Help:      "Trades emitted by the matcher.",
		}),
		volumeTraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "glacier",
			Subsystem: "book",
			Name:      "traded_quantity_total",
			Help:      "Cumulative traded quantity across all trades.",
		}),
		cancelsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "glacier",
			Subsystem: "book",
			Name:      "cancels_total",
			Help:      "Cancellation attempts, partitioned by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(c.ordersAccepted, c.tradesTotal, c.volumeTraded, c.cancelsTotal)
	return c
}

var _ engine.Observer = (*Collector)(nil)

func (c *Collector) OnAccept(order common.Order) {
	c.ordersAccepted.WithLabelValues(order.Side.String()).Inc()
}

func (c *Collector) OnTrade(trade common.Trade) {
	c.tradesTotal.Inc()
	c.volumeTraded.Add(float64(trade.Quantity))
}

func (c *Collector) OnCancel(_ uint32, found bool) {
	outcome := "miss"
	if found {
		outcome = "hit"
	}
	c.cancelsTotal.WithLabelValues(outcome).Inc()
}
