package simulation

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hvtlab/hvt/pkg/models"
)

var (
	lastPriceGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hvt_last_price",
			Help: "Last simulated trade price per symbol",
		},
		[]string{"symbol"},
	)
	bidPriceGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hvt_best_bid_price",
			Help: "Best bid price per symbol",
		},
		[]string{"symbol"},
	)
	askPriceGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hvt_best_ask_price",
			Help: "Best ask price per symbol",
		},
		[]string{"symbol"},
	)
	spreadGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hvt_orderbook_spread",
			Help: "Order book spread per symbol",
		},
		[]string{"symbol"},
	)
	bookDepthGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hvt_orderbook_depth",
			Help: "Number of resting levels per book side",
		},
		[]string{"symbol", "side"},
	)
	ordersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hvt_orders_submitted_total",
			Help: "Orders accepted by the simulation engine",
		},
		[]string{"symbol", "side", "type"},
	)
	tradesExecuted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hvt_trades_executed_total",
			Help: "Trades produced by market order execution",
		},
		[]string{"symbol"},
	)
	cycleErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hvt_cycle_errors_total",
			Help: "Background update cycles that failed",
		},
		[]string{"task"},
	)
	casConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hvt_state_conflicts_total",
			Help: "Optimistic state updates lost to a concurrent writer",
		},
		[]string{"path"},
	)
)

func init() {
	prometheus.MustRegister(
		lastPriceGauge,
		bidPriceGauge,
		askPriceGauge,
		spreadGauge,
		bookDepthGauge,
		ordersSubmitted,
		tradesExecuted,
		cycleErrors,
		casConflicts,
	)
}

func observeBook(book models.OrderBook) {
	spreadGauge.WithLabelValues(book.Symbol).Set(book.Spread())
	bookDepthGauge.WithLabelValues(book.Symbol, string(models.SideBuy)).Set(float64(len(book.Bids)))
	bookDepthGauge.WithLabelValues(book.Symbol, string(models.SideSell)).Set(float64(len(book.Asks)))
}

func observeMarketData(data models.MarketData) {
	lastPriceGauge.WithLabelValues(data.Symbol).Set(data.LastPrice)
	bidPriceGauge.WithLabelValues(data.Symbol).Set(data.BidPrice)
	askPriceGauge.WithLabelValues(data.Symbol).Set(data.AskPrice)
}
