package simulation

import (
	"math"
	"math/rand"
	"time"

	"github.com/hvtlab/hvt/pkg/models"
)

const (
	// dt is one simulated minute expressed as a fraction of a trading year.
	dt = 1.0 / (252.0 * 24.0 * 60.0)
	// drift of the price process; flat for short-horizon simulation.
	drift = 0.0
	// maxTickMove clamps a single tick to ±5% of the previous price.
	maxTickMove = 0.05
	// tickSpreadFloor is the minimum quoted spread.
	tickSpreadFloor = 0.01

	minLevelQuantity = 1000.0
	maxLevelQuantity = 5000.0
)

// Generator produces synthetic market data ticks and initial order books.
// It owns its random source and is driven from a single goroutine.
type Generator struct {
	rng            *rand.Rand
	volatility     float64
	spreadPercent  float64
	orderBookDepth int
}

// NewGenerator builds a tick generator. volatility is annualized,
// spreadPercent is the quoted spread as a fraction of price, depth is the
// number of levels per side for the initial book.
func NewGenerator(volatility, spreadPercent float64, depth int, seed int64) *Generator {
	return &Generator{
		rng:            rand.New(rand.NewSource(seed)),
		volatility:     volatility,
		spreadPercent:  spreadPercent,
		orderBookDepth: depth,
	}
}

// NextTick advances the last trade price by one step of a discretized
// geometric process and redraws quotes and sizes around it.
func (g *Generator) NextTick(current models.MarketData, book models.OrderBook) models.MarketData {
	z := g.gaussian()
	priceChange := drift*dt + g.volatility*math.Sqrt(dt)*z

	newPrice := current.LastPrice * (1 + priceChange)
	newPrice = math.Max(newPrice, current.LastPrice*(1-maxTickMove))
	newPrice = math.Min(newPrice, current.LastPrice*(1+maxTickMove))

	spread := math.Max(tickSpreadFloor, newPrice*g.spreadPercent)
	bidPrice := newPrice - spread/2
	askPrice := newPrice + spread/2

	return models.MarketData{
		Symbol:    current.Symbol,
		BidPrice:  roundPrice(bidPrice),
		AskPrice:  roundPrice(askPrice),
		LastPrice: roundPrice(newPrice),
		BidSize:   g.quantityBetween(minLevelQuantity, maxLevelQuantity),
		AskSize:   g.quantityBetween(minLevelQuantity, maxLevelQuantity),
		Timestamp: time.Now().UTC(),
	}
}

// InitialOrderBook builds a symmetric fixed-depth book around initialPrice,
// spaced by the instrument tick size, bids descending and asks ascending.
func (g *Generator) InitialOrderBook(instrument models.Instrument, initialPrice float64) models.OrderBook {
	bids := make([]models.OrderBookLevel, 0, g.orderBookDepth)
	asks := make([]models.OrderBookLevel, 0, g.orderBookDepth)

	for i := 1; i <= g.orderBookDepth; i++ {
		bids = append(bids, models.OrderBookLevel{
			Price:    roundPrice(initialPrice - float64(i)*instrument.TickSize),
			Quantity: g.quantityBetween(minLevelQuantity, maxLevelQuantity),
		})
		asks = append(asks, models.OrderBookLevel{
			Price:    roundPrice(initialPrice + float64(i)*instrument.TickSize),
			Quantity: g.quantityBetween(minLevelQuantity, maxLevelQuantity),
		})
	}

	return models.OrderBook{
		Symbol:    instrument.Symbol,
		Bids:      bids,
		Asks:      asks,
		Timestamp: time.Now().UTC(),
	}
}

// gaussian draws a standard normal via the Box-Muller transform.
func (g *Generator) gaussian() float64 {
	u1 := 1.0 - g.rng.Float64()
	u2 := 1.0 - g.rng.Float64()
	return math.Sqrt(-2.0*math.Log(u1)) * math.Sin(2.0*math.Pi*u2)
}

func (g *Generator) quantityBetween(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}

// roundPrice rounds to the instrument precision of two decimal places.
func roundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}
