package simulation

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/hvtlab/hvt/pkg/models"
)

const (
	// refreshQuantityFloor is the minimum quantity a requoted level keeps.
	refreshQuantityFloor = 100.0
	// refreshPriceFloor keeps requoted prices strictly positive.
	refreshPriceFloor = 0.01
	// maxPriceVariation bounds a requote nudge relative to the reference price.
	maxPriceVariation = 0.001
)

// Refresher emulates market-maker requoting: each cycle it independently
// refreshes a random subset of resting levels, jittering quantities and
// nudging prices toward or away from the last trade price. Bids only move
// down-or-flat and asks up-or-flat, so sidedness is preserved; each side is
// re-sorted afterwards because a nudge may cross a neighbouring level.
type Refresher struct {
	rng         *rand.Rand
	refreshRate float64
}

// NewRefresher builds a refresher. refreshRate is the per-level probability
// of a requote on each cycle.
func NewRefresher(refreshRate float64, seed int64) *Refresher {
	return &Refresher{
		rng:         rand.New(rand.NewSource(seed)),
		refreshRate: refreshRate,
	}
}

// Refresh returns a new order book with perturbed levels. The input book is
// not modified; the caller swaps the result in atomically.
func (r *Refresher) Refresh(book models.OrderBook, data models.MarketData) models.OrderBook {
	bids := r.refreshSide(book.Bids, data.LastPrice, models.SideBuy)
	asks := r.refreshSide(book.Asks, data.LastPrice, models.SideSell)

	sort.Slice(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })
	sort.Slice(asks, func(i, j int) bool { return asks[i].Price < asks[j].Price })

	return models.OrderBook{
		Symbol:    book.Symbol,
		Bids:      bids,
		Asks:      asks,
		Timestamp: time.Now().UTC(),
	}
}

func (r *Refresher) refreshSide(levels []models.OrderBookLevel, referencePrice float64, side models.OrderSide) []models.OrderBookLevel {
	updated := make([]models.OrderBookLevel, len(levels))
	copy(updated, levels)

	for i, level := range updated {
		if r.rng.Float64() >= r.refreshRate {
			continue
		}

		quantityVariation := 0.8 + r.rng.Float64()*0.4
		newQuantity := math.Max(refreshQuantityFloor, level.Quantity*quantityVariation)

		newPrice := math.Max(refreshPriceFloor, level.Price+r.priceVariation(referencePrice, side))

		updated[i] = models.OrderBookLevel{Price: newPrice, Quantity: newQuantity}
	}

	return updated
}

// priceVariation draws a bounded nudge, clamped so bids never rise and asks
// never fall.
func (r *Refresher) priceVariation(referencePrice float64, side models.OrderSide) float64 {
	variation := (r.rng.Float64()*2 - 1) * maxPriceVariation * referencePrice
	if side == models.SideBuy {
		return math.Min(variation, 0)
	}
	return math.Max(variation, 0)
}
