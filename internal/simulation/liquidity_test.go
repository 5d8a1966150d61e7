package simulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvtlab/hvt/pkg/models"
)

func refresherTestState(depth int, seed int64) (models.OrderBook, models.MarketData) {
	g := NewGenerator(0.20, 0.001, depth, seed)
	book := g.InitialOrderBook(models.Instrument{Symbol: "SIM1", TickSize: 0.01}, 100.00)
	data := models.MarketData{
		Symbol:    "SIM1",
		LastPrice: 100.00,
		Timestamp: time.Now().UTC(),
	}
	return book, data
}

func TestRefreshDoesNotModifyInput(t *testing.T) {
	book, data := refresherTestState(100, 11)
	original := book.Clone()

	r := NewRefresher(1.0, 21)
	r.Refresh(book, data)

	assert.Equal(t, original.Bids, book.Bids)
	assert.Equal(t, original.Asks, book.Asks)
}

func TestRefreshPreservesOrderingInvariant(t *testing.T) {
	book, data := refresherTestState(500, 13)
	r := NewRefresher(1.0, 23)

	refreshed := r.Refresh(book, data)

	require.Len(t, refreshed.Bids, 500)
	require.Len(t, refreshed.Asks, 500)
	for i := 1; i < len(refreshed.Bids); i++ {
		assert.LessOrEqual(t, refreshed.Bids[i].Price, refreshed.Bids[i-1].Price)
	}
	for i := 1; i < len(refreshed.Asks); i++ {
		assert.GreaterOrEqual(t, refreshed.Asks[i].Price, refreshed.Asks[i-1].Price)
	}
}

func TestRefreshPreservesSidedness(t *testing.T) {
	book, data := refresherTestState(200, 17)
	r := NewRefresher(1.0, 27)

	refreshed := r.Refresh(book, data)

	// Bids only move down-or-flat, asks only up-or-flat, so the best bid
	// cannot rise above the original and the best ask cannot fall below it.
	assert.LessOrEqual(t, refreshed.BestBid(), book.BestBid())
	assert.GreaterOrEqual(t, refreshed.BestAsk(), book.BestAsk())
	assert.GreaterOrEqual(t, refreshed.Spread(), book.Spread())
}

func TestRefreshQuantityFloorAndJitter(t *testing.T) {
	book, data := refresherTestState(300, 19)
	r := NewRefresher(1.0, 29)

	refreshed := r.Refresh(book, data)

	for _, level := range refreshed.Bids {
		assert.GreaterOrEqual(t, level.Quantity, refreshQuantityFloor)
	}
	for _, level := range refreshed.Asks {
		assert.GreaterOrEqual(t, level.Quantity, refreshQuantityFloor)
	}
}

func TestRefreshZeroRateIsIdentityOnLevels(t *testing.T) {
	book, data := refresherTestState(50, 31)
	r := NewRefresher(0.0, 37)

	refreshed := r.Refresh(book, data)

	assert.Equal(t, book.Bids, refreshed.Bids)
	assert.Equal(t, book.Asks, refreshed.Asks)
}
