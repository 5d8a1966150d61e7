package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testBook() OrderBook {
	return OrderBook{
		Symbol: "SIM1",
		Bids: []OrderBookLevel{
			{Price: 99.99, Quantity: 1000},
			{Price: 99.98, Quantity: 2000},
		},
		Asks: []OrderBookLevel{
			{Price: 100.01, Quantity: 1500},
			{Price: 100.02, Quantity: 2500},
		},
		Timestamp: time.Now().UTC(),
	}
}

func TestOrderBookDerivedQuantities(t *testing.T) {
	book := testBook()

	assert.Equal(t, 99.99, book.BestBid())
	assert.Equal(t, 100.01, book.BestAsk())
	assert.InDelta(t, 0.02, book.Spread(), 1e-9)
	assert.InDelta(t, 100.00, book.MidPrice(), 1e-9)
}

func TestOrderBookEmptySides(t *testing.T) {
	book := OrderBook{Symbol: "SIM1"}

	assert.Equal(t, 0.0, book.BestBid())
	assert.True(t, math.IsInf(book.BestAsk(), 1))
	assert.True(t, math.IsInf(book.Spread(), 1))
}

func TestOrderBookCloneIsIndependent(t *testing.T) {
	book := testBook()
	clone := book.Clone()

	clone.Bids[0].Quantity = 1
	clone.Asks = clone.Asks[:1]

	assert.Equal(t, 1000.0, book.Bids[0].Quantity)
	assert.Len(t, book.Asks, 2)
}
