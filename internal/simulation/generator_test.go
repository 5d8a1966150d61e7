package simulation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvtlab/hvt/pkg/models"
)

func testInstrument() models.Instrument {
	return models.Instrument{Symbol: "SIM1", TickSize: 0.01}
}

func TestInitialOrderBookShape(t *testing.T) {
	g := NewGenerator(0.20, 0.001, 3, 42)

	book := g.InitialOrderBook(testInstrument(), 100.00)

	require.Len(t, book.Bids, 3)
	require.Len(t, book.Asks, 3)
	assert.Equal(t, []float64{99.99, 99.98, 99.97}, levelPrices(book.Bids))
	assert.Equal(t, []float64{100.01, 100.02, 100.03}, levelPrices(book.Asks))
	assert.GreaterOrEqual(t, book.Spread(), 0.0)
}

func TestInitialOrderBookOrderingAndQuantities(t *testing.T) {
	g := NewGenerator(0.20, 0.001, 1000, 7)

	book := g.InitialOrderBook(testInstrument(), 100.00)

	require.Len(t, book.Bids, 1000)
	require.Len(t, book.Asks, 1000)
	assertStrictlyDescending(t, book.Bids)
	assertStrictlyAscending(t, book.Asks)

	for _, level := range append(append([]models.OrderBookLevel{}, book.Bids...), book.Asks...) {
		assert.GreaterOrEqual(t, level.Quantity, minLevelQuantity)
		assert.Less(t, level.Quantity, maxLevelQuantity)
	}
}

func TestNextTickStaysWithinClamp(t *testing.T) {
	g := NewGenerator(0.20, 0.001, 10, 1)
	book := g.InitialOrderBook(testInstrument(), 100.00)

	current := models.MarketData{Symbol: "SIM1", LastPrice: 100.00, Timestamp: time.Now().UTC()}
	for i := 0; i < 1000; i++ {
		next := g.NextTick(current, book)

		assert.GreaterOrEqual(t, next.LastPrice, current.LastPrice*(1-maxTickMove)-0.01)
		assert.LessOrEqual(t, next.LastPrice, current.LastPrice*(1+maxTickMove)+0.01)
		assert.Greater(t, next.AskPrice, next.BidPrice)
		assert.GreaterOrEqual(t, next.BidSize, minLevelQuantity)
		assert.GreaterOrEqual(t, next.AskSize, minLevelQuantity)
		assert.Equal(t, "SIM1", next.Symbol)

		current = next
	}
}

func TestNextTickRoundsToInstrumentPrecision(t *testing.T) {
	g := NewGenerator(0.20, 0.001, 10, 3)
	book := g.InitialOrderBook(testInstrument(), 100.00)
	current := models.MarketData{Symbol: "SIM1", LastPrice: 123.456789}

	next := g.NextTick(current, book)

	assert.Equal(t, roundPrice(next.LastPrice), next.LastPrice)
	assert.Equal(t, roundPrice(next.BidPrice), next.BidPrice)
	assert.Equal(t, roundPrice(next.AskPrice), next.AskPrice)
}

func TestNextTickSpreadFloor(t *testing.T) {
	g := NewGenerator(0.20, 0.001, 10, 5)
	book := g.InitialOrderBook(testInstrument(), 1.00)

	// At low prices the relative spread would fall below the tick floor.
	next := g.NextTick(models.MarketData{Symbol: "SIM1", LastPrice: 1.00}, book)
	assert.InDelta(t, tickSpreadFloor, next.AskPrice-next.BidPrice, 0.011)
}

func TestGaussianIsRoughlyStandardNormal(t *testing.T) {
	g := NewGenerator(0.20, 0.001, 10, 99)

	n := 100000
	sum := 0.0
	sumSquares := 0.0
	for i := 0; i < n; i++ {
		z := g.gaussian()
		sum += z
		sumSquares += z * z
	}

	mean := sum / float64(n)
	variance := sumSquares/float64(n) - mean*mean
	assert.InDelta(t, 0.0, mean, 0.02)
	assert.InDelta(t, 1.0, variance, 0.05)
}

func TestGeneratorDeterministicForSeed(t *testing.T) {
	a := NewGenerator(0.20, 0.001, 50, 1234)
	b := NewGenerator(0.20, 0.001, 50, 1234)

	bookA := a.InitialOrderBook(testInstrument(), 100.00)
	bookB := b.InitialOrderBook(testInstrument(), 100.00)
	assert.Equal(t, bookA.Bids, bookB.Bids)
	assert.Equal(t, bookA.Asks, bookB.Asks)
}

func levelPrices(levels []models.OrderBookLevel) []float64 {
	prices := make([]float64, len(levels))
	for i, level := range levels {
		prices[i] = level.Price
	}
	return prices
}

func assertStrictlyDescending(t *testing.T, levels []models.OrderBookLevel) {
	t.Helper()
	for i := 1; i < len(levels); i++ {
		assert.Less(t, levels[i].Price, levels[i-1].Price)
	}
}

func assertStrictlyAscending(t *testing.T, levels []models.OrderBookLevel) {
	t.Helper()
	for i := 1; i < len(levels); i++ {
		assert.Greater(t, levels[i].Price, levels[i-1].Price)
	}
}

func TestRoundPrice(t *testing.T) {
	assert.Equal(t, 100.01, roundPrice(100.0149))
	assert.Equal(t, 100.02, roundPrice(100.016))
	assert.Equal(t, 0.0, math.Abs(roundPrice(0)))
}
