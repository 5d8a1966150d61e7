package simulation

import (
	"math"

	"github.com/hvtlab/hvt/pkg/models"
)

const (
	// impactCoefficient scales the square-root market impact law.
	impactCoefficient = 0.0001
	// maxImpact caps the permanent price shift a single order can cause.
	maxImpact = 0.05
	// spreadMultiplier amplifies impact when the book is wide.
	spreadMultiplier = 10.0
	// quantityEpsilon absorbs float64 rounding when walking levels; residual
	// quantity at or below it counts as fully consumed.
	quantityEpsilon = 1e-9
)

// CalculateSlippage walks the opposing side of the book nearest-first and
// returns the relative deviation of the volume-weighted fill price from the
// best opposing price. Returns +Inf when visible liquidity cannot cover the
// requested quantity.
func CalculateSlippage(quantity float64, side models.OrderSide, book models.OrderBook) float64 {
	if quantity <= 0 {
		return 0
	}

	levels := book.Asks
	startPrice := book.BestAsk()
	if side == models.SideSell {
		levels = book.Bids
		startPrice = book.BestBid()
	}

	remaining := quantity
	totalCost := 0.0
	for _, level := range levels {
		if remaining <= quantityEpsilon {
			break
		}
		qty := math.Min(remaining, level.Quantity)
		totalCost += qty * level.Price
		remaining -= qty
	}

	if remaining > quantityEpsilon {
		return math.Inf(1)
	}

	averagePrice := totalCost / quantity
	return math.Abs(averagePrice-startPrice) / startPrice
}

// CalculateImpact returns the permanent relative price shift caused by the
// order, using a square-root law on the consumed share of opposing liquidity,
// amplified by the relative spread and capped at maxImpact.
func CalculateImpact(order models.Order, book models.OrderBook) float64 {
	available := availableLiquidity(order.Side, book)
	if available <= 0 {
		return 0
	}

	liquidityRatio := order.Quantity / available
	baseImpact := impactCoefficient * math.Sqrt(liquidityRatio)

	spreadAdjustment := book.Spread() / book.MidPrice()
	totalImpact := baseImpact * (1 + spreadAdjustment*spreadMultiplier)

	return math.Min(totalImpact, maxImpact)
}

func availableLiquidity(side models.OrderSide, book models.OrderBook) float64 {
	levels := book.Asks
	if side == models.SideSell {
		levels = book.Bids
	}
	total := 0.0
	for _, level := range levels {
		total += level.Quantity
	}
	return total
}
