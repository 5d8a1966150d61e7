package strategy

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hvtlab/hvt/internal/config"
	"github.com/hvtlab/hvt/pkg/models"
)

// MomentumIgnition issues a cascade of escalating orders designed to nudge
// the simulated price in one direction, escalating size while momentum
// builds and stopping on target impact, capital ceiling, cascade depth, or
// the execution window.
type MomentumIgnition struct {
	cfg config.StrategyConfig
	log *zap.Logger
}

// NewMomentumIgnition builds the cascade strategy from validated config.
func NewMomentumIgnition(cfg config.StrategyConfig, log *zap.Logger) *MomentumIgnition {
	return &MomentumIgnition{cfg: cfg, log: log}
}

// Name implements Strategy.
func (m *MomentumIgnition) Name() string { return "Momentum Ignition" }

// Execute implements Strategy.
func (m *MomentumIgnition) Execute(ctx context.Context, market Simulator) (Result, error) {
	startTime := time.Now().UTC()
	executionLog := []string{fmt.Sprintf("Strategy started at %s", startTime.Format("15:04:05.000"))}
	ordersExecuted := 0
	capitalUsed := decimal.Zero
	maxCapital := decimal.NewFromFloat(m.cfg.MaxCapital)

	m.log.Info("starting momentum ignition strategy", zap.String("symbol", m.cfg.Symbol))

	initialData, err := market.MarketData(m.cfg.Symbol)
	if err != nil {
		return Result{}, fmt.Errorf("initial market data: %w", err)
	}
	initialPrice := initialData.LastPrice

	book, err := market.OrderBook(m.cfg.Symbol)
	if err != nil {
		return Result{}, fmt.Errorf("initial order book: %w", err)
	}
	direction := optimalDirection(book)

	executionLog = append(executionLog, fmt.Sprintf(
		"Initial price: %.4f, Direction: %s, Order book spread: %.4f",
		initialPrice, direction, book.Spread()))

	orderSize := m.cfg.InitialOrderSize
	cascadeDepth := 0

	for cascadeDepth < m.cfg.MaxCascadeDepth &&
		capitalUsed.LessThan(maxCapital) &&
		time.Since(startTime) < m.cfg.ExecutionWindow &&
		ctx.Err() == nil {

		before, err := market.MarketData(m.cfg.Symbol)
		if err != nil {
			return Result{}, fmt.Errorf("market data during cascade: %w", err)
		}
		currentBook, err := market.OrderBook(m.cfg.Symbol)
		if err != nil {
			return Result{}, fmt.Errorf("order book during cascade: %w", err)
		}

		targetPrice := m.optimalPrice(currentBook, direction, cascadeDepth)

		order := models.Order{
			ID:        uuid.NewString(),
			Symbol:    m.cfg.Symbol,
			Side:      direction,
			Type:      models.TypeLimit,
			Quantity:  orderSize,
			Price:     targetPrice,
			Timestamp: time.Now().UTC(),
		}

		submitted, err := market.SubmitOrder(ctx, order)
		if err != nil {
			return Result{}, fmt.Errorf("submit cascade order: %w", err)
		}
		ordersExecuted++
		capitalUsed = capitalUsed.Add(decimal.NewFromFloat(orderSize * targetPrice))

		m.log.Debug("submitted cascade order",
			zap.String("order_id", submitted.ID),
			zap.String("side", string(submitted.Side)),
			zap.Float64("quantity", submitted.Quantity),
			zap.Float64("price", targetPrice))

		executionLog = append(executionLog, fmt.Sprintf(
			"Order %d: %s %.0f @ %.4f (Capital: %s)",
			ordersExecuted, direction, orderSize, targetPrice, capitalUsed.StringFixed(0)))

		select {
		case <-ctx.Done():
		case <-time.After(m.cfg.OrderInterval):
		}

		after, err := market.MarketData(m.cfg.Symbol)
		if err != nil {
			return Result{}, fmt.Errorf("market data after order: %w", err)
		}

		priceImpact := math.Abs(after.LastPrice-before.LastPrice) / initialPrice
		if priceImpact >= m.cfg.TargetPriceImpact {
			executionLog = append(executionLog, fmt.Sprintf("Target impact achieved: %.4f%%", priceImpact*100))
			break
		}

		if gainingMomentum(before, after, direction) {
			orderSize *= m.cfg.OrderSizeMultiplier
			executionLog = append(executionLog, fmt.Sprintf(
				"Momentum detected, escalating order size to %.0f", orderSize))
		}

		cascadeDepth++
	}

	endTime := time.Now().UTC()
	finalData, err := market.MarketData(m.cfg.Symbol)
	if err != nil {
		return Result{}, fmt.Errorf("final market data: %w", err)
	}
	finalPrice := finalData.LastPrice
	totalImpact := math.Abs(finalPrice-initialPrice) / initialPrice

	efficiencyRatio := 0.0
	if capital := capitalUsed.InexactFloat64(); capital > 0 {
		efficiencyRatio = totalImpact / (capital / 1_000_000)
	}

	executionLog = append(executionLog,
		fmt.Sprintf("Strategy completed at %s", endTime.Format("15:04:05.000")),
		fmt.Sprintf("Final price: %.4f, Total impact: %.4f%%", finalPrice, totalImpact*100))

	m.log.Info("momentum ignition strategy completed",
		zap.Float64("impact", totalImpact),
		zap.String("capital_used", capitalUsed.StringFixed(0)),
		zap.Float64("efficiency", efficiencyRatio))

	return Result{
		StrategyName:        m.Name(),
		Symbol:              m.cfg.Symbol,
		PriceImpactAchieved: totalImpact,
		CapitalUsed:         capitalUsed,
		ExecutionTime:       endTime.Sub(startTime),
		InitialPrice:        initialPrice,
		FinalPrice:          finalPrice,
		OrdersExecuted:      ordersExecuted,
		EfficiencyRatio:     efficiencyRatio,
		TargetAchieved:      totalImpact >= m.cfg.TargetPriceImpact,
		ExecutionLog:        executionLog,
	}, nil
}

// optimalDirection points the cascade at the thinner side of the book.
func optimalDirection(book models.OrderBook) models.OrderSide {
	bidVolume := 0.0
	for _, level := range book.Bids {
		bidVolume += level.Quantity
	}
	askVolume := 0.0
	for _, level := range book.Asks {
		askVolume += level.Quantity
	}

	if askVolume < bidVolume {
		return models.SideBuy
	}
	return models.SideSell
}

// optimalPrice prices each cascade step progressively through the touch.
func (m *MomentumIgnition) optimalPrice(book models.OrderBook, direction models.OrderSide, cascadeDepth int) float64 {
	aggression := math.Min(float64(cascadeDepth)*m.cfg.AggressionFactor, 0.5)

	if direction == models.SideBuy {
		return book.BestAsk() * (1 + aggression*0.01)
	}
	return book.BestBid() * (1 - aggression*0.01)
}

// gainingMomentum reports whether the price moved with the cascade while the
// far side thinned out.
func gainingMomentum(before, after models.MarketData, direction models.OrderSide) bool {
	priceChange := after.LastPrice - before.LastPrice

	switch direction {
	case models.SideBuy:
		return priceChange > 0 && after.AskSize < before.AskSize
	case models.SideSell:
		return priceChange < 0 && after.BidSize < before.BidSize
	default:
		return false
	}
}
