package trading

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hvtlab/hvt/internal/strategy"
)

// Market is the simulator lifecycle plus the query/command surface the
// strategy consumes.
type Market interface {
	Start(ctx context.Context) error
	Stop() error
	strategy.Simulator
}

// Engine runs one strategy campaign against a simulated market: start the
// simulation, execute the strategy under the caller's deadline, and always
// stop the simulation afterwards.
type Engine struct {
	log      *zap.Logger
	market   Market
	strategy strategy.Strategy
}

// NewEngine wires a market and a strategy together.
func NewEngine(market Market, strat strategy.Strategy, log *zap.Logger) *Engine {
	return &Engine{log: log, market: market, strategy: strat}
}

// Run executes the configured strategy and returns its result.
func (e *Engine) Run(ctx context.Context) (strategy.Result, error) {
	e.log.Info("starting trading engine", zap.String("strategy", e.strategy.Name()))

	if err := e.market.Start(ctx); err != nil {
		return strategy.Result{}, fmt.Errorf("start market simulation: %w", err)
	}
	defer func() {
		if err := e.market.Stop(); err != nil {
			e.log.Error("failed to stop market simulation", zap.Error(err))
		}
	}()

	result, err := e.strategy.Execute(ctx, e.market)
	if err != nil {
		return strategy.Result{}, fmt.Errorf("execute strategy: %w", err)
	}

	e.log.Info("trading engine run completed",
		zap.Float64("impact", result.PriceImpactAchieved),
		zap.Int("orders", result.OrdersExecuted))
	return result, nil
}
