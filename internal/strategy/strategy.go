package strategy

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hvtlab/hvt/pkg/models"
)

// Simulator is the engine surface a strategy consumes: synchronous
// request/response, no streaming push.
type Simulator interface {
	SubmitOrder(ctx context.Context, order models.Order) (models.Order, error)
	OrderBook(symbol string) (models.OrderBook, error)
	MarketData(symbol string) (models.MarketData, error)
}

// Strategy runs a complete trading campaign against a simulated market.
type Strategy interface {
	Name() string
	Execute(ctx context.Context, market Simulator) (Result, error)
}

// Result summarizes one completed strategy run for reporting.
type Result struct {
	StrategyName        string          `yaml:"strategy_name"`
	Symbol              string          `yaml:"symbol"`
	PriceImpactAchieved float64         `yaml:"price_impact_achieved"`
	CapitalUsed         decimal.Decimal `yaml:"capital_used"`
	ExecutionTime       time.Duration   `yaml:"execution_time"`
	InitialPrice        float64         `yaml:"initial_price"`
	FinalPrice          float64         `yaml:"final_price"`
	OrdersExecuted      int             `yaml:"orders_executed"`
	EfficiencyRatio     float64         `yaml:"efficiency_ratio"`
	TargetAchieved      bool            `yaml:"target_achieved"`
	ExecutionLog        []string        `yaml:"execution_log"`
}
