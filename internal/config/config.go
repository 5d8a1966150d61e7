package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the full application configuration, loaded once at startup.
// A missing or invalid section is a fatal startup error.
type Config struct {
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
	Simulation SimulationConfig `mapstructure:"simulation" yaml:"simulation" validate:"required"`
	Strategy   StrategyConfig   `mapstructure:"strategy" yaml:"strategy" validate:"required"`
}

// LogConfig controls logger construction
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// MetricsConfig controls the optional Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Address string `mapstructure:"address" yaml:"address" validate:"required_with=Enabled"`
}

// SimulationConfig parameterizes the market simulation engine
type SimulationConfig struct {
	Symbol               string        `mapstructure:"symbol" yaml:"symbol" validate:"required"`
	TickSize             float64       `mapstructure:"tick_size" yaml:"tick_size" validate:"gt=0"`
	InitialPrice         float64       `mapstructure:"initial_price" yaml:"initial_price" validate:"gt=0"`
	Volatility           float64       `mapstructure:"volatility" yaml:"volatility" validate:"gt=0,lte=5"`
	OrderBookDepth       int           `mapstructure:"order_book_depth" yaml:"order_book_depth" validate:"gt=0"`
	MaxSpreadPercent     float64       `mapstructure:"max_spread_percent" yaml:"max_spread_percent" validate:"gt=0,lt=1"`
	LiquidityRefreshRate float64       `mapstructure:"liquidity_refresh_rate" yaml:"liquidity_refresh_rate" validate:"gte=0,lte=1"`
	TickInterval         time.Duration `mapstructure:"tick_interval" yaml:"tick_interval" validate:"gt=0"`
	LiquidityInterval    time.Duration `mapstructure:"liquidity_interval" yaml:"liquidity_interval" validate:"gt=0"`
}

// StrategyConfig parameterizes the momentum-ignition cascade driver
type StrategyConfig struct {
	Symbol              string        `mapstructure:"symbol" yaml:"symbol" validate:"required"`
	MaxCapital          float64       `mapstructure:"max_capital" yaml:"max_capital" validate:"gt=0"`
	TargetPriceImpact   float64       `mapstructure:"target_price_impact" yaml:"target_price_impact" validate:"gt=0,lt=1"`
	InitialOrderSize    float64       `mapstructure:"initial_order_size" yaml:"initial_order_size" validate:"gt=0"`
	OrderSizeMultiplier float64       `mapstructure:"order_size_multiplier" yaml:"order_size_multiplier" validate:"gte=1"`
	OrderInterval       time.Duration `mapstructure:"order_interval" yaml:"order_interval" validate:"gt=0"`
	MaxCascadeDepth     int           `mapstructure:"max_cascade_depth" yaml:"max_cascade_depth" validate:"gt=0"`
	AggressionFactor    float64       `mapstructure:"aggression_factor" yaml:"aggression_factor" validate:"gte=0,lte=1"`
	ExecutionWindow     time.Duration `mapstructure:"execution_window" yaml:"execution_window" validate:"gt=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", ":9100")
	v.SetDefault("simulation.tick_size", 0.01)
	v.SetDefault("simulation.volatility", 0.20)
	v.SetDefault("simulation.order_book_depth", 1000)
	v.SetDefault("simulation.max_spread_percent", 0.001)
	v.SetDefault("simulation.liquidity_refresh_rate", 0.1)
	v.SetDefault("simulation.tick_interval", "100ms")
	v.SetDefault("simulation.liquidity_interval", "1s")
}

// Load reads the YAML configuration at path, applies HVT_-prefixed
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("HVT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
