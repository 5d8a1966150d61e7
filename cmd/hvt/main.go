package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hvtlab/hvt/internal/config"
	"github.com/hvtlab/hvt/internal/report"
	"github.com/hvtlab/hvt/internal/simulation"
	"github.com/hvtlab/hvt/internal/strategy"
	"github.com/hvtlab/hvt/internal/trading"
	"github.com/hvtlab/hvt/pkg/logger"
	"github.com/hvtlab/hvt/pkg/models"
)

const runTimeout = 10 * time.Minute

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	reportPath := flag.String("report", "performance_report.md", "path for the markdown report")
	resultPath := flag.String("result", "performance_result.yaml", "path for the YAML result")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				zapLogger.Error("metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	if err := run(cfg, zapLogger, *reportPath, *resultPath); err != nil {
		zapLogger.Error("algorithm execution failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, zapLogger *zap.Logger, reportPath, resultPath string) error {
	zapLogger.Info("starting HVT trading algorithm",
		zap.String("symbol", cfg.Simulation.Symbol))

	simCfg := simulation.Config{
		Instrument: models.Instrument{
			Symbol:   cfg.Simulation.Symbol,
			TickSize: cfg.Simulation.TickSize,
		},
		InitialPrice:         cfg.Simulation.InitialPrice,
		Volatility:           cfg.Simulation.Volatility,
		OrderBookDepth:       cfg.Simulation.OrderBookDepth,
		MaxSpreadPercent:     cfg.Simulation.MaxSpreadPercent,
		LiquidityRefreshRate: cfg.Simulation.LiquidityRefreshRate,
		TickInterval:         cfg.Simulation.TickInterval,
		LiquidityInterval:    cfg.Simulation.LiquidityInterval,
	}

	seed := time.Now().UnixNano()
	generator := simulation.NewGenerator(
		simCfg.Volatility, simCfg.MaxSpreadPercent, simCfg.OrderBookDepth, seed)
	refresher := simulation.NewRefresher(simCfg.LiquidityRefreshRate, seed+1)
	simulator := simulation.New(simCfg, generator, refresher, zapLogger)

	strat := strategy.NewMomentumIgnition(cfg.Strategy, zapLogger)
	engine := trading.NewEngine(simulator, strat, zapLogger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, runTimeout)
	defer cancelTimeout()

	result, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("run trading engine: %w", err)
	}

	rendered := report.Generate(result)
	fmt.Println(rendered)

	if err := os.WriteFile(reportPath, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := report.WriteResult(result, resultPath); err != nil {
		return err
	}

	zapLogger.Info("execution completed",
		zap.String("report", reportPath),
		zap.String("result", resultPath))
	return nil
}
