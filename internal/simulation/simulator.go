package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hvtlab/hvt/pkg/models"
)

var (
	// ErrAlreadyStarted is returned by Start on anything but a fresh engine.
	ErrAlreadyStarted = errors.New("market simulation already started")
	// ErrNotRunning is returned for commands outside the Running state.
	ErrNotRunning = errors.New("market simulation is not running")
	// ErrSymbolNotFound is returned for queries against an unknown symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrOrderNotFound is returned when cancelling an unknown order id.
	ErrOrderNotFound = errors.New("order not found")
	// ErrBookConflict is returned when a submission keeps losing the book
	// compare-and-swap to concurrent updates.
	ErrBookConflict = errors.New("order book changed concurrently, submission aborted")
)

const (
	stateNotStarted int32 = iota
	stateRunning
	stateStopped
)

// maxSubmitAttempts bounds how often a market order re-matches against a
// fresh book after losing the compare-and-swap. Periodic cycles never retry;
// an order must not silently vanish, so the submit path does, then surfaces
// ErrBookConflict.
const maxSubmitAttempts = 3

// Config parameterizes one Simulator instance.
type Config struct {
	Instrument           models.Instrument
	InitialPrice         float64
	Volatility           float64
	OrderBookDepth       int
	MaxSpreadPercent     float64
	LiquidityRefreshRate float64
	TickInterval         time.Duration
	LiquidityInterval    time.Duration
}

// Simulator owns all mutable market state for the configured instrument: one
// order book and one market data snapshot held in versioned cells, the
// append-only trade log, and the order registry. Two periodic loops (tick
// generation, liquidity refresh) and the submission path all mutate state
// exclusively through whole-value compare-and-swap on the cells.
//
// Lifecycle is NotStarted -> Running -> Stopped; a stopped instance cannot
// be restarted.
type Simulator struct {
	log       *zap.Logger
	cfg       Config
	generator *Generator
	refresher *Refresher

	state  atomic.Int32
	cancel context.CancelFunc
	wg     sync.WaitGroup

	books      map[string]*stateCell[models.OrderBook]
	marketData map[string]*stateCell[models.MarketData]

	ordersMu sync.RWMutex
	orders   map[string]*orderRecord

	tradesMu sync.RWMutex
	trades   []models.Trade
}

type orderRecord struct {
	order  models.Order
	status atomic.Value // models.OrderStatus
}

// New builds a simulator for the configured instrument. Start must be called
// before orders are accepted.
func New(cfg Config, generator *Generator, refresher *Refresher, log *zap.Logger) *Simulator {
	symbol := cfg.Instrument.Symbol
	return &Simulator{
		log:       log,
		cfg:       cfg,
		generator: generator,
		refresher: refresher,
		books:     map[string]*stateCell[models.OrderBook]{symbol: {}},
		marketData: map[string]*stateCell[models.MarketData]{
			symbol: {},
		},
		orders: make(map[string]*orderRecord),
	}
}

// Start seeds the book and market data for the configured instrument and
// launches the two periodic update loops.
func (s *Simulator) Start(ctx context.Context) error {
	if !s.state.CompareAndSwap(stateNotStarted, stateRunning) {
		return ErrAlreadyStarted
	}

	symbol := s.cfg.Instrument.Symbol
	s.log.Info("starting market simulation", zap.String("symbol", symbol))

	book := s.generator.InitialOrderBook(s.cfg.Instrument, s.cfg.InitialPrice)
	s.books[symbol].Init(book)

	data := models.MarketData{
		Symbol:    symbol,
		BidPrice:  book.BestBid(),
		AskPrice:  book.BestAsk(),
		LastPrice: s.cfg.InitialPrice,
		BidSize:   book.Bids[0].Quantity,
		AskSize:   book.Asks[0].Quantity,
		Timestamp: time.Now().UTC(),
	}
	s.marketData[symbol].Init(data)

	observeBook(book)
	observeMarketData(data)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.wg.Add(2)
	go s.runLoop(runCtx, "market_data", s.cfg.TickInterval, s.tickCycle)
	go s.runLoop(runCtx, "liquidity", s.cfg.LiquidityInterval, s.liquidityCycle)

	s.log.Info("market simulation started")
	return nil
}

// Stop disables further scheduling, then waits for any in-flight cycle to
// finish before returning. Queries keep serving last-known state afterwards.
func (s *Simulator) Stop() error {
	if !s.state.CompareAndSwap(stateRunning, stateStopped) {
		return ErrNotRunning
	}

	s.log.Info("stopping market simulation")
	s.cancel()
	s.wg.Wait()
	s.log.Info("market simulation stopped")
	return nil
}

func (s *Simulator) runLoop(ctx context.Context, task string, interval time.Duration, cycle func()) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(task, cycle)
		}
	}
}

// runCycle isolates one periodic update: a fault is counted and logged, never
// propagated, so the next scheduled cycle still runs.
func (s *Simulator) runCycle(task string, cycle func()) {
	defer func() {
		if r := recover(); r != nil {
			cycleErrors.WithLabelValues(task).Inc()
			s.log.Error("background cycle failed",
				zap.String("task", task),
				zap.Any("reason", r))
		}
	}()
	cycle()
}

func (s *Simulator) tickCycle() {
	for symbol, cell := range s.marketData {
		current, version, ok := cell.Load()
		if !ok {
			continue
		}
		book, _, ok := s.books[symbol].Load()
		if !ok {
			continue
		}

		next := s.generator.NextTick(current, book)
		if !cell.CompareAndSwap(version, next) {
			// Lost to a concurrent impact update; the next tick
			// re-derives from fresh state.
			casConflicts.WithLabelValues("tick").Inc()
			continue
		}
		observeMarketData(next)
	}
}

func (s *Simulator) liquidityCycle() {
	for symbol, cell := range s.books {
		book, version, ok := cell.Load()
		if !ok {
			continue
		}
		data, _, ok := s.marketData[symbol].Load()
		if !ok {
			continue
		}

		refreshed := s.refresher.Refresh(book, data)
		if !cell.CompareAndSwap(version, refreshed) {
			casConflicts.WithLabelValues("liquidity").Inc()
			continue
		}
		observeBook(refreshed)
	}
}

// SubmitOrder executes a market order against the book or registers a limit
// order as resting Pending. Rejected with ErrNotRunning outside the Running
// state.
func (s *Simulator) SubmitOrder(ctx context.Context, order models.Order) (models.Order, error) {
	if s.state.Load() != stateRunning {
		return models.Order{}, ErrNotRunning
	}
	if err := ctx.Err(); err != nil {
		return models.Order{}, err
	}

	cell, ok := s.books[order.Symbol]
	if !ok {
		return models.Order{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, order.Symbol)
	}

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Timestamp.IsZero() {
		order.Timestamp = time.Now().UTC()
	}

	s.log.Debug("submitting order",
		zap.String("order_id", order.ID),
		zap.String("side", string(order.Side)),
		zap.String("type", string(order.Type)),
		zap.Float64("quantity", order.Quantity))

	if order.Type == models.TypeLimit {
		// No resting-limit matching in this engine: the order stays
		// Pending and the book is untouched.
		order.Status = models.StatusPending
		s.register(order)
		return order, nil
	}

	for attempt := 0; attempt < maxSubmitAttempts; attempt++ {
		book, version, ok := cell.Load()
		if !ok {
			return models.Order{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, order.Symbol)
		}

		fill := s.matchAgainstBook(order, book)
		if !cell.CompareAndSwap(version, fill.book) {
			// Stale read: a tick or refresh replaced the book since
			// we loaded it. Re-match against the fresh state.
			casConflicts.WithLabelValues("submit").Inc()
			continue
		}

		observeBook(fill.book)
		s.recordTrades(fill.trades)

		order.FilledQuantity = fill.quantity
		order.AveragePrice = fill.averagePrice
		order.Status = models.StatusFilled
		if order.Quantity-fill.quantity > quantityEpsilon {
			order.Status = models.StatusPartiallyFilled
		}

		impact := CalculateImpact(order, fill.book)
		s.applyPriceImpact(order.Symbol, impact, order.Side)

		s.register(order)

		s.log.Debug("executed market order",
			zap.String("order_id", order.ID),
			zap.Float64("filled", fill.quantity),
			zap.Float64("requested", order.Quantity),
			zap.Float64("average_price", fill.averagePrice),
			zap.Int("trades", len(fill.trades)))

		return order, nil
	}

	return models.Order{}, ErrBookConflict
}

type fillResult struct {
	book         models.OrderBook
	trades       []models.Trade
	quantity     float64
	averagePrice float64
}

// matchAgainstBook walks the opposing side nearest-first, consuming quantity
// level by level. Fully consumed levels are dropped, a partially consumed
// level keeps its remainder, the untouched tail passes through unchanged.
// Remaining quantity beyond book depth is dropped. The input book is not
// modified.
func (s *Simulator) matchAgainstBook(order models.Order, book models.OrderBook) fillResult {
	levels := book.Asks
	if order.Side == models.SideSell {
		levels = book.Bids
	}

	now := time.Now().UTC()
	remaining := order.Quantity
	totalCost := 0.0
	filled := 0.0
	updated := make([]models.OrderBookLevel, 0, len(levels))
	var trades []models.Trade

	for i, level := range levels {
		if remaining <= quantityEpsilon {
			updated = append(updated, levels[i:]...)
			break
		}

		qty := math.Min(remaining, level.Quantity)
		totalCost += qty * level.Price
		filled += qty
		remaining -= qty

		trade := models.Trade{
			ID:          uuid.NewString(),
			Symbol:      order.Symbol,
			Price:       level.Price,
			Quantity:    qty,
			Timestamp:   now,
			BuyOrderID:  order.ID,
			SellOrderID: counterpartyID(),
		}
		if order.Side == models.SideSell {
			trade.BuyOrderID = counterpartyID()
			trade.SellOrderID = order.ID
		}
		trades = append(trades, trade)

		if rest := level.Quantity - qty; rest > 0 {
			updated = append(updated, models.OrderBookLevel{Price: level.Price, Quantity: rest})
		}
	}

	next := book
	if order.Side == models.SideBuy {
		next.Asks = updated
	} else {
		next.Bids = updated
	}
	next.Timestamp = now

	averagePrice := 0.0
	if filled > 0 {
		averagePrice = totalCost / filled
	}

	return fillResult{book: next, trades: trades, quantity: filled, averagePrice: averagePrice}
}

// applyPriceImpact shifts the last trade price in the order's direction. A
// lost compare-and-swap is dropped: the next tick re-derives from whatever
// won.
func (s *Simulator) applyPriceImpact(symbol string, impact float64, side models.OrderSide) {
	cell, ok := s.marketData[symbol]
	if !ok {
		return
	}
	current, version, ok := cell.Load()
	if !ok {
		return
	}

	direction := 1.0
	if side == models.SideSell {
		direction = -1.0
	}

	next := current
	next.LastPrice = roundPrice(current.LastPrice * (1 + impact*direction))
	next.Timestamp = time.Now().UTC()

	if !cell.CompareAndSwap(version, next) {
		casConflicts.WithLabelValues("impact").Inc()
		return
	}
	observeMarketData(next)
}

// CancelOrder transitions a Pending order to Cancelled. Exactly one of any
// concurrent cancel attempts on the same id can succeed.
func (s *Simulator) CancelOrder(id string) (bool, error) {
	s.ordersMu.RLock()
	rec, ok := s.orders[id]
	s.ordersMu.RUnlock()
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}

	if !rec.status.CompareAndSwap(models.StatusPending, models.StatusCancelled) {
		return false, nil
	}

	s.log.Debug("cancelled order", zap.String("order_id", id))
	return true, nil
}

// OrderBook returns an immutable snapshot of the current book.
func (s *Simulator) OrderBook(symbol string) (models.OrderBook, error) {
	cell, ok := s.books[symbol]
	if !ok {
		return models.OrderBook{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	book, _, ok := cell.Load()
	if !ok {
		return models.OrderBook{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	return book.Clone(), nil
}

// MarketData returns the current market data snapshot.
func (s *Simulator) MarketData(symbol string) (models.MarketData, error) {
	cell, ok := s.marketData[symbol]
	if !ok {
		return models.MarketData{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	data, _, ok := cell.Load()
	if !ok {
		return models.MarketData{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	return data, nil
}

// Trades returns the trade log for symbol, optionally bounded below by since
// (inclusive), ordered ascending by timestamp.
func (s *Simulator) Trades(symbol string, since *time.Time) ([]models.Trade, error) {
	if _, ok := s.books[symbol]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	s.tradesMu.RLock()
	out := make([]models.Trade, 0, len(s.trades))
	for _, t := range s.trades {
		if t.Symbol != symbol {
			continue
		}
		if since != nil && t.Timestamp.Before(*since) {
			continue
		}
		out = append(out, t)
	}
	s.tradesMu.RUnlock()

	// Stable so trades from one sweep, which share a timestamp, keep their
	// execution order.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *Simulator) register(order models.Order) {
	rec := &orderRecord{order: order}
	rec.status.Store(order.Status)

	s.ordersMu.Lock()
	s.orders[order.ID] = rec
	s.ordersMu.Unlock()

	ordersSubmitted.WithLabelValues(order.Symbol, string(order.Side), string(order.Type)).Inc()
}

func (s *Simulator) recordTrades(trades []models.Trade) {
	if len(trades) == 0 {
		return
	}
	s.tradesMu.Lock()
	s.trades = append(s.trades, trades...)
	s.tradesMu.Unlock()

	tradesExecuted.WithLabelValues(trades[0].Symbol).Add(float64(len(trades)))
}

// counterpartyID synthesizes an id for the simulated resting side of a fill.
func counterpartyID() string {
	return "LP_" + uuid.NewString()[:8]
}
