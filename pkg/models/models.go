package models

import (
	"math"
	"time"
)

// OrderSide is the direction of an order
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// OrderType is the execution style of an order
type OrderType string

const (
	TypeMarket OrderType = "market"
	TypeLimit  OrderType = "limit"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	StatusPending         OrderStatus = "pending"
	StatusPartiallyFilled OrderStatus = "partially_filled"
	StatusFilled          OrderStatus = "filled"
	StatusCancelled       OrderStatus = "cancelled"
)

// Instrument identifies a tradable symbol and its price increment
type Instrument struct {
	Symbol   string  `json:"symbol" validate:"required"`
	TickSize float64 `json:"tick_size" validate:"gt=0"`
}

// OrderBookLevel is one resting price/quantity slot on a book side
type OrderBookLevel struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// OrderBook is a two-sided ladder of resting liquidity for one symbol.
// Bids are ordered descending by price, asks ascending. Level slices are
// treated as immutable once attached to a book; every update replaces the
// whole slice.
type OrderBook struct {
	Symbol    string           `json:"symbol"`
	Bids      []OrderBookLevel `json:"bids"`
	Asks      []OrderBookLevel `json:"asks"`
	Timestamp time.Time        `json:"timestamp"`
}

// BestBid returns the highest bid price, or 0 for an empty bid side.
func (b OrderBook) BestBid() float64 {
	if len(b.Bids) == 0 {
		return 0
	}
	return b.Bids[0].Price
}

// BestAsk returns the lowest ask price, or +Inf for an empty ask side.
func (b OrderBook) BestAsk() float64 {
	if len(b.Asks) == 0 {
		return math.Inf(1)
	}
	return b.Asks[0].Price
}

// Spread is the distance between best ask and best bid.
func (b OrderBook) Spread() float64 {
	return b.BestAsk() - b.BestBid()
}

// MidPrice is the midpoint between the best quotes.
func (b OrderBook) MidPrice() float64 {
	return (b.BestBid() + b.BestAsk()) / 2
}

// Clone returns a deep copy safe to hand across the engine boundary.
func (b OrderBook) Clone() OrderBook {
	c := b
	c.Bids = append([]OrderBookLevel(nil), b.Bids...)
	c.Asks = append([]OrderBookLevel(nil), b.Asks...)
	return c
}

// MarketData is the current top-of-book snapshot for one symbol,
// replaced wholesale on every update.
type MarketData struct {
	Symbol    string    `json:"symbol"`
	BidPrice  float64   `json:"bid_price"`
	AskPrice  float64   `json:"ask_price"`
	LastPrice float64   `json:"last_price"`
	BidSize   float64   `json:"bid_size"`
	AskSize   float64   `json:"ask_size"`
	Timestamp time.Time `json:"timestamp"`
}

// Order is a single submission against the simulated market. Price is only
// meaningful for limit orders.
type Order struct {
	ID             string      `json:"id"`
	Symbol         string      `json:"symbol"`
	Side           OrderSide   `json:"side"`
	Type           OrderType   `json:"type"`
	Quantity       float64     `json:"quantity"`
	Price          float64     `json:"price,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
	Status         OrderStatus `json:"status"`
	FilledQuantity float64     `json:"filled_quantity"`
	AveragePrice   float64     `json:"average_price"`
}

// Trade is one fill against a resting level. Append-only, never mutated.
type Trade struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Price       float64   `json:"price"`
	Quantity    float64   `json:"quantity"`
	Timestamp   time.Time `json:"timestamp"`
	BuyOrderID  string    `json:"buy_order_id"`
	SellOrderID string    `json:"sell_order_id"`
}
