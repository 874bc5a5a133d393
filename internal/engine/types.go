package engine

import "fenrir/internal/common"

// SubmitRequest is the engine's entry point for a new order. Price is
// only consulted when OrderType requires it; callers pass HasPrice to
// disambiguate an absent price from a zero one.
type SubmitRequest struct {
	Symbol   string
	Side     common.Side
	Type     common.OrderType
	Price    common.Decimal
	HasPrice bool
	Quantity common.Decimal
}

// SubmitResult reports the outcome of one submission: the assigned order,
// its final status and quantities, and every trade this submission
// produced, in emission order.
type SubmitResult struct {
	OrderID           string
	Status            common.OrderStatus
	FilledQuantity    common.Decimal
	RemainingQuantity common.Decimal
	Trades            []common.Trade
	Timestamp         int64
}

// CancelResult reports the outcome of a cancel request.
type CancelResult struct {
	OrderID   string
	Status    common.OrderStatus
	Timestamp int64
}

// BBOSnapshot is a coherent best-bid/best-ask read.
type BBOSnapshot struct {
	Symbol          string
	Timestamp       int64
	BestBid         common.Decimal
	BestBidQuantity common.Decimal
	HasBid          bool
	BestAsk         common.Decimal
	BestAskQuantity common.Decimal
	HasAsk          bool
}

// PriceLevelView is one (price, aggregate_quantity) row of an L2 snapshot.
type PriceLevelView struct {
	Price    common.Decimal
	Quantity common.Decimal
}

// L2Snapshot is a coherent depth read, each side already ordered in
// priority order: bids high to low, asks low to high.
type L2Snapshot struct {
	Symbol    string
	Timestamp int64
	Bids      []PriceLevelView
	Asks      []PriceLevelView
}

// TradeSink receives every trade the engine produces, in per-symbol
// emission order, after the originating book's region has been released.
type TradeSink func(common.Trade)

// BBOSink receives a BBO update whenever a submission or cancel changes
// the top of book for symbol, after the originating book's region has
// been released.
type BBOSink func(symbol string, snapshot BBOSnapshot)
