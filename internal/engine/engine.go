// Package engine implements the matching engine: a registry of per-symbol
// order books, the match algorithm, and buffered event dispatch.
package engine

import (
	"errors"
	"sync"
	"time"

	"fenrir/internal/book"
	"fenrir/internal/common"
	"fenrir/internal/telemetry/metrics"
	"fenrir/internal/workerpool"
	"github.com/google/uuid"
)

// MatchingEngine is the entry point for submit/cancel/query. It owns one
// OrderBook per symbol, a single logical clock shared by every symbol for
// time-priority ordering, and a sharded dispatch pool that invokes event
// sinks strictly after a book's region has been released.
type MatchingEngine struct {
	clock *common.Clock

	registryMu sync.RWMutex
	books      map[string]*book.OrderBook

	dispatch *workerpool.Pool

	sinkMu     sync.RWMutex
	tradeSinks []TradeSink
	bboSinks   []BBOSink
}

// New creates an engine whose event dispatch pool has shardCount shards.
func New(shardCount int) *MatchingEngine {
	return &MatchingEngine{
		clock:    common.NewClock(),
		books:    make(map[string]*book.OrderBook),
		dispatch: workerpool.New(shardCount),
	}
}

// RegisterTradeSink adds a trade subscriber. Safe to call concurrently
// with Submit/Cancel.
func (e *MatchingEngine) RegisterTradeSink(fn TradeSink) {
	e.sinkMu.Lock()
	defer e.sinkMu.Unlock()
	e.tradeSinks = append(e.tradeSinks, fn)
}

// RegisterBBOSink adds a BBO subscriber. Safe to call concurrently with
// Submit/Cancel.
func (e *MatchingEngine) RegisterBBOSink(fn BBOSink) {
	e.sinkMu.Lock()
	defer e.sinkMu.Unlock()
	e.bboSinks = append(e.bboSinks, fn)
}

// Stop signals the dispatch pool's shard goroutines to exit and waits for
// them; events still queued at that point are not delivered.
func (e *MatchingEngine) Stop() error {
	return e.dispatch.Stop()
}

func (e *MatchingEngine) getOrCreateBook(symbol string) *book.OrderBook {
	e.registryMu.RLock()
	b, ok := e.books[symbol]
	e.registryMu.RUnlock()
	if ok {
		return b
	}

	e.registryMu.Lock()
	defer e.registryMu.Unlock()
	if b, ok = e.books[symbol]; ok {
		return b
	}
	b = book.New(symbol)
	e.books[symbol] = b
	return b
}

func (e *MatchingEngine) lookupBook(symbol string) (*book.OrderBook, bool) {
	e.registryMu.RLock()
	defer e.registryMu.RUnlock()
	b, ok := e.books[symbol]
	return b, ok
}

func validateSubmit(req SubmitRequest) error {
	if req.Symbol == "" {
		return errors.New("symbol is required")
	}
	if !req.Quantity.IsPositive() {
		return errors.New("quantity must be positive")
	}
	switch req.Type {
	case common.Market:
	case common.Limit, common.IOC, common.FOK:
		if !req.HasPrice || !req.Price.IsPositive() {
			return errors.New("price is required and must be positive for this order type")
		}
	default:
		return errors.New("unknown order type")
	}
	return nil
}

// Submit validates, assigns an id and timestamp, and runs req through the
// match algorithm against its symbol's book. Validation failures never
// escape as an error: they come back as a REJECTED result.
func (e *MatchingEngine) Submit(req SubmitRequest) SubmitResult {
	if err := validateSubmit(req); err != nil {
		metrics.OrdersSubmitted.WithLabelValues(req.Symbol, common.Rejected.String()).Inc()
		return SubmitResult{
			Status:            common.Rejected,
			FilledQuantity:    common.Zero,
			RemainingQuantity: common.Zero,
		}
	}

	b := e.getOrCreateBook(req.Symbol)

	order := &common.Order{
		ID:                uuid.NewString(),
		Symbol:            req.Symbol,
		Side:              req.Side,
		Type:              req.Type,
		Price:             req.Price,
		HasPrice:          req.HasPrice,
		OriginalQuantity:  req.Quantity,
		RemainingQuantity: req.Quantity,
		Status:            common.Pending,
	}

	var trades []common.Trade
	var bboEvt *BBOSnapshot

	b.Lock()
	start := time.Now()
	order.Timestamp = e.clock.Next()
	pre := snapshotBBOState(b)
	trades = e.matchOrder(b, order)
	post := snapshotBBOState(b)
	if pre.changed(post) {
		snap := post.toSnapshot(req.Symbol, order.Timestamp)
		bboEvt = &snap
	}
	b.Unlock()
	metrics.MatchLatency.WithLabelValues(req.Symbol).Observe(time.Since(start).Seconds())

	metrics.OrdersSubmitted.WithLabelValues(req.Symbol, order.Status.String()).Inc()
	metrics.TradesExecuted.WithLabelValues(req.Symbol).Add(float64(len(trades)))
	recordSpreadMetric(req.Symbol, bboEvt)

	e.dispatchEvents(req.Symbol, trades, bboEvt)

	return SubmitResult{
		OrderID:           order.ID,
		Status:            order.Status,
		FilledQuantity:    order.FilledQuantity(),
		RemainingQuantity: order.RemainingQuantity,
		Trades:            trades,
		Timestamp:         order.Timestamp,
	}
}

// recordSpreadMetric updates the best-bid/best-ask spread gauge whenever
// a BBO-changing event leaves both sides of the book non-empty.
func recordSpreadMetric(symbol string, bboEvt *BBOSnapshot) {
	if bboEvt == nil || !bboEvt.HasBid || !bboEvt.HasAsk {
		return
	}
	spread := bboEvt.BestAsk.Sub(bboEvt.BestBid).InexactFloat64()
	metrics.BestBidAskSpread.WithLabelValues(symbol).Set(spread)
}

// matchOrder runs §4.3.2 against taker inside the book's region and
// returns the trades produced. It leaves taker.Status and
// taker.RemainingQuantity in their final state and, for LIMIT orders with
// a residual, rests taker in b.
func (e *MatchingEngine) matchOrder(b *book.OrderBook, taker *common.Order) []common.Trade {
	var trades []common.Trade

	if taker.Type == common.FOK {
		var bound *common.Decimal
		if taker.HasPrice {
			bound = &taker.Price
		}
		if b.SumMarketable(taker.Side, bound).LessThan(taker.OriginalQuantity) {
			taker.Status = common.Cancelled
			return nil
		}
	}

	for taker.RemainingQuantity.IsPositive() {
		makerPrice, ok := b.BestOppositePrice(taker.Side)
		if !ok {
			break
		}
		if taker.HasPrice {
			if taker.Side == common.Buy && makerPrice.GreaterThan(taker.Price) {
				break
			}
			if taker.Side == common.Sell && makerPrice.LessThan(taker.Price) {
				break
			}
		}

		maker, tradeQty, _ := b.ConsumeBestOpposite(taker.Side, taker.RemainingQuantity)
		taker.RemainingQuantity = taker.RemainingQuantity.Sub(tradeQty)

		trades = append(trades, common.Trade{
			TradeID:       uuid.NewString(),
			Symbol:        b.Symbol,
			Price:         makerPrice,
			Quantity:      tradeQty,
			Timestamp:     e.clock.Next(),
			AggressorSide: taker.Side,
			MakerOrderID:  maker.ID,
			TakerOrderID:  taker.ID,
		})
	}

	switch {
	case taker.RemainingQuantity.IsZero():
		taker.Status = common.Filled
	case taker.Type == common.Limit:
		b.AddResting(taker)
		if len(trades) > 0 {
			taker.Status = common.Partial
		} else {
			taker.Status = common.Pending
		}
	default:
		taker.Status = common.Cancelled
	}

	return trades
}

// Cancel removes a resting order from its book. A not-found or
// already-terminal order id returns ErrOrderNotFound and changes nothing.
func (e *MatchingEngine) Cancel(symbol, orderID string) (CancelResult, error) {
	b, ok := e.lookupBook(symbol)
	if !ok {
		return CancelResult{}, ErrOrderNotFound
	}

	var result CancelResult
	var bboEvt *BBOSnapshot
	found := false

	b.Lock()
	pre := snapshotBBOState(b)
	order, cancelled := b.Cancel(orderID)
	if cancelled {
		found = true
		ts := e.clock.Next()
		post := snapshotBBOState(b)
		if pre.changed(post) {
			snap := post.toSnapshot(symbol, ts)
			bboEvt = &snap
		}
		result = CancelResult{OrderID: order.ID, Status: common.Cancelled, Timestamp: ts}
	}
	b.Unlock()

	if !found {
		return CancelResult{}, ErrOrderNotFound
	}

	recordSpreadMetric(symbol, bboEvt)
	e.dispatchEvents(symbol, nil, bboEvt)
	return result, nil
}

// BBO returns a coherent best-bid/best-ask snapshot. An unknown symbol
// returns an empty snapshot rather than registering it.
func (e *MatchingEngine) BBO(symbol string) BBOSnapshot {
	b, ok := e.lookupBook(symbol)
	if !ok {
		return BBOSnapshot{Symbol: symbol, Timestamp: e.clock.Next()}
	}
	b.Lock()
	state := snapshotBBOState(b)
	b.Unlock()
	return state.toSnapshot(symbol, e.clock.Next())
}

// L2 returns a coherent depth snapshot of up to depth levels per side. An
// unknown symbol returns an empty snapshot rather than registering it.
func (e *MatchingEngine) L2(symbol string, depth int) L2Snapshot {
	b, ok := e.lookupBook(symbol)
	if !ok {
		return L2Snapshot{Symbol: symbol, Timestamp: e.clock.Next()}
	}
	b.Lock()
	bids, asks := b.L2Snapshot(depth)
	b.Unlock()
	return L2Snapshot{
		Symbol:    symbol,
		Timestamp: e.clock.Next(),
		Bids:      toLevelViews(bids),
		Asks:      toLevelViews(asks),
	}
}

func toLevelViews(levels [][2]common.Decimal) []PriceLevelView {
	views := make([]PriceLevelView, len(levels))
	for i, lvl := range levels {
		views[i] = PriceLevelView{Price: lvl[0], Quantity: lvl[1]}
	}
	return views
}

// dispatchEvents hands trades and an optional BBO update to the dispatch
// pool, keyed by symbol so that every event for one symbol lands on the
// same shard in the order its originating submission linearized. Must
// only be called after the originating book's region has been released.
func (e *MatchingEngine) dispatchEvents(symbol string, trades []common.Trade, bboEvt *BBOSnapshot) {
	if len(trades) == 0 && bboEvt == nil {
		return
	}

	e.sinkMu.RLock()
	tradeSinks := append([]TradeSink(nil), e.tradeSinks...)
	bboSinks := append([]BBOSink(nil), e.bboSinks...)
	e.sinkMu.RUnlock()

	if len(tradeSinks) == 0 && len(bboSinks) == 0 {
		return
	}

	e.dispatch.Dispatch(symbol, func() {
		for _, trade := range trades {
			for _, sink := range tradeSinks {
				sink(trade)
			}
		}
		if bboEvt != nil {
			for _, sink := range bboSinks {
				sink(symbol, *bboEvt)
			}
		}
	})
}

// bboState is a point-in-time BBO reading used to detect whether a
// mutating operation changed the top of book.
type bboState struct {
	bidOK            bool
	bidPrice, bidQty common.Decimal
	askOK            bool
	askPrice, askQty common.Decimal
}

func snapshotBBOState(b *book.OrderBook) bboState {
	bidPrice, bidQty, bidOK, askPrice, askQty, askOK := b.BBO()
	return bboState{bidOK: bidOK, bidPrice: bidPrice, bidQty: bidQty, askOK: askOK, askPrice: askPrice, askQty: askQty}
}

func (s bboState) changed(other bboState) bool {
	if s.bidOK != other.bidOK || s.askOK != other.askOK {
		return true
	}
	if s.bidOK && (!s.bidPrice.Equal(other.bidPrice) || !s.bidQty.Equal(other.bidQty)) {
		return true
	}
	if s.askOK && (!s.askPrice.Equal(other.askPrice) || !s.askQty.Equal(other.askQty)) {
		return true
	}
	return false
}

func (s bboState) toSnapshot(symbol string, ts int64) BBOSnapshot {
	return BBOSnapshot{
		Symbol:          symbol,
		Timestamp:       ts,
		BestBid:         s.bidPrice,
		BestBidQuantity: s.bidQty,
		HasBid:          s.bidOK,
		BestAsk:         s.askPrice,
		BestAskQuantity: s.askQty,
		HasAsk:          s.askOK,
	}
}
