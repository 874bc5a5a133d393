package book

import (
	"container/list"
	"sync"

	"fenrir/internal/common"
	"github.com/tidwall/btree"
)

// locator is what the order-id index stores: enough to find and remove
// an order from its level in O(1) without the order knowing anything
// about the book it rests in.
type locator struct {
	side  common.Side
	level *PriceLevel
	elem  *list.Element
}

// OrderBook is the authoritative state for one symbol: two ordered
// price ladders (bids descending, asks ascending) and an order-id index
// for O(1) cancellation. All mutation and coherent reads happen inside
// the book's single exclusive region (Lock/Unlock); the matching engine
// is the only caller and never holds more than one book's lock at once.
type OrderBook struct {
	Symbol string

	mu    sync.Mutex
	bids  *btree.BTreeG[*PriceLevel] // best = highest price
	asks  *btree.BTreeG[*PriceLevel] // best = lowest price
	index map[string]*locator
}

// New creates an empty book for symbol.
func New(symbol string) *OrderBook {
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.GreaterThan(b.Price)
	})
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.LessThan(b.Price)
	})
	return &OrderBook{
		Symbol: symbol,
		bids:   bids,
		asks:   asks,
		index:  make(map[string]*locator),
	}
}

// Lock acquires the book's exclusive region. Every mutation and every
// coherent read goes through Lock/Unlock so callers observe a single
// linearization point.
func (ob *OrderBook) Lock() { ob.mu.Lock() }

// Unlock releases the book's exclusive region.
func (ob *OrderBook) Unlock() { ob.mu.Unlock() }

func oppositeSide(s common.Side) common.Side {
	if s == common.Buy {
		return common.Sell
	}
	return common.Buy
}

func (ob *OrderBook) ladder(side common.Side) *btree.BTreeG[*PriceLevel] {
	if side == common.Buy {
		return ob.bids
	}
	return ob.asks
}

// BestOppositePrice peeks the price of the best level on the side
// opposite to takerSide, without mutating anything.
func (ob *OrderBook) BestOppositePrice(takerSide common.Side) (common.Decimal, bool) {
	lvl, ok := ob.ladder(oppositeSide(takerSide)).Min()
	if !ok {
		return common.Zero, false
	}
	return lvl.Price, true
}

// ConsumeBestOpposite matches against the head of the best level on the
// side opposite takerSide, consuming min(takerRemaining, maker's
// remaining). It performs all required bookkeeping: popping a fully
// filled maker from its level (and the index), and destroying the level
// if it becomes empty. Caller must have already confirmed a level
// exists (BestOppositePrice) and passed its price-bound check.
func (ob *OrderBook) ConsumeBestOpposite(takerSide common.Side, takerRemaining common.Decimal) (maker *common.Order, tradeQty common.Decimal, makerFilled bool) {
	levels := ob.ladder(oppositeSide(takerSide))
	lvl, ok := levels.Min()
	if !ok {
		return nil, common.Zero, false
	}
	head := lvl.PeekHead()
	tradeQty = common.MinDecimal(takerRemaining, head.RemainingQuantity)
	maker, makerFilled = lvl.ConsumeHead(tradeQty)
	if makerFilled {
		delete(ob.index, maker.ID)
	}
	if lvl.IsEmpty() {
		levels.Delete(lvl)
	}
	return maker, tradeQty, makerFilled
}

// SumMarketable sums the resting quantity opposite takerSide that is
// price-compatible with bound (nil means unbounded), starting from the
// best price and stopping at the first incompatible level — levels are
// visited in priority order, so the first violation means every
// remaining level is worse too. Used by FOK's pre-match dry run.
func (ob *OrderBook) SumMarketable(takerSide common.Side, bound *common.Decimal) common.Decimal {
	sum := common.Zero
	for _, lvl := range ob.ladder(oppositeSide(takerSide)).Items() {
		if bound != nil {
			if takerSide == common.Buy && lvl.Price.GreaterThan(*bound) {
				break
			}
			if takerSide == common.Sell && lvl.Price.LessThan(*bound) {
				break
			}
		}
		sum = sum.Add(lvl.TotalQuantity)
	}
	return sum
}

// AddResting inserts a LIMIT order with remaining > 0, creating its
// price level if this is the first order there, and registering it in
// the index for O(1) cancellation.
func (ob *OrderBook) AddResting(order *common.Order) {
	levels := ob.ladder(order.Side)
	probe := &PriceLevel{Price: order.Price}
	lvl, ok := levels.GetMut(probe)
	if !ok {
		lvl = NewPriceLevel(order.Price)
		levels.Set(lvl)
	}
	el := lvl.Append(order)
	ob.index[order.ID] = &locator{side: order.Side, level: lvl, elem: el}
}

// Cancel locates order_id via the index and removes it in O(1),
// destroying its level if it is now empty. Returns the cancelled order,
// or ok=false if the id is unknown (already terminal or never existed).
func (ob *OrderBook) Cancel(orderID string) (order *common.Order, ok bool) {
	loc, found := ob.index[orderID]
	if !found {
		return nil, false
	}
	order = loc.level.Remove(loc.elem)
	delete(ob.index, orderID)
	if loc.level.IsEmpty() {
		ob.ladder(loc.side).Delete(loc.level)
	}
	order.Status = common.Cancelled
	return order, true
}

// BBO returns the best bid/ask price and aggregate quantity at that
// price; either side's ok flag is false when that side is empty.
func (ob *OrderBook) BBO() (bidPrice, bidQty common.Decimal, bidOK bool, askPrice, askQty common.Decimal, askOK bool) {
	if lvl, found := ob.bids.Min(); found {
		bidPrice, bidQty, bidOK = lvl.Price, lvl.TotalQuantity, true
	}
	if lvl, found := ob.asks.Min(); found {
		askPrice, askQty, askOK = lvl.Price, lvl.TotalQuantity, true
	}
	return
}

// L2Snapshot returns up to depth (price, aggregate_quantity) tuples per
// side, in priority order: bids high to low, asks low to high.
func (ob *OrderBook) L2Snapshot(depth int) (bids, asks [][2]common.Decimal) {
	for i, lvl := range ob.bids.Items() {
		if i >= depth {
			break
		}
		bids = append(bids, [2]common.Decimal{lvl.Price, lvl.TotalQuantity})
	}
	for i, lvl := range ob.asks.Items() {
		if i >= depth {
			break
		}
		asks = append(asks, [2]common.Decimal{lvl.Price, lvl.TotalQuantity})
	}
	return bids, asks
}

// CheckInvariants re-derives and asserts the universal invariants of
// §8: no crossed book, every level's cached total matches its queue sum,
// every indexed order has positive remaining quantity. It panics on
// violation — these are fatal, unrepairable invariant breaks, never
// silently patched. Intended for use in tests and, optionally, after
// every mutating call in non-production builds.
func (ob *OrderBook) CheckInvariants() {
	bestBid, _, bidOK, bestAsk, _, askOK := ob.BBO()
	if bidOK && askOK && !bestBid.LessThan(bestAsk) {
		panic("book invariant violated: best bid is not strictly less than best ask")
	}
	for _, lvl := range ob.bids.Items() {
		lvl.checkTotal()
	}
	for _, lvl := range ob.asks.Items() {
		lvl.checkTotal()
	}
}

func (pl *PriceLevel) checkTotal() {
	sum := common.Zero
	for e := pl.orders.Front(); e != nil; e = e.Next() {
		order := e.Value.(*common.Order)
		if !order.RemainingQuantity.IsPositive() {
			panic("book invariant violated: resting order with non-positive remaining quantity")
		}
		sum = sum.Add(order.RemainingQuantity)
	}
	if !sum.Equal(pl.TotalQuantity) {
		panic("book invariant violated: price level total_quantity diverged from queue sum")
	}
}
