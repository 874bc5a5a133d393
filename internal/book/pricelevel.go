// Package book implements the per-symbol order book: price-level ladders
// with FIFO queues, and the order-id index that makes cancellation O(1).
package book

import (
	"container/list"

	"fenrir/internal/common"
)

// PriceLevel is one price point on a ladder: a FIFO queue of resting
// orders plus a cached aggregate of their remaining quantity. The queue
// is an intrusive doubly-linked list — each order's *list.Element handle
// lives in the OrderBook's index, not on the order itself, so orders
// carry no back-pointer into the book they rest in.
type PriceLevel struct {
	Price         common.Decimal
	TotalQuantity common.Decimal
	orders        *list.List
}

// NewPriceLevel creates an empty level at price.
func NewPriceLevel(price common.Decimal) *PriceLevel {
	return &PriceLevel{
		Price:         price,
		TotalQuantity: common.Zero,
		orders:        list.New(),
	}
}

// Append enqueues order at the tail and returns the handle the caller
// must keep (in the book's index) to later remove it in O(1).
func (pl *PriceLevel) Append(order *common.Order) *list.Element {
	el := pl.orders.PushBack(order)
	pl.TotalQuantity = pl.TotalQuantity.Add(order.RemainingQuantity)
	return el
}

// PeekHead returns the earliest-arrived order at this level, or nil if
// the level is empty.
func (pl *PriceLevel) PeekHead() *common.Order {
	front := pl.orders.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*common.Order)
}

// ConsumeHead subtracts qty from the head order's remaining quantity.
// qty must not exceed the head's remaining quantity. If the head is
// fully consumed it is popped from the queue, marked FILLED, and
// returned with filled=true so the caller can drop it from the index.
func (pl *PriceLevel) ConsumeHead(qty common.Decimal) (maker *common.Order, filled bool) {
	front := pl.orders.Front()
	maker = front.Value.(*common.Order)
	maker.RemainingQuantity = maker.RemainingQuantity.Sub(qty)
	pl.TotalQuantity = pl.TotalQuantity.Sub(qty)
	if maker.RemainingQuantity.IsZero() {
		pl.orders.Remove(front)
		maker.Status = common.Filled
		return maker, true
	}
	maker.Status = common.Partial
	return maker, false
}

// Remove performs an O(1) removal of an interior (or head) order given
// its handle, updating TotalQuantity.
func (pl *PriceLevel) Remove(el *list.Element) *common.Order {
	order := el.Value.(*common.Order)
	pl.TotalQuantity = pl.TotalQuantity.Sub(order.RemainingQuantity)
	pl.orders.Remove(el)
	return order
}

// IsEmpty reports whether the queue holds no orders.
func (pl *PriceLevel) IsEmpty() bool {
	return pl.orders.Len() == 0
}
