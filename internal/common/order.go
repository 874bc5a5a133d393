package common

// Side is the direction of an order.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// OrderType is the tagged variant of the four order types this engine
// understands. Price is meaningful only for Limit, IOC and FOK; it is
// validated against the variant at submission time, not carried as a
// separate dynamic type.
type OrderType int

const (
	Market OrderType = iota
	Limit
	IOC
	FOK
)

func (t OrderType) String() string {
	switch t {
	case Market:
		return "market"
	case Limit:
		return "limit"
	case IOC:
		return "ioc"
	case FOK:
		return "fok"
	default:
		return "unknown"
	}
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus int

const (
	Pending OrderStatus = iota
	Partial
	Filled
	Cancelled
	Rejected
)

func (s OrderStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case Partial:
		return "partial"
	case Filled:
		return "filled"
	case Cancelled:
		return "cancelled"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Order is the engine's view of a single order. RemainingQuantity and
// Status are the only fields mutated after construction, and only while
// the owning OrderBook's region is held.
type Order struct {
	ID                string
	Symbol            string
	Side              Side
	Type              OrderType
	Price             Decimal
	HasPrice          bool
	OriginalQuantity  Decimal
	RemainingQuantity Decimal
	Status            OrderStatus
	Timestamp         int64 // microseconds, time-priority tiebreaker
}

// FilledQuantity derives the filled amount from original and remaining.
func (o *Order) FilledQuantity() Decimal {
	return o.OriginalQuantity.Sub(o.RemainingQuantity)
}

// Resting reports whether this order type is ever allowed to sit in the
// book. Only LIMIT orders rest; MARKET/IOC/FOK never do.
func (t OrderType) Resting() bool {
	return t == Limit
}
