package httpapi

import (
	"time"

	"fenrir/internal/common"
	"fenrir/internal/engine"
)

func formatTimestamp(micros int64) string {
	return time.UnixMicro(micros).UTC().Format("2006-01-02T15:04:05.000000Z")
}

// submitRequestDTO is the §6.2 submit-request wire shape.
type submitRequestDTO struct {
	Symbol    string `json:"symbol" binding:"required"`
	OrderType string `json:"order_type" binding:"required"`
	Side      string `json:"side" binding:"required"`
	Quantity  string `json:"quantity" binding:"required"`
	Price     string `json:"price,omitempty"`
}

func (r submitRequestDTO) toEngineRequest() (engine.SubmitRequest, error) {
	side, err := parseSide(r.Side)
	if err != nil {
		return engine.SubmitRequest{}, err
	}
	orderType, err := parseOrderType(r.OrderType)
	if err != nil {
		return engine.SubmitRequest{}, err
	}
	qty, err := common.ParseDecimal(r.Quantity)
	if err != nil {
		return engine.SubmitRequest{}, err
	}

	req := engine.SubmitRequest{Symbol: r.Symbol, Side: side, Type: orderType, Quantity: qty}
	if r.Price != "" {
		price, err := common.ParseDecimal(r.Price)
		if err != nil {
			return engine.SubmitRequest{}, err
		}
		req.Price = price
		req.HasPrice = true
	}
	return req, nil
}

func parseSide(s string) (common.Side, error) {
	switch s {
	case "buy":
		return common.Buy, nil
	case "sell":
		return common.Sell, nil
	default:
		return 0, errUnknownSide
	}
}

func parseOrderType(s string) (common.OrderType, error) {
	switch s {
	case "market":
		return common.Market, nil
	case "limit":
		return common.Limit, nil
	case "ioc":
		return common.IOC, nil
	case "fok":
		return common.FOK, nil
	default:
		return 0, errUnknownOrderType
	}
}

func statusWire(s common.OrderStatus) string { return s.String() }

// tradeDTO is the §6.2 trade wire shape.
type tradeDTO struct {
	Timestamp     string `json:"timestamp"`
	Symbol        string `json:"symbol"`
	TradeID       string `json:"trade_id"`
	Price         string `json:"price"`
	Quantity      string `json:"quantity"`
	AggressorSide string `json:"aggressor_side"`
	MakerOrderID  string `json:"maker_order_id"`
	TakerOrderID  string `json:"taker_order_id"`
}

func tradesToDTO(symbol string, trades []common.Trade) []tradeDTO {
	out := make([]tradeDTO, len(trades))
	for i, t := range trades {
		out[i] = tradeDTO{
			Timestamp:     formatTimestamp(t.Timestamp),
			Symbol:        symbol,
			TradeID:       t.TradeID,
			Price:         t.Price.String(),
			Quantity:      t.Quantity.String(),
			AggressorSide: t.AggressorSide.String(),
			MakerOrderID:  t.MakerOrderID,
			TakerOrderID:  t.TakerOrderID,
		}
	}
	return out
}

// submitResultDTO is the §6.2 submit-result wire shape.
type submitResultDTO struct {
	OrderID           string     `json:"order_id"`
	Status            string     `json:"status"`
	FilledQuantity    string     `json:"filled_quantity"`
	RemainingQuantity string     `json:"remaining_quantity"`
	Trades            []tradeDTO `json:"trades"`
	Timestamp         string     `json:"timestamp"`
}

func submitResultToDTO(res engine.SubmitResult) submitResultDTO {
	return submitResultDTO{
		OrderID:           res.OrderID,
		Status:            statusWire(res.Status),
		FilledQuantity:    res.FilledQuantity.String(),
		RemainingQuantity: res.RemainingQuantity.String(),
		Trades:            tradesToDTO(symbolOf(res), res.Trades),
		Timestamp:         formatTimestamp(res.Timestamp),
	}
}

// symbolOf recovers the symbol for trade DTOs: every trade in a
// submission result shares the submission's own symbol.
func symbolOf(res engine.SubmitResult) string {
	if len(res.Trades) > 0 {
		return res.Trades[0].Symbol
	}
	return ""
}

// cancelResultDTO is the §6.2 cancel-result wire shape.
type cancelResultDTO struct {
	OrderID   string `json:"order_id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func cancelResultToDTO(res engine.CancelResult) cancelResultDTO {
	return cancelResultDTO{
		OrderID:   res.OrderID,
		Status:    statusWire(res.Status),
		Timestamp: formatTimestamp(res.Timestamp),
	}
}

// bboDTO is the §6.2 BBO wire shape.
type bboDTO struct {
	Timestamp       string  `json:"timestamp"`
	Symbol          string  `json:"symbol"`
	BestBid         *string `json:"best_bid"`
	BestBidQuantity *string `json:"best_bid_quantity"`
	BestAsk         *string `json:"best_ask"`
	BestAskQuantity *string `json:"best_ask_quantity"`
}

func bboToDTO(snap engine.BBOSnapshot) bboDTO {
	dto := bboDTO{Timestamp: formatTimestamp(snap.Timestamp), Symbol: snap.Symbol}
	if snap.HasBid {
		bid, qty := snap.BestBid.String(), snap.BestBidQuantity.String()
		dto.BestBid, dto.BestBidQuantity = &bid, &qty
	}
	if snap.HasAsk {
		ask, qty := snap.BestAsk.String(), snap.BestAskQuantity.String()
		dto.BestAsk, dto.BestAskQuantity = &ask, &qty
	}
	return dto
}

// l2DTO is the §6.2 L2 snapshot wire shape: each level a [price, qty]
// pair of decimal strings.
type l2DTO struct {
	Timestamp string     `json:"timestamp"`
	Symbol    string     `json:"symbol"`
	Bids      [][2]string `json:"bids"`
	Asks      [][2]string `json:"asks"`
}

func l2ToDTO(snap engine.L2Snapshot) l2DTO {
	dto := l2DTO{
		Timestamp: formatTimestamp(snap.Timestamp),
		Symbol:    snap.Symbol,
		Bids:      make([][2]string, len(snap.Bids)),
		Asks:      make([][2]string, len(snap.Asks)),
	}
	for i, lvl := range snap.Bids {
		dto.Bids[i] = [2]string{lvl.Price.String(), lvl.Quantity.String()}
	}
	for i, lvl := range snap.Asks {
		dto.Asks[i] = [2]string{lvl.Price.String(), lvl.Quantity.String()}
	}
	return dto
}
