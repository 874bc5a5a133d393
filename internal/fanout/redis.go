// Package fanout implements concrete event sinks that publish engine
// events to downstream subscribers. The engine's own responsibility ends
// at buffered event emission; everything past that — broadcast,
// back-pressure, per-subscriber queues — belongs here.
package fanout

import (
	"context"
	"encoding/json"
	"time"

	"fenrir/internal/common"
	"fenrir/internal/engine"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisSink publishes trade and BBO events as JSON to per-symbol Redis
// pub/sub channels. A publish failure is logged and dropped: the engine
// must never block or retry because a subscriber is slow or gone.
type RedisSink struct {
	client *redis.Client
}

// NewRedisSink dials addr and returns a sink whose OnTrade/OnBBO methods
// are suitable for engine.RegisterTradeSink / engine.RegisterBBOSink.
func NewRedisSink(addr string) *RedisSink {
	return &RedisSink{client: redis.NewClient(&redis.Options{Addr: addr})}
}

type tradeWireRecord struct {
	Timestamp     string `json:"timestamp"`
	Symbol        string `json:"symbol"`
	TradeID       string `json:"trade_id"`
	Price         string `json:"price"`
	Quantity      string `json:"quantity"`
	AggressorSide string `json:"aggressor_side"`
	MakerOrderID  string `json:"maker_order_id"`
	TakerOrderID  string `json:"taker_order_id"`
}

type bboWireRecord struct {
	Timestamp       string  `json:"timestamp"`
	Symbol          string  `json:"symbol"`
	BestBid         *string `json:"best_bid"`
	BestBidQuantity *string `json:"best_bid_quantity"`
	BestAsk         *string `json:"best_ask"`
	BestAskQuantity *string `json:"best_ask_quantity"`
}

func formatTimestamp(micros int64) string {
	return time.UnixMicro(micros).UTC().Format("2006-01-02T15:04:05.000000Z")
}

// OnTrade implements engine.TradeSink: publish t on
// "fenrir.trades.<symbol>".
func (s *RedisSink) OnTrade(t common.Trade) {
	record := tradeWireRecord{
		Timestamp:     formatTimestamp(t.Timestamp),
		Symbol:        t.Symbol,
		TradeID:       t.TradeID,
		Price:         t.Price.String(),
		Quantity:      t.Quantity.String(),
		AggressorSide: t.AggressorSide.String(),
		MakerOrderID:  t.MakerOrderID,
		TakerOrderID:  t.TakerOrderID,
	}
	s.publish("fenrir.trades."+t.Symbol, record)
}

// OnBBO implements engine.BBOSink: publish snap on
// "fenrir.bbo.<symbol>".
func (s *RedisSink) OnBBO(symbol string, snap engine.BBOSnapshot) {
	record := bboWireRecord{
		Timestamp: formatTimestamp(snap.Timestamp),
		Symbol:    symbol,
	}
	if snap.HasBid {
		bid, qty := snap.BestBid.String(), snap.BestBidQuantity.String()
		record.BestBid, record.BestBidQuantity = &bid, &qty
	}
	if snap.HasAsk {
		ask, qty := snap.BestAsk.String(), snap.BestAskQuantity.String()
		record.BestAsk, record.BestAskQuantity = &ask, &qty
	}
	s.publish("fenrir.bbo."+symbol, record)
}

func (s *RedisSink) publish(channel string, record any) {
	payload, err := json.Marshal(record)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("marshal event for publish")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.client.Publish(ctx, channel, payload).Err(); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("publish event")
	}
}

// Close releases the underlying Redis connection.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
