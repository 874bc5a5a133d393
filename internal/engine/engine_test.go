package engine

import (
	"sync"
	"testing"

	"fenrir/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) common.Decimal {
	t.Helper()
	d, err := common.ParseDecimal(s)
	require.NoError(t, err)
	return d
}

func TestSubmit_S1_SimpleCross(t *testing.T) {
	e := New(2)

	e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Sell, Type: common.Limit, Price: dec(t, "50100"), HasPrice: true, Quantity: dec(t, "1.0")})
	e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Sell, Type: common.Limit, Price: dec(t, "50200"), HasPrice: true, Quantity: dec(t, "2.0")})

	res := e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Buy, Type: common.Limit, Price: dec(t, "50150"), HasPrice: true, Quantity: dec(t, "1.5")})

	require.Equal(t, common.Partial, res.Status)
	require.Len(t, res.Trades, 1)
	assert.True(t, res.Trades[0].Price.Equal(dec(t, "50100")))
	assert.True(t, res.Trades[0].Quantity.Equal(dec(t, "1.0")))
	assert.True(t, res.RemainingQuantity.Equal(dec(t, "0.5")))

	bbo := e.BBO("BTC-USD")
	require.True(t, bbo.HasBid)
	assert.True(t, bbo.BestBid.Equal(dec(t, "50150")))
	assert.True(t, bbo.BestBidQuantity.Equal(dec(t, "0.5")))
	require.True(t, bbo.HasAsk)
	assert.True(t, bbo.BestAsk.Equal(dec(t, "50200")))
	assert.True(t, bbo.BestAskQuantity.Equal(dec(t, "2.0")))
}

func TestSubmit_S2_FIFOWithinPrice(t *testing.T) {
	e := New(2)

	resA := e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Buy, Type: common.Limit, Price: dec(t, "50000"), HasPrice: true, Quantity: dec(t, "2.0")})
	resB := e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Buy, Type: common.Limit, Price: dec(t, "50000"), HasPrice: true, Quantity: dec(t, "3.0")})
	require.Less(t, resA.Timestamp, resB.Timestamp)

	taker := e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Sell, Type: common.Limit, Price: dec(t, "50000"), HasPrice: true, Quantity: dec(t, "4.0")})

	require.Equal(t, common.Filled, taker.Status)
	require.Len(t, taker.Trades, 2)
	assert.Equal(t, resA.OrderID, taker.Trades[0].MakerOrderID)
	assert.True(t, taker.Trades[0].Quantity.Equal(dec(t, "2.0")))
	assert.Equal(t, resB.OrderID, taker.Trades[1].MakerOrderID)
	assert.True(t, taker.Trades[1].Quantity.Equal(dec(t, "2.0")))
}

func TestSubmit_S3_FOKInsufficientLiquidity(t *testing.T) {
	e := New(2)
	e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Sell, Type: common.Limit, Price: dec(t, "50100"), HasPrice: true, Quantity: dec(t, "2.0")})

	res := e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Buy, Type: common.FOK, Price: dec(t, "50100"), HasPrice: true, Quantity: dec(t, "2.5")})

	require.Equal(t, common.Cancelled, res.Status)
	require.Empty(t, res.Trades)
	assert.True(t, res.FilledQuantity.IsZero())

	bbo := e.BBO("BTC-USD")
	require.True(t, bbo.HasAsk)
	assert.True(t, bbo.BestAskQuantity.Equal(dec(t, "2.0")))
}

func TestSubmit_S4_IOCPartial(t *testing.T) {
	e := New(2)
	e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Sell, Type: common.Limit, Price: dec(t, "50100"), HasPrice: true, Quantity: dec(t, "0.4")})

	res := e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Buy, Type: common.IOC, Price: dec(t, "50100"), HasPrice: true, Quantity: dec(t, "1.0")})

	require.Equal(t, common.Cancelled, res.Status)
	assert.True(t, res.FilledQuantity.Equal(dec(t, "0.4")))
	assert.True(t, res.RemainingQuantity.Equal(dec(t, "0.6")))

	bbo := e.BBO("BTC-USD")
	assert.False(t, bbo.HasAsk)
}

func TestSubmit_S5_MarketThroughEmptySide(t *testing.T) {
	e := New(2)

	res := e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Buy, Type: common.Market, Quantity: dec(t, "1.0")})

	require.Equal(t, common.Cancelled, res.Status)
	require.Empty(t, res.Trades)
}

func TestCancel_S6_UpdatesBBO(t *testing.T) {
	e := New(2)
	var mu sync.Mutex
	var bboEvents []BBOSnapshot
	e.RegisterBBOSink(func(symbol string, snap BBOSnapshot) {
		mu.Lock()
		bboEvents = append(bboEvents, snap)
		mu.Unlock()
	})

	placed := e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Buy, Type: common.Limit, Price: dec(t, "50000"), HasPrice: true, Quantity: dec(t, "1.0")})

	res, err := e.Cancel("BTC-USD", placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, common.Cancelled, res.Status)

	bbo := e.BBO("BTC-USD")
	assert.False(t, bbo.HasBid)
}

func TestCancel_UnknownOrderReturnsNotFound(t *testing.T) {
	e := New(2)
	_, err := e.Cancel("BTC-USD", "does-not-exist")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSubmit_ValidationFailureIsRejectedNeverPanics(t *testing.T) {
	e := New(2)

	res := e.Submit(SubmitRequest{Symbol: "", Side: common.Buy, Type: common.Limit, Price: dec(t, "1"), HasPrice: true, Quantity: dec(t, "1")})
	assert.Equal(t, common.Rejected, res.Status)
	assert.Empty(t, res.Trades)

	res = e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Buy, Type: common.Limit, HasPrice: false, Quantity: dec(t, "1")})
	assert.Equal(t, common.Rejected, res.Status)

	res = e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Buy, Type: common.Market, Quantity: dec(t, "0")})
	assert.Equal(t, common.Rejected, res.Status)
}

func TestSubmit_FOKExactLiquidityFillsFully(t *testing.T) {
	e := New(2)
	e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Sell, Type: common.Limit, Price: dec(t, "100"), HasPrice: true, Quantity: dec(t, "5")})

	res := e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Buy, Type: common.FOK, Price: dec(t, "100"), HasPrice: true, Quantity: dec(t, "5")})

	require.Equal(t, common.Filled, res.Status)
	require.Len(t, res.Trades, 1)
	assert.True(t, res.RemainingQuantity.IsZero())
}

func TestSubmitCancel_RoundTripRestoresBook(t *testing.T) {
	e := New(2)

	before := e.BBO("BTC-USD")

	placed := e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Buy, Type: common.Limit, Price: dec(t, "100"), HasPrice: true, Quantity: dec(t, "1")})
	_, err := e.Cancel("BTC-USD", placed.OrderID)
	require.NoError(t, err)

	after := e.BBO("BTC-USD")
	assert.Equal(t, before.HasBid, after.HasBid)
	assert.Equal(t, before.HasAsk, after.HasAsk)
}

func TestSubmit_PriceTimePriority_NoTradeThroughBetterPrice(t *testing.T) {
	e := New(2)
	e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Sell, Type: common.Limit, Price: dec(t, "100"), HasPrice: true, Quantity: dec(t, "1")})
	e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Sell, Type: common.Limit, Price: dec(t, "101"), HasPrice: true, Quantity: dec(t, "1")})

	res := e.Submit(SubmitRequest{Symbol: "BTC-USD", Side: common.Buy, Type: common.Limit, Price: dec(t, "101"), HasPrice: true, Quantity: dec(t, "2")})

	require.Len(t, res.Trades, 2)
	assert.True(t, res.Trades[0].Price.Equal(dec(t, "100")))
	assert.True(t, res.Trades[1].Price.Equal(dec(t, "101")))
}
