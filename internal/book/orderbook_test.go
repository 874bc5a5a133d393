package book

import (
	"testing"

	"fenrir/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitOrder(id string, side common.Side, price, qty string) *common.Order {
	p, _ := common.ParseDecimal(price)
	q, _ := common.ParseDecimal(qty)
	return &common.Order{
		ID:                id,
		Side:              side,
		Type:              common.Limit,
		Price:             p,
		HasPrice:          true,
		OriginalQuantity:  q,
		RemainingQuantity: q,
		Status:            common.Pending,
	}
}

func TestOrderBook_AddResting_BidsDescendingAsksAscending(t *testing.T) {
	ob := New("BTC-USD")

	ob.AddResting(limitOrder("b1", common.Buy, "99", "1"))
	ob.AddResting(limitOrder("b2", common.Buy, "101", "1"))
	ob.AddResting(limitOrder("a1", common.Sell, "105", "1"))
	ob.AddResting(limitOrder("a2", common.Sell, "103", "1"))

	bids, asks := ob.L2Snapshot(10)
	require.Len(t, bids, 2)
	require.Len(t, asks, 2)

	hundredOne, _ := common.ParseDecimal("101")
	ninetyNine, _ := common.ParseDecimal("99")
	oneOhThree, _ := common.ParseDecimal("103")
	oneOhFive, _ := common.ParseDecimal("105")

	assert.True(t, bids[0][0].Equal(hundredOne))
	assert.True(t, bids[1][0].Equal(ninetyNine))
	assert.True(t, asks[0][0].Equal(oneOhThree))
	assert.True(t, asks[1][0].Equal(oneOhFive))
}

func TestOrderBook_Cancel_RemovesAndDestroysEmptyLevel(t *testing.T) {
	ob := New("BTC-USD")
	ob.AddResting(limitOrder("b1", common.Buy, "100", "1"))

	order, ok := ob.Cancel("b1")
	require.True(t, ok)
	assert.Equal(t, common.Cancelled, order.Status)

	_, _, bidOK, _, _, _ := ob.BBO()
	assert.False(t, bidOK)
}

func TestOrderBook_Cancel_UnknownIDReturnsFalse(t *testing.T) {
	ob := New("BTC-USD")
	_, ok := ob.Cancel("nope")
	assert.False(t, ok)
}

func TestOrderBook_ConsumeBestOpposite_PartialThenFull(t *testing.T) {
	ob := New("BTC-USD")
	ob.AddResting(limitOrder("a1", common.Sell, "100", "10"))

	takerRemaining, _ := common.ParseDecimal("4")
	maker, tradeQty, filled := ob.ConsumeBestOpposite(common.Buy, takerRemaining)
	require.False(t, filled)
	assert.Equal(t, "a1", maker.ID)
	four, _ := common.ParseDecimal("4")
	assert.True(t, tradeQty.Equal(four))

	takerRemaining2, _ := common.ParseDecimal("6")
	maker2, tradeQty2, filled2 := ob.ConsumeBestOpposite(common.Buy, takerRemaining2)
	require.True(t, filled2)
	assert.Equal(t, "a1", maker2.ID)
	six, _ := common.ParseDecimal("6")
	assert.True(t, tradeQty2.Equal(six))

	_, _, _, _, _, askOK := ob.BBO()
	assert.False(t, askOK)
}

func TestOrderBook_SumMarketable_StopsAtBound(t *testing.T) {
	ob := New("BTC-USD")
	ob.AddResting(limitOrder("a1", common.Sell, "100", "5"))
	ob.AddResting(limitOrder("a2", common.Sell, "101", "5"))
	ob.AddResting(limitOrder("a3", common.Sell, "102", "5"))

	bound, _ := common.ParseDecimal("101")
	sum := ob.SumMarketable(common.Buy, &bound)

	want, _ := common.ParseDecimal("10")
	assert.True(t, want.Equal(sum))
}

func TestOrderBook_SumMarketable_Unbounded(t *testing.T) {
	ob := New("BTC-USD")
	ob.AddResting(limitOrder("a1", common.Sell, "100", "5"))
	ob.AddResting(limitOrder("a2", common.Sell, "101", "5"))

	sum := ob.SumMarketable(common.Buy, nil)
	want, _ := common.ParseDecimal("10")
	assert.True(t, want.Equal(sum))
}

func TestOrderBook_CheckInvariants_PassesOnCleanBook(t *testing.T) {
	ob := New("BTC-USD")
	ob.AddResting(limitOrder("b1", common.Buy, "99", "1"))
	ob.AddResting(limitOrder("a1", common.Sell, "100", "1"))

	assert.NotPanics(t, func() { ob.CheckInvariants() })
}

func TestOrderBook_CheckInvariants_PanicsOnCrossedBook(t *testing.T) {
	ob := New("BTC-USD")
	ob.AddResting(limitOrder("b1", common.Buy, "101", "1"))
	ob.AddResting(limitOrder("a1", common.Sell, "100", "1"))

	assert.Panics(t, func() { ob.CheckInvariants() })
}
