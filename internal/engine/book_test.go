package engine_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glacier/internal/common"
	"glacier/internal/engine"
)

// recorder is a test acceptor: it captures every event of a single report so
// assertions can inspect them after the call returns.
type recorder struct {
	engine.NoopAcceptor
	started  int
	finished int
	trades   []common.Trade
	lines    []engine.BookLine
}

func (r *recorder) StartReport()            { r.started++ }
func (r *recorder) Match(t common.Trade)    { r.trades = append(r.trades, t) }
func (r *recorder) BookLine(o engine.BookLine) { r.lines = append(r.lines, o) }
func (r *recorder) FinishReport()           { r.finished++ }

// sortedTrades returns trades sorted by (buy_id, sell_id, price, quantity),
// the comparison order the spec mandates for tier-aggregation tolerance.
func sortedTrades(trades []common.Trade) []common.Trade {
	out := append([]common.Trade(nil), trades...)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.BuyOrderID != b.BuyOrderID {
			return a.BuyOrderID < b.BuyOrderID
		}
		if a.SellOrderID != b.SellOrderID {
			return a.SellOrderID < b.SellOrderID
		}
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		return a.Quantity < b.Quantity
	})
	return out
}

func limit(side common.Side, id, price, qty uint32) common.Order {
	return common.Order{Side: side, ID: id, Price: price, Quantity: qty}
}

func iceberg(side common.Side, id, price, qty, peak uint32) common.Order {
	return common.Order{Side: side, ID: id, Price: price, Quantity: qty, Peak: peak}
}

// --- S1: no cross, both sides rest -----------------------------------------

func TestAcceptOrder_NoCrossBothSidesRest(t *testing.T) {
	b := engine.New(nil)

	b.AcceptOrder(limit(common.Buy, 1, 100, 10), nil)
	r := &recorder{}
	b.AcceptOrder(limit(common.Sell, 2, 101, 10), r)

	assert.Empty(t, r.trades)
	require.Len(t, r.lines, 2)
	assert.Equal(t, engine.BookLine{Side: common.Buy, ID: 1, Price: 100, Quantity: 10}, r.lines[0])
	assert.Equal(t, engine.BookLine{Side: common.Sell, ID: 2, Price: 101, Quantity: 10}, r.lines[1])
}

// --- S2: full fill at maker price -------------------------------------------

func TestAcceptOrder_FullFillAtMakerPrice(t *testing.T) {
	b := engine.New(nil)

	b.AcceptOrder(limit(common.Sell, 1, 100, 10), nil)
	r := &recorder{}
	b.AcceptOrder(limit(common.Buy, 2, 105, 10), r)

	require.Len(t, r.trades, 1)
	assert.Equal(t, common.Trade{BuyOrderID: 2, SellOrderID: 1, Price: 100, Quantity: 10}, r.trades[0])
	assert.Empty(t, r.lines)
}

// --- S3: partial fill, taker residue posts ----------------------------------

func TestAcceptOrder_PartialFillResiduePosts(t *testing.T) {
	b := engine.New(nil)

	b.AcceptOrder(limit(common.Sell, 1, 100, 10), nil)
	r := &recorder{}
	b.AcceptOrder(limit(common.Buy, 2, 100, 15), r)

	require.Len(t, r.trades, 1)
	assert.Equal(t, common.Trade{BuyOrderID: 2, SellOrderID: 1, Price: 100, Quantity: 10}, r.trades[0])
	require.Len(t, r.lines, 1)
	assert.Equal(t, engine.BookLine{Side: common.Buy, ID: 2, Price: 100, Quantity: 5}, r.lines[0])
}

// --- S4: price-time priority within a tier ----------------------------------

func TestAcceptOrder_PriceTimePriorityWithinTier(t *testing.T) {
	b := engine.New(nil)

	b.AcceptOrder(limit(common.Buy, 1, 100, 5), nil)
	b.AcceptOrder(limit(common.Buy, 2, 100, 5), nil)
	r := &recorder{}
	b.AcceptOrder(limit(common.Sell, 3, 100, 7), r)

	want := []common.Trade{
		{BuyOrderID: 1, SellOrderID: 3, Price: 100, Quantity: 5},
		{BuyOrderID: 2, SellOrderID: 3, Price: 100, Quantity: 2},
	}
	assert.Equal(t, want, sortedTrades(r.trades))
	require.Len(t, r.lines, 1)
	assert.Equal(t, engine.BookLine{Side: common.Buy, ID: 2, Price: 100, Quantity: 3}, r.lines[0])
}

// --- S5: iceberg replenishment aggregates into a single trade ---------------

func TestAcceptOrder_IcebergReplenishmentSingleAggregatedTrade(t *testing.T) {
	b := engine.New(nil)

	b.AcceptOrder(iceberg(common.Sell, 1, 100, 100, 10), nil)
	r := &recorder{}
	b.AcceptOrder(limit(common.Buy, 2, 100, 25), r)

	require.Len(t, r.trades, 1, "all executions against maker 1 within this tier must aggregate into one trade")
	assert.Equal(t, common.Trade{BuyOrderID: 2, SellOrderID: 1, Price: 100, Quantity: 25}, r.trades[0])

	require.Len(t, r.lines, 1)
	// Peak 10 is replenished twice (10 -> 10) to cover the first 20 of the
	// 25-share fill; the third 5 shares come out of the third-generation
	// peak, which stops short of a full peak and so is not itself
	// replenished again. Visible quantity left is peak-less-that-partial-fill.
	assert.Equal(t, engine.BookLine{Side: common.Sell, ID: 1, Price: 100, Quantity: 5, Peak: 10}, r.lines[0])
}

// --- S6: replenished iceberg loses time priority ----------------------------

func TestAcceptOrder_ReplenishedIcebergLosesTimePriority(t *testing.T) {
	b := engine.New(nil)

	b.AcceptOrder(iceberg(common.Sell, 1, 100, 20, 10), nil)
	b.AcceptOrder(limit(common.Sell, 2, 100, 5), nil)
	r := &recorder{}
	b.AcceptOrder(limit(common.Buy, 3, 100, 15), r)

	want := []common.Trade{
		{BuyOrderID: 3, SellOrderID: 1, Price: 100, Quantity: 10},
		{BuyOrderID: 3, SellOrderID: 2, Price: 100, Quantity: 5},
	}
	assert.Equal(t, want, sortedTrades(r.trades))

	require.Len(t, r.lines, 1, "maker 2 fully filled, maker 1's replenished peak is the only survivor")
	assert.Equal(t, engine.BookLine{Side: common.Sell, ID: 1, Price: 100, Quantity: 10, Peak: 10}, r.lines[0])
}

// --- Cancellation ------------------------------------------------------------

func TestCancelOrder_UnknownIDIsIdempotent(t *testing.T) {
	b := engine.New(nil)
	b.AcceptOrder(limit(common.Buy, 1, 100, 10), nil)

	r := &recorder{}
	found := b.CancelOrder(999, r)

	assert.False(t, found)
	require.Len(t, r.lines, 1, "book must be unchanged after an unknown cancel")
	assert.Equal(t, uint32(1), r.lines[0].ID)
}

func TestCancelOrder_RemovesLiveEntry(t *testing.T) {
	b := engine.New(nil)
	b.AcceptOrder(limit(common.Buy, 1, 100, 10), nil)

	r := &recorder{}
	found := b.CancelOrder(1, r)

	assert.True(t, found)
	assert.Empty(t, r.lines)
}

func TestListBook_EmitsSnapshotWithoutMatching(t *testing.T) {
	b := engine.New(nil)
	b.AcceptOrder(limit(common.Buy, 1, 100, 10), nil)
	b.AcceptOrder(limit(common.Sell, 2, 101, 10), nil)

	r := &recorder{}
	b.ListBook(r)

	assert.Empty(t, r.trades)
	assert.Equal(t, 1, r.started)
	assert.Equal(t, 1, r.finished)
	require.Len(t, r.lines, 2)
}

func TestAcceptOrder_InvariantViolationOnDuplicateID(t *testing.T) {
	b := engine.New(nil)
	b.AcceptOrder(limit(common.Buy, 1, 100, 10), nil)

	assert.Panics(t, func() {
		b.AcceptOrder(limit(common.Buy, 1, 101, 5), nil)
	})
}

func TestAcceptOrder_InvariantViolationOnZeroPrice(t *testing.T) {
	b := engine.New(nil)
	assert.Panics(t, func() {
		b.AcceptOrder(limit(common.Buy, 1, 0, 10), nil)
	})
}

func TestAcceptOrder_InvariantViolationOnZeroQuantity(t *testing.T) {
	b := engine.New(nil)
	assert.Panics(t, func() {
		b.AcceptOrder(limit(common.Buy, 1, 100, 0), nil)
	})
}

// --- Universal invariants over a larger run ---------------------------------

func TestInvariants_NoCrossedBookAndPriceTimeOrdering(t *testing.T) {
	b := engine.New(nil)
	b.AcceptOrder(limit(common.Buy, 1, 99, 10), nil)
	b.AcceptOrder(limit(common.Buy, 2, 100, 10), nil)
	b.AcceptOrder(limit(common.Sell, 3, 105, 10), nil)
	b.AcceptOrder(limit(common.Sell, 4, 104, 10), nil)

	r := &recorder{}
	b.ListBook(r)

	var buys, sells []engine.BookLine
	for _, l := range r.lines {
		if l.Side == common.Buy {
			buys = append(buys, l)
		} else {
			sells = append(sells, l)
		}
	}
	require.Len(t, buys, 2)
	require.Len(t, sells, 2)
	assert.True(t, buys[0].Price >= buys[1].Price, "buy side must be non-increasing")
	assert.True(t, sells[0].Price <= sells[1].Price, "sell side must be non-decreasing")
	assert.Less(t, buys[0].Price, sells[0].Price, "best buy must stay strictly below best sell")
}
