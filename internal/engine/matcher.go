package engine

import (
	"glacier/internal/book"
	"glacier/internal/common"
)

// tierAggregator accumulates per-maker-id fill volume within one price
// tier of one AcceptOrder call. It is cleared (not reallocated) on every
// tier entry so it can be reused across tiers and across calls.
type tierAggregator struct {
	volume map[uint32]uint32
	order  []uint32 // insertion order, for deterministic iteration in tests
}

func newTierAggregator() *tierAggregator {
	return &tierAggregator{volume: make(map[uint32]uint32)}
}

func (a *tierAggregator) reset() {
	for k := range a.volume {
		delete(a.volume, k)
	}
	a.order = a.order[:0]
}

func (a *tierAggregator) add(makerID uint32, qty uint32) {
	if _, ok := a.volume[makerID]; !ok {
		a.order = append(a.order, makerID)
	}
	a.volume[makerID] += qty
}

// match runs the matching algorithm for an incoming order against makers
// (the opposite side), reporting trades through acc and obs. It returns
// nothing: taker.Quantity is reduced in place to the unmatched remainder,
// which the caller places on its own side (see placeResidue).
// takerSide is the side of the incoming order (the side makers crosses
// against is implied: Buy taker matches Sell makers and vice versa).
func match(taker *book.RestingOrder, makers *book.SideBook, takerSide common.Side, acc Acceptor, obs Observer, agg *tierAggregator) {
	for taker.Quantity > 0 {
		level, ok := makers.Best()
		if !ok || !crosses(takerSide, taker.Price, level.Price) {
			break
		}

		icePrice := level.Price
		agg.reset()

		for taker.Quantity > 0 {
			maker, ok := level.Front()
			if !ok {
				break
			}

			fill := min32(taker.Quantity, maker.Quantity)
			taker.Quantity -= fill
			maker.Quantity -= fill
			agg.add(maker.ID, fill)

			if maker.Quantity == 0 {
				makers.PopFront(level)
				if maker.Hidden > 0 {
					replenish := min32(maker.Peak, maker.Hidden)
					maker.Hidden -= replenish
					maker.Quantity = replenish
					makers.PushBack(level, maker)
				}
				makers.DropIfEmpty(level)
			}
		}

		flushTier(agg, icePrice, takerSide, taker.ID, acc, obs)
	}
}

// crosses reports whether a taker at price p crosses a maker tier at
// makerPrice: a Buy taker crosses Sells priced at or below p; a Sell taker
// crosses Buys priced at or above p.
func crosses(takerSide common.Side, takerPrice, makerPrice uint32) bool {
	if takerSide == common.Buy {
		return makerPrice <= takerPrice
	}
	return makerPrice >= takerPrice
}

// flushTier emits one aggregated trade per maker id touched in the tier.
// Emission order across makers is unspecified (a tier is a set of trades,
// not a sequence): callers must sort before comparing.
func flushTier(agg *tierAggregator, price uint32, takerSide common.Side, takerID uint32, acc Acceptor, obs Observer) {
	for _, makerID := range agg.order {
		qty := agg.volume[makerID]
		var trade common.Trade
		if takerSide == common.Buy {
			trade = common.Trade{BuyOrderID: takerID, SellOrderID: makerID, Price: price, Quantity: qty}
		} else {
			trade = common.Trade{BuyOrderID: makerID, SellOrderID: takerID, Price: price, Quantity: qty}
		}
		acc.Match(trade)
		obs.OnTrade(trade)
	}
}

// placeResidue inserts the taker's unmatched remainder onto its own side,
// splitting it into a fresh visible peak and hidden reserve for icebergs.
func placeResidue(taker *book.RestingOrder, own *book.SideBook) {
	if taker.Quantity == 0 {
		return
	}
	visible := taker.Quantity
	hidden := uint32(0)
	if taker.Peak > 0 {
		visible = min32(taker.Peak, taker.Quantity)
		hidden = taker.Quantity - visible
	}
	own.Insert(taker.Side, taker.ID, taker.Price, taker.Peak, visible, hidden)
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
