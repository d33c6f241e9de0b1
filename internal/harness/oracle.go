// Package harness implements the deterministic self-test and the random
// profiling feed described in §6.4: an independent reference model driving
// the real Book and checking its reported trades, traded volume/cost and
// book-size delta against its own prediction after every command.
package harness

import (
	"sort"

	"glacier/internal/common"
)

// oracleOrder is the reference model's own resting-order record. Unlike
// engine.BookLine it keeps Hidden, since the oracle must reproduce
// replenishment exactly to predict trades.
type oracleOrder struct {
	id       uint32
	price    uint32
	peak     uint32
	quantity uint32
	hidden   uint32
}

// oracle is a from-scratch parallel simulation of the book, kept deliberately
// simple (linear scans, no price index) since it exists to check the real
// engine, not to perform well.
type oracle struct {
	buys  []*oracleOrder // descending price, then insertion order
	sells []*oracleOrder // ascending price, then insertion order
}

func newOracle() *oracle {
	return &oracle{}
}

func (o *oracle) sideSlice(side common.Side) *[]*oracleOrder {
	if side == common.Buy {
		return &o.buys
	}
	return &o.sells
}

// expectation is what the oracle predicts a command will produce.
type expectation struct {
	trades    []common.Trade
	volume    uint32
	cost      uint64
	sizeDelta int
}

// accept runs order through the reference model, mutating oracle state to
// match, and returns what a correct engine must have reported for it.
func (o *oracle) accept(order common.Order) expectation {
	makers := o.sideSlice(opposite(order.Side))
	exp := expectation{}

	remaining := order.Quantity
	idx := 0
	for remaining > 0 && idx < len(*makers) && crosses(order.Side, order.Price, (*makers)[idx].price) {
		tierPrice := (*makers)[idx].price
		tierEnd := idx
		for tierEnd < len(*makers) && (*makers)[tierEnd].price == tierPrice {
			tierEnd++
		}

		queue := append([]*oracleOrder(nil), (*makers)[idx:tierEnd]...)
		agg := map[uint32]uint32{}
		var aggOrder []uint32

		for remaining > 0 && len(queue) > 0 {
			maker := queue[0]
			fill := min32(remaining, maker.quantity)
			remaining -= fill
			maker.quantity -= fill
			exp.volume += fill
			exp.cost += uint64(fill) * uint64(tierPrice)
			if _, ok := agg[maker.id]; !ok {
				aggOrder = append(aggOrder, maker.id)
			}
			agg[maker.id] += fill

			if maker.quantity == 0 {
				queue = queue[1:]
				if maker.hidden > 0 {
					replenish := min32(maker.peak, maker.hidden)
					maker.hidden -= replenish
					maker.quantity = replenish
					queue = append(queue, maker)
				} else {
					exp.sizeDelta--
				}
			}
			// maker.quantity > 0 here means remaining hit zero without
			// fully consuming it: it keeps its front-of-queue position and
			// the loop exits on the remaining > 0 condition above.
		}

		tail := append([]*oracleOrder(nil), (*makers)[tierEnd:]...)
		*makers = append(append((*makers)[:idx], queue...), tail...)
		idx += len(queue)

		for _, id := range aggOrder {
			exp.trades = append(exp.trades, orient(order.Side, order.ID, id, tierPrice, agg[id]))
		}
	}

	if remaining > 0 {
		exp.sizeDelta++
		o.placeResidue(order, remaining)
	}
	return exp
}

func (o *oracle) placeResidue(order common.Order, remaining uint32) {
	visible := remaining
	hidden := uint32(0)
	if order.Peak > 0 {
		visible = min32(order.Peak, remaining)
		hidden = remaining - visible
	}
	own := o.sideSlice(order.Side)
	*own = append(*own, &oracleOrder{id: order.ID, price: order.Price, peak: order.Peak, quantity: visible, hidden: hidden})
	resort(own, order.Side)
}

// cancel removes id from whichever side holds it, reporting whether found.
func (o *oracle) cancel(id uint32) bool {
	if removeByID(&o.buys, id) {
		return true
	}
	return removeByID(&o.sells, id)
}

func removeByID(side *[]*oracleOrder, id uint32) bool {
	for i, entry := range *side {
		if entry.id == id {
			*side = append((*side)[:i], (*side)[i+1:]...)
			return true
		}
	}
	return false
}

// resort restores price ordering after appending a new residue at the back;
// it is stable, so insertion order within a price is preserved.
func resort(side *[]*oracleOrder, s common.Side) {
	sort.SliceStable(*side, func(i, j int) bool {
		a, b := (*side)[i], (*side)[j]
		if s == common.Buy {
			return a.price > b.price
		}
		return a.price < b.price
	})
}

func opposite(s common.Side) common.Side {
	if s == common.Buy {
		return common.Sell
	}
	return common.Buy
}

func crosses(takerSide common.Side, takerPrice, makerPrice uint32) bool {
	if takerSide == common.Buy {
		return makerPrice <= takerPrice
	}
	return makerPrice >= takerPrice
}

func orient(takerSide common.Side, takerID, makerID, price, qty uint32) common.Trade {
	if takerSide == common.Buy {
		return common.Trade{BuyOrderID: takerID, SellOrderID: makerID, Price: price, Quantity: qty}
	}
	return common.Trade{BuyOrderID: makerID, SellOrderID: takerID, Price: price, Quantity: qty}
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
