package engine

import (
	"fmt"

	"glacier/internal/book"
	"glacier/internal/common"
)

// Book is the public entry point: two side books in price-time priority and
// the matcher that runs between them. It owns both side books exclusively
// and is not safe for concurrent use — callers serialize commands onto a
// single Book, one to completion before the next.
type Book struct {
	buys  *book.SideBook
	sells *book.SideBook

	obs Observer
	agg *tierAggregator
}

// New returns an empty Book. obs may be nil, in which case a NoopObserver is
// used; it is notified of accepted orders, trades and cancellations after
// the fact and must never influence matching.
func New(obs Observer) *Book {
	if obs == nil {
		obs = NoopObserver{}
	}
	return &Book{
		buys:  book.NewBuySide(),
		sells: book.NewSellSide(),
		obs:   obs,
		agg:   newTierAggregator(),
	}
}

// invariantViolation panics: zero price, zero quantity and duplicate live
// ids are programming errors at the driver, never conditions the engine
// recovers from (see the error handling taxonomy).
func invariantViolation(format string, args ...any) {
	panic(fmt.Sprintf("glacier: invariant violation: "+format, args...))
}

// AcceptOrder runs order through the matcher against the opposite side,
// places any residue on its own side, and emits a full book snapshot. The
// report is bracketed by StartReport/FinishReport on acc; acc may be nil.
func (b *Book) AcceptOrder(order common.Order, acc Acceptor) {
	if acc == nil {
		acc = NoopAcceptor{}
	}
	if order.Price == 0 {
		invariantViolation("order %d has zero price", order.ID)
	}
	if order.Quantity == 0 {
		invariantViolation("order %d has zero quantity", order.ID)
	}
	if b.buys.Contains(order.ID) || b.sells.Contains(order.ID) {
		invariantViolation("order %d is already live", order.ID)
	}

	acc.StartReport()

	taker := &book.RestingOrder{
		Side:     order.Side,
		ID:       order.ID,
		Price:    order.Price,
		Peak:     order.Peak,
		Quantity: order.Quantity,
	}

	own, makers := b.sidesFor(order.Side)
	match(taker, makers, order.Side, acc, b.obs, b.agg)

	if taker.Quantity > 0 {
		placeResidue(taker, own)
	}

	b.obs.OnAccept(order)
	b.snapshot(acc)
	acc.FinishReport()
}

// CancelOrder removes the live order identified by id, searching the Buy
// side first, then the Sell side, and reports success. A cancellation for
// an unknown id leaves the book unchanged but still emits a snapshot.
func (b *Book) CancelOrder(id uint32, acc Acceptor) bool {
	if acc == nil {
		acc = NoopAcceptor{}
	}
	acc.StartReport()

	found := b.buys.EraseByID(id) || b.sells.EraseByID(id)
	b.obs.OnCancel(id, found)

	b.snapshot(acc)
	acc.FinishReport()
	return found
}

// ListBook emits a full snapshot with no matching performed.
func (b *Book) ListBook(acc Acceptor) {
	if acc == nil {
		acc = NoopAcceptor{}
	}
	acc.StartReport()
	b.snapshot(acc)
	acc.FinishReport()
}

// sidesFor returns (own side book, opposite side book) for side.
func (b *Book) sidesFor(side common.Side) (own, opposite *book.SideBook) {
	if side == common.Buy {
		return b.buys, b.sells
	}
	return b.sells, b.buys
}

// snapshot emits one BookLine per live resting entry: all Buys best price
// first (ties in time order), then all Sells best price first.
func (b *Book) snapshot(acc Acceptor) {
	b.buys.Ascend(func(o *book.RestingOrder) bool {
		acc.BookLine(BookLine{Side: o.Side, ID: o.ID, Price: o.Price, Quantity: o.Quantity, Peak: o.Peak})
		return true
	})
	b.sells.Ascend(func(o *book.RestingOrder) bool {
		acc.BookLine(BookLine{Side: o.Side, ID: o.ID, Price: o.Price, Quantity: o.Quantity, Peak: o.Peak})
		return true
	})
}
