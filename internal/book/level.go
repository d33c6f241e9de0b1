package book

import (
	"container/list"

	"glacier/internal/common"
)

// RestingOrder is a mutable book entry. Quantity is always the visible
// remainder; Hidden is the reserve an iceberg has not yet revealed.
type RestingOrder struct {
	Side     common.Side
	ID       uint32
	Price    uint32
	Peak     uint32
	Quantity uint32
	Hidden   uint32
	seq      uint64 // insertion-order tiebreaker, monotonic per book
}

// TotalRemaining is the full outstanding size, visible plus hidden.
func (o *RestingOrder) TotalRemaining() uint32 {
	return o.Quantity + o.Hidden
}

// Level is every resting order at one price, oldest first. Time priority
// within a level is the list order; replenished icebergs go to the back.
type Level struct {
	Price  uint32
	orders *list.List
}

func newLevel(price uint32) *Level {
	return &Level{Price: price, orders: list.New()}
}

// Len is the number of resting orders at this price.
func (l *Level) Len() int {
	return l.orders.Len()
}

// Front peeks the oldest order at this price without removing it.
func (l *Level) Front() (*RestingOrder, bool) {
	e := l.orders.Front()
	if e == nil {
		return nil, false
	}
	return e.Value.(*RestingOrder), true
}

// each walks the level front to back, stopping early if fn returns false.
func (l *Level) each(fn func(*RestingOrder) bool) {
	for e := l.orders.Front(); e != nil; e = e.Next() {
		if !fn(e.Value.(*RestingOrder)) {
			return
		}
	}
}
