// Package book implements the price-time priority container for one side
// of the order book: an ordered collection of price levels (a tidwall/btree
// keyed by price, side-specific comparator) plus, within each level, a
// time-ordered queue (container/list) of resting orders. A parallel id index
// gives O(1) average cancellation.
package book

import (
	"container/list"

	"github.com/tidwall/btree"

	"glacier/internal/common"
)

type handle struct {
	level *Level
	elem  *list.Element
}

// SideBook is a multiset of resting orders for one side, ordered by the
// side's price comparator and, within a price, by arrival order.
type SideBook struct {
	side   common.Side
	levels *btree.BTreeG[*Level]
	index  map[uint32]handle
	nextSeq uint64
}

// NewBuySide returns an empty buy-side book: best price is the highest.
func NewBuySide() *SideBook {
	return newSideBook(common.Buy, func(a, b *Level) bool { return a.Price > b.Price })
}

// NewSellSide returns an empty sell-side book: best price is the lowest.
func NewSellSide() *SideBook {
	return newSideBook(common.Sell, func(a, b *Level) bool { return a.Price < b.Price })
}

func newSideBook(side common.Side, less func(a, b *Level) bool) *SideBook {
	return &SideBook{
		side:   side,
		levels: btree.NewBTreeG(less),
		index:  make(map[uint32]handle),
	}
}

// Best returns the top-of-book price level, if any.
func (sb *SideBook) Best() (*Level, bool) {
	return sb.levels.Min()
}

// Len is the number of live resting orders on this side.
func (sb *SideBook) Len() int {
	return len(sb.index)
}

// Insert places a new resting order at the back of its price level,
// assigning it fresh time priority, and returns the entry now owned by
// the book.
func (sb *SideBook) Insert(side common.Side, id, price, peak, visible, hidden uint32) *RestingOrder {
	resting := &RestingOrder{Side: side, ID: id, Price: price, Peak: peak, Quantity: visible, Hidden: hidden}
	level, ok := sb.levels.Get(&Level{Price: price})
	if !ok {
		level = newLevel(price)
		sb.levels.Set(level)
	}
	sb.pushBack(level, resting)
	return resting
}

// pushBack appends resting to level's tail, refreshing its time priority.
// Used both by Insert and by iceberg replenishment, which must reset time
// priority within the tier it is being consumed in.
func (sb *SideBook) pushBack(level *Level, resting *RestingOrder) {
	resting.seq = sb.nextSeq
	sb.nextSeq++
	elem := level.orders.PushBack(resting)
	sb.index[resting.ID] = handle{level: level, elem: elem}
}

// PushBack re-admits a replenished iceberg to the back of level, resetting
// its time priority. level must be the entry's own price level.
func (sb *SideBook) PushBack(level *Level, resting *RestingOrder) {
	sb.pushBack(level, resting)
}

// PopFront removes and returns the oldest order at level. It does not
// delete an emptied level from the price index; callers performing a
// sequence of pops/pushes against the same level must call DropIfEmpty
// once they are done with it.
func (sb *SideBook) PopFront(level *Level) (*RestingOrder, bool) {
	e := level.orders.Front()
	if e == nil {
		return nil, false
	}
	resting := e.Value.(*RestingOrder)
	level.orders.Remove(e)
	delete(sb.index, resting.ID)
	return resting, true
}

// DropIfEmpty removes level from the price index if it has no resting
// orders left.
func (sb *SideBook) DropIfEmpty(level *Level) {
	if level.Len() == 0 {
		sb.levels.Delete(level)
	}
}

// Contains reports whether id is currently live on this side.
func (sb *SideBook) Contains(id uint32) bool {
	_, ok := sb.index[id]
	return ok
}

// EraseByID removes the live order identified by id, if any, reporting
// whether it existed.
func (sb *SideBook) EraseByID(id uint32) bool {
	h, ok := sb.index[id]
	if !ok {
		return false
	}
	h.level.orders.Remove(h.elem)
	delete(sb.index, id)
	sb.DropIfEmpty(h.level)
	return true
}

// Ascend walks every resting order best price to worst, oldest first within
// a price, stopping early if fn returns false.
func (sb *SideBook) Ascend(fn func(*RestingOrder) bool) {
	sb.levels.Scan(func(level *Level) bool {
		cont := true
		level.each(func(o *RestingOrder) bool {
			if !fn(o) {
				cont = false
				return false
			}
			return true
		})
		return cont
	})
}
