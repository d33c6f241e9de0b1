package common

import "fmt"

// Trade is an immutable execution between a resting (maker) order and the
// incoming (taker) order that crossed it. Price is always the maker's price.
type Trade struct {
	BuyOrderID  uint32
	SellOrderID uint32
	Price       uint32
	Quantity    uint32
}

func (t Trade) String() string {
	return fmt.Sprintf("M %d %d %d %d", t.BuyOrderID, t.SellOrderID, t.Price, t.Quantity)
}
