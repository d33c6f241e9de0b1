package engine

import "glacier/internal/common"

// BookLine is a single live resting entry as reported in a snapshot. Hidden
// reserve is never exposed here: Quantity is always the visible size.
type BookLine struct {
	Side     common.Side
	ID       uint32
	Price    uint32
	Quantity uint32
	Peak     uint32
}

// Acceptor is the sink a command's report is played into. All four methods
// default to no-ops for callers that only care about some of them.
// Acceptor methods must not reenter the Book: it is borrowed for the
// duration of a single call only.
type Acceptor interface {
	StartReport()
	Match(common.Trade)
	BookLine(BookLine)
	FinishReport()
}

// NoopAcceptor implements Acceptor with no-op methods, for embedding by
// acceptors that only care about a subset of the callbacks.
type NoopAcceptor struct{}

func (NoopAcceptor) StartReport()       {}
func (NoopAcceptor) Match(common.Trade) {}
func (NoopAcceptor) BookLine(BookLine)  {}
func (NoopAcceptor) FinishReport()      {}

// Observer is an ambient, best-effort hook for operational concerns
// (metrics, diagnostics) that must never influence matching semantics. It
// is notified after the fact and cannot reject or observe partial state.
type Observer interface {
	OnAccept(order common.Order)
	OnTrade(trade common.Trade)
	OnCancel(id uint32, found bool)
}

// NoopObserver implements Observer with no-op methods.
type NoopObserver struct{}

func (NoopObserver) OnAccept(common.Order) {}
func (NoopObserver) OnTrade(common.Trade)  {}
func (NoopObserver) OnCancel(uint32, bool) {}
