package harness

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/rs/zerolog"

	"glacier/internal/common"
	"glacier/internal/engine"
)

// selfTestSeed and selfTestIterations are fixed by the external interface:
// the self-test must be bit-for-bit reproducible across runs.
const (
	selfTestSeed       = 777
	selfTestIterations = 10000
)

// testAcceptor records one report's worth of trades and book lines, the way
// the real driver's default acceptor would, but keeps them for comparison
// instead of printing them.
type testAcceptor struct {
	engine.NoopAcceptor
	trades []common.Trade
	lines  int
}

func (a *testAcceptor) Match(t common.Trade)     { a.trades = append(a.trades, t) }
func (a *testAcceptor) BookLine(engine.BookLine) { a.lines++ }
func (a *testAcceptor) reset()                   { a.trades = a.trades[:0]; a.lines = 0 }

// command is a single randomly generated self-test step.
type command int

const (
	cmdLimit command = iota
	cmdIceberg
	cmdCancel
)

// RunSelfTest drives book against an independent reference model for
// selfTestIterations deterministic random commands (seed selfTestSeed),
// comparing trades, traded volume/cost and book-size delta after every
// command. It returns nil if every invariant held, or an error identifying
// the first iteration that diverged.
func RunSelfTest(book *engine.Book, log zerolog.Logger) error {
	rng := rand.New(rand.NewSource(selfTestSeed))
	oracle := newOracle()
	acc := &testAcceptor{}

	bookSize := 0
	for i := uint32(0); i < selfTestIterations; i++ {
		price := 100 + uint32(rng.Intn(25))
		quantity := 200 + uint32(rng.Intn(300))
		peak := uint32(rng.Intn(50))
		side, ok := common.ParseSide(sideByte(rng.Intn(2)))
		if !ok {
			return fmt.Errorf("selftest: bad generated side at iteration %d", i)
		}
		cmd := command(rng.Intn(3))

		acc.reset()
		var wantDelta int
		var want expectation

		switch cmd {
		case cmdCancel:
			target := uint32(0)
			if i > 0 {
				target = uint32(rng.Intn(int(i)))
			}
			found := oracle.cancel(target)
			bookExists := book.CancelOrder(target, acc)
			if found != bookExists {
				return fmt.Errorf("selftest: iteration %d: cancel(%d) oracle=%v engine=%v", i, target, found, bookExists)
			}
			if found {
				wantDelta = -1
			}
		case cmdLimit:
			order := common.Order{Side: side, ID: i, Price: price, Quantity: quantity}
			want = oracle.accept(order)
			book.AcceptOrder(order, acc)
			wantDelta = want.sizeDelta
		case cmdIceberg:
			order := common.Order{Side: side, ID: i, Price: price, Quantity: quantity, Peak: peak}
			want = oracle.accept(order)
			book.AcceptOrder(order, acc)
			wantDelta = want.sizeDelta
		}

		if cmd != cmdCancel {
			if err := compareTrades(want.trades, acc.trades); err != nil {
				return fmt.Errorf("selftest: iteration %d: %w", i, err)
			}
			var volume uint32
			var cost uint64
			for _, tr := range acc.trades {
				volume += tr.Quantity
				cost += uint64(tr.Quantity) * uint64(tr.Price)
			}
			if volume != want.volume || cost != want.cost {
				return fmt.Errorf("selftest: iteration %d: volume/cost expected %d/%d, engine reported %d/%d", i, want.volume, want.cost, volume, cost)
			}
		}

		bookSize += wantDelta
		if acc.lines != bookSize {
			return fmt.Errorf("selftest: iteration %d: book size expected %d, engine snapshot reported %d", i, bookSize, acc.lines)
		}

		if i%1000 == 0 {
			log.Debug().Uint32("iteration", i).Int("book_size", bookSize).Msg("selftest progress")
		}
	}

	log.Info().Int("iterations", selfTestIterations).Msg("selftest OK")
	return nil
}

func sideByte(n int) byte {
	if n == 0 {
		return 'B'
	}
	return 'S'
}

func compareTrades(want, got []common.Trade) error {
	if len(want) != len(got) {
		return fmt.Errorf("trade count mismatch: want %d, got %d", len(want), len(got))
	}
	wantSorted := append([]common.Trade(nil), want...)
	gotSorted := append([]common.Trade(nil), got...)
	sortTrades(wantSorted)
	sortTrades(gotSorted)
	for i := range wantSorted {
		if wantSorted[i] != gotSorted[i] {
			return fmt.Errorf("trade mismatch at position %d: want %+v, got %+v", i, wantSorted[i], gotSorted[i])
		}
	}
	return nil
}

func sortTrades(trades []common.Trade) {
	sort.Slice(trades, func(i, j int) bool {
		a, b := trades[i], trades[j]
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
}
