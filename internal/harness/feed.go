package harness

import (
	"math/rand"

	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"

	"glacier/internal/common"
	"glacier/internal/engine"
)

// feedSeed is fixed by the external interface: the profiling feed is
// deterministic in its command sequence even though it never terminates on
// its own.
const feedSeed = 890

// RunProfileFeed drives book with an unbounded stream of random commands
// against a no-op acceptor, until t is told to die (e.g. by a signal the
// caller wires into t.Kill). It never returns an error of its own: it
// returns nil once t starts dying.
func RunProfileFeed(t *tomb.Tomb, book *engine.Book, log zerolog.Logger) error {
	rng := rand.New(rand.NewSource(feedSeed))
	acc := engine.NoopAcceptor{}

	log.Info().Msg("profile feed started")
	for i := uint32(0); ; i++ {
		select {
		case <-t.Dying():
			log.Info().Uint32("commands", i).Msg("profile feed stopping")
			return nil
		default:
		}

		price := 100 + uint32(rng.Intn(25))
		quantity := 200 + uint32(rng.Intn(300))
		peak := uint32(rng.Intn(50))
		side, _ := common.ParseSide(sideByte(rng.Intn(2)))

		switch command(rng.Intn(3)) {
		case cmdLimit:
			book.AcceptOrder(common.Order{Side: side, ID: i, Price: price, Quantity: quantity}, acc)
		case cmdIceberg:
			book.AcceptOrder(common.Order{Side: side, ID: i, Price: price, Quantity: quantity, Peak: peak}, acc)
		case cmdCancel:
			target := uint32(0)
			if i > 0 {
				target = uint32(rng.Intn(int(i)))
			}
			book.CancelOrder(target, acc)
		}
	}
}
