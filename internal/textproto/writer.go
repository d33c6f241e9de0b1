package textproto

import (
	"bufio"
	"fmt"
	"io"

	"glacier/internal/common"
	"glacier/internal/engine"
)

// Writer is the default acceptor: it renders each report in the §6.3 wire
// format directly to an underlying writer, one line per event, a blank line
// terminating the report. It is not safe for concurrent use; the Book only
// ever borrows one acceptor for the duration of a single call anyway.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w in a buffered Writer. Callers running against os.Stdout
// or a socket should call Flush after driving the Book to completion.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (rw *Writer) StartReport() {}

func (rw *Writer) Match(t common.Trade) {
	fmt.Fprintf(rw.w, "M %d %d %d %d\n", t.BuyOrderID, t.SellOrderID, t.Price, t.Quantity)
}

func (rw *Writer) BookLine(o engine.BookLine) {
	fmt.Fprintf(rw.w, "O %s %d %d %d\n", o.Side, o.ID, o.Price, o.Quantity)
}

func (rw *Writer) FinishReport() {
	rw.w.WriteByte('\n')
}

// Flush pushes any buffered output to the underlying writer.
func (rw *Writer) Flush() error {
	return rw.w.Flush()
}
