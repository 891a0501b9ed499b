package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/example/tx-ledger/internal/engine"
)

// Writer encodes the final account snapshot as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteSnapshot writes a header row followed by one row per account, in
// the order given. Amounts are rendered with a fixed fractional
// precision of 4 digits.
func (w *Writer) WriteSnapshot(accounts []engine.AccountView) error {
	if err := w.csv.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return err
	}

	for _, acct := range accounts {
		row := []string{
			strconv.FormatUint(uint64(acct.ClientID), 10),
			acct.Available.StringFixed(4),
			acct.Held.StringFixed(4),
			acct.Total.StringFixed(4),
			strconv.FormatBool(acct.Locked),
		}
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}

	w.csv.Flush()
	return w.csv.Error()
}
