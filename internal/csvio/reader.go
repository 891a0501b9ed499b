// Package csvio decodes the transaction input stream and encodes the
// final account snapshot. Structural problems in the input (a client,
// tx or amount field that does not parse, or a missing amount on a
// deposit or withdrawal) are fatal and abort the run; rows with an
// unrecognized type are skipped before they reach the engine.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/tx-ledger/internal/engine"
)

// Reader streams events out of a CSV source, one record at a time, in
// file order.
type Reader struct {
	csv     *csv.Reader
	log     *zap.Logger
	records int
	started bool
}

// NewReader wraps r. The expected layout is `type, client, tx, amount`
// with an optional header row; whitespace around fields is ignored and
// the amount column may be absent on dispute-family rows.
func NewReader(r io.Reader, log *zap.Logger) *Reader {
	if log == nil {
		log = zap.NewNop()
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	return &Reader{csv: cr, log: log}
}

// Read returns the next event. It returns io.EOF after the last record
// and a descriptive error on the first structurally invalid record.
func (r *Reader) Read() (engine.Event, error) {
	for {
		rec, err := r.csv.Read()
		if err == io.EOF {
			return engine.Event{}, io.EOF
		}
		if err != nil {
			return engine.Event{}, fmt.Errorf("reading input: %w", err)
		}
		r.records++

		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}

		// Header row, if present.
		if !r.started {
			r.started = true
			if strings.EqualFold(rec[0], "type") {
				continue
			}
		}

		ev, ok, err := r.parse(rec)
		if err != nil {
			return engine.Event{}, fmt.Errorf("record %d: %w", r.records, err)
		}
		if !ok {
			continue
		}
		return ev, nil
	}
}

func (r *Reader) parse(rec []string) (engine.Event, bool, error) {
	if len(rec) < 3 {
		return engine.Event{}, false, fmt.Errorf("expected at least 3 fields, got %d", len(rec))
	}

	client, err := strconv.ParseUint(rec[1], 10, 16)
	if err != nil {
		return engine.Event{}, false, fmt.Errorf("invalid client id %q", rec[1])
	}

	tx, err := strconv.ParseUint(rec[2], 10, 32)
	if err != nil {
		return engine.Event{}, false, fmt.Errorf("invalid transaction id %q", rec[2])
	}

	ev := engine.Event{
		Kind:     engine.Kind(strings.ToLower(rec[0])),
		ClientID: uint16(client),
		TxID:     uint32(tx),
	}

	hasAmount := len(rec) > 3 && rec[3] != ""
	if hasAmount {
		amount, err := decimal.NewFromString(rec[3])
		if err != nil {
			return engine.Event{}, false, fmt.Errorf("invalid amount %q", rec[3])
		}
		if amount.IsNegative() {
			return engine.Event{}, false, fmt.Errorf("negative amount %q", rec[3])
		}
		ev.Amount = amount
	}

	switch ev.Kind {
	case engine.Deposit, engine.Withdrawal:
		if !hasAmount {
			return engine.Event{}, false, fmt.Errorf("missing amount for %s", ev.Kind)
		}
	case engine.Dispute, engine.Resolve, engine.Chargeback:
		// Reference events carry no amount of their own; one present in
		// the input is ignored.
		ev.Amount = decimal.Decimal{}
	default:
		r.log.Debug("skipping record with unrecognized type",
			zap.Int("record", r.records),
			zap.String("type", rec[0]))
		return engine.Event{}, false, nil
	}

	return ev, true, nil
}
