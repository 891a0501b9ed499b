package csvio

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tx-ledger/internal/engine"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestWriteSnapshotFixedPrecision(t *testing.T) {
	e := engine.New(nil)
	e.Apply(engine.Event{Kind: engine.Deposit, ClientID: 1, TxID: 1, Amount: dec(t, "1.5")})
	e.Apply(engine.Event{Kind: engine.Deposit, ClientID: 2, TxID: 2, Amount: dec(t, "10")})
	e.Apply(engine.Event{Kind: engine.Withdrawal, ClientID: 2, TxID: 3, Amount: dec(t, "0.0001")})

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteSnapshot(e.Snapshot()))

	want := "client,available,held,total,locked\n" +
		"1,1.5000,0.0000,1.5000,false\n" +
		"2,9.9999,0.0000,9.9999,false\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSnapshotEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteSnapshot(nil))
	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}

// TestRoundTrip drives a full run: CSV in, engine in the middle, CSV out.
func TestRoundTrip(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,10.0\n" +
		"deposit,2,2,5.0\n" +
		"withdrawal,1,3,2.0\n" +
		"dispute,1,3\n" +
		"chargeback,1,3\n" +
		"deposit,1,4,1.0\n" // dropped: account 1 is locked

	e := engine.New(nil)
	r := NewReader(strings.NewReader(input), nil)
	for {
		ev, err := r.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		e.Apply(ev)
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteSnapshot(e.Snapshot()))

	want := "client,available,held,total,locked\n" +
		"1,6.0000,0.0000,10.0000,true\n" +
		"2,5.0000,0.0000,5.0000,false\n"
	assert.Equal(t, want, buf.String())
}
