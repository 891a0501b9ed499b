package engine

import "github.com/shopspring/decimal"

// Account holds one client's balances and the transaction history that
// later dispute-family events resolve against. The invariant
// Total == Available + Held holds after every applied event.
type Account struct {
	ClientID  uint16
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool

	history []Event
	txs     map[uint32]*txRecord
}

// txRecord is the disputable view of an applied deposit or withdrawal.
type txRecord struct {
	kind     Kind
	amount   decimal.Decimal
	disputed bool
}

func newAccount(clientID uint16, opening decimal.Decimal) *Account {
	return &Account{
		ClientID:  clientID,
		Available: opening,
		Total:     opening,
		txs:       make(map[uint32]*txRecord),
	}
}

// record appends an applied event to the account history. Only deposits
// and withdrawals become disputable; dispute-family events are kept as
// audit markers. A reused transaction id never displaces the record
// already on file, so a later dispute always resolves to the earliest
// transaction carrying that id.
func (a *Account) record(ev Event) {
	a.history = append(a.history, ev)

	if ev.Kind != Deposit && ev.Kind != Withdrawal {
		return
	}
	if _, exists := a.txs[ev.TxID]; !exists {
		a.txs[ev.TxID] = &txRecord{kind: ev.Kind, amount: ev.Amount}
	}
}

// transaction looks up a disputable transaction by id. Returns nil when
// the id was never applied to this account.
func (a *Account) transaction(txID uint32) *txRecord {
	return a.txs[txID]
}

// History returns the ordered sequence of events applied to the account,
// dispute-family markers included.
func (a *Account) History() []Event {
	out := make([]Event, len(a.history))
	copy(out, a.history)
	return out
}
