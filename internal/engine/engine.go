// Package engine applies an ordered stream of ledger events (deposits,
// withdrawals, disputes, resolves, chargebacks) to per-client accounts
// and produces the final balance snapshot.
//
// The engine is single-threaded by design: dispute-family events are
// only meaningful relative to the state left by the transaction they
// reference, so events must be applied strictly in input order.
// Business-rule violations (unknown client or transaction, insufficient
// funds, double dispute, locked account) never abort the stream; each is
// absorbed as a no-op and reported through the returned Outcome.
package engine

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine owns the account store and applies events to it.
type Engine struct {
	accounts map[uint16]*Account
	order    []uint16
	log      *zap.Logger
}

// New creates an empty engine. A nil logger disables diagnostics.
func New(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		accounts: make(map[uint16]*Account),
		log:      log,
	}
}

// Apply dispatches a single event to its handler and returns the outcome.
func (e *Engine) Apply(ev Event) Outcome {
	var out Outcome
	switch ev.Kind {
	case Deposit:
		out = e.applyDeposit(ev)
	case Withdrawal:
		out = e.applyWithdrawal(ev)
	case Dispute:
		out = e.applyDispute(ev)
	case Resolve:
		out = e.applyResolve(ev)
	case Chargeback:
		out = e.applyChargeback(ev)
	default:
		out = UnknownKind
	}

	if out != Applied {
		e.log.Debug("event dropped",
			zap.String("kind", string(ev.Kind)),
			zap.Uint16("client", ev.ClientID),
			zap.Uint32("tx", ev.TxID),
			zap.String("outcome", string(out)))
	}
	return out
}

// applyDeposit credits the account, creating it if this is the first
// deposit for the client id. This is the only operation that creates
// accounts.
func (e *Engine) applyDeposit(ev Event) Outcome {
	acct, ok := e.accounts[ev.ClientID]
	if !ok {
		acct = newAccount(ev.ClientID, ev.Amount)
		acct.record(ev)
		e.accounts[ev.ClientID] = acct
		e.order = append(e.order, ev.ClientID)
		return Applied
	}
	if acct.Locked {
		return AccountLocked
	}

	acct.Available = acct.Available.Add(ev.Amount)
	acct.Total = acct.Total.Add(ev.Amount)
	acct.record(ev)
	return Applied
}

// applyWithdrawal debits the account when both available and total funds
// cover the amount. The total check is redundant while
// Total == Available + Held holds, but is kept as an explicit guard.
func (e *Engine) applyWithdrawal(ev Event) Outcome {
	acct, out := e.lookup(ev.ClientID)
	if out != Applied {
		return out
	}

	if acct.Available.LessThan(ev.Amount) || acct.Total.LessThan(ev.Amount) {
		return InsufficientFunds
	}

	acct.Available = acct.Available.Sub(ev.Amount)
	acct.Total = acct.Total.Sub(ev.Amount)
	acct.record(ev)
	return Applied
}

// applyDispute moves the referenced transaction's amount from available
// to held and marks it disputed. A dispute that would drive available
// negative is rejected, as is a dispute on a transaction already under
// dispute.
func (e *Engine) applyDispute(ev Event) Outcome {
	acct, out := e.lookup(ev.ClientID)
	if out != Applied {
		return out
	}

	tx := acct.transaction(ev.TxID)
	if tx == nil {
		return UnknownTransaction
	}
	if tx.disputed {
		return AlreadyDisputed
	}
	if acct.Available.LessThan(tx.amount) {
		return InsufficientFunds
	}

	acct.Available = acct.Available.Sub(tx.amount)
	acct.Held = acct.Held.Add(tx.amount)
	tx.disputed = true
	acct.record(ev)
	return Applied
}

// applyResolve cancels an open dispute, releasing the held amount back
// to available. A resolve against a transaction that is not currently
// disputed is a no-op.
func (e *Engine) applyResolve(ev Event) Outcome {
	acct, out := e.lookup(ev.ClientID)
	if out != Applied {
		return out
	}

	tx := acct.transaction(ev.TxID)
	if tx == nil {
		return UnknownTransaction
	}
	if !tx.disputed {
		return NotDisputed
	}

	acct.Held = acct.Held.Sub(tx.amount)
	acct.Available = acct.Available.Add(tx.amount)
	tx.disputed = false
	acct.record(ev)
	return Applied
}

// applyChargeback finalizes an open dispute against the client and locks
// the account permanently. The balance adjustment depends on the kind of
// the referenced transaction: a charged-back deposit is removed from
// held and total, while a charged-back withdrawal releases the hold and
// restores the withdrawn amount to total.
func (e *Engine) applyChargeback(ev Event) Outcome {
	acct, out := e.lookup(ev.ClientID)
	if out != Applied {
		return out
	}

	tx := acct.transaction(ev.TxID)
	if tx == nil {
		return UnknownTransaction
	}
	if !tx.disputed {
		return NotDisputed
	}

	acct.Held = acct.Held.Sub(tx.amount)
	if tx.kind == Deposit {
		acct.Total = acct.Total.Sub(tx.amount)
	} else {
		acct.Total = acct.Total.Add(tx.amount)
	}
	tx.disputed = false
	acct.Locked = true
	acct.record(ev)
	return Applied
}

// lookup finds the account for withdrawal and dispute-family handlers.
// Locked accounts are excluded from every operation: once locked, an
// account can never again be withdrawn from, disputed, resolved or
// charged back.
func (e *Engine) lookup(clientID uint16) (*Account, Outcome) {
	acct, ok := e.accounts[clientID]
	if !ok {
		return nil, UnknownClient
	}
	if acct.Locked {
		return nil, AccountLocked
	}
	return acct, Applied
}

// AccountView is the externally visible state of one account.
type AccountView struct {
	ClientID  uint16
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// Snapshot returns the final state of every account ever created, in
// creation order.
func (e *Engine) Snapshot() []AccountView {
	views := make([]AccountView, 0, len(e.order))
	for _, id := range e.order {
		acct := e.accounts[id]
		views = append(views, AccountView{
			ClientID:  acct.ClientID,
			Available: acct.Available,
			Held:      acct.Held,
			Total:     acct.Total,
			Locked:    acct.Locked,
		})
	}
	return views
}

// Account returns the live account for a client id, or nil. Exposed for
// inspection; mutation happens only through Apply.
func (e *Engine) Account(clientID uint16) *Account {
	return e.accounts[clientID]
}
