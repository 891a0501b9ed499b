package engine

import "github.com/shopspring/decimal"

// Kind identifies the type of a ledger event.
type Kind string

const (
	Deposit    Kind = "deposit"
	Withdrawal Kind = "withdrawal"
	Dispute    Kind = "dispute"
	Resolve    Kind = "resolve"
	Chargeback Kind = "chargeback"
)

// Event is a single record from the input stream. Amount is zero for
// dispute, resolve and chargeback events, which reference the amount of
// an earlier transaction instead of carrying their own.
type Event struct {
	Kind     Kind
	ClientID uint16
	TxID     uint32
	Amount   decimal.Decimal
}

// Outcome reports whether an event was applied and, if not, why it was
// dropped. Rejections are silent no-ops by contract; the outcome exists
// for observability and testing only.
type Outcome string

const (
	Applied            Outcome = "applied"
	UnknownKind        Outcome = "unknown_kind"
	UnknownClient      Outcome = "unknown_client"
	UnknownTransaction Outcome = "unknown_transaction"
	AccountLocked      Outcome = "account_locked"
	InsufficientFunds  Outcome = "insufficient_funds"
	AlreadyDisputed    Outcome = "already_disputed"
	NotDisputed        Outcome = "not_disputed"
)
