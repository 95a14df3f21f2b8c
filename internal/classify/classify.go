package classify

import (
	"fmt"

	"github.com/MrJamesThe3rd/txreport/internal/record"
)

// Classification is the single category assigned to every parsed entry.
type Classification string

const (
	Normal               Classification = "normal"
	Overdrawn            Classification = "overdrawn"
	NullBalance          Classification = "null_balance"
	SubscriptionMismatch Classification = "subscription_mismatch"
	PosRuntimeError      Classification = "pos_runtime_error"
	ParseFailure         Classification = "parse_failure"
)

// AnomalyKinds lists the anomaly classifications in precedence order. Parse
// correctness is checked first since no other field can be trusted otherwise.
var AnomalyKinds = []Classification{
	ParseFailure,
	PosRuntimeError,
	SubscriptionMismatch,
	NullBalance,
}

// IsAnomaly reports whether c belongs in the anomaly report.
func (c Classification) IsAnomaly() bool {
	switch c {
	case ParseFailure, PosRuntimeError, SubscriptionMismatch, NullBalance:
		return true
	}

	return false
}

// Classify assigns exactly one Classification to an entry. It is total and
// deterministic: conditions are evaluated in precedence order and the first
// match wins.
func Classify(e record.Entry) Classification {
	tx, ok := e.(*record.Transaction)
	if !ok {
		return ParseFailure
	}

	if tx.POS == record.POSError {
		return PosRuntimeError
	}

	// A charge recorded against an inactive subscription. Refunds and
	// zero-amount corrections are not charges.
	if tx.Subscription == record.SubscriptionInactive && tx.Amount.Valid && tx.Amount.Decimal.IsNegative() {
		return SubscriptionMismatch
	}

	if !tx.Balance.Valid {
		return NullBalance
	}

	if tx.Balance.Decimal.IsNegative() {
		return Overdrawn
	}

	return Normal
}

// Reason builds the human-readable explanation for an anomaly row.
func Reason(e record.Entry, c Classification) string {
	switch c {
	case ParseFailure:
		if f, ok := e.(*record.ParseFailure); ok {
			return fmt.Sprintf("unparseable line (%s): %s", f.Reason, f.Detail)
		}

		return "unparseable line"
	case PosRuntimeError:
		return "point-of-sale terminal reported a runtime error"
	case SubscriptionMismatch:
		return "charge recorded against an inactive subscription"
	case NullBalance:
		return "resulting balance is missing from the record"
	}

	return ""
}
