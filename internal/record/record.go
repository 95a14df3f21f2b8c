package record

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus is the subscription state carried by a log record.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionUnknown  SubscriptionStatus = "unknown"
)

// POSStatus is the point-of-sale terminal status carried by a log record.
type POSStatus string

const (
	POSOK      POSStatus = "ok"
	POSError   POSStatus = "error"
	POSUnknown POSStatus = "unknown"
)

// Transaction is one successfully parsed log event. Timestamp and AccountID
// are always set; every other field may be absent, and absence is data in its
// own right (a null balance is reported, not discarded).
type Transaction struct {
	SourceFile   string
	Line         int
	Timestamp    time.Time
	AccountID    string
	Amount       decimal.NullDecimal // debits negative
	Balance      decimal.NullDecimal // balance after the movement
	Subscription SubscriptionStatus
	POS          POSStatus
	Extra        []string // trailing fields beyond the schema, kept verbatim
	Raw          string
}

// FailureReason identifies why a raw line could not be parsed.
type FailureReason string

const (
	MalformedFieldCount  FailureReason = "malformed_field_count"
	UnparseableTimestamp FailureReason = "unparseable_timestamp"
	UnparseableNumber    FailureReason = "unparseable_number"
)

// ParseFailure is a line the parser could not turn into a Transaction. It
// keeps the offending line verbatim so the anomaly report can show it.
type ParseFailure struct {
	SourceFile string
	Line       int
	Raw        string
	Reason     FailureReason
	Detail     string
}

// Entry is the parser's result: either a *Transaction or a *ParseFailure.
type Entry interface {
	entry()
}

func (*Transaction) entry()  {}
func (*ParseFailure) entry() {}

// ParseSubscriptionStatus maps a raw status token to a SubscriptionStatus.
// Anything outside the known set is Unknown, never an error.
func ParseSubscriptionStatus(s string) SubscriptionStatus {
	switch SubscriptionStatus(s) {
	case SubscriptionActive, SubscriptionInactive:
		return SubscriptionStatus(s)
	}

	return SubscriptionUnknown
}

// ParsePOSStatus maps a raw status token to a POSStatus.
func ParsePOSStatus(s string) POSStatus {
	switch POSStatus(s) {
	case POSOK, POSError:
		return POSStatus(s)
	}

	return POSUnknown
}
