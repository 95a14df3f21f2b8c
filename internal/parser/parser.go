package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/txreport/internal/record"
	"github.com/MrJamesThe3rd/txreport/internal/schema"
)

// Field positions within a log line.
const (
	fieldTimestamp = iota
	fieldAccountID
	fieldAmount
	fieldBalance
	fieldSubscription
	fieldPOS
)

// Parser turns one raw log line into a Transaction or a ParseFailure.
// It never returns an error out of band: every malformed input becomes a
// ParseFailure value carrying the original line, and the caller decides
// what to do with it.
type Parser struct {
	schema schema.Schema
}

func New(s schema.Schema) *Parser {
	return &Parser{schema: s}
}

// Parse is a pure function of the raw line and the fixed schema.
func (p *Parser) Parse(sourceFile string, lineNo int, raw string) record.Entry {
	cells := strings.Split(raw, p.schema.Delimiter)
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}

	if len(cells) < schema.FieldCount {
		return p.failure(sourceFile, lineNo, raw, record.MalformedFieldCount,
			fmt.Sprintf("expected %d fields, got %d", schema.FieldCount, len(cells)))
	}

	if len(cells) > schema.FieldCount && !p.schema.AllowExtraFields {
		return p.failure(sourceFile, lineNo, raw, record.MalformedFieldCount,
			fmt.Sprintf("expected %d fields, got %d", schema.FieldCount, len(cells)))
	}

	ts, ok := p.parseTimestamp(cells[fieldTimestamp])
	if !ok {
		return p.failure(sourceFile, lineNo, raw, record.UnparseableTimestamp,
			fmt.Sprintf("timestamp %q matches none of the known formats", cells[fieldTimestamp]))
	}

	if cells[fieldAccountID] == "" {
		return p.failure(sourceFile, lineNo, raw, record.MalformedFieldCount,
			"account id field is empty")
	}

	amount, ok := p.parseDecimal(cells[fieldAmount])
	if !ok {
		return p.failure(sourceFile, lineNo, raw, record.UnparseableNumber,
			fmt.Sprintf("amount %q is not a number", cells[fieldAmount]))
	}

	balance, ok := p.parseDecimal(cells[fieldBalance])
	if !ok {
		return p.failure(sourceFile, lineNo, raw, record.UnparseableNumber,
			fmt.Sprintf("balance %q is not a number", cells[fieldBalance]))
	}

	var extra []string
	if len(cells) > schema.FieldCount {
		extra = cells[schema.FieldCount:]
	}

	return &record.Transaction{
		SourceFile:   sourceFile,
		Line:         lineNo,
		Timestamp:    ts,
		AccountID:    cells[fieldAccountID],
		Amount:       amount,
		Balance:      balance,
		Subscription: record.ParseSubscriptionStatus(cells[fieldSubscription]),
		POS:          record.ParsePOSStatus(cells[fieldPOS]),
		Extra:        extra,
		Raw:          raw,
	}
}

func (p *Parser) failure(sourceFile string, lineNo int, raw string, reason record.FailureReason, detail string) *record.ParseFailure {
	return &record.ParseFailure{
		SourceFile: sourceFile,
		Line:       lineNo,
		Raw:        raw,
		Reason:     reason,
		Detail:     detail,
	}
}

// parseTimestamp tries the schema's layouts in their fixed priority order.
func (p *Parser) parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range p.schema.TimestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseDecimal parses a nullable decimal field. Placeholder tokens mean
// "absent", which is valid data, not a failure.
func (p *Parser) parseDecimal(s string) (decimal.NullDecimal, bool) {
	if p.schema.IsNull(s) {
		return decimal.NullDecimal{}, true
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, false
	}

	return decimal.NullDecimal{Decimal: d, Valid: true}, true
}
