package parser_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/txreport/internal/parser"
	"github.com/MrJamesThe3rd/txreport/internal/record"
	"github.com/MrJamesThe3rd/txreport/internal/schema"
)

func mustTx(t *testing.T, e record.Entry) *record.Transaction {
	t.Helper()

	tx, ok := e.(*record.Transaction)
	require.True(t, ok, "expected *record.Transaction, got %T", e)

	return tx
}

func mustFailure(t *testing.T, e record.Entry) *record.ParseFailure {
	t.Helper()

	f, ok := e.(*record.ParseFailure)
	require.True(t, ok, "expected *record.ParseFailure, got %T", e)

	return f
}

func TestParse_WellFormed(t *testing.T) {
	p := parser.New(schema.Default())

	e := p.Parse("day1.log", 7, "2024-03-02T10:00:00,ACC1,-50.00,-20.00,active,ok")
	tx := mustTx(t, e)

	assert.Equal(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), tx.Timestamp)
	assert.Equal(t, "ACC1", tx.AccountID)
	require.True(t, tx.Amount.Valid)
	assert.True(t, tx.Amount.Decimal.Equal(decimal.RequireFromString("-50.00")))
	require.True(t, tx.Balance.Valid)
	assert.True(t, tx.Balance.Decimal.Equal(decimal.RequireFromString("-20.00")))
	assert.Equal(t, record.SubscriptionActive, tx.Subscription)
	assert.Equal(t, record.POSOK, tx.POS)
	assert.Equal(t, "day1.log", tx.SourceFile)
	assert.Equal(t, 7, tx.Line)
}

func TestParse_FieldRoundTrip(t *testing.T) {
	// Fields of a well-formed line re-serialize to their original values.
	p := parser.New(schema.Default())

	raw := "2024-03-02T10:00:00,ACC1,-50.00,-20.00,active,ok"
	tx := mustTx(t, p.Parse("a.log", 1, raw))

	got := tx.Timestamp.Format("2006-01-02T15:04:05") + "," +
		tx.AccountID + "," +
		tx.Amount.Decimal.StringFixed(2) + "," +
		tx.Balance.Decimal.StringFixed(2) + "," +
		string(tx.Subscription) + "," +
		string(tx.POS)
	assert.Equal(t, raw, got)
	assert.Equal(t, raw, tx.Raw)
}

func TestParse_TimestampFormats(t *testing.T) {
	p := parser.New(schema.Default())

	tests := []struct {
		name string
		ts   string
		want time.Time
	}{
		{"DateTimeT", "2024-03-02T10:00:00", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)},
		{"DateTimeSpace", "2024-03-02 10:00:00", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)},
		{"DateOnly", "2024-03-02", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := mustTx(t, p.Parse("a.log", 1, tt.ts+",ACC1,-1.00,5.00,active,ok"))
			assert.Equal(t, tt.want, tx.Timestamp)
		})
	}
}

func TestParse_AbsentFields(t *testing.T) {
	p := parser.New(schema.Default())

	tests := []struct {
		name string
		raw  string
	}{
		{"EmptyBalance", "2024-03-02T10:00:00,ACC1,-50.00,,active,ok"},
		{"NullBalance", "2024-03-02T10:00:00,ACC1,-50.00,NULL,active,ok"},
		{"LowercaseNull", "2024-03-02T10:00:00,ACC1,-50.00,null,active,ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := mustTx(t, p.Parse("a.log", 1, tt.raw))
			assert.False(t, tx.Balance.Valid, "absent balance must not be a parse failure")
		})
	}
}

func TestParse_UnknownStatuses(t *testing.T) {
	p := parser.New(schema.Default())

	tx := mustTx(t, p.Parse("a.log", 1, "2024-03-02T10:00:00,ACC1,-50.00,20.00,trialing,degraded"))
	assert.Equal(t, record.SubscriptionUnknown, tx.Subscription)
	assert.Equal(t, record.POSUnknown, tx.POS)
}

func TestParse_Failures(t *testing.T) {
	p := parser.New(schema.Default())

	tests := []struct {
		name   string
		raw    string
		reason record.FailureReason
	}{
		{"ThreeFields", "2024-03-02T10:00:00,ACC1,-50.00", record.MalformedFieldCount},
		{"SevenFields", "2024-03-02T10:00:00,ACC1,-50.00,-20.00,active,ok,extra", record.MalformedFieldCount},
		{"EmptyAccount", "2024-03-02T10:00:00,,-50.00,-20.00,active,ok", record.MalformedFieldCount},
		{"BadTimestamp", "02/03/2024,ACC1,-50.00,-20.00,active,ok", record.UnparseableTimestamp},
		{"BadAmount", "2024-03-02T10:00:00,ACC1,fifty,-20.00,active,ok", record.UnparseableNumber},
		{"BadBalance", "2024-03-02T10:00:00,ACC1,-50.00,twenty,active,ok", record.UnparseableNumber},
		{"EmptyLine", "", record.MalformedFieldCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFailure(t, p.Parse("bad.log", 3, tt.raw))

			assert.Equal(t, tt.reason, f.Reason)
			assert.Equal(t, tt.raw, f.Raw, "failure must carry the original line verbatim")
			assert.Equal(t, "bad.log", f.SourceFile)
			assert.Equal(t, 3, f.Line)
			assert.NotEmpty(t, f.Detail)
		})
	}
}

func TestParse_ExtraFieldsAllowed(t *testing.T) {
	s := schema.Default()
	s.AllowExtraFields = true
	p := parser.New(s)

	tx := mustTx(t, p.Parse("a.log", 1, "2024-03-02T10:00:00,ACC1,-50.00,-20.00,active,ok,EUR,2.50"))
	assert.Equal(t, []string{"EUR", "2.50"}, tx.Extra)
}

func TestParse_CustomDelimiter(t *testing.T) {
	s := schema.Default()
	s.Delimiter = ";"
	p := parser.New(s)

	tx := mustTx(t, p.Parse("a.log", 1, "2024-03-02T10:00:00;ACC1;-50.00;-20.00;active;ok"))
	assert.Equal(t, "ACC1", tx.AccountID)
}
