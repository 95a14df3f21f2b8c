package aggregate

import (
	"time"

	"github.com/shopspring/decimal"
)

// Granularity is a calendar rollup level.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
	Year  Granularity = "year"
)

// Granularities lists the rollup levels in report order.
var Granularities = []Granularity{Day, Week, Month, Year}

// Bucket accumulates overdrawn totals for one calendar period. It is mutated
// exactly once per qualifying transaction and frozen at Finalize.
type Bucket struct {
	Start      time.Time
	Count      int
	AmountSum  decimal.Decimal
	BalanceSum decimal.Decimal
}

// PeriodStart returns the canonical start of the period containing ts at the
// given granularity. Weeks start on Monday.
func PeriodStart(g Granularity, ts time.Time) time.Time {
	switch g {
	case Day:
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	case Week:
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
		offset := (int(ts.Weekday()) + 6) % 7 // Monday = 0
		return day.AddDate(0, 0, -offset)
	case Month:
		return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, ts.Location())
	case Year:
		return time.Date(ts.Year(), 1, 1, 0, 0, 0, 0, ts.Location())
	}

	return ts
}
