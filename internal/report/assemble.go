package report

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/txreport/internal/aggregate"
	"github.com/MrJamesThe3rd/txreport/internal/classify"
	"github.com/MrJamesThe3rd/txreport/internal/record"
)

// Report file names, fixed by the output contract.
const (
	DetailName  = "overdrawn_transactions_report.csv"
	DailyName   = "overdrawn_daily.csv"
	WeeklyName  = "overdrawn_weekly.csv"
	MonthlyName = "overdrawn_monthly.csv"
	YearlyName  = "overdrawn_yearly.csv"
	AnomalyName = "anomaly_report.csv"
)

const timestampLayout = "2006-01-02T15:04:05"

var (
	detailHeader  = []string{"sourcefile", "timestamp", "account_id", "amount", "balance_after", "subscription_status", "pos_status", "extra"}
	rollupHeader  = []string{"period_start", "overdrawn_count", "total_overdrawn_amount", "total_negative_balance"}
	anomalyHeader = []string{"kind", "sourcefile", "line", "detail", "reason"}

	rollupNames = map[aggregate.Granularity]string{
		aggregate.Day:   DailyName,
		aggregate.Week:  WeeklyName,
		aggregate.Month: MonthlyName,
		aggregate.Year:  YearlyName,
	}
)

// Report is one ordered row set ready for serialization.
type Report struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Bundle is the complete output of one run: the six reports in write order.
type Bundle struct {
	Reports []Report
}

// Assemble converts frozen aggregate state into the six report row sets. It
// is a pure function of the state: empty buckets and zero-anomaly kinds
// produce no rows, so a header-only report is valid output.
func Assemble(st *aggregate.State) *Bundle {
	b := &Bundle{}
	b.Reports = append(b.Reports, detailReport(st))

	for _, g := range aggregate.Granularities {
		b.Reports = append(b.Reports, rollupReport(g, st.Buckets[g]))
	}

	b.Reports = append(b.Reports, anomalyReport(st))

	return b
}

// detailReport lists overdrawn transactions sorted by timestamp ascending,
// ties broken by encounter order.
func detailReport(st *aggregate.State) Report {
	txs := make([]*record.Transaction, len(st.Overdrawn))
	copy(txs, st.Overdrawn)

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp.Before(txs[j].Timestamp)
	})

	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			tx.SourceFile,
			tx.Timestamp.Format(timestampLayout),
			tx.AccountID,
			nullDec(tx.Amount),
			nullDec(tx.Balance),
			string(tx.Subscription),
			string(tx.POS),
			joinExtra(tx.Extra),
		})
	}

	return Report{Name: DetailName, Header: detailHeader, Rows: rows}
}

func rollupReport(g aggregate.Granularity, buckets map[time.Time]*aggregate.Bucket) Report {
	starts := make([]time.Time, 0, len(buckets))
	for start := range buckets {
		starts = append(starts, start)
	}

	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	rows := make([][]string, 0, len(starts))
	for _, start := range starts {
		bk := buckets[start]
		rows = append(rows, []string{
			start.Format(time.DateOnly),
			strconv.Itoa(bk.Count),
			bk.AmountSum.String(),
			bk.BalanceSum.String(),
		})
	}

	return Report{Name: rollupNames[g], Header: rollupHeader, Rows: rows}
}

// anomalyReport groups anomalies by kind in classification precedence order,
// keeping encounter order within each kind.
func anomalyReport(st *aggregate.State) Report {
	var rows [][]string

	for _, kind := range classify.AnomalyKinds {
		for _, a := range st.Anomalies[kind] {
			sourceFile, line, detail := anomalyOrigin(a.Entry)
			rows = append(rows, []string{
				string(kind),
				sourceFile,
				strconv.Itoa(line),
				detail,
				a.Reason,
			})
		}
	}

	return Report{Name: AnomalyName, Header: anomalyHeader, Rows: rows}
}

func anomalyOrigin(e record.Entry) (sourceFile string, line int, detail string) {
	switch v := e.(type) {
	case *record.Transaction:
		return v.SourceFile, v.Line, v.Raw
	case *record.ParseFailure:
		return v.SourceFile, v.Line, v.Raw
	}

	return "", 0, ""
}

func nullDec(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}

	return d.Decimal.String()
}

func joinExtra(extra []string) string {
	return strings.Join(extra, ",")
}
