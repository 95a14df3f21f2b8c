package aggregate

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/txreport/internal/classify"
	"github.com/MrJamesThe3rd/txreport/internal/record"
)

// ErrAlreadyFinalized is returned by Ingest and Finalize once the fold has
// been closed.
var ErrAlreadyFinalized = errors.New("aggregate: pipeline already finalized")

// Anomaly is one flagged record, kept with enough detail to diagnose it.
type Anomaly struct {
	Kind   classify.Classification
	Entry  record.Entry
	Reason string
}

// State is the frozen result of one aggregation run. It is read by the report
// assembler and never mutated afterward.
type State struct {
	// Processed counts every entry ingested, anomalies included.
	Processed int

	// Overdrawn holds overdrawn transactions in encounter order.
	Overdrawn []*record.Transaction

	// Anomalies groups flagged records by kind, each in encounter order.
	Anomalies map[classify.Classification][]Anomaly

	// Buckets holds one accumulator per populated period per granularity.
	Buckets map[Granularity]map[time.Time]*Bucket
}

// Aggregator folds a stream of classified entries into per-period
// accumulators in a single pass. One Aggregator serves exactly one run; a new
// run gets a new instance, so independent runs can share a process.
type Aggregator struct {
	state     *State
	finalized bool
}

func New() *Aggregator {
	buckets := make(map[Granularity]map[time.Time]*Bucket, len(Granularities))
	for _, g := range Granularities {
		buckets[g] = make(map[time.Time]*Bucket)
	}

	return &Aggregator{
		state: &State{
			Anomalies: make(map[classify.Classification][]Anomaly),
			Buckets:   buckets,
		},
	}
}

// Ingest folds one classified entry into the running state. Entries arrive in
// consume order; bucket sums are commutative, so the final totals do not
// depend on that order.
func (a *Aggregator) Ingest(e record.Entry, c classify.Classification) error {
	if a.finalized {
		return ErrAlreadyFinalized
	}

	a.state.Processed++

	if c.IsAnomaly() {
		a.state.Anomalies[c] = append(a.state.Anomalies[c], Anomaly{
			Kind:   c,
			Entry:  e,
			Reason: classify.Reason(e, c),
		})

		return nil
	}

	if c != classify.Overdrawn {
		// Normal records only count toward the processed tally.
		return nil
	}

	tx, ok := e.(*record.Transaction)
	if !ok {
		return fmt.Errorf("aggregate: overdrawn entry is %T, not a transaction", e)
	}

	a.state.Overdrawn = append(a.state.Overdrawn, tx)

	for _, g := range Granularities {
		a.touch(g, tx)
	}

	return nil
}

// touch updates (creating on first touch) the bucket holding tx at
// granularity g.
func (a *Aggregator) touch(g Granularity, tx *record.Transaction) {
	start := PeriodStart(g, tx.Timestamp)

	b, ok := a.state.Buckets[g][start]
	if !ok {
		b = &Bucket{Start: start}
		a.state.Buckets[g][start] = b
	}

	b.Count++

	if tx.Amount.Valid {
		b.AmountSum = b.AmountSum.Add(tx.Amount.Decimal)
	}

	// Overdrawn implies the balance was present and negative.
	if tx.Balance.Valid {
		b.BalanceSum = b.BalanceSum.Add(tx.Balance.Decimal)
	}
}

// Finalize freezes the state and hands it over. It may be called exactly
// once; afterward both Finalize and Ingest fail.
func (a *Aggregator) Finalize() (*State, error) {
	if a.finalized {
		return nil, ErrAlreadyFinalized
	}

	a.finalized = true

	return a.state, nil
}
