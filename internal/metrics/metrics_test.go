package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/txreport/internal/metrics"
)

func TestCollector_Counts(t *testing.T) {
	c := metrics.NewCollector(nil)

	c.IncParsed()
	c.IncParsed()
	c.IncParseFailure()
	c.IncOverdrawn()
	c.IncAnomaly("null_balance")
	c.IncAnomaly("null_balance")
	c.IncAnomaly("pos_runtime_error")
	c.ObserveRun(120 * time.Millisecond)

	path := filepath.Join(t.TempDir(), "txreport.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "txreport_records_parsed_total 2")
	assert.Contains(t, out, "txreport_parse_failures_total 1")
	assert.Contains(t, out, "txreport_overdrawn_total 1")
	assert.Contains(t, out, `txreport_anomalies_total{kind="null_balance"} 2`)
	assert.Contains(t, out, `txreport_anomalies_total{kind="pos_runtime_error"} 1`)
	assert.Contains(t, out, "txreport_run_duration_seconds_count 1")
}

func TestCollector_IndependentRegistries(t *testing.T) {
	// Two collectors in one process must not collide on registration.
	a := metrics.NewCollector(nil)
	b := metrics.NewCollector(nil)

	a.IncParsed()
	b.IncParsed()

	pathA := filepath.Join(t.TempDir(), "a.prom")
	require.NoError(t, a.WriteTextfile(pathA))

	data, err := os.ReadFile(pathA)
	require.NoError(t, err)
	assert.Contains(t, string(data), "txreport_records_parsed_total 1")
}

func TestWriteTextfile_BadPath(t *testing.T) {
	c := metrics.NewCollector(nil)
	assert.Error(t, c.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}
