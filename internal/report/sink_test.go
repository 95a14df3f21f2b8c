package report_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/txreport/internal/report"
)

func TestCSVSink_CommitPublishesAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	sink, err := report.NewCSVSink(dir)
	require.NoError(t, err)

	require.NoError(t, sink.WriteReport("a.csv", []string{"h1", "h2"}, [][]string{{"1", "2"}}))
	require.NoError(t, sink.WriteReport("b.csv", []string{"h"}, nil))

	// Nothing visible before commit.
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, sink.Commit())

	data, err := os.ReadFile(filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "h1,h2\n1,2\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "b.csv"))
	require.NoError(t, err)
	assert.Equal(t, "h\n", string(data), "header-only report is valid output")
}

func TestCSVSink_RollbackLeavesNothing(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "reports")

	sink, err := report.NewCSVSink(dir)
	require.NoError(t, err)

	require.NoError(t, sink.WriteReport("a.csv", []string{"h"}, [][]string{{"1"}}))
	require.NoError(t, sink.Rollback())

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	// The staging directory is gone too.
	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCSVSink_CommitReplacesStaleReports(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.csv"), []byte("old"), 0o644))

	sink, err := report.NewCSVSink(dir)
	require.NoError(t, err)

	require.NoError(t, sink.WriteReport("fresh.csv", []string{"h"}, nil))
	require.NoError(t, sink.Commit())

	_, err = os.Stat(filepath.Join(dir, "stale.csv"))
	assert.True(t, os.IsNotExist(err), "stale reports must not survive a run")

	_, err = os.Stat(filepath.Join(dir, "fresh.csv"))
	assert.NoError(t, err)
}

func TestCSVSink_RollbackAfterCommitIsNoop(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	sink, err := report.NewCSVSink(dir)
	require.NoError(t, err)

	require.NoError(t, sink.WriteReport("a.csv", []string{"h"}, nil))
	require.NoError(t, sink.Commit())
	require.NoError(t, sink.Rollback())

	_, err = os.Stat(filepath.Join(dir, "a.csv"))
	assert.NoError(t, err)
}

func TestCSVSink_WriteAfterCommitFails(t *testing.T) {
	sink, err := report.NewCSVSink(filepath.Join(t.TempDir(), "reports"))
	require.NoError(t, err)

	require.NoError(t, sink.Commit())
	assert.Error(t, sink.WriteReport("a.csv", []string{"h"}, nil))
	assert.Error(t, sink.Commit())
}

func TestRead_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	sink, err := report.NewCSVSink(dir)
	require.NoError(t, err)

	for _, name := range report.Names {
		require.NoError(t, sink.WriteReport(name, []string{"col_a", "col_b"}, [][]string{{"x", "y"}}))
	}

	require.NoError(t, sink.Commit())

	b, err := report.Read(dir)
	require.NoError(t, err)
	require.Len(t, b.Reports, len(report.Names))

	for i, r := range b.Reports {
		assert.Equal(t, report.Names[i], r.Name)
		assert.Equal(t, []string{"col_a", "col_b"}, r.Header)
		assert.Equal(t, [][]string{{"x", "y"}}, r.Rows)
	}
}

func TestRead_MissingReport(t *testing.T) {
	_, err := report.Read(t.TempDir())
	assert.Error(t, err)
}
