package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

//go:generate mockgen -source=sink.go -destination=sink_mock.go -package=report

// Sink receives ordered rows with a fixed header, one report at a time, and
// makes them visible atomically: either Commit publishes every report written
// so far, or Rollback discards all of them. Partial output never reaches the
// destination.
type Sink interface {
	WriteReport(name string, header []string, rows [][]string) error
	Commit() error
	Rollback() error
}

// CSVSink writes reports as comma-delimited text into a staging directory
// next to the destination and swaps the destination wholesale on Commit, so
// stale reports from a previous run never survive.
type CSVSink struct {
	dir       string
	staging   string
	committed bool
}

func NewCSVSink(dir string) (*CSVSink, error) {
	parent := filepath.Dir(filepath.Clean(dir))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("creating reports parent directory: %w", err)
	}

	// Staging lives next to the destination so the final rename stays on
	// one filesystem.
	staging, err := os.MkdirTemp(parent, ".reports-staging-")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	return &CSVSink{dir: dir, staging: staging}, nil
}

func (s *CSVSink) WriteReport(name string, header []string, rows [][]string) error {
	if s.committed {
		return fmt.Errorf("sink already committed")
	}

	f, err := os.Create(filepath.Join(s.staging, name))
	if err != nil {
		return fmt.Errorf("creating report %s: %w", name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header of %s: %w", name, err)
	}

	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing rows of %s: %w", name, err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}

	return nil
}

func (s *CSVSink) Commit() error {
	if s.committed {
		return fmt.Errorf("sink already committed")
	}

	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("clearing reports directory: %w", err)
	}

	if err := os.Rename(s.staging, s.dir); err != nil {
		return fmt.Errorf("publishing reports directory: %w", err)
	}

	s.committed = true

	return nil
}

// Rollback discards the staging directory. After a successful Commit it is a
// no-op, so it is safe to defer.
func (s *CSVSink) Rollback() error {
	if s.committed {
		return nil
	}

	return os.RemoveAll(s.staging)
}
