package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/txreport/internal/aggregate"
	"github.com/MrJamesThe3rd/txreport/internal/classify"
	"github.com/MrJamesThe3rd/txreport/internal/encoding"
	"github.com/MrJamesThe3rd/txreport/internal/metrics"
	"github.com/MrJamesThe3rd/txreport/internal/parser"
	"github.com/MrJamesThe3rd/txreport/internal/record"
	"github.com/MrJamesThe3rd/txreport/internal/report"
)

// maxLineSize bounds a single log line; POS terminals occasionally dump large
// metadata blobs on one line.
const maxLineSize = 1 << 20

// Summary describes one completed run.
type Summary struct {
	RunID     uuid.UUID
	Files     int
	Processed int
	Overdrawn int
	Anomalies int
	Duration  time.Duration
}

// Service runs the full parse → classify → aggregate → report fold over a
// directory of extracted log files. One call to Run is one self-contained
// pipeline run; the service itself carries no per-run state, so independent
// runs can share it.
type Service struct {
	parser  *parser.Parser
	metrics *metrics.Collector
	log     *slog.Logger
}

func NewService(p *parser.Parser, m *metrics.Collector, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{parser: p, metrics: m, log: log}
}

// Run folds every .log file under extractedDir, in lexicographic file order
// and line order within each file, then writes all six reports through sink.
// Output is all-or-nothing: any failure rolls the sink back and no report
// reaches disk.
func (s *Service) Run(ctx context.Context, extractedDir string, sink report.Sink) (*Summary, error) {
	start := time.Now()
	runID := uuid.New()
	log := s.log.With("run_id", runID)

	defer sink.Rollback()

	files, err := listLogFiles(extractedDir)
	if err != nil {
		return nil, err
	}

	log.Info("starting pipeline run", "dir", extractedDir, "files", len(files))

	agg := aggregate.New()

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run aborted: %w", err)
		}

		if err := s.foldFile(agg, path); err != nil {
			return nil, err
		}
	}

	state, err := agg.Finalize()
	if err != nil {
		return nil, err
	}

	bundle := report.Assemble(state)

	for _, r := range bundle.Reports {
		if err := sink.WriteReport(r.Name, r.Header, r.Rows); err != nil {
			return nil, fmt.Errorf("writing %s: %w", r.Name, err)
		}
	}

	if err := sink.Commit(); err != nil {
		return nil, fmt.Errorf("committing reports: %w", err)
	}

	summary := &Summary{
		RunID:     runID,
		Files:     len(files),
		Processed: state.Processed,
		Overdrawn: len(state.Overdrawn),
		Duration:  time.Since(start),
	}
	for _, kind := range classify.AnomalyKinds {
		summary.Anomalies += len(state.Anomalies[kind])
	}

	if s.metrics != nil {
		s.metrics.ObserveRun(summary.Duration)
	}

	log.Info("pipeline run complete",
		"files", summary.Files,
		"processed", summary.Processed,
		"overdrawn", summary.Overdrawn,
		"anomalies", summary.Anomalies,
		"duration", summary.Duration,
	)

	return summary, nil
}

// foldFile parses and ingests every non-blank line of one log file.
func (s *Service) foldFile(agg *aggregate.Aggregator, path string) error {
	rc, err := encoding.OpenText(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer rc.Close()

	name := filepath.Base(path)

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		entry := s.parser.Parse(name, lineNo, line)
		cls := classify.Classify(entry)

		if err := agg.Ingest(entry, cls); err != nil {
			return fmt.Errorf("ingesting %s:%d: %w", name, lineNo, err)
		}

		s.count(entry, cls)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	return nil
}

func (s *Service) count(entry record.Entry, cls classify.Classification) {
	if s.metrics == nil {
		return
	}

	if _, ok := entry.(*record.ParseFailure); ok {
		s.metrics.IncParseFailure()
	} else {
		s.metrics.IncParsed()
	}

	switch {
	case cls == classify.Overdrawn:
		s.metrics.IncOverdrawn()
	case cls.IsAnomaly():
		s.metrics.IncAnomaly(string(cls))
	}
}

// listLogFiles enumerates *.log files directly under dir, lexicographically,
// so runs over the same input are deterministic.
func listLogFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading extracted directory: %w", err)
	}

	var files []string

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}

		files = append(files, filepath.Join(dir, e.Name()))
	}

	sort.Strings(files)

	return files, nil
}
