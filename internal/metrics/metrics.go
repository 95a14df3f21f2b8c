package metrics

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Collector gathers per-run pipeline metrics on its own registry. The tool is
// a batch job, so instead of serving /metrics it dumps the registry in text
// exposition format for a textfile collector to pick up.
type Collector struct {
	registry *prometheus.Registry

	recordsParsed prometheus.Counter
	parseFailures prometheus.Counter
	overdrawn     prometheus.Counter
	anomalies     *prometheus.CounterVec
	runDuration   prometheus.Histogram

	logger *slog.Logger
}

func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		recordsParsed: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "txreport_records_parsed_total",
			Help: "Total log records parsed into transactions",
		}),
		parseFailures: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "txreport_parse_failures_total",
			Help: "Total log lines that could not be parsed",
		}),
		overdrawn: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "txreport_overdrawn_total",
			Help: "Total overdrawn transactions found",
		}),
		anomalies: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "txreport_anomalies_total",
			Help: "Total anomalous records by kind",
		}, []string{"kind"}),
		runDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "txreport_run_duration_seconds",
			Help:    "Wall-clock duration of a full pipeline run",
			Buckets: prometheus.DefBuckets,
		}),
		logger: logger,
	}
}

func (c *Collector) IncParsed() {
	c.recordsParsed.Inc()
}

func (c *Collector) IncParseFailure() {
	c.parseFailures.Inc()
}

func (c *Collector) IncOverdrawn() {
	c.overdrawn.Inc()
}

func (c *Collector) IncAnomaly(kind string) {
	c.anomalies.WithLabelValues(kind).Inc()
}

func (c *Collector) ObserveRun(d time.Duration) {
	c.runDuration.Observe(d.Seconds())
}

// WriteTextfile dumps all metrics to path in Prometheus text exposition
// format, atomically enough for a scraping textfile collector (write then
// rename).
func (c *Collector) WriteTextfile(path string) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating metrics file: %w", err)
	}

	enc := expfmt.NewEncoder(f, expfmt.NewFormat(expfmt.TypeTextPlain))

	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			f.Close()
			return fmt.Errorf("encoding metrics: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing metrics file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publishing metrics file: %w", err)
	}

	c.logger.Info("wrote metrics textfile", "path", path)

	return nil
}
