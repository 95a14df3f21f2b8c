package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/MrJamesThe3rd/txreport/internal/config"
	"github.com/MrJamesThe3rd/txreport/internal/extract"
	"github.com/MrJamesThe3rd/txreport/internal/metrics"
	"github.com/MrJamesThe3rd/txreport/internal/parser"
	"github.com/MrJamesThe3rd/txreport/internal/pipeline"
	"github.com/MrJamesThe3rd/txreport/internal/report"
	"github.com/MrJamesThe3rd/txreport/internal/schema"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sch := schema.Default()
	if cfg.Schema.File != "" {
		sch, err = schema.Load(cfg.Schema.File)
		if err != nil {
			slog.Error("failed to load schema", "error", err)
			os.Exit(1)
		}
	}

	var (
		collector  = metrics.NewCollector(slog.Default())
		extractor  = extract.NewService(slog.Default())
		pipelineSv = pipeline.NewService(parser.New(sch), collector, slog.Default())
	)

	files, err := extractor.ExtractAll(cfg.Paths.Logs, cfg.Paths.Extracted)
	if err != nil {
		slog.Error("extraction failed", "error", err)
		os.Exit(1)
	}

	slog.Info("extraction complete", "archives", len(files))

	sink, err := report.NewCSVSink(cfg.Paths.Reports)
	if err != nil {
		slog.Error("failed to prepare reports directory", "error", err)
		os.Exit(1)
	}

	summary, err := pipelineSv.Run(context.Background(), cfg.Paths.Extracted, sink)
	if err != nil {
		slog.Error("pipeline run failed", "error", err)
		os.Exit(1)
	}

	if cfg.Metrics.File != "" {
		if err := collector.WriteTextfile(cfg.Metrics.File); err != nil {
			slog.Error("failed to write metrics", "error", err)
		}
	}

	slog.Info("reports written",
		"dir", cfg.Paths.Reports,
		"processed", summary.Processed,
		"overdrawn", summary.Overdrawn,
		"anomalies", summary.Anomalies,
	)
}
