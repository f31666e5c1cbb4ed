package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/ocr-bench/internal/common"
	"github.com/joseph-ayodele/ocr-bench/internal/history"
	"github.com/joseph-ayodele/ocr-bench/internal/metrics"
	"github.com/joseph-ayodele/ocr-bench/internal/report"
)

// benchreport renders a metrics log, or one run from the history database,
// as an XLSX comparison workbook.
func main() {
	var (
		metricsFile = flag.String("metrics", "", "metrics file to report on (default: <output-dir>/metrics.txt)")
		historyDB   = flag.String("history-db", "", "optional SQLite history database to read instead of a metrics file")
		runID       = flag.String("run", "", "run id to report on (required with --history-db)")
		out         = flag.String("out", "benchmark.xlsx", "output XLSX file path")
	)
	flag.Parse()

	logger := common.NewLogger()
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *historyDB == "" {
		*historyDB = cfg.History.DBPath
	}

	var records []metrics.Record
	if *historyDB != "" {
		if *runID == "" {
			logger.Error("--run is required when reporting from a history database")
			os.Exit(2)
		}
		rows, err := readHistory(*historyDB, *runID, logger)
		if err != nil {
			logger.Error("failed to read history database", "path", *historyDB, "run_id", *runID, "error", err)
			os.Exit(1)
		}
		records = report.FromPairs(rows)
	} else {
		if *metricsFile == "" {
			*metricsFile = filepath.Join(cfg.Paths.OutputDir, "metrics.txt")
		}
		var err error
		records, err = report.ReadFile(*metricsFile, logger)
		if err != nil {
			logger.Error("failed to read metrics file", "path", *metricsFile, "error", err)
			os.Exit(1)
		}
	}
	if len(records) == 0 {
		logger.Warn("no metrics records found")
	}

	svc := report.NewService(logger)
	xlsxBytes, err := svc.BuildXLSX(records)
	if err != nil {
		logger.Error("failed to build report", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0o644); err != nil {
		logger.Error("failed to write output file", "path", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("report complete", "records", len(records), "output", *out)
}

func readHistory(path, runID string, logger *slog.Logger) ([]history.PairRow, error) {
	store, err := history.Open(path, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("close history database", "error", cerr)
		}
	}()
	return store.PairsForRun(context.Background(), runID)
}
