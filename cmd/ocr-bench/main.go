package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/ocr-bench/internal/bench"
	"github.com/joseph-ayodele/ocr-bench/internal/common"
	"github.com/joseph-ayodele/ocr-bench/internal/history"
	"github.com/joseph-ayodele/ocr-bench/internal/layout"
	"github.com/joseph-ayodele/ocr-bench/internal/metrics"
	"github.com/joseph-ayodele/ocr-bench/internal/pdfinfo"
	"github.com/joseph-ayodele/ocr-bench/internal/pricing"
	"github.com/joseph-ayodele/ocr-bench/internal/provider"
	"github.com/joseph-ayodele/ocr-bench/internal/provider/gemini"
	"github.com/joseph-ayodele/ocr-bench/internal/provider/landingai"
	"github.com/joseph-ayodele/ocr-bench/internal/provider/marker"
	"github.com/joseph-ayodele/ocr-bench/internal/provider/mistral"
	"github.com/joseph-ayodele/ocr-bench/internal/provider/openai"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		inputDir    = flag.String("input-dir", "", "directory with input PDF files (default: $INPUT_DIR or sample_pdfs)")
		inputFile   = flag.String("input-file", "", "optional PDF filename in --input-dir to run only one file")
		outputDir   = flag.String("output-dir", "", "directory for extracted markdown and metrics (default: $OUTPUT_DIR or output)")
		providers   = flag.String("providers", "mistral", "comma-separated providers to run (mistral,landing_ai,openai,gemini,marker)")
		pricingFile = flag.String("pricing-file", "", "optional JSON pricing file overriding default rates")
		historyDB   = flag.String("history-db", "", "optional SQLite file recording run history")
	)
	flag.Parse()

	// Setup logger
	logger := common.NewLogger()
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()

	if *inputDir == "" {
		*inputDir = cfg.Paths.InputDir
	}
	if *outputDir == "" {
		*outputDir = cfg.Paths.OutputDir
	}
	if *pricingFile == "" {
		*pricingFile = cfg.Paths.PricingFile
	}
	if *historyDB == "" {
		*historyDB = cfg.History.DBPath
	}

	// Wire provider adapters
	registry := buildRegistry(cfg, logger)

	// Pricing table: defaults from env, optionally overridden by file
	prices := buildPricing(cfg)
	if *pricingFile != "" {
		if err := prices.LoadFile(*pricingFile); err != nil {
			logger.Error("failed to load pricing file", "path", *pricingFile, "error", err)
			os.Exit(1)
		}
	}

	opts := []bench.Option{bench.WithPageCounter(pdfinfo.PageCount)}
	if *historyDB != "" {
		store, err := history.Open(*historyDB, logger)
		if err != nil {
			logger.Error("failed to open history database", "path", *historyDB, "error", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				logger.Error("close history database", "error", cerr)
			}
		}()
		opts = append(opts, bench.WithHistory(store))
	}

	orchestrator := bench.NewOrchestrator(
		logger,
		registry,
		layout.NewManager(*outputDir),
		metrics.NewRecorder(),
		prices,
		opts...,
	)

	summary, err := orchestrator.Run(ctx, bench.RunRequest{
		InputDir:  *inputDir,
		InputFile: *inputFile,
		Providers: *providers,
	})
	if err != nil {
		logger.Error("benchmark setup failed", "error", err)
		os.Exit(1)
	}

	// Per-pair failures do not change the exit status; the summary is the
	// operator's rerun guide.
	fmt.Printf("run %s: attempted=%d succeeded=%d failed=%d\n",
		summary.RunID, summary.Attempted, summary.Succeeded, summary.Failed)
	for _, f := range summary.Failures {
		printError("failed provider=%s pdf=%s cause=%s\n", f.Provider, f.Document, f.Cause)
	}
}

func buildRegistry(cfg *common.Config, logger *slog.Logger) *provider.Registry {
	registry := provider.NewRegistry()
	registry.Register("mistral", mistral.NewClient(mistral.Config{
		APIKey:  cfg.Mistral.APIKey,
		BaseURL: cfg.Mistral.BaseURL,
		Model:   cfg.Mistral.Model,
		Timeout: cfg.Mistral.RequestTimeout,
	}, logger))
	registry.Register("landing_ai", landingai.NewClient(landingai.Config{
		APIKey:      cfg.LandingAI.APIKey,
		ParseURL:    cfg.LandingAI.ParseURL,
		Model:       cfg.LandingAI.Model,
		Split:       cfg.LandingAI.Split,
		CreditToUSD: cfg.LandingAI.CreditToUSD,
		Timeout:     cfg.LandingAI.RequestTimeout,
	}, logger))
	registry.Register("openai", openai.NewClient(openai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
		Timeout: cfg.OpenAI.RequestTimeout,
	}, logger))
	registry.Register("gemini", gemini.NewClient(gemini.Config{
		ProjectID: cfg.Gemini.ProjectID,
		Region:    cfg.Gemini.Region,
		Model:     cfg.Gemini.Model,
	}, logger))
	registry.Register("marker", marker.NewClient(marker.Config{
		APIKey:       cfg.Marker.APIKey,
		BaseURL:      cfg.Marker.BaseURL,
		PollInterval: cfg.Marker.PollInterval,
		Timeout:      cfg.Marker.RequestTimeout,
	}, logger))
	return registry
}

func buildPricing(cfg *common.Config) *pricing.Table {
	prices := pricing.NewTable()
	prices.Set("mistral", pricing.Rate{USDPer1KPages: cfg.Mistral.USDPer1KPages})
	prices.Set("landing_ai", pricing.Rate{USDPerCredit: cfg.LandingAI.CreditToUSD})
	return prices
}
