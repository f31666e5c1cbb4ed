package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/ocr-bench/internal/common"
	"github.com/joseph-ayodele/ocr-bench/internal/provider"
	"github.com/joseph-ayodele/ocr-bench/internal/provider/gemini"
	"github.com/joseph-ayodele/ocr-bench/internal/provider/landingai"
	"github.com/joseph-ayodele/ocr-bench/internal/provider/marker"
	"github.com/joseph-ayodele/ocr-bench/internal/provider/mistral"
	"github.com/joseph-ayodele/ocr-bench/internal/provider/openai"
)

// runextract runs a single provider against a single PDF and prints the
// markdown, for poking at one adapter without a full benchmark run.
func main() {
	var (
		providerID = flag.String("provider", "mistral", "provider to run (mistral,landing_ai,openai,gemini,marker)")
		out        = flag.String("out", "", "optional output file (default: stdout)")
		timeout    = flag.Duration("timeout", 10*time.Minute, "overall extraction timeout")
	)
	flag.Parse()

	logger := common.NewLogger()
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "runextract [flags] <pdf-path>")
		os.Exit(2)
	}
	pdfPath := flag.Arg(0)
	if _, err := os.Stat(pdfPath); err != nil {
		logger.Error("input PDF does not exist", "path", pdfPath, "error", err)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	registry := buildRegistry(cfg, logger)
	extractor, ok := registry.Get(*providerID)
	if !ok {
		logger.Error("unknown provider", "provider", *providerID, "known", registry.Known())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := extractor.Extract(ctx, pdfPath)
	if err != nil {
		logger.Error("extraction failed", "provider", *providerID, "pdf", pdfPath, "error", err)
		os.Exit(1)
	}

	logger.Info("extraction complete",
		"provider", *providerID,
		"pdf", pdfPath,
		"duration", res.Metrics.Duration,
		"model", res.Metrics.Model,
		"markdown_bytes", len(res.Markdown),
	)

	if *out == "" {
		fmt.Println(res.Markdown)
		return
	}
	if err := os.WriteFile(*out, []byte(res.Markdown), 0o644); err != nil {
		logger.Error("write output file", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("wrote markdown", "path", *out)
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
