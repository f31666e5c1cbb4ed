// Package bench drives the benchmark batch: it enumerates (document ×
// provider) pairs, dispatches each through the uniform extractor contract,
// isolates per-pair failures, and persists artifacts and metrics.
package bench

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/ocr-bench/internal/layout"
	"github.com/joseph-ayodele/ocr-bench/internal/metrics"
	"github.com/joseph-ayodele/ocr-bench/internal/pricing"
	"github.com/joseph-ayodele/ocr-bench/internal/provider"
)

// PageCounter counts the pages of a local PDF. Optional; used to backfill
// the pages metric when a provider does not report it.
type PageCounter func(path string) (int, error)

// RunHistory receives run and pair outcomes for the optional history index.
// Recording errors never affect the batch.
type RunHistory interface {
	RecordRun(ctx context.Context, runID string, providers []string, documents int) error
	RecordPair(ctx context.Context, runID string, pair PairOutcome) error
}

// PairOutcome is one (document, provider) attempt as seen by the history.
type PairOutcome struct {
	Provider string
	Document string
	Success  bool
	Cause    string
	Metrics  provider.Metrics
}

// RunRequest configures one batch.
type RunRequest struct {
	InputDir  string
	InputFile string // optional single PDF inside InputDir
	Providers string // comma-separated provider identifiers, order preserved
}

// Failure identifies one failed pair and its short cause.
type Failure struct {
	Provider string
	Document string
	Cause    string
}

// Summary is the outcome of a full batch.
type Summary struct {
	RunID     string
	Attempted int
	Succeeded int
	Failed    int
	Failures  []Failure

	RunMetricsPath      string
	LifetimeMetricsPath string
}

// Orchestrator owns the run identity and the failure list for one batch at a
// time. It is safe to call Run repeatedly; each call is an independent run.
type Orchestrator struct {
	logger   *slog.Logger
	registry *provider.Registry
	layout   *layout.Manager
	recorder *metrics.Recorder
	prices   *pricing.Table
	pages    PageCounter
	history  RunHistory
	clock    func() time.Time
}

// Option tweaks optional orchestrator collaborators.
type Option func(*Orchestrator)

// WithPageCounter enables pages-metric backfill from local PDF inspection.
func WithPageCounter(pc PageCounter) Option {
	return func(o *Orchestrator) { o.pages = pc }
}

// WithHistory enables the run history index.
func WithHistory(h RunHistory) Option {
	return func(o *Orchestrator) { o.history = h }
}

// WithClock overrides run-id timestamping.
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) { o.clock = clock }
}

func NewOrchestrator(
	logger *slog.Logger,
	registry *provider.Registry,
	lm *layout.Manager,
	recorder *metrics.Recorder,
	prices *pricing.Table,
	opts ...Option,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if prices == nil {
		prices = pricing.NewTable()
	}
	o := &Orchestrator{
		logger:   logger,
		registry: registry,
		layout:   lm,
		recorder: recorder,
		prices:   prices,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the full batch: setup errors abort before any pair is
// attempted; per-pair failures are recorded and the batch continues.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (*Summary, error) {
	providers, err := o.registry.ResolveList(req.Providers)
	if err != nil {
		return nil, err
	}
	docs, err := ResolveDocuments(req.InputDir, req.InputFile)
	if err != nil {
		return nil, err
	}

	runID, err := NewRunID(o.layout, o.clock())
	if err != nil {
		return nil, err
	}
	summary := &Summary{
		RunID:               runID,
		RunMetricsPath:      o.layout.RunMetricsPath(runID),
		LifetimeMetricsPath: o.layout.LifetimeMetricsPath(),
	}
	if len(docs) == 0 {
		o.logger.Warn("no PDF files found", "input_dir", req.InputDir)
		return summary, nil
	}

	if o.history != nil {
		if herr := o.history.RecordRun(ctx, runID, providers, len(docs)); herr != nil {
			o.logger.Warn("history record run failed", "run_id", runID, "error", herr)
		}
	}

	o.logger.Info("starting benchmark",
		"run_id", runID,
		"providers", providers,
		"pdf_count", len(docs),
	)

	// Document-major, provider-minor: this fixes the interleaving of metrics
	// lines for reproducible diffing across reruns with the same inputs.
	for _, doc := range docs {
		for _, providerID := range providers {
			summary.Attempted++
			if fail := o.runPair(ctx, runID, providerID, doc); fail != nil {
				summary.Failed++
				summary.Failures = append(summary.Failures, *fail)
			} else {
				summary.Succeeded++
			}
		}
	}

	o.logger.Info("finished benchmark",
		"run_id", runID,
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"run_metrics", summary.RunMetricsPath,
		"lifetime_metrics", summary.LifetimeMetricsPath,
	)
	return summary, nil
}

// runPair invokes one adapter and persists its outcome. A nil return means
// the pair succeeded end to end; any error (extraction or output I/O) is
// folded into a Failure and never aborts the batch.
func (o *Orchestrator) runPair(ctx context.Context, runID, providerID string, doc Document) *Failure {
	extractor, ok := o.registry.Get(providerID)
	if !ok {
		o.logger.Error("no adapter registered",
			"run_id", runID, "provider", providerID, "pdf", doc.Name)
		fail := &Failure{Provider: providerID, Document: doc.Name, Cause: "no adapter registered"}
		o.recordHistory(ctx, runID, PairOutcome{
			Provider: providerID, Document: doc.Name, Cause: fail.Cause,
		})
		return fail
	}
	start := time.Now()

	res, err := extractor.Extract(ctx, doc.Path)
	if err != nil {
		o.logger.Error("extraction failed",
			"run_id", runID, "provider", providerID, "pdf", doc.Name, "error", err)
		fail := &Failure{Provider: providerID, Document: doc.Name, Cause: err.Error()}
		o.recordHistory(ctx, runID, PairOutcome{
			Provider: providerID, Document: doc.Name, Cause: fail.Cause,
		})
		return fail
	}

	m := o.finalizeMetrics(providerID, doc.Path, res.Metrics, time.Since(start))

	artifactPath := o.layout.ArtifactPath(runID, providerID, doc.Name)
	if err := layout.EnsureAndWrite(artifactPath, res.Markdown); err != nil {
		o.logger.Error("artifact write failed",
			"run_id", runID, "provider", providerID, "pdf", doc.Name, "path", artifactPath, "error", err)
		fail := &Failure{Provider: providerID, Document: doc.Name, Cause: "write artifact: " + err.Error()}
		o.recordHistory(ctx, runID, PairOutcome{
			Provider: providerID, Document: doc.Name, Cause: fail.Cause, Metrics: m,
		})
		return fail
	}

	rec := metrics.Record{RunID: runID, Provider: providerID, PDF: doc.Name, Metrics: m}
	if err := o.recorder.Append(rec, summaryPaths(o.layout, runID)...); err != nil {
		o.logger.Error("metrics append failed",
			"run_id", runID, "provider", providerID, "pdf", doc.Name, "error", err)
		fail := &Failure{Provider: providerID, Document: doc.Name, Cause: "append metrics: " + err.Error()}
		o.recordHistory(ctx, runID, PairOutcome{
			Provider: providerID, Document: doc.Name, Cause: fail.Cause, Metrics: m,
		})
		return fail
	}

	o.recordHistory(ctx, runID, PairOutcome{
		Provider: providerID, Document: doc.Name, Success: true, Metrics: m,
	})
	o.logger.Info("completed pair",
		"run_id", runID, "provider", providerID, "pdf", doc.Name,
		"duration", m.Duration, "artifact", artifactPath)
	return nil
}

// finalizeMetrics backfills what the adapter left unset: the measured call
// duration, the local page count, and a pricing-table cost estimate.
func (o *Orchestrator) finalizeMetrics(providerID, path string, m provider.Metrics, elapsed time.Duration) provider.Metrics {
	if m.Duration == 0 {
		m.Duration = elapsed
	}
	if m.Pages == nil && o.pages != nil {
		if n, err := o.pages(path); err != nil {
			o.logger.Warn("page count failed", "provider", providerID, "path", path, "error", err)
		} else {
			m.Pages = &n
		}
	}
	if m.EstimatedCost == nil {
		if m.Credits != nil {
			m.EstimatedCost = o.prices.EstimateFromCredits(providerID, *m.Credits)
		}
		if m.EstimatedCost == nil && m.Pages != nil {
			m.EstimatedCost = o.prices.EstimateFromPages(providerID, *m.Pages)
		}
	}
	return m
}

func (o *Orchestrator) recordHistory(ctx context.Context, runID string, outcome PairOutcome) {
	if o.history == nil {
		return
	}
	if err := o.history.RecordPair(ctx, runID, outcome); err != nil {
		o.logger.Warn("history record pair failed",
			"run_id", runID, "provider", outcome.Provider, "pdf", outcome.Document, "error", err)
	}
}

func summaryPaths(lm *layout.Manager, runID string) []string {
	return []string{lm.RunMetricsPath(runID), lm.LifetimeMetricsPath()}
}
