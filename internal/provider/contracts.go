package provider

import (
	"context"
	"fmt"
	"time"
)

// Extractor is the uniform provider contract: PDF file -> markdown + metrics.
// Implementations may perform network I/O but must never write to the output
// layout; the orchestrator is the only writer.
type Extractor interface {
	Extract(ctx context.Context, path string) (Result, error)
}

// Result is the outcome of one successful extraction call.
type Result struct {
	Markdown string
	Metrics  Metrics
}

// Metrics is the per-call performance/cost record. Duration is always set by
// the adapter (the orchestrator backfills its own measurement when an adapter
// leaves it zero). The pointer fields are optional and provider-specific.
type Metrics struct {
	Duration      time.Duration
	Pages         *int
	Tokens        *int
	Credits       *float64
	EstimatedCost *float64
	Model         string
}

// ExtractionError is the failure contract for adapters: a human-readable
// cause (network failure, authentication failure, vendor-side error,
// unsupported input) tied to the provider that produced it.
type ExtractionError struct {
	Provider string
	Cause    string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Cause, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError builds an ExtractionError with an optional wrapped cause.
func NewExtractionError(providerID, cause string, err error) *ExtractionError {
	return &ExtractionError{Provider: providerID, Cause: cause, Err: err}
}

// IntPtr and Float64Ptr lift literals into optional metric fields.
func IntPtr(v int) *int { return &v }

func Float64Ptr(v float64) *float64 { return &v }
