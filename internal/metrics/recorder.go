// Package metrics renders per-pair benchmark records as canonical
// single-line key=value text and appends them to the metrics logs.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/ocr-bench/internal/provider"
)

// Record ties one pair's metrics to its run/provider/document identity.
type Record struct {
	RunID    string
	Provider string
	PDF      string
	Metrics  provider.Metrics
}

// FormatLine renders a record as the canonical nine-field line:
//
//	run= provider= pdf= time= pages= tokens= credits= cost= model=
//
// Field order is fixed and every field is always present; absent metrics
// render as the literal token n/a so lines stay parseable across providers.
func FormatLine(rec Record) string {
	fields := []string{
		"run=" + rec.RunID,
		"provider=" + rec.Provider,
		"pdf=" + rec.PDF,
		fmt.Sprintf("time=%.3fs", rec.Metrics.Duration.Seconds()),
		"pages=" + formatInt(rec.Metrics.Pages),
		"tokens=" + formatInt(rec.Metrics.Tokens),
		"credits=" + formatFloat(rec.Metrics.Credits),
		"cost=" + formatCost(rec.Metrics.EstimatedCost),
		"model=" + formatString(rec.Metrics.Model),
	}
	return strings.Join(fields, " ")
}

// Recorder appends canonical lines to one or more metrics files. Files are
// created on first append; lines are never rewritten.
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Append writes one record, as a single line, to every path given.
func (r *Recorder) Append(rec Record, paths ...string) error {
	line := FormatLine(rec)
	for _, path := range paths {
		if err := appendLine(path, line); err != nil {
			return fmt.Errorf("append metrics to %s: %w", path, err)
		}
	}
	return nil
}

func appendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return err
	}
	return nil
}

func formatInt(v *int) string {
	if v == nil {
		return "n/a"
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// formatCost renders costs with at least 3 decimals so sub-cent values stay
// visible, keeping the natural form when it is already more precise.
func formatCost(v *float64) string {
	if v == nil {
		return "n/a"
	}
	natural := strconv.FormatFloat(*v, 'f', -1, 64)
	if dot := strings.IndexByte(natural, '.'); dot >= 0 && len(natural)-dot-1 >= 3 {
		return natural
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}

func formatString(v string) string {
	if v == "" {
		return "n/a"
	}
	return v
}
