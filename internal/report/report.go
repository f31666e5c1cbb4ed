// Package report turns metrics logs back into structured records and renders
// an XLSX comparison workbook.
package report

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/ocr-bench/internal/history"
	"github.com/joseph-ayodele/ocr-bench/internal/metrics"
	"github.com/joseph-ayodele/ocr-bench/internal/provider"
)

// ParseLine parses one canonical metrics line back into a record. The n/a
// token round-trips to an absent field.
func ParseLine(line string) (metrics.Record, error) {
	rec := metrics.Record{}
	for _, token := range strings.Fields(line) {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			return rec, fmt.Errorf("malformed token %q", token)
		}
		if value == "n/a" {
			continue
		}
		switch key {
		case "run":
			rec.RunID = value
		case "provider":
			rec.Provider = value
		case "pdf":
			rec.PDF = value
		case "time":
			secs, err := strconv.ParseFloat(strings.TrimSuffix(value, "s"), 64)
			if err != nil {
				return rec, fmt.Errorf("parse time %q: %w", value, err)
			}
			rec.Metrics.Duration = secondsToDuration(secs)
		case "pages":
			n, err := strconv.Atoi(value)
			if err != nil {
				return rec, fmt.Errorf("parse pages %q: %w", value, err)
			}
			rec.Metrics.Pages = provider.IntPtr(n)
		case "tokens":
			n, err := strconv.Atoi(value)
			if err != nil {
				return rec, fmt.Errorf("parse tokens %q: %w", value, err)
			}
			rec.Metrics.Tokens = provider.IntPtr(n)
		case "credits":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return rec, fmt.Errorf("parse credits %q: %w", value, err)
			}
			rec.Metrics.Credits = provider.Float64Ptr(f)
		case "cost":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return rec, fmt.Errorf("parse cost %q: %w", value, err)
			}
			rec.Metrics.EstimatedCost = provider.Float64Ptr(f)
		case "model":
			rec.Metrics.Model = value
		}
	}
	if rec.RunID == "" || rec.Provider == "" || rec.PDF == "" {
		return rec, fmt.Errorf("incomplete metrics line: %q", line)
	}
	return rec, nil
}

// ReadFile parses every line of a metrics file, preserving order. Malformed
// lines are skipped with a warning so one bad append never sinks the report.
func ReadFile(path string, logger *slog.Logger) ([]metrics.Record, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metrics file: %w", err)
	}
	defer f.Close()

	var out []metrics.Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec, err := ParseLine(line)
		if err != nil {
			logger.Warn("skipping malformed metrics line", "error", err)
			continue
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read metrics file: %w", err)
	}
	return out, nil
}

// FromPairs converts stored history rows into report records, preserving
// their insertion order. Failed pairs carry no metrics line, so only
// successful outcomes become rows.
func FromPairs(rows []history.PairRow) []metrics.Record {
	var out []metrics.Record
	for _, r := range rows {
		if !r.Success {
			continue
		}
		out = append(out, metrics.Record{
			RunID:    r.RunID,
			Provider: r.Provider,
			PDF:      r.PDF,
			Metrics: provider.Metrics{
				Duration:      r.Duration,
				Pages:         r.Pages,
				Tokens:        r.Tokens,
				Credits:       r.Credits,
				EstimatedCost: r.Cost,
				Model:         r.Model,
			},
		})
	}
	return out
}

// Service renders benchmark records as XLSX bytes.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// BuildXLSX returns a workbook with one row per metrics record.
func (s *Service) BuildXLSX(records []metrics.Record) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Benchmark"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defaultIndex, _ := f.GetSheetIndex("Sheet1"); defaultIndex != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Run",
		"Provider",
		"PDF",
		"Time (s)",
		"Pages",
		"Tokens",
		"Credits",
		"Cost (USD)",
		"Model",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, rec := range records {
		values := []any{
			rec.RunID,
			rec.Provider,
			rec.PDF,
			rec.Metrics.Duration.Seconds(),
			cellInt(rec.Metrics.Pages),
			cellInt(rec.Metrics.Tokens),
			cellFloat(rec.Metrics.Credits),
			cellFloat(rec.Metrics.EstimatedCost),
			rec.Metrics.Model,
		}
		for i, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func cellFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func secondsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
