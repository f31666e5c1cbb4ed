package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/joseph-ayodele/ocr-bench/internal/bench"
	"github.com/joseph-ayodele/ocr-bench/internal/provider"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return s
}

func TestRecordAndQueryPairs(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.RecordRun(ctx, "r1", []string{"mistral", "landing_ai"}, 2); err != nil {
		t.Fatalf("record run: %v", err)
	}
	success := bench.PairOutcome{
		Provider: "mistral",
		Document: "invoice.pdf",
		Success:  true,
		Metrics: provider.Metrics{
			Duration:      2300 * time.Millisecond,
			Pages:         provider.IntPtr(4),
			Tokens:        provider.IntPtr(1234),
			Credits:       provider.Float64Ptr(2.5),
			EstimatedCost: provider.Float64Ptr(0.008),
			Model:         "mistral-ocr-latest",
		},
	}
	failure := bench.PairOutcome{
		Provider: "mistral",
		Document: "scan.pdf",
		Cause:    "mistral: vendor error: status 500",
	}
	if err := s.RecordPair(ctx, "r1", success); err != nil {
		t.Fatalf("record success: %v", err)
	}
	if err := s.RecordPair(ctx, "r1", failure); err != nil {
		t.Fatalf("record failure: %v", err)
	}

	rows, err := s.PairsForRun(ctx, "r1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !rows[0].Success || rows[0].PDF != "invoice.pdf" || rows[0].Model != "mistral-ocr-latest" {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[0].Duration != 2300*time.Millisecond {
		t.Errorf("duration not preserved: %v", rows[0].Duration)
	}
	if rows[0].Pages == nil || *rows[0].Pages != 4 {
		t.Errorf("pages not preserved: %v", rows[0].Pages)
	}
	if rows[0].Tokens == nil || *rows[0].Tokens != 1234 {
		t.Errorf("tokens not preserved: %v", rows[0].Tokens)
	}
	if rows[0].Credits == nil || *rows[0].Credits != 2.5 {
		t.Errorf("credits not preserved: %v", rows[0].Credits)
	}
	if rows[0].Cost == nil || *rows[0].Cost != 0.008 {
		t.Errorf("cost not preserved: %v", rows[0].Cost)
	}
	if rows[1].Success || rows[1].Cause == "" {
		t.Errorf("unexpected second row: %+v", rows[1])
	}
	if rows[1].Pages != nil || rows[1].Credits != nil {
		t.Errorf("failed pair should carry no metrics: %+v", rows[1])
	}
}

func TestPairsForUnknownRunIsEmpty(t *testing.T) {
	s := openStore(t)
	rows, err := s.PairsForRun(context.Background(), "nope")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}
