package pricing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/ocr-bench/internal/common"
)

func TestEstimateFromPages(t *testing.T) {
	table := NewTable()
	table.Set("mistral", Rate{USDPer1KPages: 2})

	cost := table.EstimateFromPages("mistral", 4)
	if cost == nil || *cost != 0.008 {
		t.Errorf("expected 0.008, got %v", cost)
	}
	if table.EstimateFromPages("mistral", 0) != nil {
		t.Error("zero pages must not produce an estimate")
	}
	if table.EstimateFromPages("unknown", 4) != nil {
		t.Error("unknown provider must not produce an estimate")
	}
}

func TestEstimateFromCredits(t *testing.T) {
	table := NewTable()
	table.Set("landing_ai", Rate{USDPerCredit: 0.03})

	cost := table.EstimateFromCredits("landing_ai", 2)
	if cost == nil || *cost != 0.06 {
		t.Errorf("expected 0.06, got %v", cost)
	}
	table.Set("landing_ai", Rate{})
	if table.EstimateFromCredits("landing_ai", 2) != nil {
		t.Error("zero rate must not produce an estimate")
	}
}

func TestLoadFileMergesRates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pricing.json")
	content := `{"mistral": {"usd_per_1000_pages": 3.5}, "landing_ai": {"usd_per_credit": 0.02}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table := NewTable()
	table.Set("mistral", Rate{USDPer1KPages: 2})
	if err := table.LoadFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	r, ok := table.Lookup("mistral")
	if !ok || r.USDPer1KPages != 3.5 {
		t.Errorf("file rate should win over default, got %+v", r)
	}
	if _, ok := table.Lookup("landing_ai"); !ok {
		t.Error("file-only provider missing from table")
	}
}

func TestLoadFileRejectsInvalidShape(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pricing.json")
	// Negative rates and unknown keys violate the embedded schema.
	content := `{"mistral": {"usd_per_1000_pages": -1}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table := NewTable()
	err := table.LoadFile(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var appErr *common.AppError
	if !errors.As(err, &appErr) || appErr.Code != "CONFIG_ERROR" {
		t.Errorf("expected CONFIG_ERROR AppError, got %v", err)
	}
}

func TestLoadFileMissingIsFatal(t *testing.T) {
	table := NewTable()
	if err := table.LoadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing pricing file")
	}
}
