package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joseph-ayodele/ocr-bench/internal/provider"
)

func TestFormatLineAllFields(t *testing.T) {
	rec := Record{
		RunID:    "20260211_141500",
		Provider: "mistral",
		PDF:      "invoice.pdf",
		Metrics: provider.Metrics{
			Duration:      2300 * time.Millisecond,
			Pages:         provider.IntPtr(4),
			Tokens:        provider.IntPtr(1234),
			EstimatedCost: provider.Float64Ptr(0.008),
			Model:         "mistral-ocr-latest",
		},
	}

	got := FormatLine(rec)
	want := "run=20260211_141500 provider=mistral pdf=invoice.pdf time=2.300s pages=4 tokens=1234 credits=n/a cost=0.008 model=mistral-ocr-latest"
	if got != want {
		t.Errorf("FormatLine mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestFormatLineSchemaIsFixed(t *testing.T) {
	// Every line carries exactly the nine canonical fields in order, no
	// matter which metrics the provider actually supplied.
	rec := Record{RunID: "r", Provider: "p", PDF: "d.pdf"}
	line := FormatLine(rec)

	fields := strings.Fields(line)
	if len(fields) != 9 {
		t.Fatalf("expected 9 fields, got %d: %q", len(fields), line)
	}
	wantKeys := []string{"run", "provider", "pdf", "time", "pages", "tokens", "credits", "cost", "model"}
	for i, f := range fields {
		key, _, ok := strings.Cut(f, "=")
		if !ok {
			t.Fatalf("field %d has no key=value shape: %q", i, f)
		}
		if key != wantKeys[i] {
			t.Errorf("field %d: got key %q, want %q", i, key, wantKeys[i])
		}
	}
	for _, absent := range []string{"pages=n/a", "tokens=n/a", "credits=n/a", "cost=n/a", "model=n/a"} {
		if !strings.Contains(line, absent) {
			t.Errorf("expected %q in %q", absent, line)
		}
	}
}

func TestFormatCost(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0.008, "cost=0.008"},
		{0.0005, "cost=0.0005"}, // sub-cent precision preserved
		{2, "cost=2.000"},       // padded to three decimals
		{1.5, "cost=1.500"},
	}
	for _, tc := range cases {
		rec := Record{RunID: "r", Provider: "p", PDF: "d.pdf",
			Metrics: provider.Metrics{EstimatedCost: provider.Float64Ptr(tc.in)}}
		if line := FormatLine(rec); !strings.Contains(line, tc.want) {
			t.Errorf("cost %v: expected %q in %q", tc.in, tc.want, line)
		}
	}
}

func TestAppendWritesBothFilesAndAppends(t *testing.T) {
	dir := t.TempDir()
	runPath := filepath.Join(dir, "runs", "r1", "metrics.txt")
	lifetimePath := filepath.Join(dir, "metrics.txt")

	r := NewRecorder()
	first := Record{RunID: "r1", Provider: "mistral", PDF: "a.pdf"}
	second := Record{RunID: "r1", Provider: "openai", PDF: "a.pdf"}
	if err := r.Append(first, runPath, lifetimePath); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := r.Append(second, runPath, lifetimePath); err != nil {
		t.Fatalf("append: %v", err)
	}

	for _, path := range []string{runPath, lifetimePath} {
		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
		if len(lines) != 2 {
			t.Fatalf("%s: expected 2 lines, got %d", path, len(lines))
		}
		if !strings.Contains(lines[0], "provider=mistral") || !strings.Contains(lines[1], "provider=openai") {
			t.Errorf("%s: lines out of order: %v", path, lines)
		}
	}
}
