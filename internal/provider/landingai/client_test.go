package landingai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoice.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractMapsMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if split := r.FormValue("split"); split != "page" {
			t.Errorf("split = %q, want page", split)
		}
		if _, _, err := r.FormFile("document"); err != nil {
			t.Errorf("document part missing: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"markdown": "# Invoice\n\nTotal: $10",
			"metadata": map[string]any{
				"version":      "ade-1",
				"page_count":   4,
				"credit_usage": 2.5,
			},
		})
	}))
	defer server.Close()

	c := NewClient(Config{
		APIKey:      "test-key",
		ParseURL:    server.URL,
		Split:       "page",
		CreditToUSD: 0.01,
	}, nil)
	res, err := c.Extract(context.Background(), writePDF(t))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if !strings.HasPrefix(res.Markdown, "# Invoice") {
		t.Errorf("markdown: %q", res.Markdown)
	}
	if res.Metrics.Pages == nil || *res.Metrics.Pages != 4 {
		t.Errorf("pages: %v", res.Metrics.Pages)
	}
	if res.Metrics.Credits == nil || *res.Metrics.Credits != 2.5 {
		t.Errorf("credits: %v", res.Metrics.Credits)
	}
	if res.Metrics.EstimatedCost == nil || *res.Metrics.EstimatedCost != 0.025 {
		t.Errorf("cost: %v", res.Metrics.EstimatedCost)
	}
	if res.Metrics.Model != "ade-1" {
		t.Errorf("model should fall back to metadata version, got %q", res.Metrics.Model)
	}
}

func TestExtractAcceptsPartialContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPartialContent)
		_ = json.NewEncoder(w).Encode(map[string]any{"markdown": "partial"})
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "k", ParseURL: server.URL}, nil)
	res, err := c.Extract(context.Background(), writePDF(t))
	if err != nil {
		t.Fatalf("206 must be treated as success: %v", err)
	}
	if res.Markdown != "partial" {
		t.Errorf("markdown: %q", res.Markdown)
	}
}

func TestExtractFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream broke"))
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "k", ParseURL: server.URL}, nil)
	_, err := c.Extract(context.Background(), writePDF(t))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "status 502") {
		t.Errorf("error should carry status: %v", err)
	}
}
