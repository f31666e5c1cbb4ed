package openai

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

func TestExtractSendsFilePart(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "# Extracted\n\nbody"}},
			},
			"usage": map[string]any{"total_tokens": 321},
		})
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4o-mini"}, nil)
	res, err := c.Extract(context.Background(), writePDF(t))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if res.Markdown != "# Extracted\n\nbody" {
		t.Errorf("markdown: %q", res.Markdown)
	}
	if res.Metrics.Tokens == nil || *res.Metrics.Tokens != 321 {
		t.Errorf("tokens: %v", res.Metrics.Tokens)
	}

	messages, _ := gotBody["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	raw, _ := json.Marshal(messages[0])
	if !strings.Contains(string(raw), "data:application/pdf;base64,") {
		t.Error("request missing inline base64 pdf part")
	}
	if !strings.Contains(string(raw), "invoice.pdf") {
		t.Error("request missing filename")
	}
}

func TestExtractNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: server.URL}, nil)
	if _, err := c.Extract(context.Background(), writePDF(t)); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
