package mistral

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

func TestExtractHappyPath(t *testing.T) {
	var gotOCRBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/files":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("parse multipart: %v", err)
			}
			if purpose := r.FormValue("purpose"); purpose != "ocr" {
				t.Errorf("purpose = %q, want ocr", purpose)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "file-123"})
		case r.Method == http.MethodGet && r.URL.Path == "/files/file-123/url":
			_ = json.NewEncoder(w).Encode(map[string]any{"url": "https://signed.example/file-123"})
		case r.Method == http.MethodPost && r.URL.Path == "/ocr":
			if err := json.NewDecoder(r.Body).Decode(&gotOCRBody); err != nil {
				t.Errorf("decode ocr body: %v", err)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"pages": []map[string]any{
					{"markdown": "# Page One"},
					{"markdown": "Page Two body"},
				},
				"usage_info": map[string]any{"total_tokens": 1234},
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: server.URL}, nil)
	res, err := c.Extract(context.Background(), writePDF(t))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if res.Markdown != "# Page One\n\nPage Two body" {
		t.Errorf("unexpected markdown %q", res.Markdown)
	}
	if res.Metrics.Pages == nil || *res.Metrics.Pages != 2 {
		t.Errorf("pages: %v", res.Metrics.Pages)
	}
	if res.Metrics.Tokens == nil || *res.Metrics.Tokens != 1234 {
		t.Errorf("tokens: %v", res.Metrics.Tokens)
	}
	if res.Metrics.Model != "mistral-ocr-latest" {
		t.Errorf("model: %q", res.Metrics.Model)
	}
	if res.Metrics.Duration <= 0 {
		t.Error("duration not measured")
	}
	if doc, _ := gotOCRBody["document"].(map[string]any); doc["document_url"] != "https://signed.example/file-123" {
		t.Errorf("signed url not forwarded: %v", gotOCRBody["document"])
	}
}

func TestExtractVendorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "bad-key", BaseURL: server.URL}, nil)
	_, err := c.Extract(context.Background(), writePDF(t))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "mistral") || !strings.Contains(err.Error(), "401") {
		t.Errorf("error should carry provider and status: %v", err)
	}
}

func TestExtractMissingAPIKey(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "")
	c := NewClient(Config{BaseURL: "http://unused"}, nil)
	if _, err := c.Extract(context.Background(), writePDF(t)); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
