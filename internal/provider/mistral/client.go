// Package mistral implements the extractor contract on the Mistral OCR API:
// upload the PDF, fetch a signed URL, then run OCR against it.
package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/ocr-bench/internal/provider"
)

const providerID = "mistral"

// Config for the Mistral OCR client.
type Config struct {
	APIKey  string        // if empty, falls back to env MISTRAL_API_KEY
	BaseURL string        // default https://api.mistral.ai/v1
	Model   string        // e.g. "mistral-ocr-latest"
	Timeout time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("MISTRAL_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "mistral-ocr-latest"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 180 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type ocrPage struct {
	Markdown string `json:"markdown"`
}

type ocrUsage struct {
	TotalTokens *int `json:"total_tokens"`
	Tokens      *int `json:"tokens"`
}

type ocrResponse struct {
	Pages     []ocrPage `json:"pages"`
	UsageInfo *ocrUsage `json:"usage_info"`
	Usage     *ocrUsage `json:"usage"`
}

// Extract uploads the PDF and runs Mistral OCR over it.
func (c *Client) Extract(ctx context.Context, path string) (provider.Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	if c.cfg.APIKey == "" {
		return provider.Result{}, provider.NewExtractionError(providerID, "missing MISTRAL_API_KEY", nil)
	}

	c.logger.Info("mistral.extract.start", "req_id", rid, "model", c.cfg.Model, "pdf", filepath.Base(path))

	fileID, err := c.uploadFile(ctx, path)
	if err != nil {
		return provider.Result{}, provider.NewExtractionError(providerID, "upload file", err)
	}
	signedURL, err := c.signedURL(ctx, fileID)
	if err != nil {
		return provider.Result{}, provider.NewExtractionError(providerID, "get signed url", err)
	}
	ocr, err := c.process(ctx, signedURL)
	if err != nil {
		return provider.Result{}, provider.NewExtractionError(providerID, "ocr process", err)
	}

	markdown := joinPageMarkdown(ocr.Pages)
	m := provider.Metrics{
		Duration: time.Since(start),
		Model:    c.cfg.Model,
	}
	if len(ocr.Pages) > 0 {
		m.Pages = provider.IntPtr(len(ocr.Pages))
	}
	if tokens := tokenCount(ocr); tokens != nil {
		m.Tokens = tokens
	}

	c.logger.Info("mistral.extract.ok",
		"req_id", rid, "pdf", filepath.Base(path),
		"pages", len(ocr.Pages), "elapsed_ms", time.Since(start).Milliseconds())
	return provider.Result{Markdown: markdown, Metrics: m}, nil
}

func (c *Client) uploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("purpose", "ocr"); err != nil {
		return "", err
	}
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/files", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	raw, err := c.do(req)
	if err != nil {
		return "", err
	}
	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &uploaded); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if uploaded.ID == "" {
		return "", fmt.Errorf("upload response missing file id")
	}
	return uploaded.ID, nil
}

func (c *Client) signedURL(ctx context.Context, fileID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/files/"+fileID+"/url", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	raw, err := c.do(req)
	if err != nil {
		return "", err
	}
	var signed struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &signed); err != nil {
		return "", fmt.Errorf("decode signed url response: %w", err)
	}
	if signed.URL == "" {
		return "", fmt.Errorf("signed url response missing url")
	}
	return signed.URL, nil
}

func (c *Client) process(ctx context.Context, documentURL string) (*ocrResponse, error) {
	body := map[string]any{
		"model": c.cfg.Model,
		"document": map[string]any{
			"type":         "document_url",
			"document_url": documentURL,
		},
		"include_image_base64": false,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/ocr", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var ocr ocrResponse
	if err := json.Unmarshal(raw, &ocr); err != nil {
		return nil, fmt.Errorf("decode ocr response: %w", err)
	}
	return &ocr, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mistral http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.logger.Warn("mistral response body close error", "error", cerr)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mistral status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}

func joinPageMarkdown(pages []ocrPage) string {
	var parts []string
	for _, p := range pages {
		if md := strings.TrimSpace(p.Markdown); md != "" {
			parts = append(parts, md)
		}
	}
	return strings.Join(parts, "\n\n")
}

func tokenCount(ocr *ocrResponse) *int {
	usage := ocr.UsageInfo
	if usage == nil {
		usage = ocr.Usage
	}
	if usage == nil {
		return nil
	}
	if usage.TotalTokens != nil {
		return usage.TotalTokens
	}
	return usage.Tokens
}
