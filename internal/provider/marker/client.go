// Package marker implements the extractor contract on the Datalab Marker
// API: submit the PDF, then poll the check URL until conversion completes.
package marker

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

const providerID = "marker"

// Config for the Marker client.
type Config struct {
	APIKey       string        // if empty, falls back to env MARKER_API_KEY
	BaseURL      string        // default https://www.datalab.to/api/v1/marker
	PollInterval time.Duration // delay between status checks
	Timeout      time.Duration // per-request http timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("MARKER_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.datalab.to/api/v1/marker"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 300 * time.Second
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

type submitResponse struct {
	Success         bool   `json:"success"`
	Error           string `json:"error"`
	RequestID       string `json:"request_id"`
	RequestCheckURL string `json:"request_check_url"`
}

type checkResponse struct {
	Status    string `json:"status"`
	Success   *bool  `json:"success"`
	Error     string `json:"error"`
	Markdown  string `json:"markdown"`
	PageCount *int   `json:"page_count"`
}

// Extract submits the PDF for conversion and polls until Marker reports the
// request complete. The caller's context bounds the overall wait.
func (c *Client) Extract(ctx context.Context, path string) (provider.Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	if c.cfg.APIKey == "" {
		return provider.Result{}, provider.NewExtractionError(providerID, "missing MARKER_API_KEY", nil)
	}

	c.logger.Info("marker.extract.start", "req_id", rid, "pdf", filepath.Base(path))

	submitted, err := c.submit(ctx, path)
	if err != nil {
		return provider.Result{}, provider.NewExtractionError(providerID, "submit", err)
	}
	if !submitted.Success {
		return provider.Result{}, provider.NewExtractionError(providerID, "submit rejected", fmt.Errorf("%s", submitted.Error))
	}

	check, err := c.poll(ctx, submitted.RequestCheckURL)
	if err != nil {
		return provider.Result{}, provider.NewExtractionError(providerID, "poll", err)
	}
	if check.Success != nil && !*check.Success {
		return provider.Result{}, provider.NewExtractionError(providerID, "conversion failed", fmt.Errorf("%s", check.Error))
	}

	m := provider.Metrics{
		Duration: time.Since(start),
		Model:    "marker",
	}
	if check.PageCount != nil {
		m.Pages = check.PageCount
	}

	c.logger.Info("marker.extract.ok",
		"req_id", rid, "pdf", filepath.Base(path),
		"request_id", submitted.RequestID, "elapsed_ms", time.Since(start).Milliseconds())
	return provider.Result{Markdown: strings.TrimSpace(check.Markdown), Metrics: m}, nil
}

func (c *Client) submit(ctx context.Context, path string) (*submitResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("output_format", "markdown"); err != nil {
		return nil, err
	}
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.cfg.APIKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var submitted submitResponse
	if err := json.Unmarshal(raw, &submitted); err != nil {
		return nil, fmt.Errorf("decode submit response: %w", err)
	}
	if submitted.RequestCheckURL == "" && submitted.Success {
		return nil, fmt.Errorf("submit response missing check url")
	}
	return &submitted, nil
}

func (c *Client) poll(ctx context.Context, checkURL string) (*checkResponse, error) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, checkURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Api-Key", c.cfg.APIKey)

		raw, err := c.do(req)
		if err != nil {
			return nil, err
		}
		var check checkResponse
		if err := json.Unmarshal(raw, &check); err != nil {
			return nil, fmt.Errorf("decode check response: %w", err)
		}
		if check.Status == "complete" {
			return &check, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("marker http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.logger.Warn("marker response body close error", "error", cerr)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("marker status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}
