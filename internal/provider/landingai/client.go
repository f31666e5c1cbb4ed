// Package landingai implements the extractor contract on the Landing AI ADE
// Parse API.
package landingai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/ocr-bench/internal/provider"
)

const providerID = "landing_ai"

// Config for the Landing AI client.
type Config struct {
	APIKey      string        // if empty, falls back to env LANDING_AI_API_KEY
	ParseURL    string        // default https://api.va.landing.ai/v1/ade/parse
	Model       string        // optional model override
	Split       string        // optional split mode, e.g. "page"
	CreditToUSD float64       // optional conversion ratio, 0 = no cost estimate
	Timeout     time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("LANDING_AI_API_KEY")
	}
	if cfg.ParseURL == "" {
		cfg.ParseURL = "https://api.va.landing.ai/v1/ade/parse"
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

type parseMetadata struct {
	Version     string   `json:"version"`
	PageCount   *int     `json:"page_count"`
	DurationMS  *float64 `json:"duration_ms"`
	CreditUsage *float64 `json:"credit_usage"`
}

type parseResponse struct {
	Markdown string         `json:"markdown"`
	Metadata *parseMetadata `json:"metadata"`
}

// Extract posts the PDF to ADE Parse and maps the response metadata onto the
// harness metrics.
func (c *Client) Extract(ctx context.Context, path string) (provider.Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	if c.cfg.APIKey == "" {
		return provider.Result{}, provider.NewExtractionError(providerID, "missing LANDING_AI_API_KEY", nil)
	}

	c.logger.Info("landingai.extract.start", "req_id", rid, "pdf", filepath.Base(path))

	body, contentType, err := c.buildRequestBody(path)
	if err != nil {
		return provider.Result{}, provider.NewExtractionError(providerID, "build request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ParseURL, body)
	if err != nil {
		return provider.Result{}, provider.NewExtractionError(providerID, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return provider.Result{}, provider.NewExtractionError(providerID, "http error", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.logger.Warn("landingai response body close error", "error", cerr)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	// ADE returns 206 for partially parsed documents; both carry usable markdown.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		cause := fmt.Sprintf("parse failed with status %d", resp.StatusCode)
		return provider.Result{}, provider.NewExtractionError(providerID, cause, fmt.Errorf("%s", strings.TrimSpace(buf.String())))
	}

	var payload parseResponse
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		return provider.Result{}, provider.NewExtractionError(providerID, "decode response", err)
	}

	m := provider.Metrics{
		Duration: time.Since(start),
		Model:    c.modelName(payload.Metadata),
	}
	if md := payload.Metadata; md != nil {
		if md.PageCount != nil {
			m.Pages = md.PageCount
		}
		if md.CreditUsage != nil {
			m.Credits = md.CreditUsage
			if c.cfg.CreditToUSD > 0 {
				m.EstimatedCost = provider.Float64Ptr(*md.CreditUsage * c.cfg.CreditToUSD)
			}
		}
	}

	c.logger.Info("landingai.extract.ok",
		"req_id", rid, "pdf", filepath.Base(path),
		"status", resp.StatusCode, "elapsed_ms", time.Since(start).Milliseconds())
	return provider.Result{Markdown: strings.TrimSpace(payload.Markdown), Metrics: m}, nil
}

func (c *Client) buildRequestBody(path string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if c.cfg.Model != "" {
		if err := w.WriteField("model", c.cfg.Model); err != nil {
			return nil, "", err
		}
	}
	if c.cfg.Split != "" {
		if err := w.WriteField("split", c.cfg.Split); err != nil {
			return nil, "", err
		}
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="document"; filename="%s"`, filepath.Base(path)))
	header.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read pdf: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &body, w.FormDataContentType(), nil
}

func (c *Client) modelName(md *parseMetadata) string {
	if c.cfg.Model != "" {
		return c.cfg.Model
	}
	if md != nil && md.Version != "" {
		return md.Version
	}
	return "default"
}
