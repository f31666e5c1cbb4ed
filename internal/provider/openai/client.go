// Package openai implements the extractor contract on OpenAI
// chat/completions with an inline PDF file part.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/ocr-bench/internal/provider"
)

const providerID = "openai"

const extractionPrompt = "Convert the attached PDF document to clean markdown. " +
	"Preserve headings, lists and tables. Replace images with short descriptive text. " +
	"Return ONLY the markdown content, with no preamble and no code fences around the whole document."

// Config for the OpenAI client.
type Config struct {
	APIKey  string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL string        // default https://api.openai.com/v1
	Model   string        // e.g. "gpt-4o-mini"
	Timeout time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
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

// Extract sends the PDF inline as a base64 file part and returns the model's
// markdown rendition.
func (c *Client) Extract(ctx context.Context, path string) (provider.Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	if c.cfg.APIKey == "" {
		return provider.Result{}, provider.NewExtractionError(providerID, "missing OPENAI_API_KEY", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return provider.Result{}, provider.NewExtractionError(providerID, "read pdf", err)
	}

	c.logger.Info("openai.extract.start",
		"req_id", rid, "model", c.cfg.Model, "pdf", filepath.Base(path), "bytes", len(data))

	body := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{
						"type": "file",
						"file": map[string]any{
							"filename":  filepath.Base(path),
							"file_data": "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(data),
						},
					},
					{"type": "text", "text": extractionPrompt},
				},
			},
		},
	}

	raw, err := c.post(ctx, strings.TrimRight(c.cfg.BaseURL, "/")+"/chat/completions", body)
	if err != nil {
		return provider.Result{}, provider.NewExtractionError(providerID, "chat completion", err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return provider.Result{}, provider.NewExtractionError(providerID, "decode response", err)
	}
	if len(cc.Choices) == 0 {
		return provider.Result{}, provider.NewExtractionError(providerID, "no choices in response", nil)
	}

	m := provider.Metrics{
		Duration: time.Since(start),
		Model:    c.cfg.Model,
	}
	if cc.Usage.TotalTokens > 0 {
		m.Tokens = provider.IntPtr(cc.Usage.TotalTokens)
	}

	c.logger.Info("openai.extract.ok",
		"req_id", rid, "pdf", filepath.Base(path),
		"tokens", cc.Usage.TotalTokens, "elapsed_ms", time.Since(start).Milliseconds())
	return provider.Result{Markdown: strings.TrimSpace(cc.Choices[0].Message.Content), Metrics: m}, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.logger.Warn("openai response body close error", "error", cerr)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}
