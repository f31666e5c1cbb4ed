// Package gemini implements the extractor contract on Vertex AI generative
// models, sending the PDF inline and asking for a markdown rendition.
package gemini

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/ocr-bench/internal/provider"
)

const providerID = "gemini"

const systemPrompt = "You are a document parser and markdown translator. " +
	"Parse the content of the provided PDF document and translate it into markdown format. " +
	"Accuracy, detail, and information preservation are of utmost importance."

const userPrompt = `Parse the attached PDF and translate its content into markdown.

Text becomes markdown text, lists become markdown lists, tables become markdown
tables (normalize merged cells by copying parent-cell content into each child).
Replace each image with a short descriptive text. Ignore page headers and
footers such as logos and page numbers.

Return ONLY the final markdown content, with no preamble and no surrounding
code fences.`

// Config for the Vertex AI Gemini client.
type Config struct {
	ProjectID string // if empty, falls back to env GCP_PROJECT_ID
	Region    string // default us-central1
	Model     string // e.g. "gemini-1.5-pro"
}

type Client struct {
	cfg    Config
	logger *slog.Logger

	genai *genai.Client // created lazily so missing credentials fail per-pair
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.ProjectID == "" {
		cfg.ProjectID = os.Getenv("GCP_PROJECT_ID")
	}
	if cfg.Region == "" {
		cfg.Region = "us-central1"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-pro"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, logger: logger}
}

// Extract sends the PDF as an inline blob to the configured Gemini model.
func (c *Client) Extract(ctx context.Context, path string) (provider.Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	if c.cfg.ProjectID == "" {
		return provider.Result{}, provider.NewExtractionError(providerID, "missing GCP_PROJECT_ID", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return provider.Result{}, provider.NewExtractionError(providerID, "read pdf", err)
	}

	c.logger.Info("gemini.extract.start",
		"req_id", rid, "model", c.cfg.Model, "pdf", filepath.Base(path), "bytes", len(data))

	if c.genai == nil {
		client, err := genai.NewClient(ctx, c.cfg.ProjectID, c.cfg.Region)
		if err != nil {
			return provider.Result{}, provider.NewExtractionError(providerID, "create vertex client", err)
		}
		c.genai = client
	}

	model := c.genai.GenerativeModel(c.cfg.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: "application/pdf", Data: data},
		genai.Text(userPrompt),
	)
	if err != nil {
		return provider.Result{}, provider.NewExtractionError(providerID, "generate content", err)
	}

	markdown := collectText(resp)
	if markdown == "" {
		return provider.Result{}, provider.NewExtractionError(providerID, "empty model response", nil)
	}

	m := provider.Metrics{
		Duration: time.Since(start),
		Model:    c.cfg.Model,
	}
	if resp.UsageMetadata != nil && resp.UsageMetadata.TotalTokenCount > 0 {
		m.Tokens = provider.IntPtr(int(resp.UsageMetadata.TotalTokenCount))
	}

	c.logger.Info("gemini.extract.ok",
		"req_id", rid, "pdf", filepath.Base(path),
		"elapsed_ms", time.Since(start).Milliseconds())
	return provider.Result{Markdown: markdown, Metrics: m}, nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(b.String())
}
