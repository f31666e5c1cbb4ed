// Package pricing holds the per-provider USD rates used to estimate the cost
// of extraction calls whose vendor API does not report spend directly.
package pricing

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joseph-ayodele/ocr-bench/internal/common"
)

// Rate describes how one provider is billed. Both fields are optional; a
// zero rate means cost cannot be estimated for that provider.
type Rate struct {
	USDPer1KPages float64 `json:"usd_per_1000_pages,omitempty"`
	USDPerCredit  float64 `json:"usd_per_credit,omitempty"`
}

// Table maps provider identifiers to rates.
type Table struct {
	rates map[string]Rate
}

func NewTable() *Table {
	return &Table{rates: map[string]Rate{}}
}

// Set installs or replaces the rate for a provider.
func (t *Table) Set(providerID string, r Rate) {
	t.rates[providerID] = r
}

// Lookup returns the rate for a provider.
func (t *Table) Lookup(providerID string) (Rate, bool) {
	r, ok := t.rates[providerID]
	return r, ok
}

// EstimateFromPages computes a page-based cost estimate, or nil when no
// per-page rate is configured for the provider.
func (t *Table) EstimateFromPages(providerID string, pages int) *float64 {
	r, ok := t.rates[providerID]
	if !ok || r.USDPer1KPages <= 0 || pages <= 0 {
		return nil
	}
	cost := float64(pages) * r.USDPer1KPages / 1000
	return &cost
}

// EstimateFromCredits converts vendor credits into USD, or nil when no
// per-credit rate is configured.
func (t *Table) EstimateFromCredits(providerID string, credits float64) *float64 {
	r, ok := t.rates[providerID]
	if !ok || r.USDPerCredit <= 0 {
		return nil
	}
	cost := credits * r.USDPerCredit
	return &cost
}

// fileSchema constrains a pricing file to an object of provider -> rate.
// Declared as a generic map so the validator idiom matches the rest of the
// codebase.
func fileSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"additionalProperties": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"usd_per_1000_pages": map[string]any{"type": "number", "minimum": 0},
				"usd_per_credit":     map[string]any{"type": "number", "minimum": 0},
			},
		},
	}
}

// LoadFile reads a JSON pricing file, validates it against the embedded
// schema, and merges its rates into the table (file entries win over
// defaults). An unreadable or invalid file is a fatal configuration error.
func (t *Table) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return common.NewAppError("CONFIG_ERROR", fmt.Sprintf("read pricing file %s", path), err)
	}
	if err := common.ValidateJSONAgainstSchema(fileSchema(), raw); err != nil {
		return common.NewAppError("CONFIG_ERROR", fmt.Sprintf("invalid pricing file %s", path), err)
	}
	var parsed map[string]Rate
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return common.NewAppError("CONFIG_ERROR", fmt.Sprintf("parse pricing file %s", path), err)
	}
	for id, r := range parsed {
		t.rates[id] = r
	}
	return nil
}
