// Package backup encodes and decodes the portable backup document
// {events, debts, config}.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"prestes/internal/core"
	"prestes/internal/records"
)

// ErrInvalidFile is returned for documents that are not JSON objects or
// carry none of the known collections.
var ErrInvalidFile = errors.New("invalid file")

// Export renders data as an indented JSON document.
func Export(data records.Data) ([]byte, error) {
	if data.Events == nil {
		data.Events = []core.FinancialEvent{}
	}
	if data.Debts == nil {
		data.Debts = []core.Debt{}
	}
	if data.Config == nil {
		cfg := core.DefaultConfig()
		data.Config = &cfg
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return out, nil
}

// FileName is the download name for a backup taken at now.
func FileName(product string, now time.Time) string {
	product = strings.ToLower(strings.TrimSpace(product))
	if product == "" {
		product = "prestes"
	}
	product = strings.ReplaceAll(product, " ", "-")
	return fmt.Sprintf("backup-%s-%s.json", product, now.Format("2006-01-02"))
}

// document distinguishes an absent key from an empty one.
type document struct {
	Events json.RawMessage `json:"events"`
	Debts  json.RawMessage `json:"debts"`
	Config json.RawMessage `json:"config"`
}

// present reports whether a key carries a value. A null value counts as
// absent.
func present(raw json.RawMessage) bool {
	return raw != nil && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// ParseImport validates a backup document. Every key present in raw yields a
// non-nil collection in the result, so importing it replaces that collection
// wholesale. Absent and null keys stay nil and leave their collection alone.
// The document must be a single JSON object with at least one non-null key.
func ParseImport(raw []byte) (records.Data, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return records.Data{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if !present(doc.Events) && !present(doc.Debts) && !present(doc.Config) {
		return records.Data{}, ErrInvalidFile
	}

	var data records.Data
	if present(doc.Events) {
		data.Events = []core.FinancialEvent{}
		if err := json.Unmarshal(doc.Events, &data.Events); err != nil {
			return records.Data{}, fmt.Errorf("%w: events: %v", ErrInvalidFile, err)
		}
		if data.Events == nil {
			data.Events = []core.FinancialEvent{}
		}
	}
	if present(doc.Debts) {
		data.Debts = []core.Debt{}
		if err := json.Unmarshal(doc.Debts, &data.Debts); err != nil {
			return records.Data{}, fmt.Errorf("%w: debts: %v", ErrInvalidFile, err)
		}
		if data.Debts == nil {
			data.Debts = []core.Debt{}
		}
	}
	if present(doc.Config) {
		cfg := core.DefaultConfig()
		if err := json.Unmarshal(doc.Config, &cfg); err != nil {
			return records.Data{}, fmt.Errorf("%w: config: %v", ErrInvalidFile, err)
		}
		data.Config = &cfg
	}
	return data, nil
}
