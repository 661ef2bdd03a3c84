package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tally-dev/tally/internal/normalize"
)

// PlaidParser reads transaction arrays in the shape returned by Plaid's
// /transactions/get, either bare or wrapped in {"transactions": [...]}.
// Plaid already reports money out as positive.
type PlaidParser struct{}

// Format returns the parser name.
func (p *PlaidParser) Format() string { return "plaid" }

// Parse decodes the JSON document. Numbers are kept as json.Number so
// amounts are not rounded through float64.
func (p *PlaidParser) Parse(r io.Reader) ([]normalize.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading plaid JSON: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '{' {
		var envelope struct {
			Transactions json.RawMessage `json:"transactions"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decoding plaid JSON: %w", err)
		}
		if len(envelope.Transactions) == 0 {
			return nil, nil
		}
		trimmed = envelope.Transactions
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding plaid transactions: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	records := make([]normalize.Record, 0, len(raw))
	for _, m := range raw {
		records = append(records, normalize.Record(m))
	}
	return records, nil
}
