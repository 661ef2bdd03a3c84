package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/normalize"
)

// CanonicalHeader is the header of the CSV written by WriteTransactions.
const CanonicalHeader = "id,date,merchant,amount,category,account"

const (
	canonNumFields   = 6
	canonColID       = 0
	canonColDate     = 1
	canonColMerchant = 2
	canonColAmount   = 3
	canonColCategory = 4
	canonColAccount  = 5
)

// CanonicalParser reads back the canonical transaction CSV.
type CanonicalParser struct{}

// Format returns the parser name.
func (p *CanonicalParser) Format() string { return "canonical" }

// Parse reads a canonical CSV. Values are passed through as strings and left
// to the normalizer to validate.
func (p *CanonicalParser) Parse(r io.Reader) ([]normalize.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = canonNumFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading canonical CSV: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	var records []normalize.Record
	for _, row := range rows[1:] {
		rec := normalize.Record{
			"transaction_id": row[canonColID],
			"date":           row[canonColDate],
			"merchant_name":  row[canonColMerchant],
			"amount":         row[canonColAmount],
			"account_id":     row[canonColAccount],
		}
		if c := strings.TrimSpace(row[canonColCategory]); c != "" {
			rec["category"] = c
		}
		records = append(records, rec)
	}
	return records, nil
}

// MarshalTransaction converts a Transaction to a canonical CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, canonNumFields)
	row[canonColID] = t.ID
	row[canonColDate] = t.OccurredOn.Format("2006-01-02")
	row[canonColMerchant] = t.MerchantName
	row[canonColAmount] = formatAmount(t.Amount)
	row[canonColCategory] = t.Category
	row[canonColAccount] = t.AccountRef
	return row
}

// formatAmount writes at least two decimal places and never drops precision.
func formatAmount(d decimal.Decimal) string {
	places := int32(2)
	if e := -d.Exponent(); e > places {
		places = e
	}
	return d.StringFixed(places)
}

// WriteTransactions writes transactions as canonical CSV.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(CanonicalHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
