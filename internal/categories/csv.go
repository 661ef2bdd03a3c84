package categories

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Mapping maps a bank-supplied label onto a budget category.
type Mapping struct {
	Label    string
	Category string
}

const (
	numFields   = 2
	colLabel    = 0
	colCategory = 1
)

// Header is the CSV header for category-map.csv.
const Header = "label,category"

// ReadMappings reads category-map.csv.
func ReadMappings(r io.Reader) ([]Mapping, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading category CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var mappings []Mapping
	for i, rec := range records[1:] {
		m, err := UnmarshalMapping(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

// WriteMappings writes category-map.csv.
func WriteMappings(w io.Writer, mappings []Mapping) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, m := range mappings {
		if err := cw.Write(MarshalMapping(m)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalMapping converts a Mapping to a CSV row.
func MarshalMapping(m Mapping) []string {
	row := make([]string, numFields)
	row[colLabel] = m.Label
	row[colCategory] = m.Category
	return row
}

// UnmarshalMapping converts a CSV row to a Mapping.
func UnmarshalMapping(record []string) (Mapping, error) {
	if len(record) != numFields {
		return Mapping{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	label := strings.TrimSpace(record[colLabel])
	if label == "" {
		return Mapping{}, fmt.Errorf("empty label")
	}
	category := strings.TrimSpace(record[colCategory])
	if category == "" {
		return Mapping{}, fmt.Errorf("empty category for label %q", label)
	}

	return Mapping{Label: label, Category: category}, nil
}
