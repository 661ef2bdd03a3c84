// Package normalize coerces loosely typed transaction records into
// model.Transaction values.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/period"
)

// ErrMalformedRecord is returned when a record's date or amount is missing
// or cannot be parsed.
var ErrMalformedRecord = errors.New("malformed record")

// Record is a raw transaction as delivered by a bank feed, a receipt upload
// or a CSV import.
type Record map[string]any

// Field names tried in order of preference.
var (
	idKeys       = []string{"transaction_id", "id"}
	merchantKeys = []string{"merchant_name", "name"}
	dateKeys     = []string{"date", "occurred_on", "authorized_date"}
	accountKeys  = []string{"account_id", "account_ref"}
)

const (
	amountKey   = "amount"
	categoryKey = "category"
	isoDate     = "2006-01-02"
)

// CategoryResolver maps a raw category label to a budget category.
type CategoryResolver interface {
	Resolve(label string) string
}

// Normalizer converts records into canonical transactions.
type Normalizer struct {
	categories CategoryResolver
	newID      func() string
}

// New creates a Normalizer. A nil resolver keeps category labels verbatim.
func New(categories CategoryResolver) *Normalizer {
	return &Normalizer{
		categories: categories,
		newID:      func() string { return uuid.NewString() },
	}
}

// RecordError describes a record dropped from a batch.
type RecordError struct {
	Index int
	Err   error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// Normalize converts a single record.
func (n *Normalizer) Normalize(rec Record) (model.Transaction, error) {
	rawDate, ok := first(rec, dateKeys)
	if !ok {
		return model.Transaction{}, fmt.Errorf("%w: missing date", ErrMalformedRecord)
	}
	date, err := ParseDate(rawDate)
	if err != nil {
		return model.Transaction{}, err
	}

	rawAmount, ok := rec[amountKey]
	if !ok || rawAmount == nil {
		return model.Transaction{}, fmt.Errorf("%w: missing amount", ErrMalformedRecord)
	}
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return model.Transaction{}, err
	}

	category := Category(rec[categoryKey])
	if n.categories != nil && category != model.UncategorizedLabel {
		category = n.categories.Resolve(category)
	}

	id := stringField(rec, idKeys)
	if id == "" {
		id = n.newID()
	}

	return model.Transaction{
		ID:           id,
		MerchantName: stringField(rec, merchantKeys),
		Amount:       amount,
		OccurredOn:   date,
		Category:     category,
		AccountRef:   stringField(rec, accountKeys),
	}, nil
}

// NormalizeAll converts a batch, dropping malformed records. Surviving
// transactions keep their input order.
func (n *Normalizer) NormalizeAll(records []Record) ([]model.Transaction, []RecordError) {
	var (
		txns    []model.Transaction
		dropped []RecordError
	)
	for i, rec := range records {
		txn, err := n.Normalize(rec)
		if err != nil {
			dropped = append(dropped, RecordError{Index: i, Err: err})
			continue
		}
		txns = append(txns, txn)
	}
	return txns, dropped
}

// ParseDate resolves a date-like value to a calendar date at UTC midnight.
// ISO dates are tried first, then RFC 1123, then free-form parsing.
func ParseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return time.Time{}, fmt.Errorf("%w: zero date", ErrMalformedRecord)
		}
		return period.Day(d), nil
	case string:
		return parseDateString(d)
	default:
		return time.Time{}, fmt.Errorf("%w: date has unsupported type %T", ErrMalformedRecord, v)
	}
}

func parseDateString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrMalformedRecord)
	}

	for _, layout := range []string{isoDate, time.RFC1123, time.RFC1123Z} {
		if t, err := time.Parse(layout, s); err == nil {
			return period.Day(t), nil
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parsing date %q: %v", ErrMalformedRecord, s, err)
	}
	return period.Day(t), nil
}

// ParseAmount converts a numeric value to a signed decimal.
func ParseAmount(v any) (decimal.Decimal, error) {
	switch a := v.(type) {
	case decimal.Decimal:
		return a, nil
	case float64:
		return decimal.NewFromFloat(a), nil
	case float32:
		return decimal.NewFromFloat32(a), nil
	case int:
		return decimal.NewFromInt(int64(a)), nil
	case int64:
		return decimal.NewFromInt(a), nil
	case int32:
		return decimal.NewFromInt32(a), nil
	case json.Number:
		return parseAmountString(a.String())
	case string:
		return parseAmountString(a)
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: amount has unsupported type %T", ErrMalformedRecord, v)
	}
}

func parseAmountString(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: parsing amount %q: %v", ErrMalformedRecord, s, err)
	}
	return d, nil
}

// Category reduces a list/string/absent category value to one label.
func Category(v any) string {
	var label string
	switch c := v.(type) {
	case string:
		label = c
	case []string:
		if len(c) > 0 {
			label = c[0]
		}
	case []any:
		if len(c) > 0 {
			label, _ = c[0].(string)
		}
	}
	if strings.TrimSpace(label) == "" {
		return model.UncategorizedLabel
	}
	return label
}

func first(rec Record, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringField(rec Record, keys []string) string {
	for _, k := range keys {
		switch v := rec[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case fmt.Stringer:
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}
