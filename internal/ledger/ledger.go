// Package ledger tracks monthly budget limits and spending per category.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/period"
)

// ErrInvalidLimit is returned when a budget limit is negative.
var ErrInvalidLimit = errors.New("invalid limit")

// Ledger holds per-month, per-category limits and accumulated spend.
// A Ledger is owned by one caller and is not safe for concurrent use.
type Ledger struct {
	limits map[period.YearMonth]map[string]decimal.Decimal
	spent  map[period.YearMonth]map[string]decimal.Decimal
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{
		limits: make(map[period.YearMonth]map[string]decimal.Decimal),
		spent:  make(map[period.YearMonth]map[string]decimal.Decimal),
	}
}

// SetLimit sets the limit for a category in a month, replacing any previous value.
func (l *Ledger) SetLimit(ym period.YearMonth, category string, limit decimal.Decimal) error {
	if limit.IsNegative() {
		return fmt.Errorf("%w: %s for %s in %s is negative", ErrInvalidLimit, limit.StringFixed(2), category, ym)
	}
	month, ok := l.limits[ym]
	if !ok {
		month = make(map[string]decimal.Decimal)
		l.limits[ym] = month
	}
	month[category] = limit
	return nil
}

// Limit returns the limit for a category in a month, zero if unset.
func (l *Ledger) Limit(ym period.YearMonth, category string) decimal.Decimal {
	return l.limits[ym][category]
}

// Spent returns accumulated spend for a category in a month.
func (l *Ledger) Spent(ym period.YearMonth, category string) decimal.Decimal {
	return l.spent[ym][category]
}

// ResetMonth clears accumulated spend for one month. Limits are kept.
func (l *Ledger) ResetMonth(ym period.YearMonth) {
	delete(l.spent, ym)
}

// Accumulate adds the absolute amount of each transaction to the month it
// occurred in. Transactions without a date are skipped.
//
// Accumulate is additive: callers re-running an analysis must reset the
// affected months first, or use Rebuild.
func (l *Ledger) Accumulate(txns []model.Transaction) {
	for _, txn := range txns {
		if !txn.HasDate() {
			continue
		}
		ym := period.Of(txn.OccurredOn)
		month, ok := l.spent[ym]
		if !ok {
			month = make(map[string]decimal.Decimal)
			l.spent[ym] = month
		}
		month[txn.Category] = month[txn.Category].Add(txn.Amount.Abs())
	}
}

// Rebuild resets every month present in txns and accumulates them again.
func (l *Ledger) Rebuild(txns []model.Transaction) {
	for _, txn := range txns {
		if txn.HasDate() {
			l.ResetMonth(period.Of(txn.OccurredOn))
		}
	}
	l.Accumulate(txns)
}

// Overspend returns spent minus limit for every category whose spend
// exceeds a limit that has been set. Categories at or under their limit,
// or without a limit, are omitted.
func (l *Ledger) Overspend(ym period.YearMonth) map[string]decimal.Decimal {
	over := make(map[string]decimal.Decimal)
	for category, spent := range l.spent[ym] {
		limit := l.limits[ym][category]
		if limit.IsZero() {
			continue
		}
		if spent.GreaterThan(limit) {
			over[category] = spent.Sub(limit)
		}
	}
	return over
}

// Summary returns one row per category with a nonzero limit or nonzero
// spend in the month, sorted by category.
func (l *Ledger) Summary(ym period.YearMonth) []model.SpendRow {
	seen := make(map[string]bool)
	for category, limit := range l.limits[ym] {
		if !limit.IsZero() {
			seen[category] = true
		}
	}
	for category, spent := range l.spent[ym] {
		if !spent.IsZero() {
			seen[category] = true
		}
	}

	rows := make([]model.SpendRow, 0, len(seen))
	for category := range seen {
		rows = append(rows, model.SpendRow{
			Category: category,
			Spent:    l.spent[ym][category],
			Limit:    l.limits[ym][category],
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Category < rows[j].Category })
	return rows
}

// Months returns every month with a limit or spend, oldest first.
func (l *Ledger) Months() []period.YearMonth {
	seen := make(map[period.YearMonth]bool)
	for ym := range l.limits {
		seen[ym] = true
	}
	for ym := range l.spent {
		seen[ym] = true
	}
	months := make([]period.YearMonth, 0, len(seen))
	for ym := range seen {
		months = append(months, ym)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months
}
