// Package notify formats budget overspend alerts.
package notify

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/period"
)

// Compose returns one notification per overspent category, sorted by category.
func Compose(overspend map[string]decimal.Decimal, ym period.YearMonth) []model.Notification {
	categories := make([]string, 0, len(overspend))
	for c := range overspend {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	out := make([]model.Notification, 0, len(categories))
	for _, c := range categories {
		amount := overspend[c]
		out = append(out, model.Notification{
			Month:    ym.String(),
			Category: c,
			Amount:   amount,
			Message:  fmt.Sprintf("You exceeded your budget for %s by $%s in %s.", c, amount.StringFixed(2), ym),
		})
	}
	return out
}
