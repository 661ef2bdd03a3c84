package model

import "github.com/shopspring/decimal"

// SpendRow is one line of a monthly budget summary.
type SpendRow struct {
	Category string
	Spent    decimal.Decimal
	Limit    decimal.Decimal
}

// Remaining returns limit minus spent. Negative means over budget.
func (r SpendRow) Remaining() decimal.Decimal {
	return r.Limit.Sub(r.Spent)
}

// Notification is an overspend alert for one category in one month.
type Notification struct {
	Month    string // "YYYY-MM"
	Category string
	Amount   decimal.Decimal // amount over the limit
	Message  string
}
