package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringCandidate is a merchant/amount group inferred to be a monthly obligation.
type RecurringCandidate struct {
	MerchantName  string
	Category      string
	TypicalAmount decimal.Decimal
	NextDue       time.Time
	Observations  int
}

// Reminder is an upcoming payment within the requested horizon.
type Reminder struct {
	MerchantName string
	Category     string
	Amount       decimal.Decimal
	DueDate      time.Time
	Message      string
}

// DueISO returns the due date as "YYYY-MM-DD".
func (r Reminder) DueISO() string {
	return r.DueDate.Format("2006-01-02")
}
