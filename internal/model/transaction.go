package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UncategorizedLabel is used when a record carries no usable category.
const UncategorizedLabel = "Uncategorized"

// Transaction is the canonical form of a bank or receipt transaction.
type Transaction struct {
	ID           string
	MerchantName string
	Amount       decimal.Decimal // positive = money out, negative = refund/credit
	OccurredOn   time.Time       // calendar date at UTC midnight
	Category     string
	AccountRef   string
}

// HasDate reports whether the transaction carries a usable date.
func (t Transaction) HasDate() bool {
	return !t.OccurredOn.IsZero()
}
