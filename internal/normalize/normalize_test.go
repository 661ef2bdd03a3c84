package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

type upperResolver struct{}

func (upperResolver) Resolve(label string) string {
	if label == "Rent" {
		return "Housing"
	}
	return label
}

func TestNormalize_PlaidShape(t *testing.T) {
	n := New(nil)
	txn, err := n.Normalize(Record{
		"transaction_id": "tx-1",
		"name":           "NETFLIX #4821",
		"amount":         15.99,
		"date":           "2025-01-05",
		"category":       []any{"Service", "Subscription"},
		"account_id":     "acc-9",
	})
	require.NoError(t, err)

	assert.Equal(t, "tx-1", txn.ID)
	assert.Equal(t, "NETFLIX #4821", txn.MerchantName)
	assert.Equal(t, "15.99", txn.Amount.StringFixed(2))
	assert.Equal(t, date(2025, 1, 5), txn.OccurredOn)
	assert.Equal(t, "Service", txn.Category)
	assert.Equal(t, "acc-9", txn.AccountRef)
}

func TestNormalize_MerchantNamePreferred(t *testing.T) {
	n := New(nil)
	txn, err := n.Normalize(Record{"merchant_name": "Spotify", "name": "SPOTIFY USA 123", "amount": "9.99", "date": "2025-02-01"})
	require.NoError(t, err)
	assert.Equal(t, "Spotify", txn.MerchantName)
}

func TestNormalize_GeneratesID(t *testing.T) {
	n := New(nil)
	n.newID = func() string { return "generated" }
	txn, err := n.Normalize(Record{"name": "Gym", "amount": 30, "date": "2025-02-01"})
	require.NoError(t, err)
	assert.Equal(t, "generated", txn.ID)
}

func TestNormalize_DefaultIDIsUUID(t *testing.T) {
	n := New(nil)
	a, err := n.Normalize(Record{"name": "Gym", "amount": 30, "date": "2025-02-01"})
	require.NoError(t, err)
	b, err := n.Normalize(Record{"name": "Gym", "amount": 30, "date": "2025-02-01"})
	require.NoError(t, err)
	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNormalize_PreservesSign(t *testing.T) {
	n := New(nil)
	txn, err := n.Normalize(Record{"name": "Refund", "amount": "-12.50", "date": "2025-02-01"})
	require.NoError(t, err)
	assert.True(t, txn.Amount.Equal(decimal.RequireFromString("-12.50")))
}

func TestNormalize_MissingFields(t *testing.T) {
	n := New(nil)
	tests := []struct {
		name string
		rec  Record
	}{
		{"no date", Record{"name": "x", "amount": 1}},
		{"nil date", Record{"name": "x", "amount": 1, "date": nil}},
		{"no amount", Record{"name": "x", "date": "2025-01-01"}},
		{"nil amount", Record{"name": "x", "date": "2025-01-01", "amount": nil}},
		{"bad amount", Record{"name": "x", "date": "2025-01-01", "amount": "twelve"}},
		{"bool amount", Record{"name": "x", "date": "2025-01-01", "amount": true}},
		{"bad date", Record{"name": "x", "date": "not a date at all", "amount": 1}},
		{"empty date", Record{"name": "x", "date": "  ", "amount": 1}},
		{"numeric date", Record{"name": "x", "date": 20250101, "amount": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(tt.rec)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestParseDate_Formats(t *testing.T) {
	tests := []struct {
		input any
		want  time.Time
	}{
		{"2025-04-02", date(2025, 4, 2)},
		{"Wed, 02 Apr 2025 00:00:00 GMT", date(2025, 4, 2)},
		{"Wed, 02 Apr 2025 23:30:00 -0500", date(2025, 4, 2)},
		{"01/03/2025", date(2025, 1, 3)},
		{"April 2, 2025", date(2025, 4, 2)},
		{"2025-04-02T18:45:00Z", date(2025, 4, 2)},
		{time.Date(2025, 4, 2, 18, 45, 0, 0, time.UTC), date(2025, 4, 2)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.input)
		require.NoError(t, err, "input: %v", tt.input)
		assert.Equal(t, tt.want, got, "input: %v", tt.input)
	}
}

func TestParseDate_ZeroTime(t *testing.T) {
	_, err := ParseDate(time.Time{})
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{"15.99", "15.99"},
		{" -4.00 ", "-4.00"},
		{15.99, "15.99"},
		{float32(2.5), "2.50"},
		{42, "42.00"},
		{int64(-7), "-7.00"},
		{int32(3), "3.00"},
		{json.Number("19.95"), "19.95"},
		{decimal.RequireFromString("1.10"), "1.10"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.input)
		require.NoError(t, err, "input: %v", tt.input)
		assert.Equal(t, tt.want, got.StringFixed(2), "input: %v", tt.input)
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{[]any{"Food and Drink", "Restaurants"}, "Food and Drink"},
		{[]string{"Travel", "Airlines"}, "Travel"},
		{"Shops", "Shops"},
		{nil, model.UncategorizedLabel},
		{[]any{}, model.UncategorizedLabel},
		{[]any{42}, model.UncategorizedLabel},
		{"", model.UncategorizedLabel},
		{17, model.UncategorizedLabel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Category(tt.input), "Category(%v)", tt.input)
	}
}

func TestNormalize_CategoryResolver(t *testing.T) {
	n := New(upperResolver{})

	txn, err := n.Normalize(Record{"name": "Landlord", "amount": 1200, "date": "2025-03-01", "category": "Rent"})
	require.NoError(t, err)
	assert.Equal(t, "Housing", txn.Category)

	txn, err = n.Normalize(Record{"name": "Landlord", "amount": 1200, "date": "2025-03-01"})
	require.NoError(t, err)
	assert.Equal(t, model.UncategorizedLabel, txn.Category)
}

func TestNormalizeAll_DropsAndKeepsOrder(t *testing.T) {
	n := New(nil)
	records := []Record{
		{"name": "A", "amount": 1, "date": "2025-01-01"},
		{"name": "B", "amount": "oops", "date": "2025-01-02"},
		{"name": "C", "amount": 3, "date": "2025-01-03"},
		{"name": "D", "amount": 4},
	}

	txns, dropped := n.NormalizeAll(records)
	require.Len(t, txns, 2)
	assert.Equal(t, "A", txns[0].MerchantName)
	assert.Equal(t, "C", txns[1].MerchantName)

	require.Len(t, dropped, 2)
	assert.Equal(t, 1, dropped[0].Index)
	assert.Equal(t, 3, dropped[1].Index)
	assert.ErrorIs(t, dropped[0], ErrMalformedRecord)
	assert.Contains(t, dropped[1].Error(), "record 3")
}

func TestNormalizeAll_Empty(t *testing.T) {
	txns, dropped := New(nil).NormalizeAll(nil)
	assert.Empty(t, txns)
	assert.Empty(t, dropped)
}
