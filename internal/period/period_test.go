package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	tests := []struct {
		year, month int
		want        string
	}{
		{2025, 1, "2025-01"},
		{2025, 12, "2025-12"},
		{999, 3, "0999-03"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(tt.year, tt.month).String())
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input     string
		wantYear  int
		wantMonth time.Month
	}{
		{"2025-01", 2025, time.January},
		{"2025-12", 2025, time.December},
		{" 2024-02 ", 2024, time.February},
	}
	for _, tt := range tests {
		ym, err := Parse(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.wantYear, ym.Year)
		assert.Equal(t, tt.wantMonth, ym.Month)
	}
}

func TestParse_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"2025",
		"2025-1",
		"2025-13",
		"2025-00",
		"xxxx-01",
		"2025-01-15",
	}
	for _, input := range badInputs {
		_, err := Parse(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestNext(t *testing.T) {
	assert.Equal(t, New(2025, 4), New(2025, 3).Next())
	assert.Equal(t, New(2026, 1), New(2025, 12).Next())
}

func TestDays(t *testing.T) {
	tests := []struct {
		ym   YearMonth
		want int
	}{
		{New(2025, 1), 31},
		{New(2025, 2), 28},
		{New(2024, 2), 29},
		{New(2025, 4), 30},
		{New(2025, 12), 31},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.ym.Days(), "Days(%s)", tt.ym)
	}
}

func TestDate_Clamps(t *testing.T) {
	assert.Equal(t, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), New(2025, 4).Date(31))
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), New(2025, 2).Date(30))
	assert.Equal(t, time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC), New(2025, 5).Date(5))
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), New(2025, 5).Date(0))
}

func TestOfAndBefore(t *testing.T) {
	ym := Of(time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, New(2025, 3), ym)
	assert.True(t, New(2024, 12).Before(ym))
	assert.True(t, New(2025, 2).Before(ym))
	assert.False(t, ym.Before(ym))
	assert.False(t, New(2025, 4).Before(ym))
	assert.True(t, YearMonth{}.IsZero())
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	in := time.Date(2025, 4, 2, 23, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC), Day(in))
}
