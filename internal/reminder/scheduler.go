// Package reminder turns recurring candidates into upcoming-bill reminders.
package reminder

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/period"
)

// ErrInvalidHorizon is returned when the horizon is shorter than one day.
var ErrInvalidHorizon = errors.New("invalid horizon")

// Schedule returns reminders for candidates due between today and
// today+horizonDays, both inclusive, sorted by due date then merchant name.
// The candidates slice is not modified.
func Schedule(candidates []model.RecurringCandidate, horizonDays int, today time.Time) ([]model.Reminder, error) {
	if horizonDays < 1 {
		return nil, fmt.Errorf("%w: %d days, must be at least 1", ErrInvalidHorizon, horizonDays)
	}

	start := period.Day(today)
	end := start.AddDate(0, 0, horizonDays)

	var reminders []model.Reminder
	for _, c := range candidates {
		due := period.Day(c.NextDue)
		if due.Before(start) || due.After(end) {
			continue
		}
		reminders = append(reminders, model.Reminder{
			MerchantName: c.MerchantName,
			Category:     c.Category,
			Amount:       c.TypicalAmount,
			DueDate:      due,
			Message:      Message(c.MerchantName, c.TypicalAmount.StringFixed(2), due),
		})
	}

	sort.SliceStable(reminders, func(i, j int) bool {
		if !reminders[i].DueDate.Equal(reminders[j].DueDate) {
			return reminders[i].DueDate.Before(reminders[j].DueDate)
		}
		return reminders[i].MerchantName < reminders[j].MerchantName
	})
	return reminders, nil
}

// Message renders the reminder text for one payment.
func Message(merchant, amount string, due time.Time) string {
	return fmt.Sprintf("Recurring payment: %s ($%s) is due on %s.", merchant, amount, due.Format("2006-01-02"))
}
