package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tally-dev/tally/internal/model"
)

// Result summarises one dispatch run.
type Result struct {
	Sent    []model.Reminder
	Skipped []model.Reminder
	Failed  []model.Reminder
}

// Dispatcher emails reminders at most once per recipient, merchant and due
// date, using the reminder log under repoRoot as its record.
type Dispatcher struct {
	sender   Sender
	repoRoot string
	logger   *zap.Logger
	now      func() time.Time
}

// NewDispatcher creates a Dispatcher. A nil logger discards output.
func NewDispatcher(sender Sender, repoRoot string, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sender:   sender,
		repoRoot: repoRoot,
		logger:   logger,
		now:      time.Now,
	}
}

// Dispatch sends each reminder not yet sent to recipient. Send failures are
// collected in Result.Failed and do not stop the run; the returned error
// covers log I/O only.
func (d *Dispatcher) Dispatch(ctx context.Context, recipient string, reminders []model.Reminder) (Result, error) {
	var res Result
	if len(reminders) == 0 {
		return res, nil
	}

	history, err := ReadLog(d.repoRoot)
	if err != nil {
		return res, err
	}
	seen := make(map[string]bool, len(history))
	for _, e := range history {
		seen[sentKey(e.Recipient, e.Merchant, e.DueDate)] = true
	}

	var sent []LogEntry
	for _, r := range reminders {
		key := sentKey(recipient, r.MerchantName, r.DueISO())
		if seen[key] {
			res.Skipped = append(res.Skipped, r)
			continue
		}

		msg := Message{To: recipient, Subject: Subject(r), Body: r.Message}
		if err := d.sender.Send(ctx, msg); err != nil {
			d.logger.Warn("reminder email failed",
				zap.String("merchant", r.MerchantName),
				zap.String("due_date", r.DueISO()),
				zap.Error(err))
			res.Failed = append(res.Failed, r)
			continue
		}

		d.logger.Info("reminder email sent",
			zap.String("recipient", recipient),
			zap.String("merchant", r.MerchantName),
			zap.String("due_date", r.DueISO()))
		seen[key] = true
		res.Sent = append(res.Sent, r)
		sent = append(sent, LogEntry{
			SentAt:    d.now().UTC(),
			Recipient: recipient,
			Merchant:  r.MerchantName,
			DueDate:   r.DueISO(),
			Amount:    r.Amount.StringFixed(2),
			Subject:   msg.Subject,
		})
	}

	if err := AppendLog(d.repoRoot, sent); err != nil {
		return res, fmt.Errorf("recording sent reminders: %w", err)
	}
	return res, nil
}

// Subject returns the email subject line for a reminder.
func Subject(r model.Reminder) string {
	return fmt.Sprintf("Upcoming bill: %s due %s", r.MerchantName, r.DueISO())
}

func sentKey(recipient, merchant, due string) string {
	return strings.ToLower(recipient) + "\x00" + strings.ToLower(merchant) + "\x00" + due
}
