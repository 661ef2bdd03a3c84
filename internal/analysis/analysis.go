// Package analysis runs the budgeting pipeline: bank imports are normalized,
// folded into a ledger for overspend alerts, and mined for recurring bills.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tally-dev/tally/internal/advisor"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/normalize"
	"github.com/tally-dev/tally/internal/notify"
	"github.com/tally-dev/tally/internal/period"
	"github.com/tally-dev/tally/internal/recurrence"
	"github.com/tally-dev/tally/internal/reminder"
)

// Service wires the core packages together.
type Service struct {
	normalizer *normalize.Normalizer
	detector   *recurrence.Detector
	logger     *zap.Logger
}

// NewService creates a Service. A nil logger discards output.
func NewService(n *normalize.Normalizer, d *recurrence.Detector, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{normalizer: n, detector: d, logger: logger}
}

// Load parses and normalizes every file in <repoRoot>/import/. Files in an
// unrecognised format are skipped with a warning. Transactions sharing an ID
// are kept once, first file wins.
func (s *Service) Load(repoRoot string, reg *importer.Registry) ([]model.Transaction, error) {
	files, err := importer.Scan(repoRoot)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var txns []model.Transaction
	for _, f := range files {
		records, format, err := reg.ParseFile(f.Path)
		if errors.Is(err, importer.ErrUnknownFormat) {
			s.logger.Warn("skipping import", zap.String("file", f.Name), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}

		got, dropped := s.Normalize(f.Name, records)
		added := 0
		for _, t := range got {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			txns = append(txns, t)
			added++
		}
		s.logger.Debug("loaded import",
			zap.String("file", f.Name),
			zap.String("format", format),
			zap.Int("records", len(records)),
			zap.Int("transactions", added),
			zap.Int("dropped", dropped))
	}
	return txns, nil
}

// Normalize converts records, logging each one it has to drop. It returns
// the transactions and the number of records dropped.
func (s *Service) Normalize(source string, records []normalize.Record) ([]model.Transaction, int) {
	txns, dropped := s.normalizer.NormalizeAll(records)
	for _, d := range dropped {
		s.logger.Warn("dropped record",
			zap.String("source", source),
			zap.Int("index", d.Index),
			zap.Error(d.Err))
	}
	return txns, len(dropped)
}

// BuildLedger sets every configured limit and folds txns into a fresh ledger.
func BuildLedger(budgets []config.Budget, txns []model.Transaction) (*ledger.Ledger, error) {
	l := ledger.New()
	for _, b := range budgets {
		ym, err := period.Parse(b.Month)
		if err != nil {
			return nil, fmt.Errorf("budget %s/%s: %w", b.Month, b.Category, err)
		}
		if err := l.SetLimit(ym, b.Category, b.Limit); err != nil {
			return nil, fmt.Errorf("budget %s/%s: %w", b.Month, b.Category, err)
		}
	}
	l.Rebuild(txns)
	return l, nil
}

// Report is a month's budget position.
type Report struct {
	Month         period.YearMonth
	Rows          []model.SpendRow
	Notifications []model.Notification
}

// MonthlyReport summarises ym and composes its overspend alerts.
func MonthlyReport(l *ledger.Ledger, ym period.YearMonth) Report {
	return Report{
		Month:         ym,
		Rows:          l.Summary(ym),
		Notifications: notify.Compose(l.Overspend(ym), ym),
	}
}

// LatestMonth returns the most recent month with a dated transaction, or the
// zero YearMonth if there is none.
func LatestMonth(txns []model.Transaction) period.YearMonth {
	var latest period.YearMonth
	for _, t := range txns {
		if !t.HasDate() {
			continue
		}
		if ym := period.Of(t.OccurredOn); latest.Before(ym) {
			latest = ym
		}
	}
	return latest
}

// BillOptions controls Bills.
type BillOptions struct {
	HorizonDays int
	Today       time.Time
	Classifier  advisor.Classifier // optional important-bill filter
}

// BillsResult holds every detected candidate and the reminders due soon.
type BillsResult struct {
	Candidates []model.RecurringCandidate
	Reminders  []model.Reminder
}

// Bills detects recurring payments in txns and schedules reminders for those
// due within the horizon. When a classifier is set, only candidates it deems
// important are scheduled; if it fails, every candidate is.
func (s *Service) Bills(ctx context.Context, txns []model.Transaction, opts BillOptions) (BillsResult, error) {
	candidates := s.detector.Detect(txns)
	s.logger.Debug("detected recurring payments", zap.Int("candidates", len(candidates)))

	selected := candidates
	if opts.Classifier != nil && len(candidates) > 0 {
		filtered, err := advisor.FilterImportant(ctx, opts.Classifier, candidates)
		if err != nil {
			s.logger.Warn("important-bill filter failed, keeping all candidates", zap.Error(err))
		}
		selected = filtered
	}

	reminders, err := reminder.Schedule(selected, opts.HorizonDays, opts.Today)
	if err != nil {
		return BillsResult{}, err
	}
	return BillsResult{Candidates: selected, Reminders: reminders}, nil
}

// DetectorOptions maps the recurrence config onto detector options.
func DetectorOptions(c config.RecurrenceConfig) recurrence.Options {
	return recurrence.Options{
		MinObservations:   c.MinObservations,
		MinDistinctMonths: c.MinMonths,
		ToleranceDays:     c.ToleranceDays,
	}
}
