// Package recurrence infers monthly recurring payments from transaction history.
//
// Transactions are grouped by normalized merchant name and amount. A group
// is recurring when it has enough observations spread over enough distinct
// months and every observation lands within a few days of the group's mean
// day of month. The next due date is one month after the latest
// observation, clamped to the length of that month.
package recurrence

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/normalize"
	"github.com/tally-dev/tally/internal/period"
)

// Options tunes the detector.
type Options struct {
	MinObservations   int // observations required per group
	MinDistinctMonths int // distinct calendar months required per group
	ToleranceDays     int // max distance of any observation from the mean day
}

// DefaultOptions returns the standard thresholds: 3 observations in 3
// distinct months, within ±3 days of the mean billing day.
func DefaultOptions() Options {
	return Options{
		MinObservations:   3,
		MinDistinctMonths: 3,
		ToleranceDays:     3,
	}
}

// Detector finds recurring candidates.
type Detector struct {
	opts Options
}

// New creates a Detector.
func New(opts Options) *Detector {
	return &Detector{opts: opts}
}

type groupKey struct {
	merchant string
	amount   string // rounded to 2dp, canonical string form
}

type group struct {
	amount decimal.Decimal
	txns   []model.Transaction
}

// MerchantKey strips every non-letter and lower-cases the rest, so
// "Netflix #4821" and "NETFLIX" share a key.
func MerchantKey(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, name)
}

// Detect returns one candidate per recurring group, in the order groups
// were first seen. Credits, refunds and undated transactions never
// contribute.
func (d *Detector) Detect(txns []model.Transaction) []model.RecurringCandidate {
	groups := make(map[groupKey]*group)
	var order []groupKey

	for _, txn := range txns {
		if !txn.HasDate() {
			continue
		}
		amount := txn.Amount.Round(2)
		if !amount.IsPositive() {
			continue
		}
		key := groupKey{merchant: MerchantKey(txn.MerchantName), amount: amount.StringFixed(2)}
		g, ok := groups[key]
		if !ok {
			g = &group{amount: amount}
			groups[key] = g
			order = append(order, key)
		}
		g.txns = append(g.txns, txn)
	}

	var candidates []model.RecurringCandidate
	for _, key := range order {
		if c, ok := d.evaluate(groups[key]); ok {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

// DetectRecords runs detection on raw records, silently skipping any that
// fail normalization.
func (d *Detector) DetectRecords(n *normalize.Normalizer, records []normalize.Record) []model.RecurringCandidate {
	txns, _ := n.NormalizeAll(records)
	return d.Detect(txns)
}

func (d *Detector) evaluate(g *group) (model.RecurringCandidate, bool) {
	if len(g.txns) < d.opts.MinObservations || len(g.txns) == 0 {
		return model.RecurringCandidate{}, false
	}

	obs := make([]model.Transaction, len(g.txns))
	copy(obs, g.txns)
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].OccurredOn.Before(obs[j].OccurredOn) })

	months := make(map[period.YearMonth]bool)
	daySum := 0
	for _, txn := range obs {
		months[period.Of(txn.OccurredOn)] = true
		daySum += txn.OccurredOn.Day()
	}
	if len(months) < d.opts.MinDistinctMonths {
		return model.RecurringCandidate{}, false
	}

	// |day - sum/n| <= tol  <=>  |day*n - sum| <= tol*n, kept in integers.
	n := len(obs)
	for _, txn := range obs {
		dev := txn.OccurredOn.Day()*n - daySum
		if dev < 0 {
			dev = -dev
		}
		if dev > d.opts.ToleranceDays*n {
			return model.RecurringCandidate{}, false
		}
	}

	meanDay := int(math.RoundToEven(float64(daySum) / float64(n)))
	latest := obs[n-1]
	nextDue := period.Of(latest.OccurredOn).Next().Date(meanDay)

	return model.RecurringCandidate{
		MerchantName:  latest.MerchantName,
		Category:      latest.Category,
		TypicalAmount: g.amount,
		NextDue:       nextDue,
		Observations:  n,
	}, true
}
