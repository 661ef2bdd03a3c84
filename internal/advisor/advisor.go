// Package advisor narrows recurring candidates down to the obligations worth
// a reminder (rent, utilities, loans, insurance, phone and subscriptions).
package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// Classifier picks the names of important obligations out of a candidate
// list.
type Classifier interface {
	ImportantNames(ctx context.Context, candidates []model.RecurringCandidate) ([]string, error)
}

// FilterImportant keeps the candidates whose merchant name the classifier
// returned, compared case-insensitively, in input order. If the classifier
// fails, the full list is returned together with the error so the caller can
// report it and carry on.
func FilterImportant(ctx context.Context, c Classifier, candidates []model.RecurringCandidate) ([]model.RecurringCandidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	names, err := c.ImportantNames(ctx, candidates)
	if err != nil {
		return candidates, fmt.Errorf("classifying recurring payments: %w", err)
	}

	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[strings.ToLower(strings.TrimSpace(n))] = true
	}

	var out []model.RecurringCandidate
	for _, cand := range candidates {
		if keep[strings.ToLower(cand.MerchantName)] {
			out = append(out, cand)
		}
	}
	return out, nil
}

// Prompt builds the classification request for candidates.
func Prompt(candidates []model.RecurringCandidate) string {
	var list strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&list, "- %s | $%s | Due: %s\n", c.MerchantName, c.TypicalAmount.StringFixed(2), c.NextDue.Format("2006-01-02"))
	}

	return `You are a financial assistant reviewing a user's recurring transactions.

From the list below, identify and return ONLY the important recurring financial obligations, such as:
- rent or mortgage payments
- credit card or loan payments
- insurance
- utilities (electricity, water, gas, internet)
- mobile phone bills
- subscriptions (Netflix, Spotify, gym, etc.)

Ignore food, dining, fast food and coffee shops.

Return only the names, one per line, each starting with "- ".

Here is the list to review:

` + list.String()
}

// ParseNames extracts the names from a "- name" list. Lines in any other
// shape are ignored.
func ParseNames(response string) []string {
	var names []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		if name := strings.TrimSpace(line[2:]); name != "" {
			names = append(names, name)
		}
	}
	return names
}
