package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/normalize"
)

const chaseDateFormat = "01/02/2006"

// Account references double as the transaction ID prefix, so exports of
// different accounts never collide on dedup.
const (
	chaseCheckingAccount = "chase-checking"
	chaseCardAccount     = "chase-card"
)

// ChaseParser parses Chase checking account CSV exports.
//
// Chase reports debits as negative amounts; records are emitted with the
// sign flipped so money out is positive.
type ChaseParser struct{}

const (
	chaseNumFields = 7
	chaseColDate   = 1
	chaseColDesc   = 2
	chaseColAmount = 3
	chaseColType   = 4
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase checking CSV.
func (p *ChaseParser) Parse(r io.Reader) ([]normalize.Record, error) {
	rows, err := readChaseCSV(r, chaseNumFields)
	if err != nil {
		return nil, err
	}

	refs := make(map[string]int)
	var records []normalize.Record
	for _, row := range rows {
		rec := chaseRecord(refs, chaseCheckingAccount, row[chaseColDate], row[chaseColDesc], row[chaseColAmount])
		rec["type"] = row[chaseColType]
		records = append(records, rec)
	}
	return records, nil
}

// ChaseCardParser parses Chase credit card CSV exports, which carry a
// merchant category per row.
type ChaseCardParser struct{}

const (
	chaseCardNumFields   = 7
	chaseCardColDate     = 0
	chaseCardColDesc     = 2
	chaseCardColCategory = 3
	chaseCardColType     = 4
	chaseCardColAmount   = 5
)

// Format returns the parser name.
func (p *ChaseCardParser) Format() string { return "chase-card" }

// Parse reads a Chase credit card CSV.
func (p *ChaseCardParser) Parse(r io.Reader) ([]normalize.Record, error) {
	rows, err := readChaseCSV(r, chaseCardNumFields)
	if err != nil {
		return nil, err
	}

	refs := make(map[string]int)
	var records []normalize.Record
	for _, row := range rows {
		rec := chaseRecord(refs, chaseCardAccount, row[chaseCardColDate], row[chaseCardColDesc], row[chaseCardColAmount])
		if c := strings.TrimSpace(row[chaseCardColCategory]); c != "" {
			rec["category"] = c
		}
		rec["type"] = row[chaseCardColType]
		records = append(records, rec)
	}
	return records, nil
}

// readChaseCSV returns the data rows of a Chase export, header excluded.
func readChaseCSV(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

// chaseRecord builds a record from one export row. Values that do not parse
// are passed through raw so the normalizer drops that row alone.
func chaseRecord(refs map[string]int, account, rawDate, desc, rawAmount string) normalize.Record {
	rec := normalize.Record{
		"name":       strings.TrimSpace(desc),
		"account_id": account,
	}

	dateKey := alnum(rawDate)
	date, err := time.Parse(chaseDateFormat, strings.TrimSpace(rawDate))
	if err != nil {
		date, err = normalize.ParseDate(rawDate)
	}
	if err == nil {
		rec["date"] = date.Format("2006-01-02")
		dateKey = date.Format("20060102")
	} else {
		rec["date"] = rawDate
	}

	if amount, err := decimal.NewFromString(strings.TrimSpace(rawAmount)); err == nil {
		rec["amount"] = amount.Neg()
	} else {
		rec["amount"] = rawAmount
	}

	ref := makeChaseRef(account, dateKey, desc)
	refs[ref]++
	if n := refs[ref]; n > 1 {
		ref = fmt.Sprintf("%s_%d", ref, n)
	}
	rec["transaction_id"] = ref
	return rec
}

// makeChaseRef creates a reference like chase-checking_20250103_GITHUBPROS.
func makeChaseRef(account, dateKey, desc string) string {
	prefix := alnum(desc)
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return fmt.Sprintf("%s_%s_%s", account, dateKey, prefix)
}

func alnum(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
