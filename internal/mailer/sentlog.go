package mailer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LogEntry is one row in the reminder log.
type LogEntry struct {
	SentAt    time.Time
	Recipient string
	Merchant  string
	DueDate   string // YYYY-MM-DD
	Amount    string
	Subject   string
}

// LogHeader is the CSV header for reminder-log.csv.
const LogHeader = "sent_at,recipient,merchant,due_date,amount,subject"

const (
	numFields    = 6
	logDir       = "logs"
	logFile      = "logs/reminder-log.csv"
	colSentAt    = 0
	colRecipient = 1
	colMerchant  = 2
	colDueDate   = 3
	colAmount    = 4
	colSubject   = 5
)

// MarshalLogEntry converts a LogEntry to a CSV row.
func MarshalLogEntry(e LogEntry) []string {
	row := make([]string, numFields)
	row[colSentAt] = e.SentAt.Format(time.RFC3339)
	row[colRecipient] = e.Recipient
	row[colMerchant] = e.Merchant
	row[colDueDate] = e.DueDate
	row[colAmount] = e.Amount
	row[colSubject] = e.Subject
	return row
}

// UnmarshalLogEntry converts a CSV row to a LogEntry.
func UnmarshalLogEntry(record []string) (LogEntry, error) {
	if len(record) != numFields {
		return LogEntry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colSentAt])
	if err != nil {
		return LogEntry{}, fmt.Errorf("parsing timestamp %q: %w", record[colSentAt], err)
	}

	return LogEntry{
		SentAt:    ts,
		Recipient: record[colRecipient],
		Merchant:  record[colMerchant],
		DueDate:   record[colDueDate],
		Amount:    record[colAmount],
		Subject:   record[colSubject],
	}, nil
}

// AppendLog writes entries to <repoRoot>/logs/reminder-log.csv, creating the
// file and header if needed.
func AppendLog(repoRoot string, entries []LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	dir := filepath.Join(repoRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(repoRoot, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening reminder log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(LogHeader, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalLogEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadLog returns all entries from <repoRoot>/logs/reminder-log.csv, or nil if
// the file does not exist.
func ReadLog(repoRoot string) ([]LogEntry, error) {
	f, err := os.Open(filepath.Join(repoRoot, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening reminder log: %w", err)
	}
	defer f.Close()

	return readLogEntries(f)
}

func readLogEntries(r io.Reader) ([]LogEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading reminder log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []LogEntry
	for i, rec := range records[1:] {
		e, err := UnmarshalLogEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
