package importer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tally-dev/tally/internal/normalize"
)

// ErrUnknownFormat is returned when no parser recognises an import file.
var ErrUnknownFormat = errors.New("unknown import format")

// Parser converts a bank export into raw records for the normalizer.
type Parser interface {
	Parse(r io.Reader) ([]normalize.Record, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	r.Register(&ChaseCardParser{})
	r.Register(&PlaidParser{})
	r.Register(&CanonicalParser{})
	return r
}

// DetectFormat guesses the parser format from a file name and its first line.
func DetectFormat(name, firstLine string) (string, error) {
	if strings.EqualFold(filepath.Ext(name), ".json") {
		return "plaid", nil
	}

	header := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(firstLine, "\ufeff")))
	switch {
	case header == CanonicalHeader:
		return "canonical", nil
	case strings.HasPrefix(header, "details,posting date"):
		return "chase", nil
	case strings.HasPrefix(header, "transaction date,post date"):
		return "chase-card", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, name)
}

// ParseFile detects the format of the file at path and parses it. It returns
// the records and the format used.
func (r *Registry) ParseFile(path string) ([]normalize.Record, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}

	line, _ := bufio.NewReader(bytes.NewReader(data)).ReadString('\n')
	format, err := DetectFormat(filepath.Base(path), line)
	if err != nil {
		return nil, "", err
	}

	p := r.Get(format)
	if p == nil {
		return nil, "", fmt.Errorf("%w: no parser registered for %q", ErrUnknownFormat, format)
	}

	records, err := p.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, format, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return records, format, nil
}

// importDir is the subdirectory for bank exports.
const importDir = "import"

// processedDir is the subdirectory for exports already folded into the
// canonical CSV.
const processedDir = "import/processed"

// Scan returns the CSV and JSON files in <repoRoot>/import/.
func Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".json":
		default:
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, importDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
