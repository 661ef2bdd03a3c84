package categories

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const mapFile = "category-map.csv"

// Service resolves bank labels to budget categories.
type Service struct {
	mappings []Mapping
	byLabel  map[string]string
}

// NewService creates a Service from a slice of mappings. Later entries win
// when a label repeats.
func NewService(mappings []Mapping) *Service {
	byLabel := make(map[string]string, len(mappings))
	for _, m := range mappings {
		byLabel[strings.ToLower(m.Label)] = m.Category
	}
	return &Service{mappings: mappings, byLabel: byLabel}
}

// Load reads categories/category-map.csv from a repo root.
func Load(repoRoot string) (*Service, error) {
	path := filepath.Join(repoRoot, "categories", mapFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening category map: %w", err)
	}
	defer f.Close()

	mappings, err := ReadMappings(f)
	if err != nil {
		return nil, fmt.Errorf("reading category map: %w", err)
	}
	return NewService(mappings), nil
}

// All returns all mappings.
func (s *Service) All() []Mapping {
	return s.mappings
}

// Resolve returns the budget category for a label. Unknown labels are
// returned unchanged. Matching ignores case.
func (s *Service) Resolve(label string) string {
	if c, ok := s.byLabel[strings.ToLower(strings.TrimSpace(label))]; ok {
		return c
	}
	return label
}

// Save writes the mappings to categories/category-map.csv.
func (s *Service) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, "categories")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating categories dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, mapFile))
	if err != nil {
		return fmt.Errorf("creating category map file: %w", err)
	}
	defer f.Close()

	if err := WriteMappings(f, s.mappings); err != nil {
		return fmt.Errorf("writing category map: %w", err)
	}
	return nil
}
