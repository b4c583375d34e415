package prequal

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_criteria.yaml
var defaultCatalogYAML []byte

type catalogFile struct {
	Criteria []Criterion `yaml:"criteria"`
}

// ParseCatalog decodes and validates a YAML criteria catalog.
func ParseCatalog(raw []byte) ([]Criterion, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode criteria catalog: %w", err)
	}
	if err := ValidateCriteria(f.Criteria); err != nil {
		return nil, err
	}
	return f.Criteria, nil
}

func ReadCatalog(r io.Reader) ([]Criterion, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read criteria catalog: %w", err)
	}
	return ParseCatalog(raw)
}

func LoadCatalogFile(path string) ([]Criterion, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read criteria catalog %s: %w", path, err)
	}
	return ParseCatalog(raw)
}

// DefaultCriteria returns the built-in screening catalog.
func DefaultCriteria() []Criterion {
	cs, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded criteria catalog is invalid: %v", err))
	}
	return cs
}
