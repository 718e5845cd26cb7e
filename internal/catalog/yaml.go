package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// LoadYAML reads a catalog from a YAML document shaped like Tables.
func LoadYAML(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseYAML(data)
}

func ParseYAML(data []byte) (*Catalog, error) {
	var t Tables
	if err := yaml.UnmarshalStrict(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}
	return New(t)
}
