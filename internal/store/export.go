// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes the matching analysis rows to path as YAML. It supports
// the same filters as Search.
func (s *Store) ExportYAML(ctx context.Context, opts SearchOptions, path string) error {
	opts.MaxResults = exportLimit
	rows, err := s.Search(ctx, opts)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}

	data, err := yaml.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the matching analysis rows to path as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, opts SearchOptions, path string) error {
	opts.MaxResults = exportLimit
	rows, err := s.Search(ctx, opts)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
