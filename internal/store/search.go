// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/trial-engine/pkg/types"
)

// SearchOptions holds parameters for analysis-row searches.
type SearchOptions struct {
	// Filters maps canonical field names to accepted values (OR within a
	// field, AND across fields). The pseudo-fields enrollment_min and
	// enrollment_max bound the numeric enrollment column.
	Filters map[string][]string

	// Text is an optional FTS5 full-text search string.
	Text string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// filterable is the set of filter keys that map onto promoted columns.
var filterable = func() map[string]bool {
	m := make(map[string]bool, len(filterColumns))
	for _, c := range filterColumns {
		m[c] = true
	}
	return m
}()

// Search returns the analysis rows matching the given filter set. Unknown
// filter fields are matched against the JSON field blob so a filter over
// any canonical field still narrows results. Full-text matches rank by
// relevance; structured-only queries sort by trial id and variant.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]types.AnalysisRow, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Text != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT r.trial_id, r.variant, r.error, r.fields, rows_fts.rank
			FROM rows_fts
			JOIN analysis_rows r ON r.rowid = rows_fts.rowid
			WHERE rows_fts MATCH ?`)
		args = append(args, opts.Text)
	} else {
		qb.WriteString(
			`SELECT r.trial_id, r.variant, r.error, r.fields, 0 AS rank
			FROM analysis_rows r
			WHERE 1=1`)
	}

	for _, f := range sortedFilterList(opts.Filters) {
		switch {
		case f.field == "enrollment_min":
			qb.WriteString(` AND r.patient_enrollment >= ?`)
			args = append(args, firstInt(f.values))
		case f.field == "enrollment_max":
			qb.WriteString(` AND r.patient_enrollment <= ?`)
			args = append(args, firstInt(f.values))
		case filterable[f.field]:
			qb.WriteString(` AND r.` + f.field + ` IN (` + placeholders(len(f.values)) + `)`)
			for _, v := range f.values {
				args = append(args, v)
			}
		default:
			// Any other canonical field filters through the JSON blob.
			qb.WriteString(` AND json_extract(r.fields, ?) IN (` + placeholders(len(f.values)) + `)`)
			args = append(args, "$."+f.field)
			for _, v := range f.values {
				args = append(args, v)
			}
		}
	}

	if useFTS {
		qb.WriteString(` ORDER BY rows_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.trial_id, r.variant`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching analysis rows: %w", err)
	}
	defer rows.Close()

	var results []types.AnalysisRow
	for rows.Next() {
		var (
			r        types.AnalysisRow
			errText  sql.NullString
			fieldsJS string
			rank     float64
		)
		if err := rows.Scan(&r.TrialID, &r.Variant, &errText, &fieldsJS, &rank); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if errText.Valid {
			r.Error = errText.String
		}
		if err := json.Unmarshal([]byte(fieldsJS), &r.Fields); err != nil {
			return nil, fmt.Errorf("decoding fields for %s: %w", r.TrialID, err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

type filterEntry struct {
	field  string
	values []string
}

// sortedFilterList returns the filters in field order so the generated SQL
// is deterministic for identical inputs.
func sortedFilterList(filters map[string][]string) []filterEntry {
	fields := make([]string, 0, len(filters))
	for f, values := range filters {
		if len(values) > 0 {
			fields = append(fields, f)
		}
	}
	sort.Strings(fields)

	out := make([]filterEntry, 0, len(fields))
	for _, f := range fields {
		out = append(out, filterEntry{field: f, values: filters[f]})
	}
	return out
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func firstInt(values []string) int {
	if len(values) == 0 {
		return 0
	}
	n, _ := strconv.Atoi(strings.TrimSpace(values[0]))
	return n
}
