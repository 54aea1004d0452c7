// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"strings"

	"github.com/pdiddy/trial-engine/internal/vocab"
	"github.com/pdiddy/trial-engine/pkg/types"
)

// Fallback extracts filters by keyword matching against the vocabulary
// tables. Each filter category contributes at most one value. Confidence is
// 0.7 when any filter was extracted and 0.3 otherwise; empty input yields
// an empty filter set, never an error.
func Fallback(queryText string) types.QueryFilterSet {
	lower := strings.ToLower(queryText)
	filters := make(map[string][]string)

	if disease, ok := vocab.Diseases.Lookup(lower); ok {
		filters["indication"] = []string{disease}
	}
	if drug, ok := vocab.Drugs.Lookup(lower); ok {
		filters["primary_drug"] = []string{drug}
	}
	if phase, ok := vocab.Phases.Lookup(lower); ok {
		filters["trial_phase"] = []string{phase}
	}
	if status, ok := vocab.Statuses.Lookup(lower); ok {
		filters["trial_status"] = []string{status}
	}

	switch {
	case strings.Contains(lower, "global"):
		filters["geography"] = []string{"Global"}
	case strings.Contains(lower, "international"):
		filters["geography"] = []string{"International"}
	case strings.Contains(lower, "china"):
		filters["geography"] = []string{"China only"}
	}

	switch {
	case strings.Contains(lower, "large"):
		filters["enrollment_min"] = []string{"100"}
	case strings.Contains(lower, "small"):
		filters["enrollment_max"] = []string{"50"}
	}

	if line, ok := vocab.MatchFirst(vocab.TherapyLines, lower); ok {
		filters["line_of_therapy"] = []string{line}
	}

	switch {
	case strings.Contains(lower, "industry"), strings.Contains(lower, "pharma company"), strings.Contains(lower, "commercial"):
		filters["sponsor_type"] = []string{"Industry Only"}
	case strings.Contains(lower, "academic"), strings.Contains(lower, "university"):
		filters["sponsor_type"] = []string{"Academic Only"}
	}

	// Time-period phrasing maps onto status when no status matched directly.
	if _, ok := filters["trial_status"]; !ok {
		switch {
		case strings.Contains(lower, "recent"), strings.Contains(lower, "new"), strings.Contains(lower, "ongoing"):
			filters["trial_status"] = []string{"Recruiting"}
		case strings.Contains(lower, "finished"), strings.Contains(lower, "past"):
			filters["trial_status"] = []string{"Completed"}
		}
	}

	confidence := 0.3
	if len(filters) > 0 {
		confidence = 0.7
	}

	return types.QueryFilterSet{
		Filters:        filters,
		QueryIntent:    strings.TrimSpace(queryText),
		SearchStrategy: types.StrategyKeyword,
		Confidence:     confidence,
	}
}
