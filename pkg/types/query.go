// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Search strategy identifiers reported in a QueryFilterSet.
const (
	StrategySemantic = "semantic"
	StrategyKeyword  = "keyword_fallback"
)

// QueryFilterSet is the structured result of translating a free-text query
// into the canonical filter vocabulary. Produced fresh per query; stateless.
type QueryFilterSet struct {
	// Filters maps canonical field names to matched values. Multi-valued to
	// allow synonym expansion on a single field.
	Filters map[string][]string `json:"filters" yaml:"filters"`

	// QueryIntent describes what the caller is looking for.
	QueryIntent string `json:"query_intent" yaml:"query_intent"`

	// SearchStrategy records which tier produced the filters.
	SearchStrategy string `json:"search_strategy" yaml:"search_strategy"`

	// Confidence is a value in [0,1] reflecting trust in the translation.
	// Degraded (fallback) translations report lower confidence instead of
	// failing.
	Confidence float64 `json:"confidence_score" yaml:"confidence_score"`
}

// Merge overlays explicit caller-supplied filters on top of the parsed
// filters. Explicit filters win on key collision.
func (q *QueryFilterSet) Merge(explicit map[string][]string) {
	if len(explicit) == 0 {
		return
	}
	if q.Filters == nil {
		q.Filters = make(map[string][]string, len(explicit))
	}
	for k, v := range explicit {
		q.Filters[k] = v
	}
}
