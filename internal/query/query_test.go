// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/pdiddy/trial-engine/pkg/types"
)

// failingInterpreter always errors, forcing the fallback tier.
type failingInterpreter struct{}

func (failingInterpreter) Interpret(_ context.Context, _ string) (types.QueryFilterSet, error) {
	return types.QueryFilterSet{}, fmt.Errorf("backend unavailable")
}

// fixedInterpreter returns a canned filter set.
type fixedInterpreter struct {
	fs types.QueryFilterSet
}

func (f fixedInterpreter) Interpret(_ context.Context, _ string) (types.QueryFilterSet, error) {
	return f.fs, nil
}

func TestTranslateFallsBackOnPrimaryFailure(t *testing.T) {
	fs := Translate(context.Background(), failingInterpreter{}, "recruiting melanoma trials", nil)

	if fs.SearchStrategy != types.StrategyKeyword {
		t.Errorf("strategy = %q, want %q", fs.SearchStrategy, types.StrategyKeyword)
	}
	if got := fs.Filters["indication"]; len(got) != 1 || got[0] != "Melanoma" {
		t.Errorf("indication = %v, want [Melanoma]", got)
	}
	if got := fs.Filters["trial_status"]; len(got) != 1 || got[0] != "Recruiting" {
		t.Errorf("trial_status = %v, want [Recruiting]", got)
	}
}

func TestTranslateNilPrimaryUsesFallback(t *testing.T) {
	fs := Translate(context.Background(), nil, "phase 3 trials", nil)
	if fs.SearchStrategy != types.StrategyKeyword {
		t.Errorf("strategy = %q, want %q", fs.SearchStrategy, types.StrategyKeyword)
	}
}

func TestTranslateExplicitFiltersWin(t *testing.T) {
	primary := fixedInterpreter{fs: types.QueryFilterSet{
		Filters:        map[string][]string{"indication": {"Melanoma"}, "trial_phase": {"Phase 2"}},
		SearchStrategy: types.StrategySemantic,
		Confidence:     0.9,
	}}
	fs := Translate(context.Background(), primary, "melanoma", map[string][]string{
		"trial_phase": {"Phase 3"},
	})

	if got := fs.Filters["trial_phase"]; len(got) != 1 || got[0] != "Phase 3" {
		t.Errorf("trial_phase = %v, want explicit [Phase 3]", got)
	}
	if got := fs.Filters["indication"]; len(got) != 1 || got[0] != "Melanoma" {
		t.Errorf("indication = %v, want [Melanoma]", got)
	}
}

func TestFallbackDrugSynonym(t *testing.T) {
	for _, q := range []string{
		"Show me trials for semaglutide or Ozempic",
		"ozempic studies",
	} {
		fs := Fallback(q)
		if got := fs.Filters["primary_drug"]; len(got) != 1 || got[0] != "semaglutide" {
			t.Errorf("Fallback(%q) primary_drug = %v, want [semaglutide]", q, got)
		}
		if fs.Confidence != 0.7 {
			t.Errorf("Fallback(%q) confidence = %v, want 0.7", q, fs.Confidence)
		}
	}
}

func TestFallbackEmptyInput(t *testing.T) {
	fs := Fallback("")

	if len(fs.Filters) != 0 {
		t.Errorf("filters = %v, want empty", fs.Filters)
	}
	if fs.Confidence != 0.3 {
		t.Errorf("confidence = %v, want 0.3", fs.Confidence)
	}
	if fs.SearchStrategy != types.StrategyKeyword {
		t.Errorf("strategy = %q, want %q", fs.SearchStrategy, types.StrategyKeyword)
	}
}

func TestFallbackCategories(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
		want  string
	}{
		{"phase", "phase 3 lung cancer trials", "trial_phase", "Phase 3"},
		{"status", "completed studies", "trial_status", "Completed"},
		{"geography global", "global trials", "geography", "Global"},
		{"geography china", "trials in china", "geography", "China only"},
		{"large enrollment", "large trials", "enrollment_min", "100"},
		{"small enrollment", "small studies", "enrollment_max", "50"},
		{"line of therapy", "first-line treatment options", "line_of_therapy", "1L"},
		{"industry sponsor", "industry sponsored", "sponsor_type", "Industry Only"},
		{"academic sponsor", "university led trials", "sponsor_type", "Academic Only"},
		{"recent maps to recruiting", "recent trials", "trial_status", "Recruiting"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := Fallback(tt.query)
			if got := fs.Filters[tt.field]; len(got) != 1 || got[0] != tt.want {
				t.Errorf("Fallback(%q)[%q] = %v, want [%s]", tt.query, tt.field, got, tt.want)
			}
		})
	}
}

func TestFallbackOneValuePerCategory(t *testing.T) {
	fs := Fallback("phase 2 or phase 3 melanoma or breast cancer")
	for field, values := range fs.Filters {
		if len(values) != 1 {
			t.Errorf("filter %q has %d values, want 1", field, len(values))
		}
	}
}

func TestFallbackNeverFails(t *testing.T) {
	for _, q := range []string{"", "   ", "!!!", "completely unrelated gibberish xyzzy"} {
		fs := Fallback(q)
		if fs.Filters == nil {
			t.Errorf("Fallback(%q) returned nil filters", q)
		}
		if fs.Confidence != 0.3 && fs.Confidence != 0.7 {
			t.Errorf("Fallback(%q) confidence = %v", q, fs.Confidence)
		}
	}
}
