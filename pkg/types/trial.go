// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the trial-engine pipeline:
// raw extraction payloads, canonical attribute maps, analysis rows, query
// filter sets, and per-stage configuration.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Sentinel values used in place of null or absent data.
const (
	SentinelNA            = "N/A"
	SentinelNotAvailable  = "Not Available"
	SentinelNotDetermined = "Not Determined"
)

// CanonicalFields is the fixed set of attribute names an analysis row
// carries, in dataset column order. Every AnalysisRow holds a value for
// each of these after validation.
var CanonicalFields = []string{
	"nct_id",
	"trial_id",
	"trial_name",
	"trial_phase",
	"trial_status",
	"primary_drug",
	"primary_drug_moa",
	"primary_drug_target",
	"primary_drug_modality",
	"indication",
	"primary_drug_roa",
	"mono_combo",
	"combination_partner",
	"moa_of_combination",
	"experimental_regimen",
	"moa_of_experimental_regimen",
	"line_of_therapy",
	"biomarker_mutations",
	"biomarker_stratification",
	"biomarker_wildtype",
	"histology",
	"prior_treatment",
	"stage_of_disease",
	"patient_enrollment",
	"sponsor_type",
	"sponsor",
	"collaborator",
	"developer",
	"start_date",
	"primary_completion_date",
	"study_completion_date",
	"primary_endpoints",
	"secondary_endpoints",
	"patient_population",
	"inclusion_criteria",
	"exclusion_criteria",
	"trial_countries",
	"geography",
	"investigator_name",
	"investigator_designation",
	"investigator_qualification",
	"investigator_location",
	"history_of_changes",
}

// RawValue is a loosely typed attribute value as returned by the extraction
// collaborator: a string or a list of strings. Numbers and nulls in the
// collaborator's JSON are tolerated and folded into the string form, so
// downstream components never branch on ambiguous types.
type RawValue struct {
	// Str holds the scalar form. Empty when IsList is true.
	Str string

	// List holds the list form. Nil when IsList is false.
	List []string

	// IsList reports which form is populated.
	IsList bool
}

// String returns the scalar form, joining list values with ", ".
func (v RawValue) String() string {
	if v.IsList {
		return strings.Join(v.List, ", ")
	}
	return v.Str
}

// Strings returns the list form, wrapping a scalar into a single element.
// Empty scalars yield a nil slice.
func (v RawValue) Strings() []string {
	if v.IsList {
		return v.List
	}
	if v.Str == "" {
		return nil
	}
	return []string{v.Str}
}

// IsBlank reports whether the value carries no usable content: empty,
// empty list, or one of the absence sentinels.
func (v RawValue) IsBlank() bool {
	s := strings.TrimSpace(v.String())
	return s == "" || s == SentinelNA || s == SentinelNotAvailable || strings.EqualFold(s, "null") || strings.EqualFold(s, "none")
}

// UnmarshalJSON accepts a string, number, boolean, null, or array of any of
// those, normalizing everything into the tagged string-or-list shape.
func (v *RawValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = RawValue{}
	case []any:
		list := make([]string, 0, len(t))
		for _, e := range t {
			list = append(list, scalarString(e))
		}
		*v = RawValue{List: list, IsList: true}
	default:
		*v = RawValue{Str: scalarString(t)}
	}
	return nil
}

// MarshalJSON emits whichever form is populated.
func (v RawValue) MarshalJSON() ([]byte, error) {
	if v.IsList {
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Str)
}

func scalarString(e any) string {
	switch t := e.(type) {
	case string:
		return t
	case float64:
		// JSON numbers arrive as float64; enrollment counts are integral.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// RawExtraction is the attribute map produced by the extraction collaborator
// for one trial document. Keys are a subset of CanonicalFields; any value
// may be absent, blank, or a sentinel. An "error" key marks a failed
// extraction.
type RawExtraction map[string]RawValue

// Failed reports whether the collaborator tagged this extraction as failed,
// returning the error message when present.
func (r RawExtraction) Failed() (string, bool) {
	v, ok := r["error"]
	if !ok || v.IsBlank() {
		return "", false
	}
	return v.String(), true
}

// CanonicalAttributes is a fully normalized attribute map: every canonical
// field present, every value non-empty after the validation gate.
type CanonicalAttributes map[string]string

// Clone returns an independent copy.
func (c CanonicalAttributes) Clone() CanonicalAttributes {
	out := make(CanonicalAttributes, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// AnalysisRow is one persistable, immutable record: a trial or one
// decomposed variant of a trial. Rows are produced fresh on each analysis
// run and never mutated in place.
type AnalysisRow struct {
	// TrialID links the row back to its source trial (NCT id).
	TrialID string `json:"trial_id" yaml:"trial_id"`

	// Variant names the split axis that produced this row
	// (e.g. "mono", "combo", "lot:1L", "roa:Oral"), or "none".
	Variant string `json:"row_variant" yaml:"row_variant"`

	// Fields holds the canonical attributes for this row.
	Fields CanonicalAttributes `json:"fields" yaml:"fields"`

	// Error records an extraction failure message. When set, only
	// identification fields are populated.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// VariantNone marks a row that was not split.
const VariantNone = "none"

// DocumentSignals carries the structural signals from the source trial
// document that drive row decomposition, separate from the canonical
// attributes.
type DocumentSignals struct {
	// ArmTitles lists arm/cohort group titles.
	ArmTitles []string `json:"arm_titles" yaml:"arm_titles"`

	// ArmDescriptions lists arm/cohort group descriptions, index-aligned
	// with ArmTitles where both are present.
	ArmDescriptions []string `json:"arm_descriptions" yaml:"arm_descriptions"`

	// EligibilityText is the full eligibility criteria text.
	EligibilityText string `json:"eligibility_text" yaml:"eligibility_text"`

	// InterventionDescriptions lists intervention descriptions, used for
	// route-of-administration splits.
	InterventionDescriptions []string `json:"intervention_descriptions" yaml:"intervention_descriptions"`
}
