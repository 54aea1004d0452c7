// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package decompose decides whether one trial yields one analysis row or
// several. An ordered decision list is evaluated top to bottom and the
// first criterion that fires is applied alone; criteria never combine.
// Identical attributes and document signals always yield the identical
// ordered row set.
package decompose

import (
	"regexp"
	"strings"

	"github.com/pdiddy/trial-engine/internal/vocab"
	"github.com/pdiddy/trial-engine/pkg/types"
)

var (
	monoSignal  = regexp.MustCompile(`(?i)monotherapy|single[\s-]?agent|\balone\b`)
	comboSignal = regexp.MustCompile(`(?i)combination|\bplus\b|\+`)

	// partnerAfterPlus captures the drug name following a "+" in an arm
	// label like "DrugX + DrugY".
	partnerAfterPlus = regexp.MustCompile(`\+\s*([A-Za-z][\w-]*(?:\s+[A-Za-z][\w-]*)*)`)

	// partnerAfterWith captures the partner in "in combination with DrugY".
	partnerAfterWith = regexp.MustCompile(`(?i)in combination with\s+([A-Za-z][\w-]*(?:\s+[A-Za-z][\w-]*)*)`)
)

// Rows produces the ordered analysis row set for one trial.
func Rows(trialID string, attrs types.CanonicalAttributes, sig types.DocumentSignals) []types.AnalysisRow {
	armText := append(append([]string{}, sig.ArmTitles...), sig.ArmDescriptions...)

	if hasSignal(armText, monoSignal) && hasSignal(armText, comboSignal) {
		return monoComboRows(trialID, attrs, armText)
	}

	if attrs["mono_combo"] == "Combo" && strings.Contains(attrs["combination_partner"], ",") {
		return partnerRows(trialID, attrs, splitList(attrs["combination_partner"]))
	}

	if lines := vocab.MatchAll(vocab.TherapyLines, sig.EligibilityText); len(lines) > 1 {
		rows := make([]types.AnalysisRow, 0, len(lines))
		for _, line := range lines {
			fields := attrs.Clone()
			fields["line_of_therapy"] = line
			rows = append(rows, row(trialID, "lot:"+line, fields))
		}
		return rows
	}

	if routes := interventionRoutes(sig.InterventionDescriptions); len(routes) > 1 {
		rows := make([]types.AnalysisRow, 0, len(routes))
		for _, roa := range routes {
			fields := attrs.Clone()
			fields["primary_drug_roa"] = roa
			rows = append(rows, row(trialID, "roa:"+roa, fields))
		}
		return rows
	}

	return []types.AnalysisRow{row(trialID, types.VariantNone, attrs.Clone())}
}

// monoComboRows emits one monotherapy row with the combination fields
// cleared, then one combination row per detected partner. When no partner
// can be identified the combination collapses to a single generic Combo
// row with the extracted combination fields left as-is.
func monoComboRows(trialID string, attrs types.CanonicalAttributes, armText []string) []types.AnalysisRow {
	partners := detectPartners(attrs, armText)
	primary := attrs["primary_drug"]

	mono := attrs.Clone()
	mono["mono_combo"] = "Mono"
	mono["combination_partner"] = types.SentinelNA
	mono["moa_of_combination"] = types.SentinelNA
	mono["experimental_regimen"] = primary
	mono["moa_of_experimental_regimen"] = attrs["primary_drug_moa"]
	rows := []types.AnalysisRow{row(trialID, "mono", mono)}

	if len(partners) == 0 {
		combo := attrs.Clone()
		combo["mono_combo"] = "Combo"
		return append(rows, row(trialID, "combo", combo))
	}

	for _, partner := range partners {
		rows = append(rows, comboRow(trialID, attrs, partner))
	}
	return rows
}

func partnerRows(trialID string, attrs types.CanonicalAttributes, partners []string) []types.AnalysisRow {
	rows := make([]types.AnalysisRow, 0, len(partners))
	for _, partner := range partners {
		rows = append(rows, comboRow(trialID, attrs, partner))
	}
	return rows
}

func comboRow(trialID string, attrs types.CanonicalAttributes, partner string) types.AnalysisRow {
	fields := attrs.Clone()
	fields["mono_combo"] = "Combo"
	fields["combination_partner"] = partner
	fields["experimental_regimen"] = attrs["primary_drug"] + " + " + partner
	return row(trialID, "combo:"+partner, fields)
}

// detectPartners prefers the extracted combination-partner field; when that
// is absent it falls back to parsing the arm text. The primary drug itself
// is never a partner. Order of first appearance is preserved.
func detectPartners(attrs types.CanonicalAttributes, armText []string) []string {
	if p := attrs["combination_partner"]; p != "" && p != types.SentinelNA {
		return splitList(p)
	}

	primary := strings.ToLower(attrs["primary_drug"])
	var partners []string
	seen := make(map[string]bool)
	for _, text := range armText {
		for _, re := range []*regexp.Regexp{partnerAfterPlus, partnerAfterWith} {
			for _, m := range re.FindAllStringSubmatch(text, -1) {
				partner := strings.TrimSpace(m[1])
				lower := strings.ToLower(partner)
				if partner == "" || lower == primary || seen[lower] {
					continue
				}
				seen[lower] = true
				partners = append(partners, partner)
			}
		}
	}
	return partners
}

// interventionRoutes collects the distinct routes matched across all
// intervention descriptions, in route declaration order.
func interventionRoutes(descriptions []string) []string {
	matched := make(map[string]bool)
	for _, d := range descriptions {
		for _, roa := range vocab.MatchAll(vocab.Routes, d) {
			matched[roa] = true
		}
	}
	var out []string
	for _, g := range vocab.Routes {
		if matched[g.Canonical] {
			out = append(out, g.Canonical)
		}
	}
	return out
}

func hasSignal(texts []string, re *regexp.Regexp) bool {
	for _, t := range texts {
		if re.MatchString(t) {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func row(trialID, variant string, fields types.CanonicalAttributes) types.AnalysisRow {
	fields["trial_id"] = trialID
	return types.AnalysisRow{TrialID: trialID, Variant: variant, Fields: fields}
}
