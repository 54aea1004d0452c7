// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize maps raw extraction attributes onto the canonical
// vocabulary, one rule family per field. Rules apply in declaration order
// and the first match wins, except mechanism-of-action rewriting, which is
// cumulative. Normalization never fails: an unrecognized value passes
// through unchanged.
package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/trial-engine/internal/vocab"
	"github.com/pdiddy/trial-engine/pkg/types"
)

// parenthetical matches a brand-name annotation following a primary token,
// e.g. "pembrolizumab (Keytruda)".
var parenthetical = regexp.MustCompile(`^(.*?\S)\s*\(.*\)\s*$`)

// DrugName strips parenthetical brand-name annotations and trims whitespace.
func DrugName(s string) string {
	s = strings.TrimSpace(s)
	if m := parenthetical.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// MoA rewrites recognized mechanism-of-action phrasings into the canonical
// forms (Anti-<Target>, <Target> inhibitor, Anti-<T1> × <T2>). Multiple
// rules may fire on the same string.
func MoA(s string) string {
	return vocab.Apply(vocab.MoARewrites, strings.TrimSpace(s))
}

// Modality rewrites long-form modality descriptions to short codes, then
// applies drug-name suffix rules. A recognized suffix overrides whatever
// modality value was present.
func Modality(modality, drugName string) string {
	out := strings.TrimSpace(modality)
	if canonical, ok := vocab.Modalities.Lookup(out); ok {
		out = canonical
	}
	drug := strings.ToLower(strings.TrimSpace(drugName))
	for _, rule := range vocab.DrugSuffixModalities {
		if strings.HasSuffix(drug, rule.Suffix) {
			return rule.Modality
		}
	}
	return out
}

// Route maps a route-of-administration phrase to its short canonical code.
// A route is never inferred: no match means passthrough.
func Route(s string) string {
	if canonical, ok := vocab.MatchFirst(vocab.Routes, s); ok {
		return canonical
	}
	return s
}

// lineQualifier1L and lineQualifier2L detect a line qualifier co-occurring
// with a maintenance phrase.
var (
	lineQualifier1L = regexp.MustCompile(`(?i)\b1l\b|first`)
	lineQualifier2L = regexp.MustCompile(`(?i)\b2l\b|second`)
)

// TherapyLine classifies free text against the ordered line-of-therapy
// phrase groups. Maintenance is further split into 1L-/2L-Maintenance when
// a line qualifier co-occurs.
func TherapyLine(s string) string {
	canonical, ok := vocab.MatchFirst(vocab.TherapyLines, s)
	if !ok {
		return s
	}
	if canonical == "Maintenance" {
		switch {
		case lineQualifier1L.MatchString(s):
			return "1L-Maintenance"
		case lineQualifier2L.MatchString(s):
			return "2L-Maintenance"
		}
	}
	return canonical
}

// Geography classifies the distinct countries of a trial: all four
// reference regions present means Global; Europe plus at least one other
// country means International; only China/Taiwan (at most two countries)
// means China only; anything else is the literal sorted country list.
func Geography(countries []string) string {
	distinct := make(map[string]bool, len(countries))
	var us, eu, japan, china bool
	allChina := true
	for _, c := range countries {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		distinct[c] = true
		lower := strings.ToLower(c)
		switch {
		case member(vocab.USCountries, lower):
			us = true
		case member(vocab.EUCountries, lower):
			eu = true
		case member(vocab.JapanCountries, lower):
			japan = true
		}
		if member(vocab.ChinaCountries, lower) {
			china = true
		} else {
			allChina = false
		}
	}
	if len(distinct) == 0 {
		return types.SentinelNotAvailable
	}
	switch {
	case us && eu && japan && china:
		return "Global"
	case eu && len(distinct) > 1:
		return "International"
	case china && allChina && len(distinct) <= 2:
		return "China only"
	}
	sorted := make([]string, 0, len(distinct))
	for c := range distinct {
		sorted = append(sorted, c)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}

func member(set []string, lower string) bool {
	for _, s := range set {
		if s == lower {
			return true
		}
	}
	return false
}

// SponsorType classifies the sponsor organization and collaborators against
// the industry and academic name pattern sets.
func SponsorType(sponsor string, collaborators []string) string {
	sponsorIndustry := vocab.MatchAny(vocab.IndustryPatterns, sponsor)
	sponsorAcademic := vocab.MatchAny(vocab.AcademicPatterns, sponsor)

	var collabIndustry, collabAcademic bool
	for _, c := range collaborators {
		if vocab.MatchAny(vocab.IndustryPatterns, c) {
			collabIndustry = true
		}
		if vocab.MatchAny(vocab.AcademicPatterns, c) {
			collabAcademic = true
		}
	}

	switch {
	case sponsorIndustry && !sponsorAcademic && !collabAcademic:
		return "Industry Only"
	case sponsorAcademic && !sponsorIndustry && !collabIndustry:
		return "Academic Only"
	case (sponsorIndustry && collabAcademic) || (sponsorAcademic && collabIndustry):
		return "Industry-Academic Collaboration"
	case sponsorIndustry:
		return "Industry Only"
	case sponsorAcademic:
		return "Academic Only"
	}
	return types.SentinelNotDetermined
}

var (
	canonicalDate = regexp.MustCompile(`^\d{2}-\d{2}-\d{2}$`)
	looseDate     = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})`)
)

// Date re-emits a date as YY-MM-DD. Already-canonical values and ISO dates
// are accepted; otherwise a loose (M)(D)(YYYY|YY) pattern is extracted,
// truncating a 4-digit year to its last two digits. Unparsable input
// passes through unchanged.
func Date(s string) string {
	s = strings.TrimSpace(s)
	if canonicalDate.MatchString(s) {
		return s
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("06-01-02")
	}
	if m := looseDate.FindStringSubmatch(s); m != nil {
		month, day, year := pad2(m[1]), pad2(m[2]), m[3]
		if len(year) == 4 {
			year = year[2:]
		}
		return fmt.Sprintf("%s-%s-%s", year, month, day)
	}
	return s
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// msiToken and dmmrToken detect biomarker variants that merge into one
// joined label when they co-occur. msiSegment swallows an adjacent list
// separator or connector so the removal leaves no dangling "or" or comma.
var (
	msiToken   = regexp.MustCompile(`(?i)\bMSI-?H\b`)
	dmmrToken  = regexp.MustCompile(`(?i)\bdMMR\b`)
	msiSegment = regexp.MustCompile(`(?i)(?:\s*(?:,|;|\+|\band\b|\bor\b))?\s*\bMSI-?H\b\s*(?:(?:,|;|\+|\band\b|\bor\b)\s*)?`)
	joined     = "dMMR/MSI-H"
)

// Biomarkers canonicalizes known biomarker synonyms and merges recognized
// co-occurring variants into a single joined label.
func Biomarkers(s string) string {
	out := vocab.Apply(vocab.BiomarkerRewrites, s)
	if strings.Contains(out, joined) {
		return out
	}
	if msiToken.MatchString(out) && dmmrToken.MatchString(out) {
		// Collapse separately listed variants into the joined form. The
		// standalone MSI-H tokens go first so the rewrite cannot touch the
		// inserted label.
		out = msiSegment.ReplaceAllString(out, " ")
		out = dmmrToken.ReplaceAllString(out, joined)
		out = strings.Trim(strings.Join(strings.Fields(out), " "), " ,;+")
	}
	return out
}

// Stage classifies stage-of-disease phrasing into the coarse stage buckets.
func Stage(s string) string {
	if canonical, ok := vocab.MatchFirst(vocab.StageGroups, s); ok {
		return canonical
	}
	return s
}

// Phase maps a raw phase token onto the canonical phase vocabulary.
func Phase(s string) string {
	if canonical, ok := vocab.Phases.Lookup(s); ok {
		return canonical
	}
	return s
}

// Status maps a raw status token onto the canonical status vocabulary.
func Status(s string) string {
	if canonical, ok := vocab.Statuses.Lookup(s); ok {
		return canonical
	}
	return s
}

// MonoCombo folds mono/combo phrasing onto the two canonical values,
// leaving anything else for the validation gate to default.
func MonoCombo(s string) string {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "combo"), strings.Contains(lower, "combination"):
		return "Combo"
	case strings.Contains(lower, "mono"), strings.Contains(lower, "single agent"):
		return "Mono"
	}
	return s
}

// Attributes normalizes a full raw extraction into canonical attributes.
// Fields with no rule family pass through as their scalar form; list-valued
// fields are joined. Geography and sponsor type are derived from their
// source fields when the extraction did not supply a usable value.
func Attributes(raw types.RawExtraction) types.CanonicalAttributes {
	out := make(types.CanonicalAttributes, len(types.CanonicalFields))
	for _, field := range types.CanonicalFields {
		v, ok := raw[field]
		if !ok || v.IsBlank() {
			continue
		}
		out[field] = normalizeField(field, v, raw)
	}

	// Geography derives from the country list whenever one is present;
	// both paths must agree on the same classification.
	if countries := raw["trial_countries"].Strings(); len(countries) > 0 {
		out["geography"] = Geography(splitCountries(countries))
	}

	if _, ok := out["sponsor_type"]; !ok {
		sponsor := raw["sponsor"].String()
		collabs := raw["collaborator"].Strings()
		if sponsor != "" || len(collabs) > 0 {
			out["sponsor_type"] = SponsorType(sponsor, splitCountries(collabs))
		}
	}

	return out
}

func normalizeField(field string, v types.RawValue, raw types.RawExtraction) string {
	s := v.String()
	switch field {
	case "primary_drug", "combination_partner":
		return DrugName(s)
	case "primary_drug_moa", "moa_of_combination", "moa_of_experimental_regimen":
		return MoA(s)
	case "primary_drug_modality":
		return Modality(s, raw["primary_drug"].String())
	case "primary_drug_roa":
		return Route(s)
	case "line_of_therapy":
		return TherapyLine(s)
	case "sponsor_type":
		if isSponsorType(s) {
			return s
		}
		return SponsorType(raw["sponsor"].String(), raw["collaborator"].Strings())
	case "start_date", "primary_completion_date", "study_completion_date":
		return Date(s)
	case "biomarker_mutations", "biomarker_wildtype":
		return Biomarkers(s)
	case "stage_of_disease":
		return Stage(s)
	case "trial_phase":
		return Phase(s)
	case "trial_status":
		return Status(s)
	case "mono_combo":
		return MonoCombo(s)
	case "trial_countries":
		return strings.Join(splitCountries(v.Strings()), ", ")
	}
	return strings.TrimSpace(s)
}

func isSponsorType(s string) bool {
	for _, t := range vocab.SponsorTypes {
		if s == t {
			return true
		}
	}
	return false
}

// splitCountries flattens comma-joined entries inside a list, so both
// ["US, Japan"] and ["US","Japan"] yield the same country set.
func splitCountries(entries []string) []string {
	var out []string
	for _, e := range entries {
		for _, part := range strings.Split(e, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
