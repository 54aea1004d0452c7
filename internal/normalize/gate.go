// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"

	"github.com/pdiddy/trial-engine/internal/vocab"
	"github.com/pdiddy/trial-engine/pkg/types"
)

// Gate fills in every required canonical field and coerces enumerated
// fields onto their closed vocabularies. Running Gate on its own output
// changes nothing. The input map is not modified.
func Gate(attrs types.CanonicalAttributes) types.CanonicalAttributes {
	out := make(types.CanonicalAttributes, len(types.CanonicalFields))
	for _, field := range types.CanonicalFields {
		v := strings.TrimSpace(attrs[field])
		if v == "" || strings.EqualFold(v, "null") || strings.EqualFold(v, "none") {
			out[field] = types.SentinelNA
			continue
		}
		out[field] = v
	}

	out["mono_combo"] = gateMonoCombo(out["mono_combo"])
	out["line_of_therapy"] = gateTherapyLine(out["line_of_therapy"])
	out["geography"] = gateGeography(out["geography"])
	out["sponsor_type"] = gateSponsorType(out["sponsor_type"], out["sponsor"], out["collaborator"])
	for _, f := range []string{"start_date", "primary_completion_date", "study_completion_date"} {
		if out[f] != types.SentinelNA {
			out[f] = Date(out[f])
		}
	}
	return out
}

// gateMonoCombo coerces onto {Mono, Combo}, defaulting to Mono: a trial
// with no discernible combination signal is a monotherapy trial.
func gateMonoCombo(v string) string {
	switch MonoCombo(v) {
	case "Combo":
		return "Combo"
	}
	return "Mono"
}

// gateTherapyLine accepts the closed value set and reclassifies anything
// else. Free text that matches no phrase group passes through unchanged,
// so line_of_therapy is not a strictly closed enum after gating.
func gateTherapyLine(v string) string {
	if v == types.SentinelNA {
		return v
	}
	for _, accepted := range vocab.TherapyLineValues {
		if v == accepted {
			return v
		}
	}
	return TherapyLine(v)
}

// gateGeography accepts the canonical classes and re-derives from a
// country list when the value is a comma-joined literal. Re-deriving a
// literal list yields the same list, so the gate stays idempotent.
func gateGeography(v string) string {
	if v == types.SentinelNA {
		return v
	}
	for _, class := range vocab.GeographyClasses {
		if v == class {
			return v
		}
	}
	if strings.Contains(v, ",") {
		return Geography(strings.Split(v, ","))
	}
	return v
}

func gateSponsorType(v, sponsor, collaborator string) string {
	for _, t := range vocab.SponsorTypes {
		if v == t {
			return v
		}
	}
	var collabs []string
	if collaborator != types.SentinelNA {
		collabs = strings.Split(collaborator, ",")
	}
	if sponsor == types.SentinelNA {
		sponsor = ""
	}
	if sponsor == "" && len(collabs) == 0 {
		return types.SentinelNotDetermined
	}
	return SponsorType(sponsor, collabs)
}
