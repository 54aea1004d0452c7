// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"

	"github.com/pdiddy/trial-engine/pkg/types"
)

func TestDrugName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"brand annotation stripped", "pembrolizumab (Keytruda)", "pembrolizumab"},
		{"no annotation", "nivolumab", "nivolumab"},
		{"whitespace trimmed", "  olaparib  ", "olaparib"},
		{"multiword with annotation", "enfortumab vedotin (Padcev)", "enfortumab vedotin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DrugName(tt.in); got != tt.want {
				t.Errorf("DrugName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoA(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"pd1 inhibitor", "PD-1 inhibitor", "Anti-PD-1"},
		{"pdl1 antibody", "PDL1 antibody", "Anti-PD-L1"},
		{"parpi shorthand", "PARPi", "PARP inhibitor"},
		{"her2 antibody", "HER2 antibody", "Anti-HER2"},
		{"bispecific cross", "anti-PD-1 x CTLA-4", "Anti-PD-1 × CTLA-4"},
		{"already canonical", "Anti-PD-1", "Anti-PD-1"},
		{"unrecognized passthrough", "GLP-1 receptor agonist", "GLP-1 receptor agonist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MoA(tt.in); got != tt.want {
				t.Errorf("MoA(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestModality(t *testing.T) {
	tests := []struct {
		name     string
		modality string
		drug     string
		want     string
	}{
		{"long form to short code", "antibody-drug conjugate", "sacituzumab govitecan", "ADC"},
		{"mab suffix overrides", "targeted therapy", "pembrolizumab", "Monoclonal antibody"},
		{"tinib suffix overrides", "unknown", "osimertinib", "Small molecule"},
		{"suffix wins over long form", "antibody-drug conjugate payload", "trastuzumab", "Monoclonal antibody"},
		{"no rule passthrough", "peptide", "semaglutide", "peptide"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Modality(tt.modality, tt.drug); got != tt.want {
				t.Errorf("Modality(%q, %q) = %q, want %q", tt.modality, tt.drug, got, tt.want)
			}
		})
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"long form", "intravenous infusion", "Intravenous (IV)"},
		{"uppercase abbreviation", "IV every 3 weeks", "Intravenous (IV)"},
		{"oral", "oral tablet", "Oral"},
		{"lowercase it ignored", "take it daily", "take it daily"},
		{"never inferred", "once daily", "once daily"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Route(tt.in); got != tt.want {
				t.Errorf("Route(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTherapyLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"first line", "first-line treatment", "1L"},
		{"treatment naive", "treatment-naive patients", "1L"},
		{"second line", "second line", "2L"},
		{"relapsed refractory", "relapsed or refractory disease", "2L+"},
		{"neoadjuvant", "neoadjuvant setting", "Neoadjuvant"},
		{"plain maintenance", "maintenance therapy", "Maintenance"},
		{"first line maintenance", "maintenance after first-line therapy", "1L-Maintenance"},
		{"second line maintenance", "2L maintenance", "2L-Maintenance"},
		{"passthrough", "any line", "any line"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TherapyLine(tt.in); got != tt.want {
				t.Errorf("TherapyLine(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGeography(t *testing.T) {
	tests := []struct {
		name      string
		countries []string
		want      string
	}{
		{"all four regions", []string{"United States", "Germany", "Japan", "China"}, "Global"},
		{"europe plus other", []string{"France", "Brazil"}, "International"},
		{"china alone", []string{"China"}, "China only"},
		{"china and taiwan", []string{"China", "Taiwan"}, "China only"},
		{"china plus third country", []string{"China", "Taiwan", "Australia"}, "Australia, China, Taiwan"},
		{"literal sorted list", []string{"Brazil", "Australia"}, "Australia, Brazil"},
		{"single eu country is not international", []string{"Spain"}, "Spain"},
		{"empty", nil, types.SentinelNotAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Geography(tt.countries); got != tt.want {
				t.Errorf("Geography(%v) = %q, want %q", tt.countries, got, tt.want)
			}
		})
	}
}

func TestSponsorType(t *testing.T) {
	tests := []struct {
		name          string
		sponsor       string
		collaborators []string
		want          string
	}{
		{"industry only", "Acme Pharma Inc.", nil, "Industry Only"},
		{"academic only", "University of Toronto", nil, "Academic Only"},
		{"industry with academic collaborator", "Acme Therapeutics", []string{"Mayo Clinic"}, "Industry-Academic Collaboration"},
		{"academic with industry collaborator", "City Hospital", []string{"Acme Biotech"}, "Industry-Academic Collaboration"},
		{"clinic is not inc", "Cleveland Clinic", nil, "Academic Only"},
		{"unmatched", "Unknown Org LLC", nil, types.SentinelNotDetermined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SponsorType(tt.sponsor, tt.collaborators); got != tt.want {
				t.Errorf("SponsorType(%q, %v) = %q, want %q", tt.sponsor, tt.collaborators, got, tt.want)
			}
		})
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"iso", "2024-03-05", "24-03-05"},
		{"slash with 4-digit year", "3/5/2024", "24-03-05"},
		{"slash with 2-digit year", "12/31/25", "25-12-31"},
		{"already canonical", "24-03-05", "24-03-05"},
		{"unparsable passthrough", "March 2024", "March 2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Date(tt.in); got != tt.want {
				t.Errorf("Date(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBiomarkers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"erbb2 to her2", "ErbB2 positive", "HER2 positive"},
		{"pdl1 spacing", "PD L1 expression", "PD-L1 expression"},
		{"msi and dmmr merge", "MSI-H and dMMR", "dMMR/MSI-H"},
		{"comma separated merge", "MSI-H, dMMR", "dMMR/MSI-H"},
		{"or separated merge", "dMMR or MSI-H", "dMMR/MSI-H"},
		{"merge keeps other biomarkers", "dMMR, MSI-H, TMB-high", "dMMR/MSI-H TMB-high"},
		{"joined stays joined", "dMMR/MSI-H", "dMMR/MSI-H"},
		{"passthrough", "KRAS G12C", "KRAS G12C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Biomarkers(tt.in); got != tt.want {
				t.Errorf("Biomarkers(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"locally advanced bladder cancer", "Stage 3/4"},
		{"metastatic disease", "Stage 4"},
		{"early-stage breast cancer", "Stage 1/2"},
		{"unstaged", "unstaged"},
	}
	for _, tt := range tests {
		if got := Stage(tt.in); got != tt.want {
			t.Errorf("Stage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPhaseAndStatus(t *testing.T) {
	if got := Phase("PHASE2_PHASE3"); got != "Phase 2/3" {
		t.Errorf("Phase = %q, want Phase 2/3", got)
	}
	if got := Phase("Phase III"); got != "Phase 3" {
		t.Errorf("Phase = %q, want Phase 3", got)
	}
	if got := Status("NOT_YET_RECRUITING"); got != "Not yet recruiting" {
		t.Errorf("Status = %q, want Not yet recruiting", got)
	}
	if got := Status("currently recruiting"); got != "Recruiting" {
		t.Errorf("Status = %q, want Recruiting", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	// Running any field rule on its own output changes nothing.
	families := []struct {
		name   string
		fn     func(string) string
		inputs []string
	}{
		{"drug name", DrugName, []string{"pembrolizumab (Keytruda)", "DrugX"}},
		{"moa", MoA, []string{"PD-1 inhibitor", "CD3 bispecific targeting CD20", "anti-PD-1 x CTLA-4", "tubulin disruptor"}},
		{"route", Route, []string{"intravenous infusion", "oral tablet", "unknown route"}},
		{"therapy line", TherapyLine, []string{"first-line treatment", "maintenance after first line", "relapsed or refractory", "dose escalation"}},
		{"date", Date, []string{"2024-03-05", "3/5/2024", "March 2024"}},
		{"biomarkers", Biomarkers, []string{"MSI-H and dMMR", "MSI-H, dMMR", "dMMR or MSI-H", "ErbB2 positive", "KRAS G12C"}},
		{"stage", Stage, []string{"metastatic disease", "locally advanced", "early-stage", "unstaged"}},
		{"phase", Phase, []string{"phase 1/2", "PHASE III", "expanded access"}},
		{"status", Status, []string{"not_yet_recruiting", "enrolling", "unknown status"}},
		{"mono combo", MonoCombo, []string{"combination", "single agent", "unclear"}},
	}
	for _, fam := range families {
		t.Run(fam.name, func(t *testing.T) {
			for _, in := range fam.inputs {
				once := fam.fn(in)
				if twice := fam.fn(once); twice != once {
					t.Errorf("%s(%q) = %q, but reapplying gives %q", fam.name, in, once, twice)
				}
			}
		})
	}

	for _, in := range []string{"antibody drug conjugate", "novel agent"} {
		once := Modality(in, "drugamab")
		if twice := Modality(once, "drugamab"); twice != once {
			t.Errorf("Modality(%q) = %q, but reapplying gives %q", in, once, twice)
		}
	}
}

func TestAttributes(t *testing.T) {
	raw := types.RawExtraction{
		"nct_id":           {Str: "NCT01234567"},
		"primary_drug":     {Str: "pembrolizumab (Keytruda)"},
		"primary_drug_moa": {Str: "PD-1 inhibitor"},
		"trial_phase":      {Str: "PHASE3"},
		"trial_status":     {Str: "RECRUITING"},
		"trial_countries":  {List: []string{"United States", "Germany", "Japan", "China"}, IsList: true},
		"sponsor":          {Str: "Acme Pharma Inc."},
		"start_date":       {Str: "2024-03-05"},
		"histology":        {Str: "N/A"},
	}
	got := Attributes(raw)

	checks := map[string]string{
		"primary_drug":     "pembrolizumab",
		"primary_drug_moa": "Anti-PD-1",
		"trial_phase":      "Phase 3",
		"trial_status":     "Recruiting",
		"geography":        "Global",
		"sponsor_type":     "Industry Only",
		"start_date":       "24-03-05",
	}
	for field, want := range checks {
		if got[field] != want {
			t.Errorf("Attributes[%q] = %q, want %q", field, got[field], want)
		}
	}
	if _, ok := got["histology"]; ok {
		t.Error("sentinel-valued field should be absent before the gate")
	}
}

func TestAttributesModalityFromSuffix(t *testing.T) {
	raw := types.RawExtraction{
		"primary_drug":          {Str: "trastuzumab"},
		"primary_drug_modality": {Str: "targeted agent"},
	}
	got := Attributes(raw)
	if got["primary_drug_modality"] != "Monoclonal antibody" {
		t.Errorf("modality = %q, want Monoclonal antibody", got["primary_drug_modality"])
	}
}
