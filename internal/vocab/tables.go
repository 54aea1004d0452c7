// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vocab

import "regexp"

// Drugs maps canonical (generic) drug names to brand names and spelling
// variants. Used by the query fallback tier; ingestion standardizes drug
// names structurally rather than by dictionary.
var Drugs = Table{
	{"semaglutide", []string{"semaglutide", "ozempic", "wegovy", "rybelsus"}},
	{"tirzepatide", []string{"tirzepatide", "mounjaro", "zepbound"}},
	{"pembrolizumab", []string{"pembrolizumab", "keytruda"}},
	{"nivolumab", []string{"nivolumab", "opdivo"}},
	{"atezolizumab", []string{"atezolizumab", "tecentriq"}},
	{"durvalumab", []string{"durvalumab", "imfinzi"}},
	{"trastuzumab", []string{"trastuzumab", "herceptin"}},
	{"enfortumab vedotin", []string{"enfortumab", "padcev"}},
	{"sacituzumab govitecan", []string{"sacituzumab", "trodelvy"}},
	{"osimertinib", []string{"osimertinib", "tagrisso"}},
	{"olaparib", []string{"olaparib", "lynparza"}},
	{"metformin", []string{"metformin", "glucophage"}},
}

// Diseases maps canonical indication labels to common phrasings.
var Diseases = Table{
	{"Type 2 Diabetes", []string{"type 2 diabetes", "t2dm", "diabetes"}},
	{"Obesity", []string{"obesity", "weight loss", "overweight"}},
	{"Bladder Cancer", []string{"bladder cancer", "urothelial"}},
	{"Breast Cancer", []string{"breast cancer"}},
	{"Non-Small Cell Lung Cancer", []string{"non-small cell lung", "nsclc", "lung cancer"}},
	{"Melanoma", []string{"melanoma"}},
	{"Colorectal Cancer", []string{"colorectal", "crc"}},
	{"Prostate Cancer", []string{"prostate cancer"}},
	{"Pancreatic Cancer", []string{"pancreatic"}},
	{"Multiple Myeloma", []string{"myeloma"}},
	{"Cancer", []string{"cancer", "oncology", "tumor", "carcinoma"}},
}

// Phases maps canonical trial phases to their textual variants. Combined
// phases are declared before single phases so "phase 1/2" does not resolve
// to "Phase 1"; within singles, later phases come first because roman
// numerals nest ("phase iii" contains "phase i").
var Phases = Table{
	{"Phase 2/3", []string{"phase 2/3", "phase ii/iii", "phase2_phase3"}},
	{"Phase 1/2", []string{"phase 1/2", "phase i/ii", "phase1_phase2"}},
	{"Phase 4", []string{"phase 4", "phase iv", "phase4"}},
	{"Phase 3", []string{"phase 3", "phase iii", "phase3"}},
	{"Phase 2", []string{"phase 2", "phase ii", "phase2"}},
	{"Phase 1", []string{"phase 1", "phase i", "phase1", "early phase"}},
}

// Statuses maps canonical trial statuses to their textual variants.
// "Not yet recruiting" precedes "Recruiting" because of substring overlap.
var Statuses = Table{
	{"Not yet recruiting", []string{"not yet recruiting", "not_yet_recruiting"}},
	{"Active, not recruiting", []string{"active, not recruiting", "active_not_recruiting", "ongoing"}},
	{"Recruiting", []string{"recruiting", "enrolling"}},
	{"Completed", []string{"completed"}},
	{"Terminated", []string{"terminated"}},
	{"Suspended", []string{"suspended"}},
	{"Withdrawn", []string{"withdrawn"}},
}

// Geography classification reference sets. Membership tests are exact on
// the country name after trimming, case-insensitively.
var (
	USCountries = []string{"united states", "usa", "u.s.a.", "us"}

	EUCountries = []string{
		"austria", "belgium", "bulgaria", "croatia", "cyprus", "czechia",
		"czech republic", "denmark", "estonia", "finland", "france",
		"germany", "greece", "hungary", "ireland", "italy", "latvia",
		"lithuania", "luxembourg", "malta", "netherlands", "poland",
		"portugal", "romania", "slovakia", "slovenia", "spain", "sweden",
	}

	JapanCountries = []string{"japan"}

	ChinaCountries = []string{"china", "taiwan"}
)

// Canonical geography classes.
var GeographyClasses = []string{"Global", "International", "China only"}

// Sponsor-type name patterns. An organization matching an industry pattern
// is classed as industry; academic likewise. Both classifications feed the
// sponsor/collaborator matrix. Corporate suffixes are word-bounded so
// "Clinic" does not register as "Inc".
var (
	IndustryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)pharma`),
		regexp.MustCompile(`(?i)therapeutics`),
		regexp.MustCompile(`(?i)biotech`),
		regexp.MustCompile(`(?i)biosciences`),
		regexp.MustCompile(`(?i)medicines`),
		regexp.MustCompile(`(?i)\blabs\b`),
		regexp.MustCompile(`(?i)\binc\.?\b`),
		regexp.MustCompile(`(?i)\bcorp\.?\b`),
		regexp.MustCompile(`(?i)\bltd\.?\b`),
		regexp.MustCompile(`(?i)\blimited\b`),
		regexp.MustCompile(`(?i)\bgmbh\b`),
	}

	AcademicPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)university`),
		regexp.MustCompile(`(?i)college`),
		regexp.MustCompile(`(?i)institute`),
		regexp.MustCompile(`(?i)hospital`),
		regexp.MustCompile(`(?i)medical center`),
		regexp.MustCompile(`(?i)clinic\b`),
		regexp.MustCompile(`(?i)foundation`),
		regexp.MustCompile(`(?i)society`),
		regexp.MustCompile(`(?i)association`),
		regexp.MustCompile(`(?i)center for`),
		regexp.MustCompile(`(?i)ministry of`),
		regexp.MustCompile(`(?i)department of`),
	}
)

// MatchAny reports whether any pattern in the set matches s.
func MatchAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// Canonical sponsor types.
var SponsorTypes = []string{
	"Industry Only",
	"Academic Only",
	"Industry-Academic Collaboration",
	"Not Determined",
}

// PhraseGroup pairs a canonical label with the regular expression that
// detects it in free text.
type PhraseGroup struct {
	Canonical string
	Pattern   *regexp.Regexp
}

// MatchFirst returns the canonical label of the first group whose pattern
// matches s.
func MatchFirst(groups []PhraseGroup, s string) (string, bool) {
	for _, g := range groups {
		if g.Pattern.MatchString(s) {
			return g.Canonical, true
		}
	}
	return "", false
}

// MatchAll returns the canonical labels of every group whose pattern
// matches s, in group declaration order.
func MatchAll(groups []PhraseGroup, s string) []string {
	var out []string
	for _, g := range groups {
		if g.Pattern.MatchString(s) {
			out = append(out, g.Canonical)
		}
	}
	return out
}

// TherapyLines is the ordered line-of-therapy phrase grouping. First match
// wins in normalization; decomposition uses all matches.
var TherapyLines = []PhraseGroup{
	{"1L", regexp.MustCompile(`(?i)first[\s-]?line|1st[\s-]?line|treatment[\s-]?na[iï]ve|previously[\s-]?untreated|newly[\s-]?diagnosed`)},
	{"2L", regexp.MustCompile(`(?i)second[\s-]?line|2nd[\s-]?line|one\s+prior\s+therapy|1\s+prior\s+therapy`)},
	{"2L+", regexp.MustCompile(`(?i)third[\s-]?line|3rd[\s-]?line|multiple\s+prior\s+therapies|relapsed|refractory|previously[\s-]?treated`)},
	{"Neoadjuvant", regexp.MustCompile(`(?i)neoadjuvant|pre[\s-]?operative|pre[\s-]?surgical`)},
	{"Adjuvant", regexp.MustCompile(`(?i)adjuvant|post[\s-]?operative|post[\s-]?surgical`)},
	{"Maintenance", regexp.MustCompile(`(?i)maintenance`)},
}

// TherapyLineValues is the closed set of accepted line_of_therapy values.
var TherapyLineValues = []string{
	"1L", "2L", "2L+", "Adjuvant", "Neoadjuvant",
	"Maintenance", "1L-Maintenance", "2L-Maintenance",
}

// Routes is the ordered route-of-administration phrase grouping. The
// abbreviation alternates are uppercase-only and word-bounded so the
// English words "it" and "sc" fragments in prose do not classify as a route.
var Routes = []PhraseGroup{
	{"Intravenous (IV)", regexp.MustCompile(`(?i:intravenous)|\bIV\b`)},
	{"Subcutaneous (SC)", regexp.MustCompile(`(?i:subcutaneous)|\bSC\b`)},
	{"Oral", regexp.MustCompile(`(?i)\boral`)},
	{"Intratumoral (IT)", regexp.MustCompile(`(?i:intratumoral)|\bIT\b`)},
}

// Modalities rewrites long-form modality descriptions to short codes.
var Modalities = Table{
	{"ADC", []string{"antibody-drug conjugate", "antibody drug conjugate"}},
	{"CAR-T", []string{"chimeric antigen receptor", "car-t", "car t"}},
	{"T-cell engager", []string{"t-cell redirecting bispecific", "t cell redirecting bispecific", "t-cell engager"}},
	{"Gene therapy", []string{"gene therapy", "gene-altering", "gene encoding"}},
	{"Radiopharmaceutical", []string{"radiopharmaceutical", "radiolabeled", "radioligand"}},
	{"Cell therapy", []string{"cell therapy", "cell-based therapy", "nk cell"}},
	{"Fusion protein", []string{"fusion protein"}},
	{"Monoclonal antibody", []string{"monoclonal antibody"}},
	{"Small molecule", []string{"small molecule", "kinase inhibitor"}},
}

// DrugSuffixModalities maps drug-name suffixes to modalities. A suffix
// match overrides any modality value already present.
var DrugSuffixModalities = []struct {
	Suffix   string
	Modality string
}{
	{"mab", "Monoclonal antibody"},
	{"tinib", "Small molecule"},
}

// RewriteRule is a pattern→replacement pair applied with regexp
// substitution. Unlike Table lookups, rewrite rules may fire cumulatively
// on the same string.
type RewriteRule struct {
	Pattern *regexp.Regexp
	Replace string
}

// Apply runs every rule against s in order and returns the result.
func Apply(rules []RewriteRule, s string) string {
	for _, r := range rules {
		s = r.Pattern.ReplaceAllString(s, r.Replace)
	}
	return s
}

// MoARewrites standardizes mechanism-of-action phrasing: antibodies to
// "Anti-<Target>", small molecules to "<Target> inhibitor", bispecifics to
// "Anti-<T1> × <T2>".
var MoARewrites = []RewriteRule{
	{regexp.MustCompile(`(?i)\bPARPi\b`), "PARP inhibitor"},
	{regexp.MustCompile(`(?i)PD-?L1\s+(?:inhibitor|blocker|antibody)`), "Anti-PD-L1"},
	{regexp.MustCompile(`(?i)PD-?1\s+(?:inhibitor|blocker|antibody)`), "Anti-PD-1"},
	{regexp.MustCompile(`(?i)CTLA-?4\s+(?:inhibitor|blocker|antibody)`), "Anti-CTLA-4"},
	{regexp.MustCompile(`(?i)HER-?2\s+(?:inhibitor|antibody)`), "Anti-HER2"},
	{regexp.MustCompile(`(?i)nectin-?4[\s-]+(?:directed\s+ADC|inhibitor|antibody)`), "Anti-Nectin-4"},
	{regexp.MustCompile(`(?i)anti-?PD-?1\s*(?:x|×)\s*CTLA-?4`), "Anti-PD-1 × CTLA-4"},
	{regexp.MustCompile(`(?i)(\w[\w-]*)\s+bispecific\s+(?:antibody\s+)?(?:against|targeting)\s+(\w[\w-]*)`), "Anti-$1 × $2"},
}

// BiomarkerRewrites canonicalizes biomarker naming and merges recognized
// co-occurring variants into one joined label.
var BiomarkerRewrites = []RewriteRule{
	{regexp.MustCompile(`(?i)\bErbB2\b`), "HER2"},
	{regexp.MustCompile(`(?i)\bPD\s?L1\b`), "PD-L1"},
	{regexp.MustCompile(`(?i)\bPDL1\b`), "PD-L1"},
	{regexp.MustCompile(`(?i)MSI-H\s+and\s+dMMR`), "dMMR/MSI-H"},
	{regexp.MustCompile(`(?i)dMMR\s+and\s+MSI-H`), "dMMR/MSI-H"},
	{regexp.MustCompile(`(?i)MSI-H\s*/\s*dMMR`), "dMMR/MSI-H"},
}

// StageGroups classifies stage-of-disease phrasing. "Locally advanced" must
// precede the bare "advanced" pattern.
var StageGroups = []PhraseGroup{
	{"Stage 3/4", regexp.MustCompile(`(?i)locally\s+advanced`)},
	{"Stage 4", regexp.MustCompile(`(?i)metastatic|stage\s+4|stage\s+IV\b|advanced`)},
	{"Stage 1/2", regexp.MustCompile(`(?i)early[\s-]?stage|stage\s+1\b|stage\s+2\b|stage\s+I\b|stage\s+II\b`)},
}
