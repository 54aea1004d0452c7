// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/trial-engine/pkg/types"
)

// Study is the subset of the registry document the pipeline consumes.
type Study struct {
	Protocol protocolSection `json:"protocolSection"`
}

type protocolSection struct {
	Identification identificationModule `json:"identificationModule"`
	Status         statusModule         `json:"statusModule"`
	Sponsor        sponsorModule        `json:"sponsorCollaboratorsModule"`
	Description    descriptionModule    `json:"descriptionModule"`
	Conditions     conditionsModule     `json:"conditionsModule"`
	Design         designModule         `json:"designModule"`
	Arms           armsModule           `json:"armsInterventionsModule"`
	Outcomes       outcomesModule       `json:"outcomesModule"`
	Eligibility    eligibilityModule    `json:"eligibilityModule"`
	Locations      locationsModule      `json:"contactsLocationsModule"`
}

type identificationModule struct {
	NCTID         string `json:"nctId"`
	BriefTitle    string `json:"briefTitle"`
	OfficialTitle string `json:"officialTitle"`
}

type statusModule struct {
	OverallStatus         string     `json:"overallStatus"`
	StartDate             dateStruct `json:"startDateStruct"`
	PrimaryCompletionDate dateStruct `json:"primaryCompletionDateStruct"`
	CompletionDate        dateStruct `json:"completionDateStruct"`
}

type dateStruct struct {
	Date string `json:"date"`
}

type sponsorModule struct {
	LeadSponsor   agency   `json:"leadSponsor"`
	Collaborators []agency `json:"collaborators"`
}

type agency struct {
	Name string `json:"name"`
}

type descriptionModule struct {
	BriefSummary string `json:"briefSummary"`
}

type conditionsModule struct {
	Conditions []string `json:"conditions"`
}

type designModule struct {
	Phases     []string       `json:"phases"`
	Enrollment enrollmentInfo `json:"enrollmentInfo"`
}

type enrollmentInfo struct {
	Count int `json:"count"`
}

type armsModule struct {
	Arms          []armGroup     `json:"armGroups"`
	Interventions []intervention `json:"interventions"`
}

type armGroup struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

type intervention struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type outcomesModule struct {
	Primary   []outcome `json:"primaryOutcomes"`
	Secondary []outcome `json:"secondaryOutcomes"`
}

type outcome struct {
	Measure string `json:"measure"`
}

type eligibilityModule struct {
	Criteria string `json:"eligibilityCriteria"`
}

type locationsModule struct {
	Locations []location `json:"locations"`
}

type location struct {
	Country string `json:"country"`
}

// Parse decodes a registry document.
func Parse(data []byte) (*Study, error) {
	var s Study
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing registry document: %w", err)
	}
	if s.Protocol.Identification.NCTID == "" {
		return nil, fmt.Errorf("registry document has no NCT id")
	}
	return &s, nil
}

// ID returns the trial's NCT id.
func (s *Study) ID() string {
	return s.Protocol.Identification.NCTID
}

// Countries returns the distinct countries across all trial locations, in
// order of first appearance.
func (s *Study) Countries() []string {
	seen := make(map[string]bool)
	var out []string
	for _, loc := range s.Protocol.Locations.Locations {
		c := strings.TrimSpace(loc.Country)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Signals extracts the structural signals the decomposition engine needs.
func (s *Study) Signals() types.DocumentSignals {
	var sig types.DocumentSignals
	for _, arm := range s.Protocol.Arms.Arms {
		sig.ArmTitles = append(sig.ArmTitles, arm.Label)
		if arm.Description != "" {
			sig.ArmDescriptions = append(sig.ArmDescriptions, arm.Description)
		}
	}
	for _, iv := range s.Protocol.Arms.Interventions {
		sig.InterventionDescriptions = append(sig.InterventionDescriptions,
			strings.TrimSpace(iv.Name+" "+iv.Description))
	}
	sig.EligibilityText = s.Protocol.Eligibility.Criteria
	return sig
}

// Text flattens the document into the plain-text form the extraction
// backend receives. Section labels keep the model oriented; empty sections
// are omitted.
func (s *Study) Text() string {
	p := s.Protocol
	var b strings.Builder

	section := func(label, body string) {
		body = strings.TrimSpace(body)
		if body == "" {
			return
		}
		fmt.Fprintf(&b, "%s: %s\n", label, body)
	}

	section("NCT ID", p.Identification.NCTID)
	section("Title", firstNonEmpty(p.Identification.OfficialTitle, p.Identification.BriefTitle))
	section("Status", p.Status.OverallStatus)
	section("Phases", strings.Join(p.Design.Phases, ", "))
	section("Conditions", strings.Join(p.Conditions.Conditions, "; "))
	section("Summary", p.Description.BriefSummary)
	section("Sponsor", p.Sponsor.LeadSponsor.Name)

	var collabs []string
	for _, c := range p.Sponsor.Collaborators {
		collabs = append(collabs, c.Name)
	}
	section("Collaborators", strings.Join(collabs, "; "))

	for _, arm := range p.Arms.Arms {
		section("Arm", strings.TrimSpace(arm.Label+": "+arm.Description))
	}
	for _, iv := range p.Arms.Interventions {
		section("Intervention", strings.TrimSpace(iv.Name+": "+iv.Description))
	}

	var primary, secondary []string
	for _, o := range p.Outcomes.Primary {
		primary = append(primary, o.Measure)
	}
	for _, o := range p.Outcomes.Secondary {
		secondary = append(secondary, o.Measure)
	}
	section("Primary outcomes", strings.Join(primary, "; "))
	section("Secondary outcomes", strings.Join(secondary, "; "))

	section("Eligibility", p.Eligibility.Criteria)
	section("Countries", strings.Join(s.Countries(), ", "))
	if p.Design.Enrollment.Count > 0 {
		section("Enrollment", fmt.Sprintf("%d", p.Design.Enrollment.Count))
	}
	section("Start date", p.Status.StartDate.Date)
	section("Primary completion date", p.Status.PrimaryCompletionDate.Date)
	section("Study completion date", p.Status.CompletionDate.Date)

	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
