// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/trial-engine/pkg/types"
)

const sampleStudy = `{
	"protocolSection": {
		"identificationModule": {
			"nctId": "NCT01234567",
			"briefTitle": "A Study of DrugX in Advanced Melanoma"
		},
		"statusModule": {
			"overallStatus": "RECRUITING",
			"startDateStruct": {"date": "2024-03-05"}
		},
		"sponsorCollaboratorsModule": {
			"leadSponsor": {"name": "Acme Pharma Inc."},
			"collaborators": [{"name": "University of Toronto"}]
		},
		"conditionsModule": {"conditions": ["Melanoma"]},
		"designModule": {"phases": ["PHASE3"], "enrollmentInfo": {"count": 420}},
		"armsInterventionsModule": {
			"armGroups": [
				{"label": "Monotherapy: DrugX", "description": "DrugX alone"},
				{"label": "Combination: DrugX + DrugY", "description": "DrugX plus DrugY"}
			],
			"interventions": [
				{"name": "DrugX", "description": "administered IV every 3 weeks"}
			]
		},
		"eligibilityModule": {"eligibilityCriteria": "previously untreated advanced melanoma"},
		"contactsLocationsModule": {
			"locations": [
				{"country": "United States"},
				{"country": "United States"},
				{"country": "Germany"}
			]
		}
	}
}`

func TestValidID(t *testing.T) {
	tests := []struct {
		in       string
		wantID   string
		wantOK   bool
	}{
		{"NCT01234567", "NCT01234567", true},
		{"  nct01234567 ", "NCT01234567", true},
		{"NCT1234", "NCT1234", false},
		{"NCT012345678", "NCT012345678", false},
		{"12345678", "12345678", false},
		{"", "", false},
	}
	for _, tt := range tests {
		id, ok := ValidID(tt.in)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("ValidID(%q) = (%q, %v), want (%q, %v)", tt.in, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

func TestFetchTrialCachesDocument(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if !strings.HasSuffix(r.URL.Path, "NCT01234567") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, sampleStudy)
	}))
	defer srv.Close()
	orig := studiesAPIBase
	studiesAPIBase = srv.URL + "/"
	defer func() { studiesAPIBase = orig }()

	cfg := types.RegistryConfig{CacheDir: t.TempDir()}

	data, cached, err := FetchTrial(context.Background(), http.DefaultClient, "NCT01234567", cfg)
	if err != nil {
		t.Fatalf("FetchTrial: %v", err)
	}
	if cached {
		t.Error("first fetch reported as cached")
	}
	if len(data) == 0 {
		t.Fatal("empty document")
	}

	if _, err := os.Stat(filepath.Join(cfg.CacheDir, "NCT01234567.json")); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}

	_, cached, err = FetchTrial(context.Background(), http.DefaultClient, "NCT01234567", cfg)
	if err != nil {
		t.Fatalf("second FetchTrial: %v", err)
	}
	if !cached {
		t.Error("second fetch not served from cache")
	}
	if hits != 1 {
		t.Errorf("registry hit %d times, want 1", hits)
	}
}

func TestFetchTrialRejectsBadID(t *testing.T) {
	cfg := types.RegistryConfig{CacheDir: t.TempDir()}
	if _, _, err := FetchTrial(context.Background(), http.DefaultClient, "bogus", cfg); err == nil {
		t.Fatal("expected error for invalid id")
	}
}

func TestFetchTrialNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	orig := studiesAPIBase
	studiesAPIBase = srv.URL + "/"
	defer func() { studiesAPIBase = orig }()

	cfg := types.RegistryConfig{CacheDir: t.TempDir()}
	_, _, err := FetchTrial(context.Background(), http.DefaultClient, "NCT99999999", cfg)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v, want not-found error", err)
	}
}

func TestFetchBatchContinuesAfterFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "NCT00000002") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, sampleStudy)
	}))
	defer srv.Close()
	orig := studiesAPIBase
	studiesAPIBase = srv.URL + "/"
	defer func() { studiesAPIBase = orig }()

	cfg := types.RegistryConfig{CacheDir: t.TempDir()}
	var out strings.Builder
	result := FetchBatch(context.Background(), http.DefaultClient,
		[]string{"NCT00000001", "NCT00000002", "NCT00000003"}, cfg, &out)

	if result.Fetched != 2 || result.Failed != 1 {
		t.Errorf("result = %+v, want 2 fetched 1 failed", result)
	}
	if result.Total() != 3 {
		t.Errorf("Total = %d, want 3", result.Total())
	}
	if !result.HasFailures() {
		t.Error("HasFailures = false")
	}
	if !strings.Contains(out.String(), "failed:  NCT00000002") {
		t.Errorf("missing failure line in output:\n%s", out.String())
	}
}

func TestParseAndSignals(t *testing.T) {
	study, err := Parse([]byte(sampleStudy))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if study.ID() != "NCT01234567" {
		t.Errorf("ID = %q", study.ID())
	}

	sig := study.Signals()
	if len(sig.ArmTitles) != 2 || sig.ArmTitles[0] != "Monotherapy: DrugX" {
		t.Errorf("ArmTitles = %v", sig.ArmTitles)
	}
	if len(sig.InterventionDescriptions) != 1 {
		t.Errorf("InterventionDescriptions = %v", sig.InterventionDescriptions)
	}
	if !strings.Contains(sig.EligibilityText, "previously untreated") {
		t.Errorf("EligibilityText = %q", sig.EligibilityText)
	}

	countries := study.Countries()
	if len(countries) != 2 || countries[0] != "United States" || countries[1] != "Germany" {
		t.Errorf("Countries = %v, want deduplicated [United States Germany]", countries)
	}
}

func TestParseRejectsEmptyDocument(t *testing.T) {
	if _, err := Parse([]byte(`{}`)); err == nil {
		t.Fatal("expected error for document without NCT id")
	}
	if _, err := Parse([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestStudyText(t *testing.T) {
	study, err := Parse([]byte(sampleStudy))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	text := study.Text()

	for _, want := range []string{
		"NCT ID: NCT01234567",
		"Title: A Study of DrugX in Advanced Melanoma",
		"Status: RECRUITING",
		"Conditions: Melanoma",
		"Arm: Monotherapy: DrugX",
		"Countries: United States, Germany",
		"Enrollment: 420",
		"Start date: 2024-03-05",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Text missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Secondary outcomes") {
		t.Error("empty section should be omitted")
	}
}
