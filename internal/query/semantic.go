// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/trial-engine/internal/httputil"
	"github.com/pdiddy/trial-engine/pkg/types"
)

// chatAPIBase is the OpenAI-compatible chat completions endpoint. Declared
// as a var so tests can substitute an httptest server.
var chatAPIBase = "https://api.openai.com/v1/chat/completions"

// SemanticInterpreter delegates query translation to an AI API, supplying
// the canonical field vocabulary as context.
type SemanticInterpreter struct {
	Client *http.Client
	Config types.QueryConfig
}

// Interpret sends the query text to the AI API and coerces the response
// into a QueryFilterSet: a missing filters key becomes an empty map and
// scalar filter values are wrapped into single-element lists.
func (s *SemanticInterpreter) Interpret(ctx context.Context, queryText string) (types.QueryFilterSet, error) {
	body, err := json.Marshal(chatRequest{
		Model: s.Config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: semanticSystemPrompt()},
			{Role: "user", Content: queryText},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return types.QueryFilterSet{}, fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, chatAPIBase, bytes.NewReader(body))
	if err != nil {
		return types.QueryFilterSet{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.Config.UserAgent)
	if s.Config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.Config.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, s.Config.MaxRetries)
	if err != nil {
		return types.QueryFilterSet{}, fmt.Errorf("chat API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.QueryFilterSet{}, fmt.Errorf("chat API returned HTTP %d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return types.QueryFilterSet{}, fmt.Errorf("parsing chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return types.QueryFilterSet{}, fmt.Errorf("chat response has no choices")
	}

	return parseFilterSet([]byte(cr.Choices[0].Message.Content), queryText)
}

// parseFilterSet decodes the model's JSON answer, tolerating the shape
// drift an AI collaborator produces.
func parseFilterSet(data []byte, queryText string) (types.QueryFilterSet, error) {
	var raw struct {
		Filters        map[string]any `json:"filters"`
		QueryIntent    string         `json:"query_intent"`
		SearchStrategy string         `json:"search_strategy"`
		Confidence     float64        `json:"confidence_score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.QueryFilterSet{}, fmt.Errorf("parsing filter JSON: %w", err)
	}

	fs := types.QueryFilterSet{
		Filters:        coerceFilters(raw.Filters),
		QueryIntent:    raw.QueryIntent,
		SearchStrategy: raw.SearchStrategy,
		Confidence:     raw.Confidence,
	}
	if fs.QueryIntent == "" {
		fs.QueryIntent = strings.TrimSpace(queryText)
	}
	if fs.SearchStrategy == "" {
		fs.SearchStrategy = types.StrategySemantic
	}
	return fs, nil
}

// coerceFilters normalizes filter values into lists of strings. A nil map
// (missing filters key) coerces to an empty map rather than failing.
func coerceFilters(raw map[string]any) map[string][]string {
	out := make(map[string][]string, len(raw))
	for field, v := range raw {
		switch t := v.(type) {
		case []any:
			var values []string
			for _, e := range t {
				if s := scalarToString(e); s != "" {
					values = append(values, s)
				}
			}
			if len(values) > 0 {
				out[field] = values
			}
		default:
			if s := scalarToString(v); s != "" {
				out[field] = []string{s}
			}
		}
	}
	return out
}

func scalarToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	}
	return ""
}

// semanticSystemPrompt describes the expected answer shape, the canonical
// field names, and the closed vocabularies the model must draw from.
func semanticSystemPrompt() string {
	var b strings.Builder
	b.WriteString("You translate clinical trial questions into a JSON object with keys ")
	b.WriteString(`"filters", "query_intent", "search_strategy", "confidence_score". `)
	b.WriteString("Every filter value must be a list of strings. Filter fields: ")
	b.WriteString(strings.Join(types.CanonicalFields, ", "))
	b.WriteString(". Use only these enum values where they apply: ")
	b.WriteString("trial_phase: Phase 1, Phase 2, Phase 3, Phase 4, Phase 1/2, Phase 2/3; ")
	b.WriteString("trial_status: Recruiting, Not yet recruiting, Active, not recruiting, Completed, Terminated, Suspended, Withdrawn; ")
	b.WriteString("geography: Global, International, China only; ")
	b.WriteString("mono_combo: Mono, Combo; ")
	b.WriteString("line_of_therapy: 1L, 2L, 2L+, Adjuvant, Neoadjuvant, Maintenance, 1L-Maintenance, 2L-Maintenance; ")
	b.WriteString("sponsor_type: Industry Only, Academic Only, Industry-Academic Collaboration.")
	return b.String()
}

// Chat completions API JSON structures.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}
