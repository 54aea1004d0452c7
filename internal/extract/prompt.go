// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/pdiddy/trial-engine/pkg/types"
)

// extractionPromptTmpl is the prompt sent to the AI API for each trial
// document. It lists the canonical field names so the response keys line
// up with the normalizer's vocabulary.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`You are a clinical trial analysis system. Read the following trial document and extract the attributes listed below.

Rules:
- Respond with a single JSON object whose keys are drawn from the field list. Do not include any text outside the JSON object.
- Each value is a string, or an array of strings for list-valued fields (trial_countries, collaborator, combination_partner, biomarker_mutations).
- Use "N/A" when the document does not state a value. Never invent values.
- Copy values from the document verbatim where possible; do not paraphrase drug names, endpoints, or criteria.

Fields:
{{.Fields}}

Trial document:
{{.Document}}
`))

// chatAPIURL is the OpenAI-compatible chat completions endpoint. Package
// var for test substitution.
var chatAPIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIBackend calls an OpenAI-compatible chat API to extract the raw
// attribute map from a trial document.
type OpenAIBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

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
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Extract calls the chat API with the extraction prompt for one document.
func (b *OpenAIBackend) Extract(ctx context.Context, document string) (types.RawExtraction, error) {
	prompt, err := renderPrompt(document)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	bodyBytes, err := json.Marshal(chatRequest{
		Model: b.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, chatAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.APIKey)

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling chat API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("chat API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return nil, fmt.Errorf("decoding chat response: %w", err)
	}
	if len(cResp.Choices) == 0 {
		return nil, fmt.Errorf("chat API returned no choices")
	}

	var raw types.RawExtraction
	if err := json.Unmarshal([]byte(cResp.Choices[0].Message.Content), &raw); err != nil {
		return nil, fmt.Errorf("parsing extraction JSON: %w", err)
	}
	return raw, nil
}

// renderPrompt executes the extraction prompt template for one document.
func renderPrompt(document string) (string, error) {
	var buf bytes.Buffer
	err := extractionPromptTmpl.Execute(&buf, struct {
		Fields   string
		Document string
	}{
		Fields:   strings.Join(types.CanonicalFields, ", "),
		Document: document,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
