package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trial-engine/internal/query"
	"github.com/pdiddy/trial-engine/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [text...]",
	Short: "Translate a free-text question into a structured filter set",
	Long: `Query translates a free-text question into a filter set over the canonical
trial vocabulary and prints it as JSON. The semantic tier uses the AI API
when a key is available; otherwise, or on any failure, the deterministic
keyword fallback answers with a lower confidence score.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().String("model", "", "AI model identifier (default "+defaultModel+")")
	queryCmd.Flags().String("api-key", "", "AI API key (default: .secrets/openai-api-key)")
	queryCmd.Flags().StringArray("filter", nil, "explicit filter as field=value (repeatable; wins over parsed filters)")
	queryCmd.Flags().Bool("fallback-only", false, "skip the semantic tier")
	queryCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	queryText := strings.Join(args, " ")

	explicit, err := parseExplicitFilters(cmd)
	if err != nil {
		return err
	}

	fs := query.Translate(context.Background(), interpreterFromFlags(cmd), queryText, explicit)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(fs)
}

// interpreterFromFlags builds the semantic tier, or returns nil when no API
// key is available or --fallback-only is set. A nil interpreter makes
// Translate use the keyword fallback directly.
func interpreterFromFlags(cmd *cobra.Command) query.Interpreter {
	fallbackOnly, _ := cmd.Flags().GetBool("fallback-only")
	if fallbackOnly {
		return nil
	}

	apiKey, _ := cmd.Flags().GetString("api-key")
	apiKey = secretDefault("openai-api-key", apiKey)
	if apiKey == "" {
		return nil
	}

	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = defaultModel
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &query.SemanticInterpreter{
		Client: &http.Client{Timeout: timeout},
		Config: types.QueryConfig{
			AIConfig:   types.AIConfig{Model: model, APIKey: apiKey},
			HTTPConfig: types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent},
		},
	}
}

func parseExplicitFilters(cmd *cobra.Command) (map[string][]string, error) {
	pairs, _ := cmd.Flags().GetStringArray("filter")
	if len(pairs) == 0 {
		return nil, nil
	}

	filters := make(map[string][]string)
	for _, pair := range pairs {
		field, value, ok := strings.Cut(pair, "=")
		if !ok || field == "" || value == "" {
			return nil, fmt.Errorf("invalid --filter %q: expected field=value", pair)
		}
		filters[field] = append(filters[field], value)
	}
	return filters, nil
}
