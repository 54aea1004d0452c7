package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trial-engine/internal/query"
	"github.com/pdiddy/trial-engine/internal/store"
	"github.com/pdiddy/trial-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [text...]",
	Short: "Search stored analysis rows",
	Long: `Search translates the question into a filter set (semantic tier when an
API key is available, keyword fallback otherwise) and runs it against the
analysis database. Explicit --filter flags win over parsed filters.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("model", "", "AI model identifier (default "+defaultModel+")")
	searchCmd.Flags().String("api-key", "", "AI API key (default: .secrets/openai-api-key)")
	searchCmd.Flags().StringArray("filter", nil, "explicit filter as field=value (repeatable; wins over parsed filters)")
	searchCmd.Flags().Bool("fallback-only", false, "skip the semantic tier")
	searchCmd.Flags().String("text", "", "full-text search over row content")
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	searchCmd.Flags().String("index-dir", defaultIndexDir, "directory holding the analysis database")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	queryText := strings.Join(args, " ")
	text, _ := cmd.Flags().GetString("text")

	explicit, err := parseExplicitFilters(cmd)
	if err != nil {
		return err
	}
	if queryText == "" && text == "" && len(explicit) == 0 {
		return fmt.Errorf("provide a question, --text, or at least one --filter")
	}

	var fs types.QueryFilterSet
	if queryText != "" || len(explicit) > 0 {
		fs = query.Translate(context.Background(), interpreterFromFlags(cmd), queryText, explicit)
		fmt.Fprintf(os.Stderr, "filters: %s (strategy %s, confidence %.1f)\n",
			formatFilters(fs.Filters), fs.SearchStrategy, fs.Confidence)
	}

	indexDir, _ := cmd.Flags().GetString("index-dir")
	limit, _ := cmd.Flags().GetInt("limit")

	st, err := store.NewStore(types.StoreConfig{IndexDir: indexDir})
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.Search(context.Background(), store.SearchOptions{
		Filters:    fs.Filters,
		Text:       text,
		MaxResults: limit,
	})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(rows, jsonOutput)
}

func formatFilters(filters map[string][]string) string {
	if len(filters) == 0 {
		return "(none)"
	}
	var parts []string
	for field, values := range filters {
		parts = append(parts, field+"="+strings.Join(values, "|"))
	}
	return strings.Join(parts, " ")
}

func formatSearchOutput(rows []types.AnalysisRow, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-12s  %-18s  %-24s  %-24s  %-10s  %s\n",
		"Trial", "Variant", "Drug", "Indication", "Phase", "Status")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 104))

	for _, r := range rows {
		fmt.Fprintf(os.Stdout, "%-12s  %-18s  %-24s  %-24s  %-10s  %s\n",
			r.TrialID,
			truncate(r.Variant, 18),
			truncate(r.Fields["primary_drug"], 24),
			truncate(r.Fields["indication"], 24),
			truncate(r.Fields["trial_phase"], 10),
			r.Fields["trial_status"])
		if r.Error != "" {
			fmt.Fprintf(os.Stdout, "  error: %s\n", r.Error)
		}
	}

	fmt.Fprintf(os.Stdout, "\n%d rows\n", len(rows))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
