package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trial-engine/internal/extract"
	"github.com/pdiddy/trial-engine/internal/store"
	"github.com/pdiddy/trial-engine/pkg/types"
)

const defaultModel = "gpt-4o-mini"

var analyzeCmd = &cobra.Command{
	Use:   "analyze [NCT ids...]",
	Short: "Analyze trials into canonical rows",
	Long: `Analyze runs the full pipeline for each trial: the registry document is
fetched (cache-first), the AI backend extracts the raw attributes, the
normalizer and validation gate standardize them, and the decomposition
engine produces one or more analysis rows, which are stored in the
database. Already-analyzed trials are skipped unless --force is given.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("model", "", "AI model identifier (default "+defaultModel+")")
	analyzeCmd.Flags().String("api-key", "", "AI API key (default: .secrets/openai-api-key)")
	analyzeCmd.Flags().Int("max-retries", 0, "retry attempts for failed AI calls (default 3)")
	analyzeCmd.Flags().Bool("force", false, "re-analyze trials already in the store")
	analyzeCmd.Flags().String("cache-dir", defaultCacheDir, "directory for cached trial documents")
	analyzeCmd.Flags().String("index-dir", defaultIndexDir, "directory holding the analysis database")
	analyzeCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	analyzeCmd.Flags().Duration("delay", 0, "delay between consecutive registry fetches (default 1s)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more NCT ids (e.g. NCT01234567)")
	}

	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = defaultModel
	}
	apiKey, _ := cmd.Flags().GetString("api-key")
	apiKey = secretDefault("openai-api-key", apiKey)
	if apiKey == "" {
		return fmt.Errorf("no API key: pass --api-key or create .secrets/openai-api-key")
	}

	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	force, _ := cmd.Flags().GetBool("force")
	indexDir, _ := cmd.Flags().GetString("index-dir")

	regCfg := registryConfig(cmd)
	client := &http.Client{Timeout: regCfg.Timeout}

	st, err := store.NewStore(types.StoreConfig{IndexDir: indexDir})
	if err != nil {
		return err
	}
	defer st.Close()

	backend := &extract.OpenAIBackend{
		APIKey: apiKey,
		Model:  model,
		Client: client,
	}

	cfg := types.AnalyzeConfig{
		AIConfig: types.AIConfig{
			Model:      model,
			APIKey:     apiKey,
			MaxRetries: maxRetries,
		},
		ForceReanalyze: force,
	}

	summary, err := extract.AnalyzeAll(context.Background(), backend, st, client, args, regCfg, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d trial(s) failed analysis", summary.Failed)
	}
	return nil
}
