package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trial-engine/internal/registry"
	"github.com/pdiddy/trial-engine/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "trial-engine/0.1"
	defaultCacheDir  = "trials/raw"
	defaultIndexDir  = "trials/index"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [NCT ids...]",
	Short: "Fetch trial documents from the registry",
	Long: `Fetch downloads registry documents for the given NCT ids and caches them
on disk, one JSON file per trial. Already-cached trials are served from
disk without hitting the registry.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive registry fetches (default 1s)")
	fetchCmd.Flags().String("cache-dir", defaultCacheDir, "directory for cached trial documents")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more NCT ids (e.g. NCT01234567)")
	}

	cfg := registryConfig(cmd)
	client := &http.Client{Timeout: cfg.Timeout}

	result := registry.FetchBatch(context.Background(), client, args, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d trial(s) failed to fetch", result.Failed)
	}
	return nil
}

func registryConfig(cmd *cobra.Command) types.RegistryConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	if cacheDir == "" {
		cacheDir = defaultCacheDir
	}

	return types.RegistryConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		CacheDir:   cacheDir,
		FetchDelay: delay,
	}
}
