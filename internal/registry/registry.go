// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry fetches trial documents from the clinical trial registry
// API and caches them on disk, one JSON file per trial.
package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/trial-engine/internal/httputil"
	"github.com/pdiddy/trial-engine/pkg/types"
)

// studiesAPIBase is the registry studies endpoint. Declared as a var so
// tests can substitute an httptest server.
var studiesAPIBase = "https://clinicaltrials.gov/api/v2/studies/"

// nctPattern matches registry identifiers: "NCT" followed by 8 digits.
var nctPattern = regexp.MustCompile(`^NCT\d{8}$`)

// ValidID reports whether the identifier is a well-formed NCT id. The
// normalized (upper-cased, trimmed) form is returned.
func ValidID(id string) (string, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	return id, nctPattern.MatchString(id)
}

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Fetched int
	Cached  int
	Failed  int
}

// Total returns the total number of identifiers processed.
func (r BatchResult) Total() int {
	return r.Fetched + r.Cached + r.Failed
}

// HasFailures reports whether any fetches failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchTrial returns the registry document for one trial, reading the disk
// cache first. A fresh fetch is written to the cache via a temporary file
// so a partial download is never visible. The cached return value
// indicates whether the document came from disk.
func FetchTrial(ctx context.Context, client *http.Client, id string, cfg types.RegistryConfig) (data []byte, cached bool, err error) {
	id, ok := ValidID(id)
	if !ok {
		return nil, false, fmt.Errorf("invalid trial identifier: %q", id)
	}

	cachePath := filepath.Join(cfg.CacheDir, id+".json")
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, true, nil
	}

	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return nil, false, fmt.Errorf("creating cache directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, studiesAPIBase+id, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, false, fmt.Errorf("registry request for %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, fmt.Errorf("trial %s not found in registry", id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("registry returned HTTP %d for %s", resp.StatusCode, id)
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("reading registry response: %w", err)
	}

	if err := writeCache(cachePath, data); err != nil {
		return nil, false, err
	}
	return data, false, nil
}

// FetchBatch fetches multiple trials, printing per-item status and
// continuing after individual failures. A delay applies between
// consecutive registry hits; cache reads do not count.
func FetchBatch(ctx context.Context, client *http.Client, ids []string, cfg types.RegistryConfig, w io.Writer) BatchResult {
	var result BatchResult
	fetchedAny := false

	for _, id := range ids {
		if fetchedAny && cfg.FetchDelay > 0 {
			select {
			case <-ctx.Done():
				result.Failed++
				fmt.Fprintf(w, "failed:  %s (%v)\n", id, ctx.Err())
				return result
			case <-time.After(cfg.FetchDelay):
			}
		}

		_, cached, err := FetchTrial(ctx, client, id, cfg)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", id, err)
			result.Failed++
			continue
		}
		if cached {
			fmt.Fprintf(w, "cached:  %s\n", id)
			result.Cached++
		} else {
			fmt.Fprintf(w, "fetched: %s\n", id)
			result.Fetched++
			fetchedAny = true
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d fetched, %d cached, %d failed (total: %d)\n",
		result.Fetched, result.Cached, result.Failed, result.Total())
	return result
}

// writeCache writes data to destPath via a temporary file, renaming on
// success.
func writeCache(destPath string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".registry-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing cache: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
