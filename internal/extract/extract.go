// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns trial documents into canonical analysis rows. The
// AI backend produces a raw attribute map; normalization, the validation
// gate, and decomposition are deterministic. An extraction failure becomes
// a single error-tagged row, never a crash.
package extract

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/pdiddy/trial-engine/internal/decompose"
	"github.com/pdiddy/trial-engine/internal/normalize"
	"github.com/pdiddy/trial-engine/internal/registry"
	"github.com/pdiddy/trial-engine/internal/store"
	"github.com/pdiddy/trial-engine/pkg/types"
)

// Backend abstracts the Generative AI API so tests can supply a mock. Each
// implementation handles one trial document and returns the raw attribute
// map.
type Backend interface {
	Extract(ctx context.Context, document string) (types.RawExtraction, error)
}

// BatchSummary holds counts from a batch analysis run.
type BatchSummary struct {
	Analyzed int
	Skipped  int
	Failed   int
}

// Total returns the number of trials processed.
func (s BatchSummary) Total() int {
	return s.Analyzed + s.Skipped + s.Failed
}

// HasFailures reports whether any trials failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Analyze produces the ordered analysis row set for one trial document.
// Backend failures and error-tagged extractions yield a single row with
// the Error field set; the pipeline reports them through the row, not as
// a Go error.
func Analyze(ctx context.Context, backend Backend, trialID, document string, sig types.DocumentSignals, maxRetries int) []types.AnalysisRow {
	raw, err := callWithRetry(ctx, backend, document, maxRetries)
	if err != nil {
		return []types.AnalysisRow{errorRow(trialID, err.Error())}
	}
	if msg, failed := raw.Failed(); failed {
		return []types.AnalysisRow{errorRow(trialID, msg)}
	}

	attrs := normalize.Gate(normalize.Attributes(raw))
	if attrs["nct_id"] == types.SentinelNA {
		attrs["nct_id"] = trialID
	}

	return decompose.Rows(trialID, attrs, sig)
}

func errorRow(trialID, msg string) types.AnalysisRow {
	fields := normalize.Gate(types.CanonicalAttributes{
		"nct_id":   trialID,
		"trial_id": trialID,
	})
	return types.AnalysisRow{
		TrialID: trialID,
		Variant: types.VariantNone,
		Fields:  fields,
		Error:   msg,
	}
}

// AnalyzeAll fetches, analyzes, and stores a batch of trials, printing
// per-trial status. Trials already analyzed are skipped unless
// ForceReanalyze is set; individual failures do not stop the batch.
func AnalyzeAll(ctx context.Context, backend Backend, st *store.Store, client *http.Client, ids []string, regCfg types.RegistryConfig, cfg types.AnalyzeConfig, w io.Writer) (BatchSummary, error) {
	var summary BatchSummary

	for _, id := range ids {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		id, ok := registry.ValidID(id)
		if !ok {
			fmt.Fprintf(w, "failed  %s: invalid trial identifier\n", id)
			summary.Failed++
			continue
		}

		if !cfg.ForceReanalyze {
			has, err := st.HasAnalysis(ctx, id)
			if err != nil {
				return summary, fmt.Errorf("checking analysis state for %s: %w", id, err)
			}
			if has {
				fmt.Fprintf(w, "skipped %s\n", id)
				summary.Skipped++
				continue
			}
		}

		data, _, err := registry.FetchTrial(ctx, client, id, regCfg)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}
		study, err := registry.Parse(data)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "analyzing %s\n", id)

		rows := Analyze(ctx, backend, id, study.Text(), study.Signals(), cfg.MaxRetries)
		if err := st.ReplaceRows(ctx, id, rows); err != nil {
			fmt.Fprintf(w, "failed  %s: store error: %v\n", id, err)
			summary.Failed++
			continue
		}

		if len(rows) == 1 && rows[0].Error != "" {
			fmt.Fprintf(w, "failed  %s: %s\n", id, rows[0].Error)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "analyzed %s (%d rows)\n", id, len(rows))
		summary.Analyzed++
	}

	fmt.Fprintf(w, "\nanalyzed: %d, skipped: %d, failed: %d\n",
		summary.Analyzed, summary.Skipped, summary.Failed)

	return summary, nil
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry calls the AI backend with exponential backoff.
func callWithRetry(ctx context.Context, backend Backend, document string, maxRetries int) (types.RawExtraction, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		raw, err := backend.Extract(ctx, document)
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
