// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query translates free-text questions into structured filter sets
// over the canonical trial vocabulary. Two tiers share one output shape: a
// semantic interpreter backed by an AI API, and a deterministic keyword
// fallback that never fails.
package query

import (
	"context"

	"github.com/pdiddy/trial-engine/pkg/types"
)

// Interpreter turns free text into a filter set. Implementations may fail;
// Translate handles degradation.
type Interpreter interface {
	Interpret(ctx context.Context, queryText string) (types.QueryFilterSet, error)
}

// Translate runs the primary interpreter and falls back to keyword matching
// on any failure, so the caller always receives a well-formed filter set.
// Explicit caller-supplied filters are merged last and win on collision.
func Translate(ctx context.Context, primary Interpreter, queryText string, explicit map[string][]string) types.QueryFilterSet {
	var fs types.QueryFilterSet
	var err error

	if primary != nil {
		fs, err = primary.Interpret(ctx, queryText)
	}
	if primary == nil || err != nil {
		fs = Fallback(queryText)
	}

	fs.Merge(explicit)
	return fs
}
