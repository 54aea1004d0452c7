// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vocab holds the static synonym and classification tables used by
// both the ingestion path and the query path. Tables are pure data, loaded
// once, shared read-only; lookup order is declaration order and the first
// matching entry wins.
package vocab

import "strings"

// Entry maps one canonical value to the synonym substrings that identify it.
type Entry struct {
	Canonical string
	Synonyms  []string
}

// Table is an ordered list of entries. Precedence is declaration order.
type Table []Entry

// Lookup returns the canonical value for the first entry whose synonym list
// contains a case-insensitive substring match of s. Failure mode is
// ok=false, never an error.
func (t Table) Lookup(s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, e := range t {
		for _, syn := range e.Synonyms {
			if strings.Contains(lower, syn) {
				return e.Canonical, true
			}
		}
	}
	return "", false
}

// Contains reports whether canonical is one of the table's canonical values.
func (t Table) Contains(canonical string) bool {
	for _, e := range t {
		if e.Canonical == canonical {
			return true
		}
	}
	return false
}
