// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists analysis rows in SQLite and serves filtered
// searches over them. Rows are replaced per trial inside one transaction;
// a half-written trial is never visible.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/trial-engine/pkg/types"
)

const dbFile = "trials.db"

// filterColumns are the canonical fields promoted to their own columns so
// structured filters hit an index instead of the JSON blob.
var filterColumns = []string{
	"indication", "primary_drug", "trial_phase", "trial_status",
	"geography", "line_of_therapy", "sponsor_type", "mono_combo",
}

// textColumns feed the full-text index.
var textColumns = []string{
	"trial_name", "primary_drug", "indication", "primary_drug_moa",
	"combination_partner", "biomarker_mutations", "histology",
	"patient_population", "sponsor",
}

// Store manages the analysis-row SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the database at cfg.IndexDir/trials.db,
// creating the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	s := &Store{db: db, maxResults: maxResults}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS trials (
			nct_id TEXT PRIMARY KEY,
			analyzed_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS analysis_rows (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			trial_id TEXT NOT NULL REFERENCES trials(nct_id),
			variant TEXT NOT NULL,
			error TEXT,
			fields TEXT NOT NULL,
			indication TEXT,
			primary_drug TEXT,
			trial_phase TEXT,
			trial_status TEXT,
			geography TEXT,
			line_of_therapy TEXT,
			sponsor_type TEXT,
			mono_combo TEXT,
			patient_enrollment INTEGER,
			content TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_trial_id ON analysis_rows(trial_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_indication ON analysis_rows(indication)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_primary_drug ON analysis_rows(primary_drug)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='rows_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE rows_fts USING fts5(content, content=analysis_rows, content_rowid=rowid)`,
			`CREATE TRIGGER rows_ai AFTER INSERT ON analysis_rows BEGIN
				INSERT INTO rows_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER rows_ad AFTER DELETE ON analysis_rows BEGIN
				INSERT INTO rows_fts(rows_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER rows_au AFTER UPDATE ON analysis_rows BEGIN
				INSERT INTO rows_fts(rows_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO rows_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// HasAnalysis reports whether rows exist for the given trial.
func (s *Store) HasAnalysis(ctx context.Context, trialID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM analysis_rows WHERE trial_id = ?`, trialID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("counting rows for %s: %w", trialID, err)
	}
	return n > 0, nil
}

// TrialIDs returns the ids of all trials with stored rows, ordered.
func (s *Store) TrialIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT nct_id FROM trials ORDER BY nct_id`)
	if err != nil {
		return nil, fmt.Errorf("listing trials: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning trial id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReplaceRows replaces all stored rows for one trial in a single
// transaction. Re-analysis produces a fresh row set; old rows are never
// mutated in place.
func (s *Store) ReplaceRows(ctx context.Context, trialID string, rows []types.AnalysisRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO trials (nct_id, analyzed_at) VALUES (?, ?)
		 ON CONFLICT(nct_id) DO UPDATE SET analyzed_at=excluded.analyzed_at`,
		trialID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting trial %s: %w", trialID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM analysis_rows WHERE trial_id = ?`, trialID); err != nil {
		return fmt.Errorf("deleting old rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertRowSQL())
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		fieldsJSON, err := json.Marshal(row.Fields)
		if err != nil {
			return fmt.Errorf("encoding fields for %s: %w", trialID, err)
		}

		args := []any{trialID, row.Variant, row.Error, string(fieldsJSON)}
		for _, col := range filterColumns {
			args = append(args, row.Fields[col])
		}
		args = append(args, enrollmentValue(row.Fields), rowContent(row.Fields))

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting row %s/%s: %w", trialID, row.Variant, err)
		}
	}

	return tx.Commit()
}

func insertRowSQL() string {
	cols := append([]string{"trial_id", "variant", "error", "fields"}, filterColumns...)
	cols = append(cols, "patient_enrollment", "content")
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf(`INSERT INTO analysis_rows (%s) VALUES (%s)`,
		strings.Join(cols, ", "), placeholders)
}

// enrollmentValue parses the enrollment count for the numeric column.
// Non-numeric values (sentinels) store as NULL.
func enrollmentValue(fields types.CanonicalAttributes) any {
	n, err := strconv.Atoi(strings.TrimSpace(fields["patient_enrollment"]))
	if err != nil {
		return nil
	}
	return n
}

// rowContent assembles the full-text index document from the descriptive
// fields, skipping sentinels.
func rowContent(fields types.CanonicalAttributes) string {
	var parts []string
	for _, col := range textColumns {
		v := fields[col]
		if v == "" || v == types.SentinelNA || v == types.SentinelNotAvailable || v == types.SentinelNotDetermined {
			continue
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, " ")
}
