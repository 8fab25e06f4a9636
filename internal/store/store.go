// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/digitpad/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout keeps timestamps fixed-width so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for prediction history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			endpoint TEXT NOT NULL,
			outcome TEXT NOT NULL,
			digit INTEGER,
			confidence REAL,
			message TEXT NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_outcome ON predictions(outcome);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertPrediction stores a settled prediction attempt.
func (s *Store) InsertPrediction(ctx context.Context, rec model.PredictionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("prediction id is empty")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	var digit, confidence any
	if rec.Outcome == model.OutcomeSuccess {
		digit = rec.Digit
		confidence = rec.Confidence
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO predictions (id, created_at, endpoint, outcome, digit, confidence, message, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.CreatedAt.UTC().Format(timeLayout),
		rec.Endpoint,
		string(rec.Outcome),
		digit,
		confidence,
		rec.Message,
		rec.DurationMs,
	)
	return err
}

func filterClause(cfg model.HistoryConfig) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	return strings.Join(clauses, " AND "), args
}

// ListPredictions returns attempts in chronological order, filtered by cfg.
// When cfg.Last is set only the most recent attempts are returned.
func (s *Store) ListPredictions(ctx context.Context, cfg model.HistoryConfig) ([]model.PredictionRecord, error) {
	where, args := filterClause(cfg)
	query := fmt.Sprintf(`SELECT id, created_at, endpoint, outcome, digit, confidence, message, duration_ms
		FROM predictions
		WHERE %s
		ORDER BY created_at DESC, rowid DESC`, where)
	if cfg.Last > 0 {
		query += " LIMIT ?"
		args = append(args, cfg.Last)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.PredictionRecord
	for rows.Next() {
		var rec model.PredictionRecord
		var createdAt, outcome string
		var digit sql.NullInt64
		var confidence sql.NullFloat64
		if err := rows.Scan(&rec.ID, &createdAt, &rec.Endpoint, &outcome, &digit, &confidence, &rec.Message, &rec.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, err
		}
		rec.CreatedAt = parsed
		rec.Outcome = model.Outcome(outcome)
		rec.Digit = int(digit.Int64)
		rec.Confidence = confidence.Float64
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// DigitAggregates aggregates successful predictions per digit.
func (s *Store) DigitAggregates(ctx context.Context, cfg model.HistoryConfig) ([]model.DigitAggregate, error) {
	where, args := filterClause(cfg)
	recent := fmt.Sprintf(`SELECT digit, confidence FROM predictions WHERE %s ORDER BY created_at DESC, rowid DESC`, where)
	if cfg.Last > 0 {
		recent += " LIMIT ?"
		args = append(args, cfg.Last)
	}
	query := fmt.Sprintf(`WITH recent AS (%s)
	SELECT digit, COUNT(*) AS cnt, SUM(confidence) AS conf_sum, MIN(confidence) AS conf_min
	FROM recent
	WHERE digit IS NOT NULL
	GROUP BY digit
	ORDER BY digit`, recent)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.DigitAggregate
	for rows.Next() {
		var agg model.DigitAggregate
		if err := rows.Scan(&agg.Digit, &agg.Count, &agg.ConfidenceSum, &agg.MinConfidence); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
