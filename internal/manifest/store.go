package manifest

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; readers refuse databases written with another version.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("manifest schema version mismatch")

// DatabaseName is the manifest file name inside the output directory.
const DatabaseName = "manifest.db"

// Episode statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Store manages manifest persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one conversion run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	TrainTotal int
	ValTotal   int
	Succeeded  int
	Failed     int
}

// Record is one episode attempt within a run.
type Record struct {
	RunID        string
	Key          string
	Split        string
	Status       string
	Steps        int
	HasLanguage  bool
	Shard        string
	ErrorMessage string
	CreatedAt    time.Time
}

// Open initializes or connects to the manifest database inside dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure manifest directory: %w", err)
	}

	dbPath := filepath.Join(dir, DatabaseName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the manifest database location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// StartRun records a new run with its discovered split totals.
func (s *Store) StartRun(ctx context.Context, id string, trainTotal, valTotal int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, train_total, val_total) VALUES (?, ?, ?, ?)`,
		id, now, trainTotal, valTotal,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stamps the run's completion time and outcome counts.
func (s *Store) FinishRun(ctx context.Context, id string, succeeded, failed int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, succeeded = ?, failed = ? WHERE id = ?`,
		now, succeeded, failed, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: unknown run %q", id)
	}
	return nil
}

// RecordEpisode appends one episode attempt.
func (s *Store) RecordEpisode(ctx context.Context, rec Record) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO episodes (run_id, key, split, status, steps, has_language, shard, error_message, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Key, rec.Split, rec.Status, rec.Steps, boolValue(rec.HasLanguage),
		nullableString(rec.Shard), nullableString(rec.ErrorMessage), now,
	)
	if err != nil {
		return fmt.Errorf("insert episode: %w", err)
	}
	return nil
}

// LatestRun returns the most recently started run, or nil when the manifest
// is empty.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, train_total, val_total, succeeded, failed
         FROM runs ORDER BY started_at DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// ListEpisodes returns all episode attempts for a run in insertion order.
func (s *Store) ListEpisodes(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, key, split, status, steps, has_language, shard, error_message, created_at
         FROM episodes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec         Record
			hasLanguage int
			shard       sql.NullString
			errMsg      sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&rec.RunID, &rec.Key, &rec.Split, &rec.Status, &rec.Steps,
			&hasLanguage, &shard, &errMsg, &createdAt); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		rec.HasLanguage = hasLanguage != 0
		rec.Shard = shard.String
		rec.ErrorMessage = errMsg.String
		rec.CreatedAt = parseTimestamp(createdAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate episodes: %w", err)
	}
	return records, nil
}

// FailedEpisodes returns the failed attempts for a run.
func (s *Store) FailedEpisodes(ctx context.Context, runID string) ([]Record, error) {
	records, err := s.ListEpisodes(ctx, runID)
	if err != nil {
		return nil, err
	}
	failed := records[:0]
	for _, rec := range records {
		if rec.Status == StatusFailed {
			failed = append(failed, rec)
		}
	}
	return failed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
	)
	if err := row.Scan(&run.ID, &startedAt, &finishedAt, &run.TrainTotal, &run.ValTotal,
		&run.Succeeded, &run.Failed); err != nil {
		return nil, err
	}
	run.StartedAt = parseTimestamp(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTimestamp(finishedAt.String)
	}
	return &run, nil
}

func parseTimestamp(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolValue(b bool) int {
	if b {
		return 1
	}
	return 0
}
