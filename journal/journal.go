// Package journal persists rename operations in SQLite so that every apply
// can be rolled back later. An operation is recorded as pending before the
// file is touched, marked completed after the rename, and marked rolled back
// when it is undone; timestamps and the original file checksum are kept for
// verification.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Status of a journaled operation.
type Status string

const (
	StatusPending    Status = "pending"
	StatusCompleted  Status = "completed"
	StatusRolledBack Status = "rolled_back"
)

var (
	// ErrNotFound is returned when no operation has the requested ID.
	ErrNotFound = errors.New("operation not found")
)

// Operation is one journaled rename.
type Operation struct {
	ID           int64
	OriginalPath string
	NewPath      string
	Type         string
	Checksum     string
	Status       Status
	CreatedAt    time.Time
	CompletedAt  *time.Time
	RolledBackAt *time.Time
}

// Store is a SQLite-backed operation journal.
type Store struct {
	db     *sql.DB
	path   string
	logger zerolog.Logger
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const operationColumns = "id, original_path, new_path, operation_type, checksum, status, created_at, completed_at, rolled_back_at"

// Open creates or opens the journal database at dbPath, creating parent
// directories as needed.
func Open(dbPath string, logger zerolog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, logger: logger}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS file_renames (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    original_path TEXT NOT NULL,
    new_path TEXT NOT NULL,
    operation_type TEXT NOT NULL,
    checksum TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    created_at TEXT NOT NULL,
    completed_at TEXT,
    rolled_back_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_file_renames_status ON file_renames(status);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("initializing journal schema: %w", err)
	}
	return nil
}

// Record journals a new operation as pending and returns its ID.
func (s *Store) Record(ctx context.Context, op Operation) (int64, error) {
	if op.OriginalPath == "" || op.NewPath == "" {
		return 0, fmt.Errorf("operation requires original and new paths")
	}
	if op.Type == "" {
		op.Type = "rename"
	}

	res, err := s.execRetry(ctx,
		`INSERT INTO file_renames (original_path, new_path, operation_type, checksum, status, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		op.OriginalPath, op.NewPath, op.Type, op.Checksum,
		string(StatusPending), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("recording operation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading operation id: %w", err)
	}

	s.logger.Debug().
		Int64("id", id).
		Str("from", op.OriginalPath).
		Str("to", op.NewPath).
		Msg("Recorded pending operation")
	return id, nil
}

// MarkCompleted transitions a pending operation to completed.
func (s *Store) MarkCompleted(ctx context.Context, id int64) error {
	return s.transition(ctx, id, StatusPending, StatusCompleted, "completed_at")
}

// MarkRolledBack transitions a completed operation to rolled back.
func (s *Store) MarkRolledBack(ctx context.Context, id int64) error {
	return s.transition(ctx, id, StatusCompleted, StatusRolledBack, "rolled_back_at")
}

func (s *Store) transition(ctx context.Context, id int64, from, to Status, stampColumn string) error {
	// stampColumn is one of the fixed schema columns, never user input.
	query := fmt.Sprintf("UPDATE file_renames SET status = ?, %s = ? WHERE id = ? AND status = ?", stampColumn)
	res, err := s.execRetry(ctx, query,
		string(to), time.Now().UTC().Format(time.RFC3339Nano), id, string(from))
	if err != nil {
		return fmt.Errorf("updating operation %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating operation %d: %w", id, err)
	}
	if affected == 0 {
		op, getErr := s.Get(ctx, id)
		if getErr != nil {
			return getErr
		}
		return fmt.Errorf("operation %d is %s, not %s", id, op.Status, from)
	}
	return nil
}

// Get returns the operation with the given ID.
func (s *Store) Get(ctx context.Context, id int64) (Operation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+operationColumns+` FROM file_renames WHERE id = ?`, id)
	op, err := scanOperation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Operation{}, ErrNotFound
	}
	if err != nil {
		return Operation{}, fmt.Errorf("loading operation %d: %w", id, err)
	}
	return op, nil
}

// Pending returns all pending operations in insertion order.
func (s *Store) Pending(ctx context.Context) ([]Operation, error) {
	return s.list(ctx,
		`SELECT `+operationColumns+` FROM file_renames WHERE status = ? ORDER BY id`,
		string(StatusPending))
}

// LastCompleted returns the most recently completed operation.
func (s *Store) LastCompleted(ctx context.Context) (Operation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+operationColumns+` FROM file_renames WHERE status = ? ORDER BY id DESC LIMIT 1`,
		string(StatusCompleted))
	op, err := scanOperation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Operation{}, ErrNotFound
	}
	if err != nil {
		return Operation{}, fmt.Errorf("loading last completed operation: %w", err)
	}
	return op, nil
}

// Recent returns up to limit operations, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Operation, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.list(ctx,
		`SELECT `+operationColumns+` FROM file_renames ORDER BY id DESC LIMIT ?`, limit)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Operation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOperation(row rowScanner) (Operation, error) {
	var (
		op         Operation
		status     string
		created    string
		completed  sql.NullString
		rolledBack sql.NullString
	)
	err := row.Scan(&op.ID, &op.OriginalPath, &op.NewPath, &op.Type, &op.Checksum,
		&status, &created, &completed, &rolledBack)
	if err != nil {
		return Operation{}, err
	}

	op.Status = Status(status)
	if t, err := parseTime(created); err == nil {
		op.CreatedAt = t
	}
	op.CompletedAt = nullableTime(completed)
	op.RolledBackAt = nullableTime(rolledBack)
	return op, nil
}

func nullableTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := parseTime(v.String)
	if err != nil {
		return nil
	}
	return &t
}

func parseTime(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func (s *Store) execRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
