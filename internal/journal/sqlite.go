package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout keeps all nine fractional digits so stored timestamps sort
// lexicographically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const recordColumns = `id, form, session, actor, cluster, status,
	started_at, resolved_at, field_count, answered, values_json, patch_json`

// SQLiteStore implements Store on a SQLite database via database/sql.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens the SQLite database at path, creating the submissions table
// if needed. Use ":memory:" for an ephemeral database.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: opening %s: %w", path, err)
	}
	// A single connection keeps the driver from returning SQLITE_BUSY
	// under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.createTable(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS submissions (
			id          TEXT PRIMARY KEY,
			form        TEXT NOT NULL,
			session     TEXT NOT NULL,
			actor       TEXT NOT NULL,
			cluster     TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL,
			started_at  TEXT NOT NULL,
			resolved_at TEXT NOT NULL,
			field_count INTEGER NOT NULL,
			answered    INTEGER NOT NULL,
			values_json TEXT NOT NULL DEFAULT '',
			patch_json  TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_submissions_form_time
			ON submissions (form, resolved_at DESC);

		CREATE INDEX IF NOT EXISTS idx_submissions_actor_time
			ON submissions (actor, resolved_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("journal: creating submissions table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO submissions (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Form, rec.Session, rec.Actor, rec.Cluster, rec.Status,
		rec.StartedAt.UTC().Format(timeLayout), rec.ResolvedAt.UTC().Format(timeLayout),
		rec.FieldCount, rec.Answered, string(rec.Values), string(rec.Patch),
	)
	if err != nil {
		return fmt.Errorf("journal: saving record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM submissions WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("journal: reading record %s: %w", id, err)
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context, q Query) ([]Record, int, error) {
	var conditions []string
	var args []any
	if q.Form != "" {
		conditions = append(conditions, "form = ?")
		args = append(args, q.Form)
	}
	if q.Actor != "" {
		conditions = append(conditions, "actor = ?")
		args = append(args, q.Actor)
	}
	if q.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, q.Status)
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM submissions"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("journal: counting records: %w", err)
	}

	limit := clampLimit(q.Limit)
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM submissions"+where+
			" ORDER BY resolved_at DESC LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("journal: querying records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("journal: scanning record: %w", err)
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var started, resolved, values, patch string
	err := row.Scan(
		&rec.ID, &rec.Form, &rec.Session, &rec.Actor, &rec.Cluster, &rec.Status,
		&started, &resolved, &rec.FieldCount, &rec.Answered, &values, &patch,
	)
	if err != nil {
		return Record{}, err
	}
	if rec.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Record{}, fmt.Errorf("parsing started_at: %w", err)
	}
	if rec.ResolvedAt, err = time.Parse(timeLayout, resolved); err != nil {
		return Record{}, fmt.Errorf("parsing resolved_at: %w", err)
	}
	if values != "" {
		rec.Values = json.RawMessage(values)
	}
	if patch != "" {
		rec.Patch = json.RawMessage(patch)
	}
	return rec, nil
}
