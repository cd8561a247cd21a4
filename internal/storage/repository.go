// Package storage implements the record store on an in-memory SQLite
// database. The database lives and dies with the process: the backend
// exists to exercise the store contract against SQL ordering semantics,
// not to persist records across sessions.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"bitacora/internal/core"
	"bitacora/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ store.RecordStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens a session-scoped in-memory database and applies
// the schema. The pool is pinned to one connection: every :memory:
// connection is its own database.
func NewSQLiteStore() (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, r core.Record) (int, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (date, hours, activity, detail, month, evidence) VALUES (?, ?, ?, ?, ?, ?)`,
		r.Date, r.Hours, r.Activity, r.Detail, r.Month, r.Evidence)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	n, err := s.Len(ctx)
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}

func (s *SQLiteStore) AppendBatch(ctx context.Context, recs []core.Record) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	for _, r := range recs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records (date, hours, activity, detail, month, evidence) VALUES (?, ?, ?, ?, ?, ?)`,
			r.Date, r.Hours, r.Activity, r.Detail, r.Month, r.Evidence); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert batch record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	slog.DebugContext(ctx, "Batch appended to sqlite store", "count", len(recs))
	return nil
}

// rowID maps a positional index to the backing row id. Positions follow
// insertion order, which is the id order.
func (s *SQLiteStore) rowID(ctx context.Context, index int) (int64, error) {
	if index < 0 {
		return 0, fmt.Errorf("record %d: %w", index, core.ErrIndexOutOfRange)
	}
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM records ORDER BY id LIMIT 1 OFFSET ?`, index).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("record %d: %w", index, core.ErrIndexOutOfRange)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve record %d: %w", index, err)
	}
	return id, nil
}

func (s *SQLiteStore) Get(ctx context.Context, index int) (core.Record, error) {
	id, err := s.rowID(ctx, index)
	if err != nil {
		return core.Record{}, err
	}
	var r core.Record
	err = s.db.QueryRowContext(ctx,
		`SELECT date, hours, activity, detail, month, evidence FROM records WHERE id = ?`, id).
		Scan(&r.Date, &r.Hours, &r.Activity, &r.Detail, &r.Month, &r.Evidence)
	if err != nil {
		return core.Record{}, fmt.Errorf("get record %d: %w", index, err)
	}
	return r, nil
}

func (s *SQLiteStore) Mutate(ctx context.Context, index int, upd core.FieldUpdates) error {
	id, err := s.rowID(ctx, index)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE records SET date = ?, hours = ?, activity = ?, detail = ?, month = ? WHERE id = ?`,
		upd.Date, upd.Hours, upd.Activity, upd.Detail, upd.Month, id)
	if err != nil {
		return fmt.Errorf("mutate record %d: %w", index, err)
	}
	return nil
}

func (s *SQLiteStore) SetEvidence(ctx context.Context, index int, ref string) error {
	id, err := s.rowID(ctx, index)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE records SET evidence = ? WHERE id = ?`, ref, id); err != nil {
		return fmt.Errorf("set evidence on record %d: %w", index, err)
	}
	return nil
}

func (s *SQLiteStore) Records(ctx context.Context) ([]core.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, hours, activity, detail, month, evidence FROM records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var r core.Record
		if err := rows.Scan(&r.Date, &r.Hours, &r.Activity, &r.Detail, &r.Month, &r.Evidence); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}
