// Package sqlite stores collections in a single SQLite table through the pure Go
// modernc.org/sqlite driver. It is the local and test backend.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/domain/repository"
	apperrors "coach-portal/internal/shared/errors"

	_ "modernc.org/sqlite"
)

// Backend keeps (collection, id, data) rows with data as JSON text.
type Backend struct {
	db    *sql.DB
	table string
}

var _ repository.CollectionBackend = (*Backend)(nil)

// NewBackend opens path (":memory:" for a throwaway database).
func NewBackend(path, table string) (*Backend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection serializes writers and keeps a :memory: database alive.
	db.SetMaxOpenConns(1)
	return &Backend{db: db, table: table}, nil
}

func (b *Backend) EnsureSchema(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data TEXT NOT NULL,
		PRIMARY KEY (collection, id)
	)`, b.table))
	if err != nil {
		return fmt.Errorf("create table %s: %w", b.table, err)
	}
	return nil
}

func (b *Backend) List(ctx context.Context, collection string) ([]model.Record, error) {
	rows, err := b.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE collection = ? ORDER BY id ASC`, b.table), collection)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	records := make([]model.Record, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		var rec model.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (b *Backend) Get(ctx context.Context, collection, id string) (model.Record, error) {
	var raw string
	err := b.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE collection = ? AND id = ?`, b.table),
		collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	var rec model.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return rec, nil
}

func (b *Backend) Put(ctx context.Context, collection, id string, data model.Record) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	_, err = b.db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data`, b.table),
		collection, id, string(raw))
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, collection, id string) (bool, error) {
	res, err := b.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE collection = ? AND id = ?`, b.table), collection, id)
	if err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *Backend) Close() error {
	return b.db.Close()
}
