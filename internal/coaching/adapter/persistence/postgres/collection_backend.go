package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/domain/repository"
	apperrors "coach-portal/internal/shared/errors"
	"coach-portal/internal/shared/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Backend stores every collection in one JSONB table keyed by (collection, id).
type Backend struct {
	pool   *pgxpool.Pool
	table  string
	logger logger.Logger
}

var _ repository.CollectionBackend = (*Backend)(nil)

// NewBackend connects a pool to dsn. table must already be a validated identifier.
func NewBackend(ctx context.Context, dsn, table string, log logger.Logger) (*Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return NewBackendWithPool(pool, table, log), nil
}

// NewBackendWithPool wraps an existing pool.
func NewBackendWithPool(pool *pgxpool.Pool, table string, log logger.Logger) *Backend {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Backend{pool: pool, table: table, logger: log.WithComponent("postgres-backend")}
}

func (b *Backend) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data JSONB NOT NULL,
		PRIMARY KEY (collection, id)
	)`, b.table)
	if _, err := b.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", b.table, err)
	}
	b.logger.Debugf("table %s ready", b.table)
	return nil
}

func (b *Backend) List(ctx context.Context, collection string) ([]model.Record, error) {
	rows, err := b.pool.Query(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE collection = $1 ORDER BY id ASC`, b.table), collection)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	records := make([]model.Record, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		rec, err := decode(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (b *Backend) Get(ctx context.Context, collection, id string) (model.Record, error) {
	var raw []byte
	err := b.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE collection = $1 AND id = $2`, b.table),
		collection, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return decode(raw)
}

func (b *Backend) Put(ctx context.Context, collection, id string, data model.Record) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	_, err = b.pool.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (collection, id, data) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data`, b.table),
		collection, id, string(raw))
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, collection, id string) (bool, error) {
	tag, err := b.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE collection = $1 AND id = $2`, b.table), collection, id)
	if err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

func (b *Backend) Close() error {
	b.pool.Close()
	return nil
}

func decode(raw []byte) (model.Record, error) {
	var rec model.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
