package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"sitterboard/internal/kv"
)

const DefaultTable = "kv_store"

// KVStore keeps every record in one table keyed by text, mirroring the
// key/value layout the original deployment used. The version column backs
// compare-and-swap.
type KVStore struct {
	db    *sql.DB
	table string
}

func NewKVStore(db *sql.DB, table string) *KVStore {
	if table == "" {
		table = DefaultTable
	}
	return &KVStore{db: db, table: pq.QuoteIdentifier(table)}
}

func (s *KVStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		value JSONB NOT NULL,
		version BIGINT NOT NULL DEFAULT 1,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, s.table))
	if err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

func (s *KVStore) Get(ctx context.Context, key string) (kv.Record, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT key, value, version FROM %s WHERE key = $1`, s.table), key)
	var rec kv.Record
	if err := row.Scan(&rec.Key, &rec.Value, &rec.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return kv.Record{}, kv.ErrNotFound
		}
		return kv.Record{}, fmt.Errorf("kv get %q: %w", key, err)
	}
	return rec, nil
}

func (s *KVStore) Put(ctx context.Context, key string, value []byte) (int64, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`INSERT INTO %[1]s (key, value, version, updated_at)
		VALUES ($1, $2::jsonb, 1, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, version = %[1]s.version + 1, updated_at = now()
		RETURNING version`, s.table), key, string(value))
	var version int64
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("kv put %q: %w", key, err)
	}
	return version, nil
}

func (s *KVStore) ScanPrefix(ctx context.Context, prefix string) ([]kv.Record, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT key, value, version FROM %s
		WHERE left(key, char_length($1)) = $1 ORDER BY key`, s.table), prefix)
	if err != nil {
		return nil, fmt.Errorf("kv scan %q: %w", prefix, err)
	}
	defer rows.Close()
	items := make([]kv.Record, 0)
	for rows.Next() {
		var rec kv.Record
		if err := rows.Scan(&rec.Key, &rec.Value, &rec.Version); err != nil {
			return nil, fmt.Errorf("kv scan %q: %w", prefix, err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kv scan %q: %w", prefix, err)
	}
	return items, nil
}

func (s *KVStore) CompareAndSwap(ctx context.Context, key string, expected int64, value []byte) (int64, error) {
	var row *sql.Row
	if expected == 0 {
		row = s.db.QueryRowContext(ctx, fmt.Sprintf(`INSERT INTO %s (key, value, version, updated_at)
			VALUES ($1, $2::jsonb, 1, now())
			ON CONFLICT (key) DO NOTHING
			RETURNING version`, s.table), key, string(value))
	} else {
		row = s.db.QueryRowContext(ctx, fmt.Sprintf(`UPDATE %s SET value = $2::jsonb, version = version + 1, updated_at = now()
			WHERE key = $1 AND version = $3
			RETURNING version`, s.table), key, string(value), expected)
	}
	var version int64
	if err := row.Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, kv.ErrVersionConflict
		}
		return 0, fmt.Errorf("kv cas %q: %w", key, err)
	}
	return version, nil
}

// Close is a no-op; the *sql.DB is owned by whoever opened it.
func (s *KVStore) Close() error {
	return nil
}
