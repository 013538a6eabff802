// Package repository provides the PostgreSQL-backed blob store used by
// shared team deployments.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avelichka/steptrack/internal/storage"
)

// PostgresKV implements the storage.KV contract against a single kv table.
type PostgresKV struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresKV creates a PostgresKV with the given database connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresKV(db *sql.DB) *PostgresKV {
	return &PostgresKV{DB: db}
}

// Get returns the blob stored under key, or storage.ErrNotFound.
func (s *PostgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT value FROM kv WHERE key = $1`,
		key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get %q: %w", key, err)
	}
	return value, nil
}

// Put upserts the blob under key.
func (s *PostgresKV) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("Put %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *PostgresKV) Delete(ctx context.Context, key string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM kv WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("Delete %q: %w", key, err)
	}
	return nil
}

// Keys lists all stored keys with the given prefix, sorted.
func (s *PostgresKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT key FROM kv WHERE key LIKE $1 || '%' ORDER BY key
	`, prefix)
	if err != nil {
		return nil, fmt.Errorf("Keys %q: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Keys %q: %w", prefix, err)
	}
	return keys, nil
}
