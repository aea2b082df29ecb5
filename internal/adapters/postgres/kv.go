package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

type KVStore struct {
	db *pgxpool.Pool
}

// NewKVStore creates the kv table when it is missing.
func NewKVStore(ctx context.Context, db *pgxpool.Pool) (*KVStore, error) {
	if _, err := db.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &KVStore{db: db}, nil
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string

	err := s.db.QueryRow(ctx, `SELECT value FROM kv WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get kv: %w", err)
	}

	return value, true, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set kv: %w", err)
	}

	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete kv: %w", err)
	}

	return nil
}

func (s *KVStore) Close() error {
	s.db.Close()
	return nil
}
