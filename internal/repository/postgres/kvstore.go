// Package postgres backs the KVStore contract with a JSONB document table.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ckryptbit/internal/jsonutil"
	"ckryptbit/internal/repository"
)

// KVStore stores one JSONB document per key.
type KVStore struct {
	pool   *pgxpool.Pool
	table  string
	logger *slog.Logger
}

// NewKVStore creates the store and ensures its table exists. The table
// name is prefixed so several environments can share one database.
func NewKVStore(ctx context.Context, pool *pgxpool.Pool, prefix string, logger *slog.Logger) (repository.KVStore, error) {
	s := &KVStore{
		pool:   pool,
		table:  prefix + "store_documents",
		logger: logger,
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key        TEXT PRIMARY KEY,
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`, s.table)
	if _, err := pool.Exec(ctx, query); err != nil {
		return nil, fmt.Errorf("ensure %s table: %w", s.table, err)
	}
	return s, nil
}

// Get retrieves the document for key, or (nil, nil) when absent.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE key = $1`, s.table)

	var doc []byte
	err := s.pool.QueryRow(ctx, query, key).Scan(&doc)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get document %s: %w", key, err)
	}
	return doc, nil
}

// Put encodes value with circular-safe JSON and upserts it under key.
func (s *KVStore) Put(ctx context.Context, key string, value any) error {
	doc, err := jsonutil.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", key, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (key, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			doc = EXCLUDED.doc,
			updated_at = now()
	`, s.table)
	if _, err := s.pool.Exec(ctx, query, key, doc); err != nil {
		return fmt.Errorf("put document %s: %w", key, err)
	}

	s.logger.Debug("document stored", "key", key, "bytes", len(doc))
	return nil
}

// Delete removes the document for key; absent keys are a no-op.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, s.table)
	if _, err := s.pool.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("delete document %s: %w", key, err)
	}
	return nil
}
