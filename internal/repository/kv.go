package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrKeyNotFound is returned by Get for keys that were never written.
var ErrKeyNotFound = errors.New("key not found")

// KVRepository is the asynchronous key-value persistence backend consumed by
// the history store. Values are opaque strings; the repository knows nothing
// about their content or encryption.
type KVRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewKVRepository creates a new KVRepository.
func NewKVRepository(db *pgxpool.Pool, logger *zap.Logger) *KVRepository {
	return &KVRepository{
		db:     db,
		logger: logger,
	}
}

// Get reads a value by key. Missing keys return ErrKeyNotFound.
func (r *KVRepository) Get(ctx context.Context, key string) (string, error) {
	query := `
		SELECT value
		FROM key_value_store
		WHERE key = $1
	`

	var value string
	err := r.db.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		r.logger.Error("failed to read key", zap.Error(err), zap.String("key", key))
		return "", fmt.Errorf("failed to read key %s: %w", key, err)
	}

	return value, nil
}

// Set writes a value, replacing any prior value for the key.
func (r *KVRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO key_value_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	_, err := r.db.Exec(ctx, query, key, value)
	if err != nil {
		r.logger.Error("failed to write key", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}

	return nil
}
