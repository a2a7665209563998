package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepository struct {
	db *pgxpool.Pool
}

func (r *postgresRepository) Get(ctx context.Context, key string) (value string, err error) {
	query := `
		SELECT value
		FROM iframe_generator.kv_store
		WHERE key = $1`

	err = r.db.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}

	return
}

func (r *postgresRepository) Set(ctx context.Context, key, value string) (err error) {
	query := `
		INSERT INTO iframe_generator.kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.Exec(ctx, query, key, value)
	return
}

func (r *postgresRepository) Remove(ctx context.Context, key string) (err error) {
	query := `
		DELETE FROM iframe_generator.kv_store
		WHERE key = $1`

	_, err = r.db.Exec(ctx, query, key)
	return
}

// EnsureSchema creates the key/value table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	query := `
		CREATE SCHEMA IF NOT EXISTS iframe_generator;
		CREATE TABLE IF NOT EXISTS iframe_generator.kv_store (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`

	if _, err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create kv schema: %w", err)
	}

	return nil
}

func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{
		db: db,
	}
}
