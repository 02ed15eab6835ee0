package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStateRepository stores states in the game_states table (payload JSONB)
type PgStateRepository struct {
	db *pgxpool.Pool
}

func NewPgStateRepository(db *pgxpool.Pool) *PgStateRepository {
	return &PgStateRepository{db: db}
}

func (r *PgStateRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT payload::text FROM game_states WHERE state_key = $1`,
		key,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load state %s: %w", key, err)
	}
	return payload, nil
}

func (r *PgStateRepository) Save(ctx context.Context, key string, payload []byte) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO game_states (state_key, payload, updated_at)
		 VALUES ($1, $2::jsonb, NOW())
		 ON CONFLICT (state_key)
		 DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`,
		key, string(payload),
	)
	if err != nil {
		return fmt.Errorf("save state %s: %w", key, err)
	}
	return nil
}

