package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/arzdex/arzdex/internal/core/logger"
	"github.com/arzdex/arzdex/internal/core/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS exchange_state (
    key        TEXT PRIMARY KEY,
    value      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type postgresStateRepo struct {
	db  *sqlx.DB
	log logger.Logger
}

func NewPostgresStateRepo(db *sqlx.DB, log logger.Logger) (repository.StateRepository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create exchange_state table: %w", err)
	}
	return &postgresStateRepo{db: db, log: log}, nil
}

func (r *postgresStateRepo) Save(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal state %q: %w", key, err)
	}

	const query = `
        INSERT INTO exchange_state (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, key, payload); err != nil {
		r.log.Error("Failed to save state record",
			logger.StringField("key", key),
			logger.ErrorField("error", err))
		return fmt.Errorf("save state %q: %w", key, err)
	}
	return nil
}

func (r *postgresStateRepo) SaveAll(ctx context.Context, records map[string]any) error {
	var isCommitted bool
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		r.log.Error("Error beginning transaction", logger.ErrorField("error", err))
		return fmt.Errorf("error beginning transaction: %w", err)
	}

	defer func() {
		if err != nil && !isCommitted {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Error("Transaction rollback failed", logger.ErrorField("error", rbErr))
			} else {
				r.log.Warn("Transaction rolled back due to error", logger.ErrorField("error", err))
			}
		}
	}()

	const query = `
        INSERT INTO exchange_state (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	for key, value := range records {
		var payload []byte
		payload, err = json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal state %q: %w", key, err)
		}
		if _, err = tx.ExecContext(ctx, query, key, payload); err != nil {
			return fmt.Errorf("save state %q: %w", key, err)
		}
	}

	if err = tx.Commit(); err != nil {
		r.log.Error("Error committing transaction", logger.ErrorField("error", err))
		return fmt.Errorf("commit failed: %w", err)
	}

	isCommitted = true
	return nil
}

func (r *postgresStateRepo) Load(ctx context.Context, key string, dest any) (bool, error) {
	var payload []byte
	const query = `SELECT value FROM exchange_state WHERE key = $1`
	err := r.db.GetContext(ctx, &payload, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("load state %q: %w", key, err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("unmarshal state %q: %w", key, err)
	}
	return true, nil
}
