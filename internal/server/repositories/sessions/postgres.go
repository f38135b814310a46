package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/dbx"
	"github.com/mpetrovs/spendvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, session *models.Session) error {
	query :=
		`INSERT INTO sessions (id, user_id, verified, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, last_seen_at
		 `
	err := r.db.QueryRowContext(ctx, query,
		session.ID, session.UserID, session.Verified, session.ExpiresAt).
		Scan(&session.CreatedAt, &session.LastSeenAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	query :=
		`SELECT id, user_id, verified, expires_at, last_seen_at, created_at FROM sessions
		 WHERE id = $1
		 `
	s := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&s.ID, &s.UserID, &s.Verified, &s.ExpiresAt, &s.LastSeenAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) MarkVerified(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE sessions SET verified = true WHERE id = $1`, id)
}

func (r *PostgresRepository) Touch(ctx context.Context, id string, seenAt time.Time) error {
	return r.exec(ctx, `UPDATE sessions SET last_seen_at = $2 WHERE id = $1`, id, seenAt)
}

func (r *PostgresRepository) Expire(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `UPDATE sessions SET expires_at = $2 WHERE id = $1`, id, at)
}

func (r *PostgresRepository) ExpireAllForUser(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET expires_at = $2 WHERE user_id = $1 AND expires_at > $2`, userID, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
