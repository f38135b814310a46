package codes

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

func (r *PostgresRepository) Create(ctx context.Context, code *models.VerificationCode) error {
	query :=
		`INSERT INTO verification_codes (id, user_id, code, purpose, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `
	err := r.db.QueryRowContext(ctx, query,
		code.ID, code.UserID, code.Code, string(code.Purpose), code.ExpiresAt).
		Scan(&code.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// InvalidateUnused deletes rather than marks, so a superseded code later
// classifies as invalid instead of already-used.
func (r *PostgresRepository) InvalidateUnused(ctx context.Context, userID string, purpose common.Purpose) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_codes
		 WHERE user_id = $1 AND purpose = $2 AND used = false`,
		userID, string(purpose))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Consume flips used=false to true in a single conditional UPDATE so the
// one-time property holds under concurrent submissions. When no row is
// updated, a follow-up SELECT classifies the failure.
func (r *PostgresRepository) Consume(ctx context.Context, userID, code string, purpose common.Purpose, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE verification_codes SET used = true
		 WHERE user_id = $1 AND code = $2 AND purpose = $3 AND used = false AND expires_at > $4`,
		userID, code, string(purpose), now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n > 0 {
		return nil
	}
	return r.classify(ctx, userID, code, purpose, now)
}

func (r *PostgresRepository) classify(ctx context.Context, userID, code string, purpose common.Purpose, now time.Time) error {
	query :=
		`SELECT purpose, used, expires_at FROM verification_codes
		 WHERE user_id = $1 AND code = $2
		 ORDER BY created_at DESC
		 LIMIT 1
		 `
	c := &models.VerificationCode{}
	var p string
	err := r.db.QueryRowContext(ctx, query, userID, code).Scan(&p, &c.Used, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrCodeInvalid
		}
		return fmt.Errorf("db error: %w", err)
	}
	switch {
	case common.Purpose(p) != purpose:
		return common.ErrCodeWrongPurpose
	case c.Used:
		return common.ErrCodeAlreadyUsed
	case !c.ExpiresAt.After(now):
		return common.ErrCodeExpired
	default:
		return common.ErrCodeInvalid
	}
}
