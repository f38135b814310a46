package budgets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

const selectColumns = `id, user_id, name_enc, month, value_enc, extra`

func (r *PostgresRepository) Insert(ctx context.Context, b *models.Budget) error {
	query :=
		`INSERT INTO budgets (id, user_id, name_enc, month, value_enc, extra)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `
	_, err := r.db.ExecContext(ctx, query, b.ID, b.UserID, b.Name, b.Month, b.Value, b.Extra)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, b *models.Budget) error {
	query :=
		`UPDATE budgets SET name_enc = $3, month = $4, value_enc = $5, extra = $6
		 WHERE id = $1 AND user_id = $2
		 `
	res, err := r.db.ExecContext(ctx, query, b.ID, b.UserID, b.Name, b.Month, b.Value, b.Extra)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.Budget, error) {
	query := `SELECT ` + selectColumns + ` FROM budgets WHERE id = $1 AND user_id = $2`
	b := &models.Budget{}
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&b.ID, &b.UserID, &b.Name, &b.Month, &b.Value, &b.Extra)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) ListByMonth(ctx context.Context, userID, month string) ([]*models.Budget, error) {
	query := `SELECT ` + selectColumns + ` FROM budgets WHERE user_id = $1 AND month = $2`
	return r.list(ctx, query, userID, month)
}

func (r *PostgresRepository) ListAll(ctx context.Context, userID string) ([]*models.Budget, error) {
	query := `SELECT ` + selectColumns + ` FROM budgets WHERE user_id = $1`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Budget, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Budget
	for rows.Next() {
		b := &models.Budget{}
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Month, &b.Value, &b.Extra); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
