package expenses

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

const selectColumns = `id, user_id, description_enc, cost_enc, budget_enc, date, is_recurring, extra`

func (r *PostgresRepository) Insert(ctx context.Context, e *models.Expense) error {
	query :=
		`INSERT INTO expenses (id, user_id, description_enc, cost_enc, budget_enc, date, is_recurring, extra)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.Description, e.Cost, e.Budget, e.Date, e.IsRecurring, e.Extra)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, e *models.Expense) error {
	query :=
		`UPDATE expenses SET description_enc = $3, cost_enc = $4, budget_enc = $5, date = $6, is_recurring = $7, extra = $8
		 WHERE id = $1 AND user_id = $2
		 `
	res, err := r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.Description, e.Cost, e.Budget, e.Date, e.IsRecurring, e.Extra)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.Expense, error) {
	query := `SELECT ` + selectColumns + ` FROM expenses WHERE id = $1 AND user_id = $2`
	e := &models.Expense{}
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&e.ID, &e.UserID, &e.Description, &e.Cost, &e.Budget, &e.Date, &e.IsRecurring, &e.Extra)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) ListByMonth(ctx context.Context, userID, month string) ([]*models.Expense, error) {
	query := `SELECT ` + selectColumns + ` FROM expenses WHERE user_id = $1 AND left(date, 7) = $2 ORDER BY date`
	return r.list(ctx, query, userID, month)
}

func (r *PostgresRepository) ListAll(ctx context.Context, userID string) ([]*models.Expense, error) {
	query := `SELECT ` + selectColumns + ` FROM expenses WHERE user_id = $1 ORDER BY date`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Expense
	for rows.Next() {
		e := &models.Expense{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &e.Cost, &e.Budget, &e.Date, &e.IsRecurring, &e.Extra); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE user_id = $1`, userID)
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
