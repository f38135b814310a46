package services

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/monthx"
	"github.com/mpetrovs/spendvault/internal/server/models"
	"github.com/mpetrovs/spendvault/internal/server/repositories/repomanager"
)

// RecordService stores and serves ciphertext budget/expense rows. The only
// validation possible here is on the plaintext routing fields (ids, months,
// dates); everything else is opaque by design.
type RecordService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewRecordService(db *sql.DB, repos repomanager.RepositoryManager) *RecordService {
	return &RecordService{db: db, repos: repos}
}

func (s *RecordService) ListBudgets(ctx context.Context, userID, month string) ([]*models.Budget, error) {
	if month == monthx.All {
		return s.repos.Budgets(s.db).ListAll(ctx, userID)
	}
	if !monthx.ValidMonth(month) {
		return nil, common.ErrValidation
	}
	return s.repos.Budgets(s.db).ListByMonth(ctx, userID, month)
}

func (s *RecordService) SaveBudget(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	if b.Name == "" || b.Value == "" || !monthx.ValidMonth(b.Month) {
		return nil, common.ErrValidation
	}
	repo := s.repos.Budgets(s.db)
	if b.ID == "" {
		b.ID = uuid.NewString()
		return b, repo.Insert(ctx, b)
	}
	return b, repo.Update(ctx, b)
}

func (s *RecordService) DeleteBudget(ctx context.Context, userID, id string) error {
	return s.repos.Budgets(s.db).Delete(ctx, userID, id)
}

func (s *RecordService) ListExpenses(ctx context.Context, userID, month string) ([]*models.Expense, error) {
	if month == monthx.All {
		return s.repos.Expenses(s.db).ListAll(ctx, userID)
	}
	if !monthx.ValidMonth(month) {
		return nil, common.ErrValidation
	}
	return s.repos.Expenses(s.db).ListByMonth(ctx, userID, month)
}

func (s *RecordService) SaveExpense(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	if e.Description == "" || e.Cost == "" || !monthx.ValidDate(e.Date) {
		return nil, common.ErrValidation
	}
	repo := s.repos.Expenses(s.db)
	if e.ID == "" {
		e.ID = uuid.NewString()
		return e, repo.Insert(ctx, e)
	}
	return e, repo.Update(ctx, e)
}

func (s *RecordService) DeleteExpense(ctx context.Context, userID, id string) error {
	return s.repos.Expenses(s.db).Delete(ctx, userID, id)
}
