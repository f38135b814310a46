package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/dbx"
	"github.com/mpetrovs/spendvault/internal/monthx"
	"github.com/mpetrovs/spendvault/internal/server/config"
	"github.com/mpetrovs/spendvault/internal/server/mailer"
	"github.com/mpetrovs/spendvault/internal/server/models"
	"github.com/mpetrovs/spendvault/internal/server/repositories/repomanager"
)

// DataService covers bulk operations: import of pre-encrypted records and
// the two-phase full wipe.
type DataService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	codes codeIssuer
}

func NewDataService(db *sql.DB, repos repomanager.RepositoryManager, sender mailer.CodeSender, cfg *config.Config) *DataService {
	return &DataService{
		db:    db,
		repos: repos,
		codes: codeIssuer{repos: repos, sender: sender, codeTTL: cfg.CodeValidityDuration, now: time.Now},
	}
}

// Import bulk-inserts already-encrypted rows in a single transaction; either
// everything lands or nothing does, so a mid-import failure cannot leave a
// half-merged vault.
func (s *DataService) Import(ctx context.Context, userID string, budgets []*models.Budget, expenses []*models.Expense) error {
	for _, b := range budgets {
		if b.Name == "" || b.Value == "" || !monthx.ValidMonth(b.Month) {
			return common.ErrValidation
		}
	}
	for _, e := range expenses {
		if e.Description == "" || e.Cost == "" || !monthx.ValidDate(e.Date) {
			return common.ErrValidation
		}
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		budgetRepo := s.repos.Budgets(tx)
		for _, b := range budgets {
			b.UserID = userID
			if b.ID == "" {
				b.ID = uuid.NewString()
			}
			if err := budgetRepo.Insert(ctx, b); err != nil {
				return err
			}
		}
		expenseRepo := s.repos.Expenses(tx)
		for _, e := range expenses {
			e.UserID = userID
			if e.ID == "" {
				e.ID = uuid.NewString()
			}
			if err := expenseRepo.Insert(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// Wipe deletes every budget and expense for the user; irreversible, so it is
// gated by a data-delete code. An empty code runs the challenge phase.
func (s *DataService) Wipe(ctx context.Context, userID, email, code string) (bool, error) {
	if code == "" {
		if err := s.codes.issue(ctx, s.db, userID, email, common.PurposeDataDelete); err != nil {
			return false, err
		}
		return true, nil
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.codes.consume(ctx, tx, userID, code, common.PurposeDataDelete); err != nil {
			return err
		}
		if err := s.repos.Expenses(tx).DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
		return s.repos.Budgets(tx).DeleteAllForUser(ctx, userID)
	})
	return false, err
}
