package expenses

import (
	"context"

	"github.com/mpetrovs/spendvault/internal/server/models"
)

// Repository stores expense rows. Description, cost and the budget name
// reference are ciphertext; the plaintext date drives month filtering.
type Repository interface {
	Insert(ctx context.Context, e *models.Expense) error
	Update(ctx context.Context, e *models.Expense) error
	GetByID(ctx context.Context, userID, id string) (*models.Expense, error)
	ListByMonth(ctx context.Context, userID, month string) ([]*models.Expense, error)
	ListAll(ctx context.Context, userID string) ([]*models.Expense, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}
