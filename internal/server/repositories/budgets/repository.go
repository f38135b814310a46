package budgets

import (
	"context"

	"github.com/mpetrovs/spendvault/internal/server/models"
)

// Repository stores budget rows. Name and value columns are ciphertext; the
// only server-side filter is the plaintext month.
type Repository interface {
	Insert(ctx context.Context, b *models.Budget) error
	Update(ctx context.Context, b *models.Budget) error
	GetByID(ctx context.Context, userID, id string) (*models.Budget, error)
	ListByMonth(ctx context.Context, userID, month string) ([]*models.Budget, error)
	ListAll(ctx context.Context, userID string) ([]*models.Budget, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}
