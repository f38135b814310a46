package users

import (
	"context"

	"github.com/mpetrovs/spendvault/internal/server/models"
)

// Repository persists user accounts. The encrypted key pair column is
// opaque to the server; it is written at signup and replaced only on a
// verified password change.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}
