package sessions

import (
	"context"
	"time"

	"github.com/mpetrovs/spendvault/internal/server/models"
)

// Repository persists sessions. Expiry is enforced by moving expires_at
// into the past rather than deleting the row, so a replayed session id
// fails the Usable check instead of looking like it never existed.
type Repository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	MarkVerified(ctx context.Context, id string) error
	Touch(ctx context.Context, id string, seenAt time.Time) error
	Expire(ctx context.Context, id string, at time.Time) error
	ExpireAllForUser(ctx context.Context, userID string, at time.Time) error
}
