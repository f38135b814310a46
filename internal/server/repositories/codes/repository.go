package codes

import (
	"context"
	"time"

	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/server/models"
)

// Repository persists one-time verification codes.
//
// Consume must be atomic at the row level: two concurrent submissions of the
// same code (two tabs, double-click) must yield exactly one success and one
// ErrCodeAlreadyUsed.
type Repository interface {
	Create(ctx context.Context, code *models.VerificationCode) error
	// InvalidateUnused removes all unused codes of a purpose, so only the
	// most recently issued code for an action can succeed. Removal (rather
	// than marking used) keeps ErrCodeAlreadyUsed meaning "the user already
	// consumed this code"; a superseded code is simply ErrCodeInvalid.
	InvalidateUnused(ctx context.Context, userID string, purpose common.Purpose) error
	// Consume atomically marks a matching live code as used. On failure it
	// returns one of ErrCodeInvalid, ErrCodeExpired, ErrCodeAlreadyUsed or
	// ErrCodeWrongPurpose.
	Consume(ctx context.Context, userID, code string, purpose common.Purpose, now time.Time) error
}
