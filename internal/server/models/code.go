package models

import (
	"time"

	"github.com/mpetrovs/spendvault/internal/common"
)

// VerificationCode is a one-time, purpose-scoped out-of-band challenge.
type VerificationCode struct {
	ID        string
	UserID    string
	Code      string
	Purpose   common.Purpose
	Used      bool
	ExpiresAt time.Time
	CreatedAt time.Time
}
