// Package services contains server-side business logic: session lifecycle,
// two-phase verified account mutations, and ciphertext record storage.
package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/dbx"
	"github.com/mpetrovs/spendvault/internal/server/mailer"
	"github.com/mpetrovs/spendvault/internal/server/models"
	"github.com/mpetrovs/spendvault/internal/server/repositories/repomanager"
)

const codeDigits = 6

// generateCode is a test seam; tests pin it to a fixed value.
var generateCode = func() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}

// codeIssuer implements the one reusable two-phase challenge: every sensitive
// action shares this issuance/consumption logic, parameterized by purpose.
type codeIssuer struct {
	repos   repomanager.RepositoryManager
	sender  mailer.CodeSender
	codeTTL time.Duration
	now     func() time.Time
}

// issue invalidates any prior unused codes for (user, purpose), creates a
// fresh one and hands it to the out-of-band sender. Invalidation keeps a
// double-submitted request from leaving two live codes for one action.
func (ci *codeIssuer) issue(ctx context.Context, db dbx.DBTX, userID, email string, purpose common.Purpose) error {
	repo := ci.repos.Codes(db)

	if err := repo.InvalidateUnused(ctx, userID, purpose); err != nil {
		return fmt.Errorf("error invalidating codes: %w", err)
	}

	value, err := generateCode()
	if err != nil {
		return fmt.Errorf("error generating code: %w", err)
	}

	code := &models.VerificationCode{
		ID:        uuid.NewString(),
		UserID:    userID,
		Code:      value,
		Purpose:   purpose,
		ExpiresAt: ci.now().Add(ci.codeTTL),
	}
	if err := repo.Create(ctx, code); err != nil {
		return fmt.Errorf("error creating code: %w", err)
	}

	if err := ci.sender.SendCode(ctx, email, value, purpose); err != nil {
		return fmt.Errorf("error sending code: %w", err)
	}
	return nil
}

// consume is the response half; failures carry the verification taxonomy
// (invalid, expired, already used, wrong purpose).
func (ci *codeIssuer) consume(ctx context.Context, db dbx.DBTX, userID, code string, purpose common.Purpose) error {
	return ci.repos.Codes(db).Consume(ctx, userID, code, purpose, ci.now())
}
