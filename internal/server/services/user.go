package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/dbx"
	"github.com/mpetrovs/spendvault/internal/server/config"
	"github.com/mpetrovs/spendvault/internal/server/mailer"
	"github.com/mpetrovs/spendvault/internal/server/models"
	"github.com/mpetrovs/spendvault/internal/server/repositories/repomanager"
)

// UserService handles signup and the two-phase verified account mutations
// (email/currency/key-pair change, account deletion).
type UserService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	codes    codeIssuer
	sessions *SessionService
	now      func() time.Time
}

func NewUserService(db *sql.DB, repos repomanager.RepositoryManager, sender mailer.CodeSender, sessions *SessionService, cfg *config.Config) *UserService {
	now := time.Now
	return &UserService{
		db:       db,
		repos:    repos,
		codes:    codeIssuer{repos: repos, sender: sender, codeTTL: cfg.CodeValidityDuration, now: now},
		sessions: sessions,
		now:      now,
	}
}

// UpdateRequest carries a partial account mutation. Nil fields stay
// untouched. An empty Code makes this the challenge phase: a user-update
// code is issued and nothing sensitive is mutated.
type UpdateRequest struct {
	Email            *string
	Currency         *string
	EncryptedKeyPair *string
	Code             string
}

// Signup creates the account plus its first unverified session in one
// transaction and issues the session-purpose code.
func (s *UserService) Signup(ctx context.Context, email, encryptedKeyPair string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validEmail(email) || encryptedKeyPair == "" {
		return nil, "", common.ErrValidation
	}

	user := &models.User{
		ID:               uuid.NewString(),
		Email:            email,
		EncryptedKeyPair: encryptedKeyPair,
		Status:           common.StatusTrial,
		Currency:         "USD",
	}

	var token string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repos.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		token, err = s.sessions.createUnverified(ctx, tx, created)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Update applies a sensitive account change using the two-phase pattern.
// Phase one (no code): issue a user-update code, mutate nothing; the caller
// gets codeIssued=true. Phase two (code present): consume the code and apply
// the change. Email and key-pair changes expire every live session for the
// user, forcing a fresh login.
func (s *UserService) Update(ctx context.Context, userID string, req UpdateRequest) (*models.User, bool, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	if req.Email != nil && !validEmail(strings.ToLower(strings.TrimSpace(*req.Email))) {
		return nil, false, common.ErrValidation
	}

	if req.Code == "" {
		if err := s.codes.issue(ctx, s.db, user.ID, user.Email, common.PurposeUserUpdate); err != nil {
			return nil, false, err
		}
		return user, true, nil
	}

	invalidateSessions := req.Email != nil || req.EncryptedKeyPair != nil

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.codes.consume(ctx, tx, user.ID, req.Code, common.PurposeUserUpdate); err != nil {
			return err
		}
		if req.Email != nil {
			user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		}
		if req.Currency != nil {
			user.Currency = *req.Currency
		}
		if req.EncryptedKeyPair != nil {
			user.EncryptedKeyPair = *req.EncryptedKeyPair
		}
		if err := s.repos.Users(tx).Update(ctx, user); err != nil {
			return err
		}
		if invalidateSessions {
			return s.repos.Sessions(tx).ExpireAllForUser(ctx, user.ID, s.now().Add(-time.Second))
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return user, false, nil
}

// Delete removes the account and all its records (cascade), two-phase with
// a user-delete code.
func (s *UserService) Delete(ctx context.Context, userID, code string) (bool, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	if code == "" {
		if err := s.codes.issue(ctx, s.db, user.ID, user.Email, common.PurposeUserDelete); err != nil {
			return false, err
		}
		return true, nil
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.codes.consume(ctx, tx, user.ID, code, common.PurposeUserDelete); err != nil {
			return err
		}
		return s.repos.Users(tx).Delete(ctx, user.ID)
	})
	return false, err
}

// SetStatus is the narrow hook for the external billing collaborator.
func (s *UserService) SetStatus(ctx context.Context, userID, status string) error {
	switch status {
	case common.StatusTrial, common.StatusActive, common.StatusInactive:
	default:
		return common.ErrValidation
	}
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.Status = status
	return s.repos.Users(s.db).Update(ctx, user)
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}
