package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/dbx"
	"github.com/mpetrovs/spendvault/internal/server/auth"
	"github.com/mpetrovs/spendvault/internal/server/config"
	"github.com/mpetrovs/spendvault/internal/server/mailer"
	"github.com/mpetrovs/spendvault/internal/server/models"
	"github.com/mpetrovs/spendvault/internal/server/repositories/repomanager"
)

// SessionService drives the session half of the auth state machine:
// login request, code verification, authorization of every call, expiry.
type SessionService struct {
	db         *sql.DB
	repos      repomanager.RepositoryManager
	codes      codeIssuer
	secretKey  []byte
	sessionTTL time.Duration
	now        func() time.Time
}

func NewSessionService(db *sql.DB, repos repomanager.RepositoryManager, sender mailer.CodeSender, cfg *config.Config) *SessionService {
	now := time.Now
	return &SessionService{
		db:         db,
		repos:      repos,
		codes:      codeIssuer{repos: repos, sender: sender, codeTTL: cfg.CodeValidityDuration, now: now},
		secretKey:  []byte(cfg.SecretKey),
		sessionTTL: cfg.SessionValidityDuration,
		now:        now,
	}
}

// StartLogin creates an unverified session for an existing account and sends
// a session-purpose verification code. Unknown emails yield ErrUnauthorized
// without revealing whether the account exists.
func (s *SessionService) StartLogin(ctx context.Context, email string) (*models.User, string, error) {
	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", common.ErrUnauthorized
		}
		return nil, "", common.ErrInternal
	}

	var token string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err = s.createUnverified(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// createUnverified inserts an unverified session and issues the session-scope
// code. Shared with UserService.Signup so signup and login converge on the
// same AwaitingCode state.
func (s *SessionService) createUnverified(ctx context.Context, tx dbx.DBTX, user *models.User) (string, error) {
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Verified:  false,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.repos.Sessions(tx).Create(ctx, session); err != nil {
		return "", fmt.Errorf("error creating session: %w", err)
	}

	if err := s.codes.issue(ctx, tx, user.ID, user.Email, common.PurposeSession); err != nil {
		return "", err
	}

	token, err := auth.GenerateSessionToken(session.ID, s.secretKey, s.sessionTTL)
	if err != nil {
		return "", fmt.Errorf("error signing session token: %w", err)
	}
	return token, nil
}

// Verify consumes a session-purpose code and flips the session to verified.
// The session must belong to the given user and must not be expired.
func (s *SessionService) Verify(ctx context.Context, token, userID, code string) (*models.User, error) {
	session, err := s.loadOwned(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	if !session.ExpiresAt.After(s.now()) {
		return nil, common.ErrSessionExpired
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.codes.consume(ctx, tx, userID, code, common.PurposeSession); err != nil {
			return err
		}
		return s.repos.Sessions(tx).MarkVerified(ctx, session.ID)
	}); err != nil {
		return nil, err
	}

	return s.repos.Users(s.db).GetByID(ctx, userID)
}

// Authorize re-validates the session on every authenticated call: signature,
// ownership, verified flag and expiry. This is the only gate against replay
// of a stolen session id.
func (s *SessionService) Authorize(ctx context.Context, token, userID string) (*models.Session, error) {
	session, err := s.loadOwned(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	if !session.Usable(s.now()) {
		return nil, common.ErrUnauthorized
	}
	if err := s.repos.Sessions(s.db).Touch(ctx, session.ID, s.now()); err != nil {
		return nil, common.ErrInternal
	}
	return session, nil
}

// Expire ends a session (logout) by moving its expiry into the past, so any
// replay of the id fails later Authorize checks. Works for unverified
// sessions too: a failed key-pair decryption after code verification must be
// able to tear the half-open session down.
func (s *SessionService) Expire(ctx context.Context, token, userID string) error {
	session, err := s.loadOwned(ctx, token, userID)
	if err != nil {
		return err
	}
	return s.repos.Sessions(s.db).Expire(ctx, session.ID, s.now().Add(-time.Second))
}

// UserByID is a convenience lookup for handlers that need account fields
// (e.g. the email a verification code is delivered to).
func (s *SessionService) UserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.repos.Users(s.db).GetByID(ctx, userID)
}

func (s *SessionService) loadOwned(ctx context.Context, token, userID string) (*models.Session, error) {
	sessionID, err := auth.SessionIDFromToken(token, s.secretKey)
	if err != nil {
		return nil, common.ErrUnauthorized
	}
	session, err := s.repos.Sessions(s.db).GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}
	if session.UserID != userID {
		return nil, common.ErrUnauthorized
	}
	return session, nil
}
