// Package auth drives the client half of the authentication protocol:
// login/signup requests, verification-code challenges, session expiry, and
// multi-account swapping. It owns the derived key material for the active
// identity and hands it to the data layer explicitly.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mpetrovs/spendvault/internal/client/api"
	"github.com/mpetrovs/spendvault/internal/client/session"
	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/cryptox"
	"github.com/mpetrovs/spendvault/internal/logging"
)

// ErrBusy is returned when a mutating operation is already in flight;
// duplicate submissions (double-click, double-enter) must not fire twice.
var ErrBusy = errors.New("operation already in progress")

// State of the session machine.
type State int

const (
	StateAnonymous State = iota
	StateAwaitingCode
	StateVerified
)

// Identity is a verified session: ids, the unwrapped key pair, and the data
// key derived from it. Exactly one identity is active at a time; swapping
// accounts swaps the whole object rather than mutating shared key state.
type Identity struct {
	UserID    string
	SessionID string
	Email     string
	Currency  string
	KeyPair   *cryptox.KeyPair

	dataKey []byte
}

// DataKey returns the symmetric key every budget/expense field is encrypted
// under. Derived once when the identity is activated.
func (id *Identity) DataKey() []byte {
	return id.dataKey
}

// pendingLogin holds the half-open state between a login/signup request and
// its code verification.
type pendingLogin struct {
	authKey          []byte
	userID           string
	sessionID        string
	email            string
	encryptedKeyPair string
	keyPair          *cryptox.KeyPair // set for signup, where we already hold the plaintext pair
}

// Service is the auth/session state machine.
type Service struct {
	client   api.Client
	sessions *session.Manager
	logger   logging.Logger

	mu      sync.Mutex
	state   State
	pending *pendingLogin
	active  *Identity

	inFlight atomic.Bool
}

func NewService(client api.Client, sessions *session.Manager, logger logging.Logger) *Service {
	return &Service{
		client:   client,
		sessions: sessions,
		logger:   logger,
		state:    StateAnonymous,
	}
}

// begin claims the single in-flight slot for a mutating operation.
func (s *Service) begin() bool {
	return s.inFlight.CompareAndSwap(false, true)
}

func (s *Service) end() {
	s.inFlight.Store(false)
}

// State reports the current machine state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active returns the verified identity, or nil when not logged in.
func (s *Service) Active() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Restore loads the persisted active identity at startup, rebuilding its
// data key. Returns false when nobody is logged in locally.
func (s *Service) Restore(ctx context.Context) (bool, error) {
	stored, err := s.sessions.Active(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	identity, err := buildIdentity(stored)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.active = identity
	s.state = StateVerified
	s.mu.Unlock()
	return true, nil
}

// LoginRequest starts a login: derives the authentication key and asks the
// server for an unverified session plus an emailed code. Transitions
// Anonymous → AwaitingCode.
func (s *Service) LoginRequest(ctx context.Context, email, password string) error {
	if !s.begin() {
		return ErrBusy
	}
	defer s.end()

	authKey := cryptox.DeriveAuthKey(password)

	user, sessionID, err := s.client.StartLogin(ctx, email)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.pending = &pendingLogin{
		authKey:          authKey,
		userID:           user.ID,
		sessionID:        sessionID,
		email:            user.Email,
		encryptedKeyPair: user.EncryptedKeyPair,
	}
	s.state = StateAwaitingCode
	s.mu.Unlock()
	return nil
}

// Signup creates an account: generates the key pair, wraps it under the
// authentication key, and submits it. The plaintext pair is kept in the
// pending state so verification does not need to unwrap it again.
func (s *Service) Signup(ctx context.Context, email, password string) error {
	if !s.begin() {
		return ErrBusy
	}
	defer s.end()

	authKey := cryptox.DeriveAuthKey(password)

	keyPair, err := cryptox.GenerateKeyPair()
	if err != nil {
		return err
	}
	wrapped, err := cryptox.EncryptKeyPair(keyPair, authKey)
	if err != nil {
		return err
	}

	user, sessionID, err := s.client.Signup(ctx, email, wrapped)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.pending = &pendingLogin{
		authKey:          authKey,
		userID:           user.ID,
		sessionID:        sessionID,
		email:            user.Email,
		encryptedKeyPair: wrapped,
		keyPair:          keyPair,
	}
	s.state = StateAwaitingCode
	s.mu.Unlock()
	return nil
}

// VerifyCode completes the challenge: the server checks the code and marks
// the session verified, then the client unwraps the key pair with the
// authentication key. A wrong password surfaces here as ErrDecryptionFailed
// and tears the half-open session down immediately rather than leaving a
// verified-but-unusable session behind.
func (s *Service) VerifyCode(ctx context.Context, code string) error {
	if !s.begin() {
		return ErrBusy
	}
	defer s.end()

	s.mu.Lock()
	pending := s.pending
	s.mu.Unlock()
	if pending == nil {
		return fmt.Errorf("no login in progress")
	}

	user, err := s.client.VerifySession(ctx, pending.userID, pending.sessionID, code)
	if err != nil {
		return err
	}

	keyPair := pending.keyPair
	if keyPair == nil {
		keyPair, err = cryptox.DecryptKeyPair(user.EncryptedKeyPair, pending.authKey)
		if err != nil {
			if delErr := s.client.DeleteSession(ctx, pending.userID, pending.sessionID); delErr != nil {
				s.logger.Error(ctx, "failed to invalidate session after decryption failure", "err", delErr.Error())
			}
			s.mu.Lock()
			s.pending = nil
			s.state = StateAnonymous
			s.mu.Unlock()
			return err
		}
	}

	stored := &session.StoredSession{
		SessionID: pending.sessionID,
		UserID:    pending.userID,
		Email:     user.Email,
		KeyPair:   keyPair,
	}
	identity, err := buildIdentity(stored)
	if err != nil {
		return err
	}
	identity.Currency = user.Currency

	if err := s.sessions.SetActive(ctx, stored); err != nil {
		return err
	}

	s.mu.Lock()
	s.pending = nil
	s.active = identity
	s.state = StateVerified
	s.mu.Unlock()
	return nil
}

// Logout expires the server session and drops the local identity. If
// another identity is stacked locally, it becomes active without a network
// round-trip.
func (s *Service) Logout(ctx context.Context) error {
	if !s.begin() {
		return ErrBusy
	}
	defer s.end()

	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	if active == nil {
		return nil
	}

	if err := s.client.DeleteSession(ctx, active.UserID, active.SessionID); err != nil {
		// local teardown proceeds; the server session still dies at expiry
		s.logger.Warn(ctx, "server-side logout failed", "err", err.Error())
	}

	next, err := s.sessions.ClearActive(ctx)
	if err != nil {
		return err
	}
	return s.activateStored(next)
}

// SwitchAccount promotes a stacked identity to active and re-derives its
// data key. Purely local.
func (s *Service) SwitchAccount(ctx context.Context, userID string) error {
	if !s.begin() {
		return ErrBusy
	}
	defer s.end()

	stored, err := s.sessions.Switch(ctx, userID)
	if err != nil {
		return err
	}
	return s.activateStored(stored)
}

// Accounts lists the other locally available identities.
func (s *Service) Accounts(ctx context.Context) ([]session.StoredSession, error) {
	return s.sessions.Others(ctx)
}

func (s *Service) activateStored(stored *session.StoredSession) error {
	if stored == nil {
		s.mu.Lock()
		s.active = nil
		s.state = StateAnonymous
		s.mu.Unlock()
		return nil
	}
	identity, err := buildIdentity(stored)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.active = identity
	s.state = StateVerified
	s.mu.Unlock()
	return nil
}

func buildIdentity(stored *session.StoredSession) (*Identity, error) {
	dataKey, err := cryptox.DeriveDataKey(stored.KeyPair)
	if err != nil {
		return nil, fmt.Errorf("data key derivation error: %w", err)
	}
	return &Identity{
		UserID:    stored.UserID,
		SessionID: stored.SessionID,
		Email:     stored.Email,
		KeyPair:   stored.KeyPair,
		dataKey:   dataKey,
	}, nil
}
