package auth

import (
	"context"
	"errors"

	"github.com/mpetrovs/spendvault/internal/client/api"
	"github.com/mpetrovs/spendvault/internal/cryptox"
)

// Sensitive account mutations follow the same two-phase shape as login:
// the first call (empty code) makes the server email a fresh verification
// code, the second call carries the code and applies the change. The
// returned bool reports whether we are still in the code-issued phase.

// ChangeEmail updates the account email. When applied, the server expires
// every session for the user, so the local identity is dropped and the user
// must log in again.
func (s *Service) ChangeEmail(ctx context.Context, newEmail, code string) (bool, error) {
	return s.updateUser(ctx, api.UpdateUserParams{Email: &newEmail, Code: code}, true)
}

// ChangeCurrency updates the display currency. Not sensitive enough to
// invalidate sessions; the active identity stays.
func (s *Service) ChangeCurrency(ctx context.Context, currency, code string) (bool, error) {
	return s.updateUser(ctx, api.UpdateUserParams{Currency: &currency, Code: code}, false)
}

// ChangePassword re-wraps the key pair under the authentication key derived
// from the new password and uploads the new blob. The pair itself never
// changes, so existing ciphertext stays readable. Applied changes expire all
// sessions.
func (s *Service) ChangePassword(ctx context.Context, newPassword, code string) (bool, error) {
	if !s.begin() {
		return false, ErrBusy
	}
	defer s.end()

	active := s.Active()
	if active == nil {
		return false, errors.New("not logged in")
	}

	wrapped, err := cryptox.EncryptKeyPair(active.KeyPair, cryptox.DeriveAuthKey(newPassword))
	if err != nil {
		return false, err
	}

	return s.applyUpdate(ctx, active, api.UpdateUserParams{EncryptedKeyPair: &wrapped, Code: code}, true)
}

// DeleteAccount removes the user and all their data. Two-phase; when
// applied, every local trace of the identity goes too.
func (s *Service) DeleteAccount(ctx context.Context, code string) (bool, error) {
	if !s.begin() {
		return false, ErrBusy
	}
	defer s.end()

	active := s.Active()
	if active == nil {
		return false, errors.New("not logged in")
	}

	codeIssued, err := s.client.DeleteUser(ctx, active.UserID, active.SessionID, code)
	if err != nil || codeIssued {
		return codeIssued, err
	}

	next, err := s.sessions.ClearActive(ctx)
	if err != nil {
		return false, err
	}
	return false, s.activateStored(next)
}

// WipeData deletes every budget and expense on the server while keeping the
// account. Two-phase, same as the other destructive operations.
func (s *Service) WipeData(ctx context.Context, code string) (bool, error) {
	if !s.begin() {
		return false, ErrBusy
	}
	defer s.end()

	active := s.Active()
	if active == nil {
		return false, errors.New("not logged in")
	}
	return s.client.WipeData(ctx, active.UserID, active.SessionID, code)
}

func (s *Service) updateUser(ctx context.Context, params api.UpdateUserParams, expiresSessions bool) (bool, error) {
	if !s.begin() {
		return false, ErrBusy
	}
	defer s.end()

	active := s.Active()
	if active == nil {
		return false, errors.New("not logged in")
	}
	return s.applyUpdate(ctx, active, params, expiresSessions)
}

func (s *Service) applyUpdate(ctx context.Context, active *Identity, params api.UpdateUserParams, expiresSessions bool) (bool, error) {
	params.UserID = active.UserID
	params.SessionID = active.SessionID

	user, codeIssued, err := s.client.UpdateUser(ctx, params)
	if err != nil || codeIssued {
		return codeIssued, err
	}

	if expiresSessions {
		// the session that made this call is dead now; drop it locally
		next, err := s.sessions.ClearActive(ctx)
		if err != nil {
			return false, err
		}
		return false, s.activateStored(next)
	}

	if user != nil {
		s.mu.Lock()
		if s.active != nil {
			s.active.Email = user.Email
			s.active.Currency = user.Currency
		}
		s.mu.Unlock()
	}
	return false, nil
}
