package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/cryptox"
)

const (
	keyActive = "active_session"
	keyOthers = "other_sessions"
)

// StoredSession is one logged-in identity: enough to resume work without
// re-deriving anything from the password. The key pair here is plaintext on
// purpose; the local store sits inside the client trust boundary.
type StoredSession struct {
	SessionID string           `json:"session_id"`
	UserID    string           `json:"user_id"`
	Email     string           `json:"email"`
	KeyPair   *cryptox.KeyPair `json:"key_pair"`
}

// Manager keeps the active identity and the stack of other logged-in
// identities in the Store.
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Active returns the current identity, or ErrNotFound when nobody is
// logged in.
func (m *Manager) Active(ctx context.Context) (*StoredSession, error) {
	data, err := m.store.Get(ctx, keyActive)
	if err != nil {
		return nil, err
	}
	var s StoredSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("corrupt session record: %w", err)
	}
	return &s, nil
}

// Others returns the stacked identities, oldest first.
func (m *Manager) Others(ctx context.Context) ([]StoredSession, error) {
	data, err := m.store.Get(ctx, keyOthers)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var list []StoredSession
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("corrupt session record: %w", err)
	}
	return list, nil
}

// SetActive installs s as the active identity. A previously active identity
// for another user is pushed onto the stack; logging in again as the same
// user just replaces the active record.
func (m *Manager) SetActive(ctx context.Context, s *StoredSession) error {
	prev, err := m.Active(ctx)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	if prev != nil && prev.UserID != s.UserID {
		others, err := m.Others(ctx)
		if err != nil {
			return err
		}
		others = removeUser(others, s.UserID)
		others = append(others, *prev)
		if err := m.saveOthers(ctx, others); err != nil {
			return err
		}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, keyActive, data)
}

// Switch promotes the stacked identity of userID to active, demoting the
// current one. Purely local: no network round-trip.
func (m *Manager) Switch(ctx context.Context, userID string) (*StoredSession, error) {
	others, err := m.Others(ctx)
	if err != nil {
		return nil, err
	}

	var target *StoredSession
	for i := range others {
		if others[i].UserID == userID {
			target = &others[i]
			break
		}
	}
	if target == nil {
		return nil, common.ErrNotFound
	}
	promoted := *target

	active, err := m.Active(ctx)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	others = removeUser(others, userID)
	if active != nil {
		others = append(others, *active)
	}
	if err := m.saveOthers(ctx, others); err != nil {
		return nil, err
	}

	data, err := json.Marshal(&promoted)
	if err != nil {
		return nil, err
	}
	if err := m.store.Set(ctx, keyActive, data); err != nil {
		return nil, err
	}
	return &promoted, nil
}

// ClearActive drops the active identity (logout) and promotes the most
// recently stacked one, if any. Returns the new active identity or nil.
func (m *Manager) ClearActive(ctx context.Context) (*StoredSession, error) {
	others, err := m.Others(ctx)
	if err != nil {
		return nil, err
	}
	if len(others) == 0 {
		return nil, m.store.Delete(ctx, keyActive)
	}

	next := others[len(others)-1]
	if err := m.saveOthers(ctx, others[:len(others)-1]); err != nil {
		return nil, err
	}
	data, err := json.Marshal(&next)
	if err != nil {
		return nil, err
	}
	if err := m.store.Set(ctx, keyActive, data); err != nil {
		return nil, err
	}
	return &next, nil
}

func (m *Manager) saveOthers(ctx context.Context, others []StoredSession) error {
	if len(others) == 0 {
		return m.store.Delete(ctx, keyOthers)
	}
	data, err := json.Marshal(others)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, keyOthers, data)
}

func removeUser(list []StoredSession, userID string) []StoredSession {
	out := list[:0]
	for _, s := range list {
		if s.UserID != userID {
			out = append(out, s)
		}
	}
	return out
}
