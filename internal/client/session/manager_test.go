package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewManager(store)
}

func stored(userID, email string) *StoredSession {
	return &StoredSession{
		SessionID: "token-" + userID,
		UserID:    userID,
		Email:     email,
		KeyPair:   &cryptox.KeyPair{PublicKey: "pub-" + userID, PrivateKey: "priv-" + userID},
	}
}

func TestManager_ActiveEmpty(t *testing.T) {
	m := newManager(t)
	_, err := m.Active(context.Background())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestManager_SetActiveRoundTrip(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.SetActive(ctx, stored("u1", "a@example.com")))

	got, err := m.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "priv-u1", got.KeyPair.PrivateKey)
}

func TestManager_SecondLoginStacksFirst(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.SetActive(ctx, stored("u1", "a@example.com")))
	require.NoError(t, m.SetActive(ctx, stored("u2", "b@example.com")))

	active, err := m.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u2", active.UserID)

	others, err := m.Others(ctx)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "u1", others[0].UserID)
}

func TestManager_ReloginSameUserDoesNotStack(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.SetActive(ctx, stored("u1", "a@example.com")))
	require.NoError(t, m.SetActive(ctx, stored("u1", "a@example.com")))

	others, err := m.Others(ctx)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestManager_Switch(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.SetActive(ctx, stored("u1", "a@example.com")))
	require.NoError(t, m.SetActive(ctx, stored("u2", "b@example.com")))

	promoted, err := m.Switch(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", promoted.UserID)

	active, err := m.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", active.UserID)

	others, err := m.Others(ctx)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "u2", others[0].UserID)

	_, err = m.Switch(ctx, "nobody")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestManager_ClearActivePromotesNext(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.SetActive(ctx, stored("u1", "a@example.com")))
	require.NoError(t, m.SetActive(ctx, stored("u2", "b@example.com")))

	next, err := m.ClearActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "u1", next.UserID)

	// last logout leaves nobody logged in
	next, err = m.ClearActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, next)

	_, err = m.Active(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryStore_Fallback(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestOpen_FallsBackToMemory(t *testing.T) {
	// a directory path cannot be opened as a database file
	store := Open(t.TempDir() + "/missing/dir/db.sqlite")
	_, ok := store.(*MemoryStore)
	assert.True(t, ok)
}
