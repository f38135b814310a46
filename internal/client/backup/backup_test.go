package backup

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mpetrovs/spendvault/internal/client/data"
	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/cryptox"
	"github.com/mpetrovs/spendvault/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeStore) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*params.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeStore) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body := f.objects[*params.Key]
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(body)))}, nil
}

func newFixture(t *testing.T) (*Service, *fakeStore, *data.Session) {
	t.Helper()
	store := &fakeStore{objects: map[string][]byte{}}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc := NewService(Config{Bucket: "spendvault"}, logger)
	svc.newClient = func(context.Context, Config) (objectStore, error) { return store, nil }

	kp, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)
	key, err := cryptox.DeriveDataKey(kp)
	require.NoError(t, err)
	return svc, store, &data.Session{UserID: "user-1", SessionID: "session-1", DataKey: key}
}

func TestSnapshotRoundTrip(t *testing.T) {
	svc, store, sess := newFixture(t)
	ctx := context.Background()

	bundle := &data.Bundle{
		Budgets:  []data.Budget{{Name: "Food", Month: "2024-03", Value: 100}},
		Expenses: []data.Expense{{Description: "Lunch", Cost: 10.5, Budget: "Food", Date: "2024-03-05"}},
	}

	key, err := svc.Upload(ctx, sess, bundle)
	require.NoError(t, err)
	assert.Contains(t, key, "vaults/user-1/")

	// the stored object is ciphertext, not the bundle
	raw := string(store.objects[key])
	assert.NotContains(t, raw, "Food")
	assert.NotContains(t, raw, "Lunch")

	got, err := svc.Download(ctx, sess, key)
	require.NoError(t, err)
	assert.Equal(t, bundle, got)
}

func TestSnapshot_WrongKeyFailsToOpen(t *testing.T) {
	svc, _, sess := newFixture(t)
	ctx := context.Background()

	key, err := svc.Upload(ctx, sess, &data.Bundle{})
	require.NoError(t, err)

	kp, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)
	otherKey, err := cryptox.DeriveDataKey(kp)
	require.NoError(t, err)

	other := &data.Session{UserID: sess.UserID, SessionID: sess.SessionID, DataKey: otherKey}
	_, err = svc.Download(ctx, other, key)
	assert.ErrorIs(t, err, common.ErrDecryptionFailed)
}
