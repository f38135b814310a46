package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/mpetrovs/spendvault/internal/client/api/apitest"
	"github.com/mpetrovs/spendvault/internal/client/session"
	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/cryptox"
	"github.com/mpetrovs/spendvault/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (*Service, *apitest.Fake, *session.Manager) {
	t.Helper()
	fake := apitest.New()
	manager := session.NewManager(session.NewMemoryStore())
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewService(fake, manager, logger), fake, manager
}

// registerUser seeds the fake with a user whose key pair is wrapped under
// the given password, the way signup would have left it.
func registerUser(t *testing.T, fake *apitest.Fake, email, password string) *cryptox.KeyPair {
	t.Helper()
	kp, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)
	wrapped, err := cryptox.EncryptKeyPair(kp, cryptox.DeriveAuthKey(password))
	require.NoError(t, err)
	fake.User.Email = email
	fake.User.EncryptedKeyPair = wrapped
	return kp
}

func TestSignupAndVerify(t *testing.T) {
	svc, _, manager := newFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "new@example.com", "pw"))
	assert.Equal(t, StateAwaitingCode, svc.State())
	assert.Nil(t, svc.Active())

	require.NoError(t, svc.VerifyCode(ctx, "123456"))
	assert.Equal(t, StateVerified, svc.State())

	identity := svc.Active()
	require.NotNil(t, identity)
	assert.Equal(t, "new@example.com", identity.Email)
	assert.Len(t, identity.DataKey(), 32)

	stored, err := manager.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, identity.UserID, stored.UserID)
}

func TestLogin_CorrectPassword(t *testing.T) {
	svc, fake, _ := newFixture(t)
	ctx := context.Background()

	kp := registerUser(t, fake, "user@example.com", "correct-horse")

	require.NoError(t, svc.LoginRequest(ctx, "user@example.com", "correct-horse"))
	require.NoError(t, svc.VerifyCode(ctx, "123456"))

	identity := svc.Active()
	require.NotNil(t, identity)
	assert.Equal(t, kp.PrivateKey, identity.KeyPair.PrivateKey)

	wantKey, err := cryptox.DeriveDataKey(kp)
	require.NoError(t, err)
	assert.Equal(t, wantKey, identity.DataKey())
}

func TestLogin_WrongPasswordTearsDownSession(t *testing.T) {
	svc, fake, manager := newFixture(t)
	ctx := context.Background()

	registerUser(t, fake, "user@example.com", "correct-horse")

	require.NoError(t, svc.LoginRequest(ctx, "user@example.com", "battery-staple"))
	err := svc.VerifyCode(ctx, "123456")
	assert.ErrorIs(t, err, common.ErrDecryptionFailed)

	// the half-open session must be invalidated, not left verified
	assert.Equal(t, 1, fake.DeletedSessions)
	assert.Equal(t, StateAnonymous, svc.State())
	assert.Nil(t, svc.Active())
	_, err = manager.Active(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := newFixture(t)
	err := svc.LoginRequest(context.Background(), "nobody@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Equal(t, StateAnonymous, svc.State())
}

func TestVerifyCode_NoPendingLogin(t *testing.T) {
	svc, _, _ := newFixture(t)
	assert.Error(t, svc.VerifyCode(context.Background(), "123456"))
}

func TestLogout_PromotesStackedIdentity(t *testing.T) {
	svc, fake, _ := newFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "first@example.com", "pw1"))
	require.NoError(t, svc.VerifyCode(ctx, "123456"))
	firstID := svc.Active().UserID

	require.NoError(t, svc.Signup(ctx, "second@example.com", "pw2"))
	require.NoError(t, svc.VerifyCode(ctx, "123456"))
	assert.NotEqual(t, firstID, svc.Active().UserID)

	require.NoError(t, svc.Logout(ctx))
	require.NotNil(t, svc.Active())
	assert.Equal(t, firstID, svc.Active().UserID)
	assert.Equal(t, 1, fake.DeletedSessions)

	require.NoError(t, svc.Logout(ctx))
	assert.Nil(t, svc.Active())
	assert.Equal(t, StateAnonymous, svc.State())
}

func TestSwitchAccount(t *testing.T) {
	svc, _, _ := newFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "first@example.com", "pw1"))
	require.NoError(t, svc.VerifyCode(ctx, "123456"))
	firstID := svc.Active().UserID
	firstKey := svc.Active().DataKey()

	require.NoError(t, svc.Signup(ctx, "second@example.com", "pw2"))
	require.NoError(t, svc.VerifyCode(ctx, "123456"))

	require.NoError(t, svc.SwitchAccount(ctx, firstID))
	identity := svc.Active()
	assert.Equal(t, firstID, identity.UserID)
	// the data key is re-derived for the promoted pair
	assert.Equal(t, firstKey, identity.DataKey())

	others, err := svc.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "second@example.com", others[0].Email)
}

func TestRestore(t *testing.T) {
	svc, _, manager := newFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "user@example.com", "pw"))
	require.NoError(t, svc.VerifyCode(ctx, "123456"))

	// a fresh service over the same store resumes the identity
	fresh := NewService(nil, manager,
		logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ok, err := fresh.Restore(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, svc.Active().UserID, fresh.Active().UserID)
	assert.Equal(t, svc.Active().DataKey(), fresh.Active().DataKey())
}

func TestRestore_Empty(t *testing.T) {
	svc, _, _ := newFixture(t)
	ok, err := svc.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChangeCurrency_TwoPhase(t *testing.T) {
	svc, fake, _ := newFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "user@example.com", "pw"))
	require.NoError(t, svc.VerifyCode(ctx, "123456"))

	codeIssued, err := svc.ChangeCurrency(ctx, "EUR", "")
	require.NoError(t, err)
	assert.True(t, codeIssued)
	assert.Equal(t, "USD", fake.User.Currency)

	codeIssued, err = svc.ChangeCurrency(ctx, "EUR", "123456")
	require.NoError(t, err)
	assert.False(t, codeIssued)
	assert.Equal(t, "EUR", fake.User.Currency)
	// currency change keeps the session
	assert.Equal(t, "EUR", svc.Active().Currency)
}

func TestChangeEmail_DropsSession(t *testing.T) {
	svc, fake, _ := newFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "user@example.com", "pw"))
	require.NoError(t, svc.VerifyCode(ctx, "123456"))

	codeIssued, err := svc.ChangeEmail(ctx, "new@example.com", "123456")
	require.NoError(t, err)
	assert.False(t, codeIssued)
	assert.Equal(t, "new@example.com", fake.User.Email)
	// all sessions were expired server-side; the local one goes too
	assert.Nil(t, svc.Active())
	assert.Equal(t, StateAnonymous, svc.State())
}

func TestChangePassword_RewrapsKeyPair(t *testing.T) {
	svc, fake, _ := newFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "user@example.com", "old-pw"))
	require.NoError(t, svc.VerifyCode(ctx, "123456"))
	kp := svc.Active().KeyPair

	codeIssued, err := svc.ChangePassword(ctx, "new-pw", "123456")
	require.NoError(t, err)
	assert.False(t, codeIssued)

	// the stored blob now opens under the new password only, and holds the
	// same pair, so existing ciphertext stays readable
	_, err = cryptox.DecryptKeyPair(fake.User.EncryptedKeyPair, cryptox.DeriveAuthKey("old-pw"))
	assert.ErrorIs(t, err, common.ErrDecryptionFailed)
	got, err := cryptox.DecryptKeyPair(fake.User.EncryptedKeyPair, cryptox.DeriveAuthKey("new-pw"))
	require.NoError(t, err)
	assert.Equal(t, kp.PrivateKey, got.PrivateKey)
}

func TestDeleteAccount_TwoPhase(t *testing.T) {
	svc, fake, _ := newFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "user@example.com", "pw"))
	require.NoError(t, svc.VerifyCode(ctx, "123456"))

	codeIssued, err := svc.DeleteAccount(ctx, "")
	require.NoError(t, err)
	assert.True(t, codeIssued)
	assert.NotNil(t, fake.User)

	codeIssued, err = svc.DeleteAccount(ctx, "123456")
	require.NoError(t, err)
	assert.False(t, codeIssued)
	assert.Nil(t, fake.User)
	assert.Nil(t, svc.Active())
}

func TestWipeData_TwoPhase(t *testing.T) {
	svc, fake, _ := newFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "user@example.com", "pw"))
	require.NoError(t, svc.VerifyCode(ctx, "123456"))

	codeIssued, err := svc.WipeData(ctx, "")
	require.NoError(t, err)
	assert.True(t, codeIssued)
	assert.False(t, fake.Wiped)

	codeIssued, err = svc.WipeData(ctx, "123456")
	require.NoError(t, err)
	assert.False(t, codeIssued)
	assert.True(t, fake.Wiped)
}
