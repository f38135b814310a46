package cryptox

import (
	"encoding/hex"
	"testing"

	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveAuthKey_Deterministic(t *testing.T) {
	key1 := DeriveAuthKey("secret-password")
	key2 := DeriveAuthKey("secret-password")

	assert.Equal(t, key1, key2)
	assert.Len(t, key1, 32)

	// snapshot: sha256("secret-password")
	expectedHex := "d5adca02c9a46dae33101e9727798d0dd091e155cdfb83a851f9706a7d00eb7d"
	assert.Equal(t, expectedHex, hex.EncodeToString(key1))
}

func TestDeriveAuthKey_DifferentPasswords(t *testing.T) {
	assert.NotEqual(t, DeriveAuthKey("password-1"), DeriveAuthKey("password-2"))
}

func TestDeriveAuthKey_Interchangeable(t *testing.T) {
	// keys derived from the same password decrypt each other's ciphertext
	ct, err := Encrypt("hello", DeriveAuthKey("pw"))
	require.NoError(t, err)

	pt, err := Decrypt(ct, DeriveAuthKey("pw"))
	require.NoError(t, err)
	assert.Equal(t, "hello", pt)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := DeriveAuthKey("pw")

	for _, plaintext := range []string{"", "a", "Groceries", "10.99", "unicode: ünïcødé"} {
		ct, err := Encrypt(plaintext, key)
		require.NoError(t, err)

		pt, err := Decrypt(ct, key)
		require.NoError(t, err)
		assert.Equal(t, plaintext, pt)
	}
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	key := DeriveAuthKey("pw")

	ct1, err := Encrypt("same plaintext", key)
	require.NoError(t, err)
	ct2, err := Encrypt("same plaintext", key)
	require.NoError(t, err)

	assert.NotEqual(t, ct1, ct2)
}

func TestDecrypt_WrongKey(t *testing.T) {
	ct, err := Encrypt("payload", DeriveAuthKey("right"))
	require.NoError(t, err)

	_, err = Decrypt(ct, DeriveAuthKey("wrong"))
	assert.ErrorIs(t, err, common.ErrDecryptionFailed)
}

func TestDecrypt_Malformed(t *testing.T) {
	key := DeriveAuthKey("pw")

	_, err := Decrypt("not base64!!!", key)
	assert.ErrorIs(t, err, common.ErrDecryptionFailed)

	// valid base64 but shorter than a nonce
	_, err = Decrypt("AAAA", key)
	assert.ErrorIs(t, err, common.ErrDecryptionFailed)
}

func TestGenerateKeyPair_Unique(t *testing.T) {
	kp1, err := GenerateKeyPair()
	require.NoError(t, err)
	kp2, err := GenerateKeyPair()
	require.NoError(t, err)

	assert.NotEqual(t, kp1.PrivateKey, kp2.PrivateKey)
	assert.NotEqual(t, kp1.PublicKey, kp2.PublicKey)
}

func TestDeriveDataKey_StablePerKeyPair(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	key1, err := DeriveDataKey(kp)
	require.NoError(t, err)
	key2, err := DeriveDataKey(kp)
	require.NoError(t, err)

	assert.Equal(t, key1, key2)
	assert.Len(t, key1, 32)

	other, err := GenerateKeyPair()
	require.NoError(t, err)
	otherKey, err := DeriveDataKey(other)
	require.NoError(t, err)
	assert.NotEqual(t, key1, otherKey)
}

func TestKeyPair_WrapUnwrap(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	authKey := DeriveAuthKey("correct horse")

	wrapped, err := EncryptKeyPair(kp, authKey)
	require.NoError(t, err)

	got, err := DecryptKeyPair(wrapped, authKey)
	require.NoError(t, err)
	assert.Equal(t, kp, got)

	// wrong password surfaces as a decryption failure, nothing else
	_, err = DecryptKeyPair(wrapped, DeriveAuthKey("battery staple"))
	assert.ErrorIs(t, err, common.ErrDecryptionFailed)
}
