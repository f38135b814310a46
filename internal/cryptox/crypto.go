// Package cryptox implements the client-side encryption protocol: password
// key derivation, ECDH key-pair generation, data-key agreement, and
// authenticated encryption of opaque string fields.
//
// All functions are pure given their inputs; nothing here logs or retains
// key material.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mpetrovs/spendvault/internal/common"
	"golang.org/x/crypto/hkdf"
)

const (
	// NonceSize is the AES-GCM nonce length prepended to every ciphertext.
	NonceSize = 12

	keySize = 32
)

// hkdfInfo binds derived data keys to this application.
var hkdfInfo = []byte("spendvault/data-key/v1")

// KeyPair holds an exportable P-256 key-agreement pair. Both halves are
// base64-encoded raw key bytes (uncompressed point for the public half,
// scalar bytes for the private half).
type KeyPair struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// DeriveAuthKey derives the symmetric authentication key from a password.
// Deterministic: the same password always yields the same key, so the key
// can be recomputed on every login without the server ever storing the
// password. Used only to wrap/unwrap the key pair, never to encrypt data.
func DeriveAuthKey(password string) []byte {
	hash := sha256.Sum256([]byte(password))
	return hash[:]
}

// GenerateKeyPair generates a fresh P-256 key-agreement pair in the
// exportable form. Called once per account, at signup.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("keypair generation error: %w", err)
	}
	return &KeyPair{
		PublicKey:  base64.StdEncoding.EncodeToString(priv.PublicKey().Bytes()),
		PrivateKey: base64.StdEncoding.EncodeToString(priv.Bytes()),
	}, nil
}

// DeriveDataKey applies ECDH to the user's own public and private halves and
// expands the shared secret through HKDF-SHA256 into a 256-bit AES-GCM key.
// Deterministic per key pair; not derivable from ciphertext alone.
func DeriveDataKey(kp *KeyPair) ([]byte, error) {
	privBytes, err := base64.StdEncoding.DecodeString(kp.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key encoding: %w", err)
	}
	pubBytes, err := base64.StdEncoding.DecodeString(kp.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("invalid public key encoding: %w", err)
	}

	priv, err := ecdh.P256().NewPrivateKey(privBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	pub, err := ecdh.P256().NewPublicKey(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}

	shared, err := priv.ECDH(pub)
	if err != nil {
		return nil, fmt.Errorf("key agreement error: %w", err)
	}

	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, nil, hkdfInfo), key); err != nil {
		return nil, fmt.Errorf("key expansion error: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext under key with AES-256-GCM using a fresh random
// 12-byte nonce and returns base64(nonce‖ciphertext). Non-deterministic:
// encrypting the same plaintext twice yields different ciphertext.
func Encrypt(plaintext string, key []byte) (string, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce generation error: %w", err)
	}

	sealed := aesgcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any failure to authenticate or parse the
// ciphertext yields common.ErrDecryptionFailed; corrupted plaintext is never
// returned silently. A wrapped tag mismatch is the wrong-password signal at
// login.
func Decrypt(ciphertextB64 string, key []byte) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return "", common.ErrDecryptionFailed
	}
	if len(raw) < NonceSize {
		return "", common.ErrDecryptionFailed
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	plaintext, err := aesgcm.Open(nil, raw[:NonceSize], raw[NonceSize:], nil)
	if err != nil {
		return "", common.ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// EncryptKeyPair serializes kp and seals it under the authentication key.
// The result is what the server stores as encrypted_key_pair.
func EncryptKeyPair(kp *KeyPair, authKey []byte) (string, error) {
	data, err := json.Marshal(kp)
	if err != nil {
		return "", fmt.Errorf("keypair serialization error: %w", err)
	}
	return Encrypt(string(data), authKey)
}

// DecryptKeyPair unwraps an encrypted key pair with the authentication key.
// Returns common.ErrDecryptionFailed when the key was derived from the wrong
// password.
func DecryptKeyPair(encrypted string, authKey []byte) (*KeyPair, error) {
	data, err := Decrypt(encrypted, authKey)
	if err != nil {
		return nil, err
	}
	var kp KeyPair
	if err := json.Unmarshal([]byte(data), &kp); err != nil {
		return nil, common.ErrDecryptionFailed
	}
	return &kp, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}
	return aesgcm, nil
}
