// Package common defines shared constants and sentinel errors used across
// client and server layers of SpendVault. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Validation errors (bad name/value/date/email); recovered locally,
	// no network call is made.
	ErrValidation = errors.New("validation error")

	// ErrDecryptionFailed signals an AEAD tag mismatch: wrong key or
	// tampered ciphertext. At login this is the sole wrong-password signal.
	ErrDecryptionFailed = errors.New("decryption failed")

	// Verification-code lifecycle errors.
	ErrCodeInvalid      = errors.New("verification code invalid")
	ErrCodeExpired      = errors.New("verification code expired")
	ErrCodeAlreadyUsed  = errors.New("verification code already used")
	ErrCodeWrongPurpose = errors.New("verification code issued for a different purpose")

	// ErrSessionExpired distinguishes a timed-out session from a bad token.
	ErrSessionExpired = errors.New("session expired")

	// Transport errors (network/server failure). Callers must not assume
	// partial success.
	ErrTransport = errors.New("transport error")

	ErrEmailExists = errors.New("email already registered")
)
