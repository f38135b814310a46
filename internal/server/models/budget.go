package models

// Budget stores ciphertext name/value plus the plaintext routing month.
// The (userID, month, decrypted name) uniqueness invariant is enforced by
// the client; the server cannot compare names it cannot read.
type Budget struct {
	ID     string
	UserID string
	Name   string // ciphertext
	Month  string // "YYYY-MM", plaintext
	Value  string // ciphertext
	Extra  string
}
