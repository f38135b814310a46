// Package models defines the server-side record types. Every field the
// client marks as encrypted arrives and leaves as opaque ciphertext; the
// server never holds a key that could open it.
package models

import "time"

type User struct {
	ID               string
	Email            string
	EncryptedKeyPair string
	Status           string // trial | active | inactive, mutated by billing
	Currency         string
	CreatedAt        time.Time
}
