// Package api is the HTTP transport collaborator: a thin JSON client for the
// vault server. Everything in and out of this package is ciphertext or
// routing metadata; encryption happens a layer above.
package api

import "time"

type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	EncryptedKeyPair string    `json:"encrypted_key_pair"`
	Status           string    `json:"status"`
	Currency         string    `json:"currency"`
	CreatedAt        time.Time `json:"created_at"`
}

// Budget is the wire form; Name and Value are ciphertext.
type Budget struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Month string `json:"month"`
	Value string `json:"value"`
	Extra string `json:"extra,omitempty"`
}

// Expense is the wire form; Description, Cost and Budget are ciphertext.
type Expense struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Cost        string `json:"cost"`
	Budget      string `json:"budget"`
	Date        string `json:"date"`
	IsRecurring bool   `json:"is_recurring"`
	Extra       string `json:"extra,omitempty"`
}

// UpdateUserParams mirrors PATCH /user. Nil pointer fields are omitted from
// the request and left untouched by the server.
type UpdateUserParams struct {
	UserID           string  `json:"user_id"`
	SessionID        string  `json:"session_id"`
	Email            *string `json:"email,omitempty"`
	Currency         *string `json:"currency,omitempty"`
	EncryptedKeyPair *string `json:"encrypted_key_pair,omitempty"`
	Code             string  `json:"code,omitempty"`
}
