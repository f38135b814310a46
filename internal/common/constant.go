package common

// SessionTokenHeaderName is the HTTP header used to carry the session token
// on authenticated requests, in addition to the JSON body fields.
const SessionTokenHeaderName = "X-Session-Token"

// Purpose scopes a verification code to the sensitive action it was issued
// for. A code issued for one purpose must never satisfy a check for another.
type Purpose string

const (
	PurposeSession    Purpose = "session"
	PurposeUserUpdate Purpose = "user-update"
	PurposeDataDelete Purpose = "data-delete"
	PurposeUserDelete Purpose = "user-delete"
)

// Valid reports whether p is one of the known purposes.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeSession, PurposeUserUpdate, PurposeDataDelete, PurposeUserDelete:
		return true
	}
	return false
}

// User subscription statuses.
const (
	StatusTrial    = "trial"
	StatusActive   = "active"
	StatusInactive = "inactive"
)
