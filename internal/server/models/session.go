package models

import "time"

// Session is created unverified on login/signup and becomes usable only
// after the matching verification code is consumed. Logout and sensitive
// account mutations expire it by moving ExpiresAt into the past.
type Session struct {
	ID         string
	UserID     string
	Verified   bool
	ExpiresAt  time.Time
	LastSeenAt time.Time
	CreatedAt  time.Time
}

// Usable reports whether the session may authorize requests at time now.
func (s *Session) Usable(now time.Time) bool {
	return s.Verified && s.ExpiresAt.After(now)
}
