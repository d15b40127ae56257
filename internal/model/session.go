package model

import "time"

// Identity is the set of claims decoded from a session token.
type Identity struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Surname     string    `json:"surname"`
	Username    string    `json:"username"`
	IsSuperuser bool      `json:"is_superuser"`
	ExpiresAt   time.Time `json:"expires_at,omitzero"`
}

// Session holds the bearer token and its decoded identity.
// Identity is non-nil iff Token is non-empty.
type Session struct {
	Token    string
	Identity *Identity
}

func (s Session) Active() bool {
	return s.Token != "" && s.Identity != nil
}

func (s Session) Expired(now time.Time) bool {
	if !s.Active() || s.Identity.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.Identity.ExpiresAt)
}

// Affordances describes which navigation controls are available for a session.
type Affordances struct {
	Portfolio bool
	Logout    bool
	Login     bool
	Register  bool
	Admin     bool
}

func (s Session) Affordances() Affordances {
	if !s.Active() {
		return Affordances{Login: true, Register: true}
	}
	return Affordances{
		Portfolio: true,
		Logout:    true,
		Admin:     s.Identity.IsSuperuser,
	}
}
