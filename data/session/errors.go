package session

import "errors"

var ErrNotFound = errors.New("error not found")

// Fixed storage keys of the persisted session.
const (
	TokenKey    = "token"
	IdentityKey = "userInStorage"
)

var keys = []string{TokenKey, IdentityKey}
