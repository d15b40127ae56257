package tokenDecoder

import (
	"errors"
	"fmt"

	"github.com/KotFed0t/stock_risk_client/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

var ErrDecode = errors.New("can't decode session token")

type claims struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	IsSuperuser bool   `json:"is_superuser"`
	jwt.RegisteredClaims
}

// TokenDecoder reads identity claims from a bearer token. The signature is not
// verified: the client has no key, the service checks it on every call.
type TokenDecoder struct {
	parser *jwt.Parser
}

func New() *TokenDecoder {
	return &TokenDecoder{parser: jwt.NewParser()}
}

func (d *TokenDecoder) Decode(token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, fmt.Errorf("%w: empty token", ErrDecode)
	}

	c := &claims{}
	_, _, err := d.parser.ParseUnverified(token, c)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	// tokens issued at login carry only the email in sub
	username := c.Username
	if username == "" {
		username = c.Subject
	}
	if username == "" {
		return model.Identity{}, fmt.Errorf("%w: no username claim", ErrDecode)
	}

	identity := model.Identity{
		ID:          c.ID,
		Name:        c.Name,
		Surname:     c.Surname,
		Username:    username,
		IsSuperuser: c.IsSuperuser,
	}
	if c.ExpiresAt != nil {
		identity.ExpiresAt = c.ExpiresAt.Time
	}

	return identity, nil
}
