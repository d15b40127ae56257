package authService

import (
	"context"
	"log/slog"
	"strings"

	"github.com/KotFed0t/stock_risk_client/internal/model"
	"github.com/KotFed0t/stock_risk_client/internal/service"
	"github.com/KotFed0t/stock_risk_client/utils"
)

type AuthApi interface {
	Login(ctx context.Context, username, password string) (token string, err error)
	Register(ctx context.Context, reg model.Registration) (model.Profile, error)
}

type SessionStore interface {
	Login(ctx context.Context, token string) error
	Logout(ctx context.Context) error
}

type AuthService struct {
	api     AuthApi
	session SessionStore
}

func New(api AuthApi, session SessionStore) *AuthService {
	return &AuthService{api: api, session: session}
}

// Login exchanges credentials for a token and opens a session with it.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AuthService.Login"

	slog.Debug("Login start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		slog.Debug("Login finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	}()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return service.ErrEmptyField
	}

	token, err := s.api.Login(ctx, username, password)
	if err != nil {
		slog.Error("got error from api.Login", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if err = s.session.Login(ctx, token); err != nil {
		slog.Error("got error from session.Login", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// Register creates the account and signs in with the same credentials,
// since the service does not return a token on registration.
func (s *AuthService) Register(ctx context.Context, reg model.Registration) (model.Profile, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AuthService.Register"

	slog.Debug("Register start", slog.String("rqID", rqID), slog.String("op", op), slog.String("email", reg.Email))
	defer func() {
		slog.Debug("Register finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("email", reg.Email))
	}()

	reg.Name = strings.TrimSpace(reg.Name)
	reg.Surname = strings.TrimSpace(reg.Surname)
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Name == "" || reg.Surname == "" || reg.Email == "" || reg.Password == "" {
		return model.Profile{}, service.ErrEmptyField
	}
	if reg.Password != reg.ConfirmPassword {
		return model.Profile{}, service.ErrPasswordMismatch
	}

	profile, err := s.api.Register(ctx, reg)
	if err != nil {
		slog.Error("got error from api.Register", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Profile{}, err
	}

	if err = s.Login(ctx, reg.Email, reg.Password); err != nil {
		return profile, err
	}

	return profile, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.session.Logout(ctx)
}
