package sessionStore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/KotFed0t/stock_risk_client/data/session"
	"github.com/KotFed0t/stock_risk_client/internal/model"
	"github.com/KotFed0t/stock_risk_client/utils"
)

type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context) error
}

type Decoder interface {
	Decode(token string) (model.Identity, error)
}

type AuthApi interface {
	Logout(ctx context.Context, token string) error
}

// SessionStore owns the current session. It is the only writer of the
// persisted token and identity; everyone else reads snapshots.
type SessionStore struct {
	storage Storage
	decoder Decoder
	api     AuthApi
	now     func() time.Time

	mu        sync.RWMutex
	session   model.Session
	listeners []func(model.Session)
}

func New(storage Storage, decoder Decoder, api AuthApi) *SessionStore {
	return &SessionStore{
		storage: storage,
		decoder: decoder,
		api:     api,
		now:     time.Now,
	}
}

// Subscribe registers fn to be called with the new snapshot after every change.
func (s *SessionStore) Subscribe(fn func(model.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Current returns a snapshot; re-read it after any blocking call.
func (s *SessionStore) Current() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.session)
}

func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

// Load restores a persisted session at start-up. An undecodable or expired
// token is discarded and the store starts empty.
func (s *SessionStore) Load(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SessionStore.Load"

	token, err := s.storage.Get(ctx, session.TokenKey)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			slog.Debug("no persisted session", slog.String("rqID", rqID), slog.String("op", op))
			return nil
		}
		slog.Error("got error from storage.Get", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	identity, err := s.decoder.Decode(token)
	if err != nil {
		slog.Warn("persisted token is undecodable, dropping it", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return s.storage.Clear(ctx)
	}

	loaded := model.Session{Token: token, Identity: &identity}
	if loaded.Expired(s.now()) {
		slog.Info("persisted token expired, dropping it", slog.String("rqID", rqID), slog.String("op", op))
		return s.storage.Clear(ctx)
	}

	s.set(loaded)
	slog.Debug("session loaded", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", identity.Username))

	return nil
}

// Login decodes and persists token. On a decode error the store is left empty.
func (s *SessionStore) Login(ctx context.Context, token string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SessionStore.Login"

	slog.Debug("Login start", slog.String("rqID", rqID), slog.String("op", op))

	identity, err := s.decoder.Decode(token)
	if err != nil {
		slog.Error("can't decode login token", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		s.set(model.Session{})
		if clearErr := s.storage.Clear(ctx); clearErr != nil {
			slog.Error("got error from storage.Clear", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", clearErr.Error()))
		}
		return err
	}

	return s.persist(ctx, token, identity)
}

// Refresh replaces the session with a re-issued token. On a decode error the
// previous session stays as it was.
func (s *SessionStore) Refresh(ctx context.Context, token string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SessionStore.Refresh"

	slog.Debug("Refresh start", slog.String("rqID", rqID), slog.String("op", op))

	identity, err := s.decoder.Decode(token)
	if err != nil {
		slog.Error("can't decode refreshed token, keeping previous session", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return s.persist(ctx, token, identity)
}

// Logout clears the local session unconditionally, then tells the service.
// The service call result is only logged.
func (s *SessionStore) Logout(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SessionStore.Logout"

	slog.Debug("Logout start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("Logout finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	token := s.Token()
	s.set(model.Session{})

	clearErr := s.storage.Clear(ctx)
	if clearErr != nil {
		slog.Error("got error from storage.Clear", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", clearErr.Error()))
	}

	if s.api != nil {
		if err := s.api.Logout(ctx, token); err != nil {
			slog.Warn("logout request failed, local session already cleared", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}

	return clearErr
}

// DropExpired clears the local session once its token has expired.
func (s *SessionStore) DropExpired(ctx context.Context) error {
	if !s.Current().Expired(s.now()) {
		return nil
	}

	slog.Info("session token expired", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("op", "SessionStore.DropExpired"))
	s.set(model.Session{})
	return s.storage.Clear(ctx)
}

func (s *SessionStore) persist(ctx context.Context, token string, identity model.Identity) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SessionStore.persist"

	identityJson, err := json.Marshal(identity)
	if err != nil {
		slog.Error("can't marshall identity", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if err = s.storage.Set(ctx, session.TokenKey, token); err != nil {
		return err
	}
	if err = s.storage.Set(ctx, session.IdentityKey, string(identityJson)); err != nil {
		return err
	}

	s.set(model.Session{Token: token, Identity: &identity})
	slog.Info("session stored", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", identity.Username))

	return nil
}

func (s *SessionStore) set(next model.Session) {
	s.mu.Lock()
	s.session = next
	listeners := make([]func(model.Session), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot(next))
	}
}

func snapshot(sess model.Session) model.Session {
	if sess.Identity == nil {
		return model.Session{Token: sess.Token}
	}
	identity := *sess.Identity
	return model.Session{Token: sess.Token, Identity: &identity}
}
