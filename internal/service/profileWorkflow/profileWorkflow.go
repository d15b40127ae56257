package profileWorkflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KotFed0t/stock_risk_client/internal/model"
	"github.com/KotFed0t/stock_risk_client/internal/service"
	"github.com/KotFed0t/stock_risk_client/utils"
)

type UserApi interface {
	UpdateUser(ctx context.Context, userID string, edit model.ProfileEdit) (newToken string, err error)
	GetUserByEmail(ctx context.Context, email string) (model.Profile, error)
}

type SessionStore interface {
	Current() model.Session
	Refresh(ctx context.Context, token string) error
}

type ProfileWorkflow struct {
	api     UserApi
	session SessionStore

	mu      sync.Mutex
	loading bool
	// profile is the record fetched for the session token profileKey.
	profile    *model.Profile
	profileKey string
}

func New(api UserApi, session SessionStore) *ProfileWorkflow {
	return &ProfileWorkflow{api: api, session: session}
}

func (w *ProfileWorkflow) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// Update sends edit for the current user and refreshes the session with the
// re-issued token. An empty edit makes no call and reports updated=false.
// On failure the session is left as it was.
func (w *ProfileWorkflow) Update(ctx context.Context, edit model.ProfileEdit) (updated bool, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ProfileWorkflow.Update"

	if edit.Empty() {
		slog.Debug("nothing changed, update skipped", slog.String("rqID", rqID), slog.String("op", op))
		return false, nil
	}

	cur := w.session.Current()
	if !cur.Active() {
		return false, service.ErrNoSession
	}

	slog.Debug("Update start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", cur.Identity.Username))
	defer func() {
		slog.Debug("Update finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", cur.Identity.Username))
	}()

	w.setLoading(true)
	defer w.setLoading(false)

	userID, err := w.userID(ctx, cur)
	if err != nil {
		return false, err
	}

	token, err := w.api.UpdateUser(ctx, userID, edit)
	if err != nil {
		slog.Error("got error from api.UpdateUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return false, err
	}

	if err = w.session.Refresh(ctx, token); err != nil {
		slog.Error("got error from session.Refresh", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return false, err
	}

	return true, nil
}

// userID returns the id of the signed-in user. Tokens issued at login carry
// only the email, so the id then comes from the stored profile.
func (w *ProfileWorkflow) userID(ctx context.Context, cur model.Session) (string, error) {
	if cur.Identity.ID != "" {
		return cur.Identity.ID, nil
	}

	profile, err := w.Profile(ctx)
	if err != nil {
		return "", err
	}
	if profile.ID == "" {
		slog.Error(
			"profile has no id",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.String("op", "ProfileWorkflow.userID"),
			slog.String("username", cur.Identity.Username),
		)
		return "", service.ErrNoUserID
	}
	return profile.ID, nil
}

// UpdateFields diffs the form values against the current identity and sends
// only what changed.
func (w *ProfileWorkflow) UpdateFields(ctx context.Context, fields model.ProfileFields) (bool, error) {
	cur := w.session.Current()
	if !cur.Active() {
		return false, service.ErrNoSession
	}
	return w.Update(ctx, model.DiffProfile(*cur.Identity, fields))
}

// Profile returns the stored record of the signed-in user. It is fetched once
// per session token and served from memory until the session changes.
func (w *ProfileWorkflow) Profile(ctx context.Context) (model.Profile, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ProfileWorkflow.Profile"

	cur := w.session.Current()
	if !cur.Active() {
		w.forget()
		return model.Profile{}, service.ErrNoSession
	}

	w.mu.Lock()
	if w.profile != nil && w.profileKey == cur.Token {
		profile := *w.profile
		w.mu.Unlock()
		slog.Debug("profile served from memory", slog.String("rqID", rqID), slog.String("op", op))
		return profile, nil
	}
	w.mu.Unlock()

	slog.Debug("fetching profile", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", cur.Identity.Username))

	profile, err := w.api.GetUserByEmail(ctx, cur.Identity.Username)
	if err != nil {
		slog.Error("got error from api.GetUserByEmail", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Profile{}, err
	}

	w.mu.Lock()
	w.profile = &profile
	w.profileKey = cur.Token
	w.mu.Unlock()

	return profile, nil
}

// OnSessionChange drops the remembered profile when the session it belongs to
// is gone. Subscribe it to the session store.
func (w *ProfileWorkflow) OnSessionChange(s model.Session) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.profileKey != s.Token {
		w.profile = nil
		w.profileKey = ""
	}
}

func (w *ProfileWorkflow) forget() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.profile = nil
	w.profileKey = ""
}

func (w *ProfileWorkflow) setLoading(v bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = v
}
