package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/KotFed0t/stock_risk_client/config"
	"github.com/KotFed0t/stock_risk_client/internal/model"
	"github.com/KotFed0t/stock_risk_client/internal/requestBuilder"
	"github.com/KotFed0t/stock_risk_client/internal/resultRenderer"
	"github.com/KotFed0t/stock_risk_client/internal/service/analysisWorkflow"
)

type fakeSession struct {
	session model.Session
}

func (f *fakeSession) Current() model.Session            { return f.session }
func (f *fakeSession) Subscribe(func(model.Session))     {}
func (f *fakeSession) DropExpired(context.Context) error { return nil }

type fakeAuth struct {
	session *fakeSession
	logins  [][2]string
}

func (f *fakeAuth) Login(_ context.Context, username, password string) error {
	f.logins = append(f.logins, [2]string{username, password})
	f.session.session = model.Session{Token: "t", Identity: &model.Identity{ID: "u1", Name: "John", Username: username}}
	return nil
}

func (f *fakeAuth) Register(_ context.Context, reg model.Registration) (model.Profile, error) {
	return model.Profile{Email: reg.Email, Name: reg.Name}, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.session.session = model.Session{}
	return nil
}

type fakeSearch struct{}

func (fakeSearch) Search(_ context.Context, symbol string) (model.SearchResult, error) {
	return model.SearchResult{Matches: []model.CompanyMatch{
		{Symbol: "IBM", Name: "International Business Machines Corp"},
		{Symbol: "IBMN", Name: "iShares iBonds"},
	}}, nil
}

type fakeAnalyticsApi struct {
	requests []model.AnalysisRequest
	result   model.AnalysisResult
}

func (f *fakeAnalyticsApi) Analyze(_ context.Context, rq model.AnalysisRequest) (model.AnalysisResult, error) {
	f.requests = append(f.requests, rq)
	return f.result, nil
}

type fakeProfile struct {
	fields []model.ProfileFields
}

func (f *fakeProfile) Profile(context.Context) (model.Profile, error) {
	return model.Profile{Email: "john@example.com", Name: "John"}, nil
}

func (f *fakeProfile) UpdateFields(_ context.Context, fields model.ProfileFields) (bool, error) {
	f.fields = append(f.fields, fields)
	return fields != (model.ProfileFields{}), nil
}

type fakeReport struct{}

func (fakeReport) Generate(_ context.Context, view resultRenderer.View) ([]byte, string, error) {
	return []byte("xlsx:" + view.Symbol), ".xlsx", nil
}

type fakeStorage struct {
	uploaded map[string][]byte
}

func (f *fakeStorage) UploadFile(_ context.Context, r io.Reader, filename string) (string, error) {
	data, _ := io.ReadAll(r)
	f.uploaded[filename] = data
	return "https://drive.example/" + filename, nil
}

// scriptedPrompter answers prompts from a queue and records the menus it was shown.
type scriptedPrompter struct {
	t       *testing.T
	answers []any
	menus   [][]string
}

func (p *scriptedPrompter) next(message string) any {
	p.t.Helper()
	if len(p.answers) == 0 {
		p.t.Fatalf("unexpected prompt %q", message)
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a
}

func (p *scriptedPrompter) Input(message, _ string) (string, error) {
	return p.next(message).(string), nil
}

func (p *scriptedPrompter) Password(message string) (string, error) {
	return p.next(message).(string), nil
}

func (p *scriptedPrompter) Select(message string, options []string, _ string) (string, error) {
	if message == "What next?" {
		p.menus = append(p.menus, options)
	}
	return p.next(message).(string), nil
}

func (p *scriptedPrompter) MultiSelect(message string, _ []string, _ []string) ([]string, error) {
	return p.next(message).([]string), nil
}

func (p *scriptedPrompter) Confirm(message string, _ bool) (bool, error) {
	return p.next(message).(bool), nil
}

type testEnv struct {
	ctrl     *Controller
	session  *fakeSession
	auth     *fakeAuth
	api      *fakeAnalyticsApi
	profile  *fakeProfile
	prompter *scriptedPrompter
	cfg      *config.Config
}

func newTestEnv(t *testing.T, storage CloudStorage) *testEnv {
	t.Helper()

	varValue := 12.3456
	env := &testEnv{
		session:  &fakeSession{},
		api:      &fakeAnalyticsApi{result: model.AnalysisResult{Plot: "iVBORw==", VarValue: &varValue}},
		profile:  &fakeProfile{},
		prompter: &scriptedPrompter{t: t},
		cfg:      &config.Config{PlotDir: t.TempDir()},
	}
	env.auth = &fakeAuth{session: env.session}

	workflow := analysisWorkflow.New(env.api)
	t.Cleanup(workflow.Close)

	env.ctrl = NewController(env.cfg, Deps{
		Session:  env.session,
		Auth:     env.auth,
		Search:   fakeSearch{},
		Analysis: workflow,
		Profile:  env.profile,
		Report:   fakeReport{},
		Storage:  storage,
		Prompter: env.prompter,
	})
	return env
}

func (env *testEnv) run(args ...string) (string, error) {
	out := bytes.Buffer{}
	root := NewRootCmd(env.ctrl)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnalyzeScenario(t *testing.T) {
	env := newTestEnv(t, nil)

	out, err := env.run("analyze", "IBM", "--interval", "daily", "--var", "--method", "historical")
	if err != nil {
		t.Fatalf("analyze = %v; want nil", err)
	}

	if len(env.api.requests) != 1 {
		t.Fatalf("api got %d requests; want 1", len(env.api.requests))
	}
	rq := env.api.requests[0]
	if rq.Calculate != [2]string{"var", ""} || *rq.ConfidenceLevel != 0.99 || *rq.HistoricalDays != 200 || *rq.HorizonDays != 1 || *rq.PortfolioValue != 1000 {
		t.Fatalf("request = %+v", rq)
	}

	if !strings.Contains(out, "12.35") || !strings.Contains(out, "historical simulation") {
		t.Fatalf("output misses the VaR panel:\n%s", out)
	}

	plots, _ := filepath.Glob(filepath.Join(env.cfg.PlotDir, "IBM_daily_*.png"))
	if len(plots) != 1 || !strings.Contains(out, plots[0]) {
		t.Fatalf("plot files = %v; output:\n%s", plots, out)
	}
}

func TestAnalyzeValidationMakesNoCall(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"missing interval", []string{"analyze", "IBM", "--hurst"}, requestBuilder.ErrMissingInterval},
		{"missing method", []string{"analyze", "IBM", "--interval", "daily", "--var"}, requestBuilder.ErrMissingVarMethod},
		{"missing interval before method", []string{"analyze", "IBM", "--var"}, requestBuilder.ErrMissingInterval},
		{"not a number", []string{"analyze", "IBM", "--interval", "daily", "--var", "--method", "historical", "--portfolio-value", "lots"}, requestBuilder.ErrInvalidNumber},
		{"out of range", []string{"analyze", "IBM", "--interval", "daily", "--var", "--method", "historical", "--confidence", "120"}, requestBuilder.ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)

			if _, err := env.run(tt.args...); !errors.Is(err, tt.want) {
				t.Fatalf("analyze = %v; want %v", err, tt.want)
			}
			if len(env.api.requests) != 0 {
				t.Fatalf("api called for invalid selection")
			}
		})
	}
}

func TestAnalyzeReportAndUpload(t *testing.T) {
	storage := &fakeStorage{uploaded: map[string][]byte{}}
	env := newTestEnv(t, storage)
	report := filepath.Join(t.TempDir(), "ibm")

	out, err := env.run("analyze", "IBM", "--interval", "weekly", "--hurst", "--report", report, "--upload")
	if err != nil {
		t.Fatalf("analyze = %v; want nil", err)
	}

	data, err := os.ReadFile(report + ".xlsx")
	if err != nil || string(data) != "xlsx:IBM" {
		t.Fatalf("report = %q, %v", data, err)
	}
	if string(storage.uploaded["ibm.xlsx"]) != "xlsx:IBM" {
		t.Fatalf("uploaded = %v", storage.uploaded)
	}
	if !strings.Contains(out, "https://drive.example/ibm.xlsx") {
		t.Fatalf("link not printed:\n%s", out)
	}
}

func TestAnalyzeUploadNotConfigured(t *testing.T) {
	env := newTestEnv(t, nil)
	report := filepath.Join(t.TempDir(), "ibm.xlsx")

	if _, err := env.run("analyze", "IBM", "--interval", "daily", "--hurst", "--report", report, "--upload"); !errors.Is(err, ErrUploadNotConfigured) {
		t.Fatalf("analyze = %v; want ErrUploadNotConfigured", err)
	}
	if _, err := os.Stat(report); err != nil {
		t.Fatalf("report not written before upload: %v", err)
	}
}

func TestLoginAndWhoAmI(t *testing.T) {
	env := newTestEnv(t, nil)

	out, err := env.run("whoami")
	if err != nil || !strings.Contains(out, "not logged in") {
		t.Fatalf("whoami = %q, %v", out, err)
	}

	env.prompter.answers = []any{"secret"}
	out, err = env.run("login", "-u", "john@example.com")
	if err != nil {
		t.Fatalf("login = %v; want nil", err)
	}
	if env.auth.logins[0] != [2]string{"john@example.com", "secret"} {
		t.Fatalf("logins = %v", env.auth.logins)
	}
	if !strings.Contains(out, "logout") || strings.Contains(out, "register") {
		t.Fatalf("navigation after login:\n%s", out)
	}
}

func TestProfileUpdate(t *testing.T) {
	env := newTestEnv(t, nil)

	out, err := env.run("profile", "update")
	if err != nil || !strings.Contains(out, "nothing to update") {
		t.Fatalf("profile update = %q, %v", out, err)
	}

	out, err = env.run("profile", "update", "--surname", "Nowak")
	if err != nil || !strings.Contains(out, "profile updated") {
		t.Fatalf("profile update = %q, %v", out, err)
	}
	if env.profile.fields[1].Surname != "Nowak" {
		t.Fatalf("fields = %+v", env.profile.fields)
	}
}

func TestShellMenuFollowsSession(t *testing.T) {
	env := newTestEnv(t, nil)
	env.prompter.answers = []any{
		actionLogin, "john@example.com", "secret",
		actionSearch, "ibm", "IBM",
		actionLogout,
		actionQuit,
	}

	if _, err := env.run("shell"); err != nil {
		t.Fatalf("shell = %v; want nil", err)
	}

	if len(env.prompter.menus) != 4 {
		t.Fatalf("menus shown = %d; want 4", len(env.prompter.menus))
	}
	anonymous, loggedIn, afterLogout := env.prompter.menus[0], env.prompter.menus[1], env.prompter.menus[3]
	if !slices.Contains(anonymous, actionLogin) || slices.Contains(anonymous, actionLogout) || slices.Contains(anonymous, actionProfile) {
		t.Fatalf("anonymous menu = %v", anonymous)
	}
	if !slices.Contains(loggedIn, actionLogout) || !slices.Contains(loggedIn, actionProfile) || slices.Contains(loggedIn, actionLogin) {
		t.Fatalf("logged-in menu = %v", loggedIn)
	}
	if !slices.Contains(afterLogout, actionLogin) || slices.Contains(afterLogout, actionLogout) {
		t.Fatalf("menu after logout = %v", afterLogout)
	}
}

func TestShellAnalyzeRunsInBackground(t *testing.T) {
	env := newTestEnv(t, nil)
	env.prompter.answers = []any{
		actionAnalyze, "IBM", "daily", []string{"value at risk"}, "monte_carlo", "200", "1", "1000", "95",
		actionQuit,
	}

	if _, err := env.run("shell"); err != nil {
		t.Fatalf("shell = %v; want nil", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	snap, err := env.ctrl.analysis.Wait(ctx)
	if err != nil || snap.State != analysisWorkflow.Succeeded {
		t.Fatalf("Wait() = %+v, %v", snap, err)
	}
	if rq := snap.Request; *rq.VarType != model.VarMonteCarlo || *rq.ConfidenceLevel != 0.95 {
		t.Fatalf("request = %+v", rq)
	}
}
