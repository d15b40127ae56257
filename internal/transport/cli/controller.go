package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KotFed0t/stock_risk_client/config"
	"github.com/KotFed0t/stock_risk_client/internal/converter/cliConverter"
	"github.com/KotFed0t/stock_risk_client/internal/model"
	"github.com/KotFed0t/stock_risk_client/internal/requestBuilder"
	"github.com/KotFed0t/stock_risk_client/internal/resultRenderer"
	"github.com/KotFed0t/stock_risk_client/internal/service/analysisWorkflow"
	"github.com/KotFed0t/stock_risk_client/utils"
	"github.com/spf13/cobra"
)

var ErrUploadNotConfigured = errors.New("error report upload is not configured")

type SessionStore interface {
	Current() model.Session
	Subscribe(fn func(model.Session))
	DropExpired(ctx context.Context) error
}

type AuthService interface {
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, reg model.Registration) (model.Profile, error)
	Logout(ctx context.Context) error
}

type SearchService interface {
	Search(ctx context.Context, symbol string) (model.SearchResult, error)
}

type AnalysisWorkflow interface {
	Submit(ctx context.Context, sel model.AnalysisSelection) (uint64, error)
	Wait(ctx context.Context) (analysisWorkflow.Snapshot, error)
	Snapshot() analysisWorkflow.Snapshot
	Subscribe(fn func(analysisWorkflow.Snapshot))
	SelectionChanged()
}

type ProfileWorkflow interface {
	Profile(ctx context.Context) (model.Profile, error)
	UpdateFields(ctx context.Context, fields model.ProfileFields) (bool, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, view resultRenderer.View) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

type Scheduler interface {
	NewIntervalJob(name string, fn func(ctx context.Context) error, interval time.Duration, startImmediately bool)
	Start()
	Stop()
}

type Controller struct {
	cfg      *config.Config
	session  SessionStore
	auth     AuthService
	search   SearchService
	analysis AnalysisWorkflow
	profile  ProfileWorkflow
	report   ReportGenerator
	storage  CloudStorage
	sched    Scheduler
	prompter Prompter
}

type Deps struct {
	Session  SessionStore
	Auth     AuthService
	Search   SearchService
	Analysis AnalysisWorkflow
	Profile  ProfileWorkflow
	Report   ReportGenerator
	// Storage is nil when report upload is not configured.
	Storage   CloudStorage
	Scheduler Scheduler
	Prompter  Prompter
}

func NewController(cfg *config.Config, deps Deps) *Controller {
	prompter := deps.Prompter
	if prompter == nil {
		prompter = SurveyPrompter{}
	}
	return &Controller{
		cfg:      cfg,
		session:  deps.Session,
		auth:     deps.Auth,
		search:   deps.Search,
		analysis: deps.Analysis,
		profile:  deps.Profile,
		report:   deps.Report,
		storage:  deps.Storage,
		sched:    deps.Scheduler,
		prompter: prompter,
	}
}

func (ctrl *Controller) Login(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	var err error
	if username == "" {
		if username, err = ctrl.prompter.Input("Email:", ""); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = ctrl.prompter.Password("Password:"); err != nil {
			return err
		}
	}

	return ctrl.login(ctx, cmd.OutOrStdout(), username, password)
}

func (ctrl *Controller) login(ctx context.Context, out io.Writer, username, password string) error {
	if err := ctrl.auth.Login(ctx, username, password); err != nil {
		return err
	}
	fmt.Fprintln(out, cliConverter.OkResponse("logged in"))
	fmt.Fprintln(out, cliConverter.SessionResponse(ctrl.session.Current()))
	return nil
}

func (ctrl *Controller) Register(cmd *cobra.Command, args []string) error {
	reg := model.Registration{}
	reg.Name, _ = cmd.Flags().GetString("name")
	reg.Surname, _ = cmd.Flags().GetString("surname")
	reg.Email, _ = cmd.Flags().GetString("email")
	reg.Password, _ = cmd.Flags().GetString("password")
	reg.ConfirmPassword, _ = cmd.Flags().GetString("confirm-password")

	if err := ctrl.promptRegistration(&reg); err != nil {
		return err
	}

	return ctrl.register(cmd.Context(), cmd.OutOrStdout(), reg)
}

func (ctrl *Controller) promptRegistration(reg *model.Registration) error {
	fields := []struct {
		label  string
		value  *string
		secret bool
	}{
		{"Name:", &reg.Name, false},
		{"Surname:", &reg.Surname, false},
		{"Email:", &reg.Email, false},
		{"Password:", &reg.Password, true},
		{"Confirm password:", &reg.ConfirmPassword, true},
	}

	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		var err error
		if f.secret {
			*f.value, err = ctrl.prompter.Password(f.label)
		} else {
			*f.value, err = ctrl.prompter.Input(f.label, "")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (ctrl *Controller) register(ctx context.Context, out io.Writer, reg model.Registration) error {
	profile, err := ctrl.auth.Register(ctx, reg)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cliConverter.OkResponse("account created"))
	fmt.Fprintln(out, cliConverter.ProfileResponse(profile))
	return nil
}

func (ctrl *Controller) Logout(cmd *cobra.Command, args []string) error {
	return ctrl.logout(cmd.Context(), cmd.OutOrStdout())
}

func (ctrl *Controller) logout(ctx context.Context, out io.Writer) error {
	if err := ctrl.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, cliConverter.OkResponse("logged out"))
	fmt.Fprintln(out, cliConverter.NavigationLine(ctrl.session.Current().Affordances()))
	return nil
}

func (ctrl *Controller) WhoAmI(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), cliConverter.SessionResponse(ctrl.session.Current()))
	return nil
}

func (ctrl *Controller) Search(cmd *cobra.Command, args []string) error {
	_, err := ctrl.searchSymbol(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "))
	return err
}

func (ctrl *Controller) searchSymbol(ctx context.Context, out io.Writer, symbol string) (model.SearchResult, error) {
	res, err := ctrl.search.Search(ctx, symbol)
	if err != nil {
		return model.SearchResult{}, err
	}
	fmt.Fprintln(out, cliConverter.SearchResponse(res))
	return res, nil
}

// analyzeOptions are the analyze flags as typed; numbers stay strings until
// the request builder coerces them.
type analyzeOptions struct {
	interval       string
	valueAtRisk    bool
	hurst          bool
	method         string
	historicalDays string
	horizonDays    string
	portfolioValue string
	confidence     string
	report         string
	upload         bool
}

func analyzeOptionsFromFlags(cmd *cobra.Command) analyzeOptions {
	f := cmd.Flags()
	opts := analyzeOptions{}
	opts.interval, _ = f.GetString("interval")
	opts.valueAtRisk, _ = f.GetBool("var")
	opts.hurst, _ = f.GetBool("hurst")
	opts.method, _ = f.GetString("method")
	opts.historicalDays, _ = f.GetString("historical-days")
	opts.horizonDays, _ = f.GetString("horizon-days")
	opts.portfolioValue, _ = f.GetString("portfolio-value")
	opts.confidence, _ = f.GetString("confidence")
	opts.report, _ = f.GetString("report")
	opts.upload, _ = f.GetBool("upload")
	return opts
}

func (o analyzeOptions) selection(symbol string) model.AnalysisSelection {
	sel := model.NewAnalysisSelection(symbol)
	sel.Interval = model.Interval(o.interval)

	if o.valueAtRisk {
		sel.SetAnalytic(model.ValueAtRisk, true)
		sel.Var.Method = model.VarMethod(o.method)
		sel.Var.HistoricalDays = o.historicalDays
		sel.Var.HorizonDays = o.horizonDays
		sel.Var.PortfolioValue = o.portfolioValue
		sel.Var.ConfidenceLevel = o.confidence
	}
	if o.hurst {
		sel.SetAnalytic(model.HurstExponent, true)
	}
	return sel
}

func (ctrl *Controller) Analyze(cmd *cobra.Command, args []string) error {
	opts := analyzeOptionsFromFlags(cmd)
	if opts.upload && opts.report == "" {
		return errors.New("--upload needs --report")
	}

	sel := opts.selection(args[0])
	view, err := ctrl.analyze(cmd.Context(), cmd.OutOrStdout(), sel)
	if err != nil {
		return err
	}

	if opts.report != "" {
		return ctrl.writeReport(cmd.Context(), cmd.OutOrStdout(), view, opts.report, opts.upload)
	}
	return nil
}

// analyze submits sel and blocks until its response is rendered.
func (ctrl *Controller) analyze(ctx context.Context, out io.Writer, sel model.AnalysisSelection) (resultRenderer.View, error) {
	if err := requestBuilder.CheckBounds(sel); err != nil {
		return resultRenderer.View{}, err
	}

	id, err := ctrl.analysis.Submit(ctx, sel)
	if err != nil {
		return resultRenderer.View{}, err
	}

	fmt.Fprintln(out, cliConverter.AnalysisResponse(resultRenderer.View{Loading: true}, ""))

	snap, err := ctrl.analysis.Wait(ctx)
	if err != nil {
		return resultRenderer.View{}, err
	}
	if snap.ID != id {
		return resultRenderer.View{}, errors.New("analysis superseded by a newer request")
	}
	if snap.State == analysisWorkflow.Failed {
		return resultRenderer.View{}, snap.Err
	}

	view := resultRenderer.Render(snap.Request, snap.Result, false)
	fmt.Fprintln(out, cliConverter.AnalysisResponse(view, ctrl.savePlot(ctx, view)))

	return view, nil
}

// savePlot writes the plot next to the other plots; a failure only costs the file.
func (ctrl *Controller) savePlot(ctx context.Context, view resultRenderer.View) string {
	if !view.ShowPlot() {
		return ""
	}

	path, err := cliConverter.WritePlot(ctrl.cfg.PlotDir, view, time.Now())
	if err != nil {
		slog.Warn(
			"can't write plot",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.String("op", "Controller.savePlot"),
			slog.String("err", err.Error()),
		)
		return ""
	}
	return path
}

func (ctrl *Controller) writeReport(ctx context.Context, out io.Writer, view resultRenderer.View, path string, upload bool) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Controller.writeReport"

	fileBytes, ext, err := ctrl.report.Generate(ctx, view)
	if err != nil {
		return err
	}

	if filepath.Ext(path) != ext {
		path += ext
	}
	if err = os.WriteFile(path, fileBytes, 0o644); err != nil {
		slog.Error("can't write report", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}
	fmt.Fprintln(out, cliConverter.OkResponse("report saved to "+path))

	if !upload {
		return nil
	}
	if ctrl.storage == nil {
		return ErrUploadNotConfigured
	}

	link, err := ctrl.storage.UploadFile(ctx, bytes.NewReader(fileBytes), filepath.Base(path))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cliConverter.OkResponse("report uploaded: "+link))

	return nil
}

func (ctrl *Controller) ProfileShow(cmd *cobra.Command, args []string) error {
	profile, err := ctrl.profile.Profile(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cliConverter.ProfileResponse(profile))
	return nil
}

func (ctrl *Controller) ProfileUpdate(cmd *cobra.Command, args []string) error {
	fields := model.ProfileFields{}
	fields.Name, _ = cmd.Flags().GetString("name")
	fields.Surname, _ = cmd.Flags().GetString("surname")
	fields.Username, _ = cmd.Flags().GetString("email")

	return ctrl.updateProfile(cmd.Context(), cmd.OutOrStdout(), fields)
}

func (ctrl *Controller) updateProfile(ctx context.Context, out io.Writer, fields model.ProfileFields) error {
	updated, err := ctrl.profile.UpdateFields(ctx, fields)
	if err != nil {
		return err
	}
	if !updated {
		fmt.Fprintln(out, cliConverter.OkResponse("nothing to update"))
		return nil
	}
	fmt.Fprintln(out, cliConverter.OkResponse("profile updated"))
	fmt.Fprintln(out, cliConverter.SessionResponse(ctrl.session.Current()))
	return nil
}
