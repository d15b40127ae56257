package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/KotFed0t/stock_risk_client/internal/converter/cliConverter"
	"github.com/KotFed0t/stock_risk_client/internal/model"
	"github.com/KotFed0t/stock_risk_client/internal/requestBuilder"
	"github.com/KotFed0t/stock_risk_client/internal/resultRenderer"
	"github.com/KotFed0t/stock_risk_client/internal/service/analysisWorkflow"
	"github.com/KotFed0t/stock_risk_client/internal/transport/cli/middleware"
	"github.com/spf13/cobra"
)

const (
	actionSearch   = "search company"
	actionAnalyze  = "analyze"
	actionResult   = "show last result"
	actionReport   = "export report"
	actionProfile  = "profile"
	actionEdit     = "edit profile"
	actionLogin    = "login"
	actionRegister = "register"
	actionLogout   = "logout"
	actionQuit     = "quit"
)

var analyticOptions = map[string]model.Analytic{
	"value at risk":  model.ValueAtRisk,
	"hurst exponent": model.HurstExponent,
}

// syncWriter serializes writes from the menu loop and from analysis callbacks.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

// shell is the state of one interactive session.
type shell struct {
	ctrl   *Controller
	out    io.Writer
	symbol string
}

func (sh *shell) println(s string) {
	fmt.Fprintln(sh.out, s)
}

// Shell runs the interactive menu until the user quits. Analyses run in the
// background and print their result when it arrives; the session watcher job
// drops an expired token while the shell is open.
func (ctrl *Controller) Shell(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sh := &shell{ctrl: ctrl, out: &syncWriter{w: cmd.OutOrStdout()}}

	if ctrl.sched != nil {
		ctrl.sched.NewIntervalJob("drop expired session", ctrl.session.DropExpired, ctrl.cfg.Jobs.SessionCheckInterval, false)
		ctrl.sched.Start()
		defer ctrl.sched.Stop()
	}

	ctrl.analysis.Subscribe(func(snap analysisWorkflow.Snapshot) {
		sh.onAnalysis(ctx, snap)
	})

	sh.println(cliConverter.SessionResponse(ctrl.session.Current()))

	for {
		action, err := ctrl.prompter.Select("What next?", sh.menu(), "")
		if errors.Is(err, terminal.InterruptErr) || action == actionQuit {
			return nil
		}
		if err != nil {
			return err
		}

		err = middleware.LoggedAction(ctx, action, func(ctx context.Context) error {
			return sh.run(ctx, action)
		})
		if err != nil {
			sh.println(cliConverter.ErrorResponse(err))
		}
	}
}

// menu offers only what the current session allows.
func (sh *shell) menu() []string {
	aff := sh.ctrl.session.Current().Affordances()

	items := []string{actionSearch, actionAnalyze}
	if snap := sh.ctrl.analysis.Snapshot(); snap.Result != nil {
		items = append(items, actionResult, actionReport)
	}
	if aff.Portfolio {
		items = append(items, actionProfile, actionEdit)
	}
	if aff.Login {
		items = append(items, actionLogin)
	}
	if aff.Register {
		items = append(items, actionRegister)
	}
	if aff.Logout {
		items = append(items, actionLogout)
	}
	return append(items, actionQuit)
}

func (sh *shell) run(ctx context.Context, action string) error {
	p := sh.ctrl.prompter

	switch action {
	case actionSearch:
		return sh.search(ctx)
	case actionAnalyze:
		return sh.analyze(ctx)
	case actionResult:
		snap := sh.ctrl.analysis.Snapshot()
		sh.println(cliConverter.AnalysisResponse(resultRenderer.Render(snap.Request, snap.Result, snap.Loading()), ""))
		return nil
	case actionReport:
		return sh.report(ctx)
	case actionProfile:
		profile, err := sh.ctrl.profile.Profile(ctx)
		if err != nil {
			return err
		}
		sh.println(cliConverter.ProfileResponse(profile))
		return nil
	case actionEdit:
		return sh.editProfile(ctx)
	case actionLogin:
		username, err := p.Input("Email:", "")
		if err != nil {
			return err
		}
		password, err := p.Password("Password:")
		if err != nil {
			return err
		}
		return sh.ctrl.login(ctx, sh.out, username, password)
	case actionRegister:
		reg := model.Registration{}
		if err := sh.ctrl.promptRegistration(&reg); err != nil {
			return err
		}
		return sh.ctrl.register(ctx, sh.out, reg)
	case actionLogout:
		return sh.ctrl.logout(ctx, sh.out)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func (sh *shell) search(ctx context.Context) error {
	p := sh.ctrl.prompter

	query, err := p.Input("Company symbol or name:", sh.symbol)
	if err != nil {
		return err
	}

	res, err := sh.ctrl.searchSymbol(ctx, sh.out, query)
	if err != nil || !res.Found() {
		return err
	}

	symbols := make([]string, 0, len(res.Matches))
	for _, m := range res.Matches {
		symbols = append(symbols, m.Symbol)
	}
	symbol, err := p.Select("Company:", symbols, symbols[0])
	if err != nil {
		return err
	}

	if symbol != sh.symbol {
		sh.symbol = symbol
		sh.ctrl.analysis.SelectionChanged()
	}
	return nil
}

// analyze composes a selection and submits it without waiting for the response.
func (sh *shell) analyze(ctx context.Context) error {
	sel, err := sh.composeSelection()
	if err != nil {
		return err
	}

	if err = requestBuilder.CheckBounds(sel); err != nil {
		return err
	}

	if _, err = sh.ctrl.analysis.Submit(ctx, sel); err != nil {
		return err
	}
	sh.println(cliConverter.AnalysisResponse(resultRenderer.View{Loading: true}, ""))
	return nil
}

func (sh *shell) composeSelection() (model.AnalysisSelection, error) {
	p := sh.ctrl.prompter

	symbol := sh.symbol
	if symbol == "" {
		var err error
		if symbol, err = p.Input("Symbol:", ""); err != nil {
			return model.AnalysisSelection{}, err
		}
		sh.symbol = symbol
	}
	sel := model.NewAnalysisSelection(symbol)

	intervals := make([]string, 0, len(model.Intervals))
	for _, i := range model.Intervals {
		intervals = append(intervals, string(i))
	}
	interval, err := p.Select("Interval:", intervals, string(model.IntervalDaily))
	if err != nil {
		return model.AnalysisSelection{}, err
	}
	sel.Interval = model.Interval(interval)

	chosen, err := p.MultiSelect("Analytics:", []string{"value at risk", "hurst exponent"}, nil)
	if err != nil {
		return model.AnalysisSelection{}, err
	}
	for _, c := range chosen {
		sel.SetAnalytic(analyticOptions[c], true)
	}

	if sel.Has(model.ValueAtRisk) {
		if err = sh.promptVar(sel.Var); err != nil {
			return model.AnalysisSelection{}, err
		}
	}

	return sel, nil
}

func (sh *shell) promptVar(in *model.VarInput) error {
	p := sh.ctrl.prompter

	methods := make([]string, 0, len(model.VarMethods))
	for _, m := range model.VarMethods {
		methods = append(methods, string(m))
	}
	method, err := p.Select("VaR method:", methods, "")
	if err != nil {
		return err
	}
	in.Method = model.VarMethod(method)

	fields := []struct {
		label string
		value *string
	}{
		{"Historical days (10-10000):", &in.HistoricalDays},
		{"Horizon days (1-10000):", &in.HorizonDays},
		{"Portfolio value (10-1000000000):", &in.PortfolioValue},
		{"Confidence level, % (1-99):", &in.ConfidenceLevel},
	}
	for _, f := range fields {
		if *f.value, err = p.Input(f.label, *f.value); err != nil {
			return err
		}
	}
	return nil
}

func (sh *shell) onAnalysis(ctx context.Context, snap analysisWorkflow.Snapshot) {
	switch snap.State {
	case analysisWorkflow.Succeeded:
		view := resultRenderer.Render(snap.Request, snap.Result, false)
		sh.println(cliConverter.AnalysisResponse(view, sh.ctrl.savePlot(ctx, view)))
	case analysisWorkflow.Failed:
		sh.println(cliConverter.ErrorResponse(snap.Err))
	}
}

func (sh *shell) report(ctx context.Context) error {
	p := sh.ctrl.prompter

	snap := sh.ctrl.analysis.Snapshot()
	view := resultRenderer.Render(snap.Request, snap.Result, false)

	path, err := p.Input("Report file:", view.Symbol+"_analysis.xlsx")
	if err != nil {
		return err
	}

	upload := false
	if sh.ctrl.storage != nil {
		if upload, err = p.Confirm("Upload to Google Drive?", false); err != nil {
			return err
		}
	}

	return sh.ctrl.writeReport(ctx, sh.out, view, path, upload)
}

func (sh *shell) editProfile(ctx context.Context) error {
	p := sh.ctrl.prompter

	cur := sh.ctrl.session.Current()
	if !cur.Active() {
		return nil
	}

	fields := model.ProfileFields{}
	var err error
	if fields.Name, err = p.Input("Name:", cur.Identity.Name); err != nil {
		return err
	}
	if fields.Surname, err = p.Input("Surname:", cur.Identity.Surname); err != nil {
		return err
	}
	if fields.Username, err = p.Input("Email:", cur.Identity.Username); err != nil {
		return err
	}

	return sh.ctrl.updateProfile(ctx, sh.out, fields)
}
