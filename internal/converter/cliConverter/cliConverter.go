package cliConverter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KotFed0t/stock_risk_client/internal/model"
	"github.com/KotFed0t/stock_risk_client/internal/requestBuilder"
	"github.com/KotFed0t/stock_risk_client/internal/resultRenderer"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	varPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#EF4444")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true)
)

func row(label string, value any) string {
	return labelStyle.Render(fmt.Sprintf("%-18s", label)) + valueStyle.Render(fmt.Sprint(value))
}

// AnalysisResponse renders the panels the view asks for. plotPath is where the
// plot image was written, empty if it was not.
func AnalysisResponse(view resultRenderer.View, plotPath string) string {
	if view.Loading {
		return mutedStyle.Render("loading...")
	}
	if view.Empty() {
		return mutedStyle.Render("no result")
	}

	blocks := []string{titleStyle.Render(fmt.Sprintf("%s · %s", view.Symbol, view.Interval))}

	if view.ShowVar() {
		p := view.Var
		lines := []string{
			row("Value at Risk", p.Value.StringFixed(2)),
			row("portfolio value", p.PortfolioValue.String()),
			row("method", p.Method.Title()),
			row("confidence", p.ConfidencePct.String()+"%"),
			row("historical days", p.HistoricalDays),
			row("horizon days", p.HorizonDays),
		}
		blocks = append(blocks, varPanelStyle.Render(strings.Join(lines, "\n")))
	}

	if view.ShowPlot() {
		plot := row("plot", plotPath)
		if plotPath == "" {
			plot = row("plot", "received")
		}
		blocks = append(blocks, panelStyle.Render(plot))
	}

	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// WritePlot stores the decoded plot image under dir and returns its path.
func WritePlot(dir string, view resultRenderer.View, now time.Time) (string, error) {
	img, err := view.PlotImage()
	if err != nil {
		return "", err
	}

	if err = os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%s_%s.png", view.Symbol, view.Interval, now.Format("20060102T150405"))
	path := filepath.Join(dir, name)
	if err = os.WriteFile(path, img, 0o644); err != nil {
		return "", err
	}

	return path, nil
}

func SearchResponse(res model.SearchResult) string {
	if !res.Found() {
		msg := res.NotFound
		if msg == "" {
			msg = "company not found"
		}
		return mutedStyle.Render(msg)
	}

	lines := make([]string, 0, len(res.Matches))
	for i, m := range res.Matches {
		lines = append(lines, fmt.Sprintf("%d. %s  %s  %s",
			i+1,
			valueStyle.Render(m.Symbol),
			m.Name,
			labelStyle.Render(strings.Join(nonEmpty(m.Type, m.Region, m.Currency), " · ")),
		))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func ProfileResponse(p model.Profile) string {
	lines := []string{
		row("name", p.Name),
		row("surname", p.Surname),
		row("email", p.Email),
		row("active", p.IsActive),
	}
	if p.IsSuperuser {
		lines = append(lines, row("role", "administrator"))
	}
	if !p.CreatedAt.IsZero() {
		lines = append(lines, row("member since", p.CreatedAt.Format(time.DateOnly)))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func SessionResponse(s model.Session) string {
	if !s.Active() {
		return mutedStyle.Render("not logged in") + "\n" + NavigationLine(s.Affordances())
	}

	id := s.Identity
	lines := []string{
		row("user", strings.TrimSpace(id.Name+" "+id.Surname)),
		row("username", id.Username),
	}
	if !id.ExpiresAt.IsZero() {
		lines = append(lines, row("expires", id.ExpiresAt.Local().Format(time.DateTime)))
	}
	return panelStyle.Render(strings.Join(lines, "\n")) + "\n" + NavigationLine(s.Affordances())
}

// NavigationLine lists the commands available for the current session.
func NavigationLine(aff model.Affordances) string {
	items := []string{"search", "analyze"}
	if aff.Portfolio {
		items = append(items, "profile")
	}
	if aff.Admin {
		items = append(items, "admin")
	}
	if aff.Logout {
		items = append(items, "logout")
	}
	if aff.Login {
		items = append(items, "login")
	}
	if aff.Register {
		items = append(items, "register")
	}
	return labelStyle.Render("commands: " + strings.Join(items, " | "))
}

func OkResponse(msg string) string {
	return okStyle.Render(msg)
}

func ErrorResponse(err error) string {
	var ve *requestBuilder.ValidationError
	if errors.As(err, &ve) {
		return errorStyle.Render("invalid input: ") + ve.Error()
	}
	return errorStyle.Render("error: ") + err.Error()
}

func nonEmpty(values ...string) []string {
	res := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			res = append(res, v)
		}
	}
	return res
}
