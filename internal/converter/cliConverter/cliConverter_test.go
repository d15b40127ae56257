package cliConverter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KotFed0t/stock_risk_client/internal/model"
	"github.com/KotFed0t/stock_risk_client/internal/requestBuilder"
	"github.com/KotFed0t/stock_risk_client/internal/resultRenderer"
)

func ptr[T any](v T) *T {
	return &v
}

func TestAnalysisResponsePanels(t *testing.T) {
	rq := &model.AnalysisRequest{
		Symbol:          "IBM",
		Interval:        model.IntervalDaily,
		VarType:         ptr(model.VarLinearModel),
		PortfolioValue:  ptr(1000.0),
		ConfidenceLevel: ptr(0.99),
		HistoricalDays:  ptr(200),
		HorizonDays:     ptr(1),
	}

	out := AnalysisResponse(resultRenderer.Render(rq, &model.AnalysisResult{VarValue: ptr(12.3456)}, false), "")
	for _, want := range []string{"12.35", "linear model simulation", "99%", "200"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output misses %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "plot") {
		t.Fatalf("plot panel rendered without plot:\n%s", out)
	}

	out = AnalysisResponse(resultRenderer.Render(rq, &model.AnalysisResult{Plot: "iVBORw=="}, false), "/tmp/ibm.png")
	if !strings.Contains(out, "/tmp/ibm.png") || strings.Contains(out, "Value at Risk") {
		t.Fatalf("unexpected plot-only output:\n%s", out)
	}

	if out = AnalysisResponse(resultRenderer.View{Loading: true}, ""); !strings.Contains(out, "loading") {
		t.Fatalf("loading not shown: %s", out)
	}
}

func TestWritePlot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	view := resultRenderer.Render(&model.AnalysisRequest{Symbol: "IBM", Interval: model.IntervalDaily}, &model.AnalysisResult{Plot: "iVBORw=="}, false)

	path, err := WritePlot(dir, view, time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("WritePlot() = %v; want nil", err)
	}
	if filepath.Base(path) != "IBM_daily_20240315T100000.png" {
		t.Fatalf("path = %s", path)
	}

	got, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(got, []byte{0x89, 'P', 'N', 'G'}) {
		t.Fatalf("ReadFile() = %v, %v", got, err)
	}
}

func TestSearchResponse(t *testing.T) {
	out := SearchResponse(model.SearchResult{Matches: []model.CompanyMatch{{Symbol: "IBM", Name: "International Business Machines Corp", Region: "United States"}}})
	if !strings.Contains(out, "IBM") || !strings.Contains(out, "United States") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out = SearchResponse(model.SearchResult{NotFound: "For phrase 'zzz' company not found"})
	if !strings.Contains(out, "For phrase 'zzz' company not found") {
		t.Fatalf("not-found message missing: %s", out)
	}
}

func TestNavigationLine(t *testing.T) {
	anon := NavigationLine(model.Session{}.Affordances())
	if !strings.Contains(anon, "login") || strings.Contains(anon, "logout") || strings.Contains(anon, "profile") {
		t.Fatalf("anonymous navigation = %s", anon)
	}

	s := model.Session{Token: "t", Identity: &model.Identity{Username: "a@b.c"}}
	user := NavigationLine(s.Affordances())
	if !strings.Contains(user, "logout") || !strings.Contains(user, "profile") || strings.Contains(user, "register") {
		t.Fatalf("user navigation = %s", user)
	}
}

func TestErrorResponse(t *testing.T) {
	out := ErrorResponse(requestBuilder.ErrMissingInterval)
	if !strings.Contains(out, "invalid input") || !strings.Contains(out, "missing interval") {
		t.Fatalf("ErrorResponse() = %s", out)
	}
}
