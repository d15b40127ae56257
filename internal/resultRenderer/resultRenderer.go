package resultRenderer

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/KotFed0t/stock_risk_client/internal/model"
	"github.com/shopspring/decimal"
)

var ErrNoPlot = errors.New("error result has no plot")

// VarPanel is the value-at-risk figure with the request parameters it was
// computed for.
type VarPanel struct {
	Value          decimal.Decimal
	PortfolioValue decimal.Decimal
	Method         model.VarMethod
	ConfidencePct  decimal.Decimal
	HistoricalDays int
	HorizonDays    int
}

type View struct {
	Loading  bool
	Var      *VarPanel
	Plot     string
	Symbol   string
	Interval model.Interval
}

func (v View) ShowVar() bool {
	return v.Var != nil
}

func (v View) ShowPlot() bool {
	return v.Plot != ""
}

func (v View) Empty() bool {
	return !v.ShowVar() && !v.ShowPlot()
}

// Render decides which panels a result gets. rq is the request the result
// answers; a nil res renders nothing.
func Render(rq *model.AnalysisRequest, res *model.AnalysisResult, loading bool) View {
	view := View{Loading: loading}
	if res == nil {
		return view
	}

	if rq != nil {
		view.Symbol = rq.Symbol
		view.Interval = rq.Interval
	}

	if res.HasPlot() {
		view.Plot = res.Plot
	}

	if res.HasVar() {
		view.Var = varPanel(rq, *res.VarValue)
	}

	return view
}

func varPanel(rq *model.AnalysisRequest, value float64) *VarPanel {
	panel := &VarPanel{Value: decimal.NewFromFloat(value).Round(2)}
	if rq == nil {
		return panel
	}

	if rq.VarType != nil {
		panel.Method = *rq.VarType
	}
	if rq.PortfolioValue != nil {
		panel.PortfolioValue = decimal.NewFromFloat(*rq.PortfolioValue)
	}
	if rq.ConfidenceLevel != nil {
		panel.ConfidencePct = decimal.NewFromFloat(*rq.ConfidenceLevel).Shift(2).Round(2)
	}
	if rq.HistoricalDays != nil {
		panel.HistoricalDays = *rq.HistoricalDays
	}
	if rq.HorizonDays != nil {
		panel.HorizonDays = *rq.HorizonDays
	}
	return panel
}

// PlotImage decodes the plot into raw image bytes. A data URI prefix is accepted.
func (v View) PlotImage() ([]byte, error) {
	if !v.ShowPlot() {
		return nil, ErrNoPlot
	}

	data := v.Plot
	if i := strings.Index(data, ","); strings.HasPrefix(data, "data:") && i >= 0 {
		data = data[i+1:]
	}
	return base64.StdEncoding.DecodeString(data)
}
