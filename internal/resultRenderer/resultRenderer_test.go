package resultRenderer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/KotFed0t/stock_risk_client/internal/model"
)

func ptr[T any](v T) *T {
	return &v
}

func varRequest() *model.AnalysisRequest {
	return &model.AnalysisRequest{
		Symbol:          "IBM",
		Interval:        model.IntervalDaily,
		Calculate:       [2]string{"var", ""},
		VarType:         ptr(model.VarHistorical),
		PortfolioValue:  ptr(1000.0),
		ConfidenceLevel: ptr(0.99),
		HistoricalDays:  ptr(200),
		HorizonDays:     ptr(1),
	}
}

func TestRenderShapes(t *testing.T) {
	tests := []struct {
		name     string
		res      *model.AnalysisResult
		wantVar  bool
		wantPlot bool
	}{
		{"before first response", nil, false, false},
		{"plot only", &model.AnalysisResult{Plot: "iVBO"}, false, true},
		{"var only", &model.AnalysisResult{VarValue: ptr(12.3456)}, true, false},
		{"both", &model.AnalysisResult{Plot: "iVBO", VarValue: ptr(12.3456)}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Render(varRequest(), tt.res, false)
			if view.ShowVar() != tt.wantVar || view.ShowPlot() != tt.wantPlot {
				t.Fatalf("ShowVar() = %v, ShowPlot() = %v; want %v, %v", view.ShowVar(), view.ShowPlot(), tt.wantVar, tt.wantPlot)
			}
		})
	}
}

func TestVarPanelEchoesRequest(t *testing.T) {
	view := Render(varRequest(), &model.AnalysisResult{VarValue: ptr(12.3456)}, false)

	p := view.Var
	if p.Value.String() != "12.35" {
		t.Fatalf("Value = %s; want 12.35", p.Value)
	}
	if p.ConfidencePct.String() != "99" || p.PortfolioValue.String() != "1000" {
		t.Fatalf("ConfidencePct = %s, PortfolioValue = %s", p.ConfidencePct, p.PortfolioValue)
	}
	if p.Method != model.VarHistorical || p.HistoricalDays != 200 || p.HorizonDays != 1 {
		t.Fatalf("panel = %+v", p)
	}
	if view.Symbol != "IBM" || view.Interval != model.IntervalDaily {
		t.Fatalf("view = %+v", view)
	}
}

func TestPlotImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}

	for _, plot := range []string{"iVBORw==", "data:image/png;base64,iVBORw=="} {
		got, err := Render(nil, &model.AnalysisResult{Plot: plot}, false).PlotImage()
		if err != nil || !bytes.Equal(got, png) {
			t.Fatalf("PlotImage(%q) = %v, %v; want %v", plot, got, err, png)
		}
	}

	if _, err := Render(nil, &model.AnalysisResult{}, false).PlotImage(); !errors.Is(err, ErrNoPlot) {
		t.Fatalf("PlotImage() = %v; want ErrNoPlot", err)
	}
}
