package requestBuilder

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/KotFed0t/stock_risk_client/internal/model"
)

func varSelection(method model.VarMethod) model.AnalysisSelection {
	sel := model.NewAnalysisSelection("IBM")
	sel.Interval = model.IntervalDaily
	sel.SetAnalytic(model.ValueAtRisk, true)
	sel.Var.Method = method
	return sel
}

func TestBuildMissingInterval(t *testing.T) {
	selections := map[string]model.AnalysisSelection{
		"bare":      model.NewAnalysisSelection("IBM"),
		"no symbol": {},
		"var on":    func() model.AnalysisSelection { s := varSelection(""); s.Interval = ""; return s }(),
		"hurst on": func() model.AnalysisSelection {
			s := model.NewAnalysisSelection("IBM")
			s.SetAnalytic(model.HurstExponent, true)
			return s
		}(),
	}

	for name, sel := range selections {
		t.Run(name, func(t *testing.T) {
			_, err := Build(sel)
			if !errors.Is(err, ErrMissingInterval) {
				t.Fatalf("Build() = %v; want MissingInterval", err)
			}
		})
	}
}

func TestBuildMissingVarMethod(t *testing.T) {
	sel := varSelection("")

	_, err := Build(sel)
	if !errors.Is(err, ErrMissingVarMethod) {
		t.Fatalf("Build() = %v; want MissingVarMethod", err)
	}

	sel.Var = nil
	_, err = Build(sel)
	if !errors.Is(err, ErrMissingVarMethod) {
		t.Fatalf("Build() with nil params = %v; want MissingVarMethod", err)
	}
}

func TestBuildInvalidNumber(t *testing.T) {
	tests := []struct {
		field string
		set   func(*model.VarInput)
	}{
		{"historical_days", func(v *model.VarInput) { v.HistoricalDays = "two hundred" }},
		{"historical_days", func(v *model.VarInput) { v.HistoricalDays = "20.5" }},
		{"horizon_days", func(v *model.VarInput) { v.HorizonDays = "" }},
		{"portfolio_value", func(v *model.VarInput) { v.PortfolioValue = "1e" }},
		{"confidence_level", func(v *model.VarInput) { v.ConfidenceLevel = "99%" }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			sel := varSelection(model.VarHistorical)
			tt.set(sel.Var)

			_, err := Build(sel)
			if !errors.Is(err, &ValidationError{Kind: InvalidNumber, Field: tt.field}) {
				t.Fatalf("Build() = %v; want InvalidNumber on %s", err, tt.field)
			}
		})
	}
}

func TestBuildConfidenceLevelIsFraction(t *testing.T) {
	sel := varSelection(model.VarMonteCarlo)
	sel.Var.ConfidenceLevel = "99"

	rq, err := Build(sel)
	if err != nil {
		t.Fatalf("Build() = %v; want nil", err)
	}
	if rq.ConfidenceLevel == nil || *rq.ConfidenceLevel != 0.99 {
		t.Fatalf("confidence_level = %v; want 0.99", rq.ConfidenceLevel)
	}

	sel.Var.ConfidenceLevel = "95"
	rq, err = Build(sel)
	if err != nil {
		t.Fatalf("Build() = %v; want nil", err)
	}
	if *rq.ConfidenceLevel != 0.95 {
		t.Fatalf("confidence_level = %v; want 0.95", *rq.ConfidenceLevel)
	}
}

func TestBuildScenarioPayload(t *testing.T) {
	sel := model.NewAnalysisSelection("IBM")
	sel.Interval = model.IntervalDaily
	sel.SetAnalytic(model.ValueAtRisk, true)
	sel.Var.Method = model.VarHistorical
	sel.Var.HistoricalDays = "200"
	sel.Var.HorizonDays = "1"
	sel.Var.PortfolioValue = "1000"
	sel.Var.ConfidenceLevel = "99"

	rq, err := Build(sel)
	if err != nil {
		t.Fatalf("Build() = %v; want nil", err)
	}

	got, err := json.Marshal(rq)
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}

	want := `{"symbol":"IBM","interval":"daily","calculate":["var",""],"var_type":"historical","portfolio_value":1000,"confidence_level":0.99,"historical_days":200,"horizon_days":1}`
	if string(got) != want {
		t.Fatalf("payload\n got %s\nwant %s", got, want)
	}
}

func TestBuildHurstOnlyOmitsVarFields(t *testing.T) {
	sel := model.NewAnalysisSelection("INTC")
	sel.Interval = model.IntervalWeekly
	sel.SetAnalytic(model.HurstExponent, true)

	rq, err := Build(sel)
	if err != nil {
		t.Fatalf("Build() = %v; want nil", err)
	}

	got, _ := json.Marshal(rq)
	want := `{"symbol":"INTC","interval":"weekly","calculate":["","hurst"]}`
	if string(got) != want {
		t.Fatalf("payload\n got %s\nwant %s", got, want)
	}
}

func TestBuildMissingSymbol(t *testing.T) {
	sel := model.NewAnalysisSelection("  ")
	sel.Interval = model.Interval5Min

	_, err := Build(sel)
	if !errors.Is(err, ErrMissingSymbol) {
		t.Fatalf("Build() = %v; want MissingSymbol", err)
	}
}

func TestBuildUnknownInterval(t *testing.T) {
	sel := model.NewAnalysisSelection("IBM")
	sel.Interval = "2min"

	_, err := Build(sel)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Build() = %v; want OutOfRange", err)
	}
}

func TestCheckBounds(t *testing.T) {
	tests := []struct {
		name    string
		set     func(*model.VarInput)
		wantErr bool
	}{
		{"defaults", func(*model.VarInput) {}, false},
		{"historical too low", func(v *model.VarInput) { v.HistoricalDays = "9" }, true},
		{"horizon too high", func(v *model.VarInput) { v.HorizonDays = "10001" }, true},
		{"portfolio too high", func(v *model.VarInput) { v.PortfolioValue = "1000000001" }, true},
		{"confidence 100", func(v *model.VarInput) { v.ConfidenceLevel = "100" }, true},
		{"confidence 1", func(v *model.VarInput) { v.ConfidenceLevel = "1" }, false},
		{"historical past int64", func(v *model.VarInput) { v.HistoricalDays = "18446744073709551626" }, true},
		{"horizon past int64", func(v *model.VarInput) { v.HorizonDays = "-18446744073709551615" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := varSelection(model.VarLinearModel)
			tt.set(sel.Var)

			err := CheckBounds(sel)
			if tt.wantErr && !errors.Is(err, ErrOutOfRange) {
				t.Fatalf("CheckBounds() = %v; want OutOfRange", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("CheckBounds() = %v; want nil", err)
			}
		})
	}
}

func TestBuildRejectsIntegerPastInt64(t *testing.T) {
	sel := varSelection(model.VarHistorical)
	sel.Var.HistoricalDays = "18446744073709551626"

	rq, err := Build(sel)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Build() = %+v, %v; want OutOfRange", rq, err)
	}
}

func TestCheckBoundsReportsFirstFailure(t *testing.T) {
	tests := []struct {
		name string
		sel  func() model.AnalysisSelection
		want error
	}{
		{
			name: "interval before method",
			sel: func() model.AnalysisSelection {
				s := varSelection("")
				s.Interval = ""
				return s
			},
			want: ErrMissingInterval,
		},
		{
			name: "interval without var",
			sel: func() model.AnalysisSelection {
				s := model.NewAnalysisSelection("IBM")
				s.SetAnalytic(model.HurstExponent, true)
				return s
			},
			want: ErrMissingInterval,
		},
		{
			name: "method before bounds",
			sel: func() model.AnalysisSelection {
				s := varSelection("")
				s.Var.HistoricalDays = "1"
				return s
			},
			want: ErrMissingVarMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckBounds(tt.sel()); !errors.Is(err, tt.want) {
				t.Fatalf("CheckBounds() = %v; want %v", err, tt.want)
			}
		})
	}
}
