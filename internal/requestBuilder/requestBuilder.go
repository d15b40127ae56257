package requestBuilder

import (
	"errors"
	"strings"

	"github.com/KotFed0t/stock_risk_client/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	hundred  = decimal.NewFromInt(100)
	validate = validator.New(validator.WithRequiredStructEnabled())
)

// VarParameters are the value-at-risk fields coerced to their numeric types.
type VarParameters struct {
	Method          model.VarMethod `validate:"required,oneof=historical linear_model monte_carlo"`
	HistoricalDays  int             `validate:"min=10,max=10000"`
	HorizonDays     int             `validate:"min=1,max=10000"`
	PortfolioValue  float64         `validate:"gte=10,lte=1000000000"`
	ConfidencePct   float64         `validate:"gte=1,lte=99"`
	ConfidenceLevel float64         `validate:"gt=0,lt=1"`
}

// Build turns a selection into the analytics request body.
// Checks run in order and the first failure is returned.
func Build(sel model.AnalysisSelection) (model.AnalysisRequest, error) {
	if sel.Interval == "" {
		return model.AnalysisRequest{}, ErrMissingInterval
	}
	if !sel.Interval.Valid() {
		return model.AnalysisRequest{}, &ValidationError{Kind: OutOfRange, Field: "interval", Value: string(sel.Interval)}
	}

	var params *VarParameters
	if sel.Has(model.ValueAtRisk) {
		p, err := ParseVar(sel.Var)
		if err != nil {
			return model.AnalysisRequest{}, err
		}
		params = &p
	}

	symbol := strings.TrimSpace(sel.Symbol)
	if symbol == "" {
		return model.AnalysisRequest{}, ErrMissingSymbol
	}

	rq := model.AnalysisRequest{
		Symbol:    symbol,
		Interval:  sel.Interval,
		Calculate: sel.Analytics().CalculateSlots(),
	}

	if params != nil {
		rq.VarType = &params.Method
		rq.PortfolioValue = &params.PortfolioValue
		rq.ConfidenceLevel = &params.ConfidenceLevel
		rq.HistoricalDays = &params.HistoricalDays
		rq.HorizonDays = &params.HorizonDays
	}

	return rq, nil
}

// ParseVar coerces the raw form fields. A nil input means no method was chosen.
func ParseVar(in *model.VarInput) (VarParameters, error) {
	if in == nil || in.Method == "" {
		return VarParameters{}, ErrMissingVarMethod
	}
	if !in.Method.Valid() {
		return VarParameters{}, &ValidationError{Kind: OutOfRange, Field: "var_type", Value: string(in.Method)}
	}

	historicalDays, err := parseInt("historical_days", in.HistoricalDays)
	if err != nil {
		return VarParameters{}, err
	}

	horizonDays, err := parseInt("horizon_days", in.HorizonDays)
	if err != nil {
		return VarParameters{}, err
	}

	portfolioValue, err := parseDecimal("portfolio_value", in.PortfolioValue)
	if err != nil {
		return VarParameters{}, err
	}

	confidencePct, err := parseDecimal("confidence_level", in.ConfidenceLevel)
	if err != nil {
		return VarParameters{}, err
	}

	return VarParameters{
		Method:          in.Method,
		HistoricalDays:  historicalDays,
		HorizonDays:     horizonDays,
		PortfolioValue:  portfolioValue.InexactFloat64(),
		ConfidencePct:   confidencePct.InexactFloat64(),
		ConfidenceLevel: confidencePct.Div(hundred).InexactFloat64(),
	}, nil
}

// CheckBounds runs the Build checks first, so the first failure is reported in
// the same order, then enforces the input-boundary ranges. Build itself does not.
func CheckBounds(sel model.AnalysisSelection) error {
	if _, err := Build(sel); err != nil {
		return err
	}
	if !sel.Has(model.ValueAtRisk) {
		return nil
	}

	params, err := ParseVar(sel.Var)
	if err != nil {
		return err
	}

	err = validate.Struct(params)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Kind: OutOfRange, Field: fe.Field(), Value: stringify(fe.Value())}
	}
	return err
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, &ValidationError{Kind: InvalidNumber, Field: field, Value: raw}
	}
	return d, nil
}

func parseInt(field, raw string) (int, error) {
	d, err := parseDecimal(field, raw)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, &ValidationError{Kind: InvalidNumber, Field: field, Value: raw}
	}
	// IntPart wraps silently past int64
	if !d.BigInt().IsInt64() {
		return 0, &ValidationError{Kind: OutOfRange, Field: field, Value: raw}
	}
	return int(d.IntPart()), nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return decimal.NewFromInt(int64(x)).String()
	case float64:
		return decimal.NewFromFloat(x).String()
	case model.VarMethod:
		return string(x)
	default:
		return ""
	}
}
