package model

type Interval string

const (
	Interval1Min    Interval = "1min"
	Interval5Min    Interval = "5min"
	Interval15Min   Interval = "15min"
	Interval30Min   Interval = "30min"
	Interval60Min   Interval = "60min"
	IntervalDaily   Interval = "daily"
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
)

var Intervals = []Interval{
	Interval1Min, Interval5Min, Interval15Min, Interval30Min,
	Interval60Min, IntervalDaily, IntervalWeekly, IntervalMonthly,
}

func (i Interval) Valid() bool {
	for _, v := range Intervals {
		if i == v {
			return true
		}
	}
	return false
}

type VarMethod string

const (
	VarHistorical  VarMethod = "historical"
	VarLinearModel VarMethod = "linear_model"
	VarMonteCarlo  VarMethod = "monte_carlo"
)

var VarMethods = []VarMethod{VarHistorical, VarLinearModel, VarMonteCarlo}

func (m VarMethod) Valid() bool {
	for _, v := range VarMethods {
		if m == v {
			return true
		}
	}
	return false
}

func (m VarMethod) Title() string {
	switch m {
	case VarHistorical:
		return "historical simulation"
	case VarLinearModel:
		return "linear model simulation"
	case VarMonteCarlo:
		return "monte carlo simulation"
	default:
		return string(m)
	}
}

// Analytic is one independently toggleable statistic.
type Analytic uint8

const (
	ValueAtRisk Analytic = 1 << iota
	HurstExponent
)

// marker is the truthy value sent in the analytic's calculate slot.
func (a Analytic) marker() string {
	switch a {
	case ValueAtRisk:
		return "var"
	case HurstExponent:
		return "hurst"
	default:
		return ""
	}
}

func (a Analytic) String() string {
	switch a {
	case ValueAtRisk:
		return "value-at-risk"
	case HurstExponent:
		return "hurst-exponent"
	default:
		return "unknown"
	}
}

type AnalyticSet uint8

func (s AnalyticSet) Has(a Analytic) bool {
	return uint8(s)&uint8(a) != 0
}

// CalculateSlots returns one slot per analytic in wire order; a disabled
// analytic leaves its own slot empty.
func (s AnalyticSet) CalculateSlots() [2]string {
	var slots [2]string
	for i, a := range []Analytic{ValueAtRisk, HurstExponent} {
		if s.Has(a) {
			slots[i] = a.marker()
		}
	}
	return slots
}

// VarInput holds the raw value-at-risk form fields as typed by the user.
type VarInput struct {
	Method          VarMethod
	HistoricalDays  string
	HorizonDays     string
	PortfolioValue  string
	ConfidenceLevel string // percentage, 1..99
}

const (
	DefaultHistoricalDays  = "200"
	DefaultHorizonDays     = "1"
	DefaultPortfolioValue  = "1000"
	DefaultConfidenceLevel = "99"
)

func DefaultVarInput() *VarInput {
	return &VarInput{
		HistoricalDays:  DefaultHistoricalDays,
		HorizonDays:     DefaultHorizonDays,
		PortfolioValue:  DefaultPortfolioValue,
		ConfidenceLevel: DefaultConfidenceLevel,
	}
}

// AnalysisSelection is what the user composed on the company view.
type AnalysisSelection struct {
	Symbol    string
	Interval  Interval
	analytics AnalyticSet
	Var       *VarInput
}

func NewAnalysisSelection(symbol string) AnalysisSelection {
	return AnalysisSelection{Symbol: symbol}
}

func (s AnalysisSelection) Analytics() AnalyticSet {
	return s.analytics
}

func (s AnalysisSelection) Has(a Analytic) bool {
	return s.analytics.Has(a)
}

// SetAnalytic switches a single analytic. Turning value-at-risk on starts
// from default parameters; turning it off drops them.
func (s *AnalysisSelection) SetAnalytic(a Analytic, on bool) {
	if on {
		if !s.analytics.Has(a) && a == ValueAtRisk {
			s.Var = DefaultVarInput()
		}
		s.analytics = AnalyticSet(uint8(s.analytics) | uint8(a))
		return
	}

	s.analytics = AnalyticSet(uint8(s.analytics) &^ uint8(a))
	if a == ValueAtRisk {
		s.Var = nil
	}
}

func (s *AnalysisSelection) Toggle(a Analytic) bool {
	on := !s.analytics.Has(a)
	s.SetAnalytic(a, on)
	return on
}

// AnalysisRequest is the body of POST /stock-data/.
type AnalysisRequest struct {
	Symbol          string     `json:"symbol"`
	Interval        Interval   `json:"interval"`
	Calculate       [2]string  `json:"calculate"`
	VarType         *VarMethod `json:"var_type,omitempty"`
	PortfolioValue  *float64   `json:"portfolio_value,omitempty"`
	ConfidenceLevel *float64   `json:"confidence_level,omitempty"`
	HistoricalDays  *int       `json:"historical_days,omitempty"`
	HorizonDays     *int       `json:"horizon_days,omitempty"`
}

func (r AnalysisRequest) RequestsVar() bool {
	return r.Calculate[0] != ""
}

// AnalysisResult is the decoded analytics response. Either field may be absent.
type AnalysisResult struct {
	Plot     string
	VarValue *float64
}

func (r AnalysisResult) HasPlot() bool {
	return r.Plot != ""
}

func (r AnalysisResult) HasVar() bool {
	return r.VarValue != nil
}
