package advisor

import (
	"strings"

	"github.com/theirongolddev/cashraaga/internal/amount"
	"github.com/theirongolddev/cashraaga/internal/model"
)

// Form is the advisor's free-text input, exactly as the user typed it.
type Form struct {
	Income         string `json:"income"`
	ExistingEMI    string `json:"existing_emi"`
	LoanAmount     string `json:"loan_amount"`
	Rate           string `json:"rate"`
	TenureYears    string `json:"tenure_years"`
	OneTimeExpense string `json:"one_time_expense"`
}

// Defaults are the values a blank rate and tenure start from.
type Defaults struct {
	Rate        string
	TenureYears string
}

// DefaultDefaults matches the form's initial state: 12% over 3 years.
var DefaultDefaults = Defaults{Rate: "12", TenureYears: "3"}

// ProjectionReader supplies the analysis figures used to pre-fill the form.
// *analysis.Store satisfies it.
type ProjectionReader interface {
	Projection() model.Projection
}

// Controller wires the form to the latest analysis and to Evaluate.
// It holds no state of its own.
type Controller struct {
	reader   ProjectionReader
	defaults Defaults
}

// NewController returns a controller reading from r. A nil r pre-fills nothing.
func NewController(r ProjectionReader, d Defaults) *Controller {
	if d.Rate == "" {
		d.Rate = DefaultDefaults.Rate
	}
	if d.TenureYears == "" {
		d.TenureYears = DefaultDefaults.TenureYears
	}
	return &Controller{reader: r, defaults: d}
}

// Prefill fills income and existing EMI from the current analysis, and rate
// and tenure from the defaults. Fields the user already typed are kept.
func (c *Controller) Prefill(f Form) Form {
	var p model.Projection
	if c.reader != nil {
		p = c.reader.Projection()
	}

	if isBlank(f.Income) && p.Income != 0 {
		f.Income = amount.Format(p.Income)
	}
	if isBlank(f.ExistingEMI) && p.ExistingMonthlyEMI != 0 {
		f.ExistingEMI = amount.Format(p.ExistingMonthlyEMI)
	}
	if isBlank(f.Rate) {
		f.Rate = c.defaults.Rate
	}
	if isBlank(f.TenureYears) {
		f.TenureYears = c.defaults.TenureYears
	}
	return f
}

// Request normalizes every field of f into a LoanRequest.
func (c *Controller) Request(f Form) model.LoanRequest {
	return model.LoanRequest{
		MonthlyIncome:      amount.Normalize(f.Income),
		ExistingMonthlyEMI: amount.Normalize(f.ExistingEMI),
		Principal:          amount.Normalize(f.LoanAmount),
		AnnualRatePercent:  amount.Normalize(f.Rate),
		TenureYears:        amount.Normalize(f.TenureYears),
		OneTimeExpense:     amount.Normalize(f.OneTimeExpense),
	}
}

// Evaluate runs the evaluator on f. A blank rate counts as missing; an
// explicit 0 is an interest-free loan.
func (c *Controller) Evaluate(f Form) (model.AffordabilityResult, error) {
	if isBlank(f.Rate) {
		return model.AffordabilityResult{}, ErrMissingFields
	}
	return Evaluate(c.Request(f))
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
