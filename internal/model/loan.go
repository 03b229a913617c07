package model

// Verdict is the affordability tier derived from the EMI share of income.
type Verdict string

const (
	VerdictComfortable Verdict = "comfortable"
	VerdictStretch     Verdict = "stretch"
	VerdictRisky       Verdict = "risky"
)

// Label returns the display name of the verdict.
func (v Verdict) Label() string {
	switch v {
	case VerdictComfortable:
		return "Comfortable"
	case VerdictStretch:
		return "Stretch"
	case VerdictRisky:
		return "Risky"
	default:
		return ""
	}
}

// LoanRequest is one affordability question. Amounts are monthly where
// the name says so; tenure is in years and may be fractional.
type LoanRequest struct {
	MonthlyIncome      float64 `json:"monthly_income"`
	ExistingMonthlyEMI float64 `json:"existing_monthly_emi"`
	Principal          float64 `json:"principal"`
	AnnualRatePercent  float64 `json:"annual_rate_percent"`
	TenureYears        float64 `json:"tenure_years"`
	OneTimeExpense     float64 `json:"one_time_expense"`
}

// AffordabilityResult is the evaluated EMI and verdict for a LoanRequest.
type AffordabilityResult struct {
	EMI             float64 `json:"emi"`
	TotalInterest   float64 `json:"total_interest"`
	TotalPayable    float64 `json:"total_payable"`
	EMISharePercent float64 `json:"emi_share_percent"`
	Months          float64 `json:"months"`
	MonthlyRate     float64 `json:"monthly_rate"`
	Verdict         Verdict `json:"verdict"`
	Note            string  `json:"note"`
}
