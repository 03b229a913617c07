// Package advisor answers "can I afford this loan" from a monthly income,
// existing EMIs and the loan terms.
package advisor

import (
	"errors"
	"fmt"
	"math"

	"github.com/theirongolddev/cashraaga/internal/model"
)

var (
	// ErrMissingFields means income, principal or tenure is zero, or the
	// rate was left blank on the form.
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidAmount means a required amount is negative or not finite.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Verdict thresholds on the EMI share of income, in percent.
const (
	ComfortableMaxShare = 30.0
	StretchMaxShare     = 45.0
)

const (
	noteComfortable = "EMIs stay within ~30% of your income. This is usually considered comfortable if your job is stable."
	noteStretch     = "Total EMIs will eat 30–45% of your income. Manageable, but you should control lifestyle spends and keep an emergency fund."
	noteRisky       = "Total EMIs will cross 45% of your income. This is risky, especially if you have dependents or unstable income."
	noteBuffer      = " You also mentioned an upcoming one-time expense. Keep that in a separate buffer and avoid using credit to fund it fully."

	msgFillFields = "Fill income, loan amount, interest rate and tenure to evaluate."
)

// UserMessage returns the instruction shown in place of a result when
// Evaluate fails validation. Other errors are returned as text.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrInvalidAmount):
		return msgFillFields
	default:
		return err.Error()
	}
}

// Evaluate computes the EMI for req and classifies the resulting share of
// income. It is pure: equal requests give bit-identical results.
func Evaluate(req model.LoanRequest) (model.AffordabilityResult, error) {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"monthly income", req.MonthlyIncome},
		{"principal", req.Principal},
		{"annual rate", req.AnnualRatePercent},
		{"tenure", req.TenureYears},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return model.AffordabilityResult{}, fmt.Errorf("%w: %s %v", ErrInvalidAmount, f.name, f.v)
		}
	}
	if req.MonthlyIncome == 0 || req.Principal == 0 || req.TenureYears == 0 {
		return model.AffordabilityResult{}, ErrMissingFields
	}

	existing := nonNegative(req.ExistingMonthlyEMI)
	upcoming := nonNegative(req.OneTimeExpense)

	months := req.TenureYears * 12
	monthlyRate := req.AnnualRatePercent / 1200

	var emi float64
	if monthlyRate == 0 {
		emi = req.Principal / months
	} else {
		factor := math.Pow(1+monthlyRate, months)
		emi = req.Principal * monthlyRate * factor / (factor - 1)
	}

	totalPayable := emi * months
	share := (existing + emi) * 100 / req.MonthlyIncome

	verdict, note := classify(share)
	if upcoming > 0 {
		note += noteBuffer
	}

	return model.AffordabilityResult{
		EMI:             emi,
		TotalInterest:   totalPayable - req.Principal,
		TotalPayable:    totalPayable,
		EMISharePercent: share,
		Months:          months,
		MonthlyRate:     monthlyRate,
		Verdict:         verdict,
		Note:            note,
	}, nil
}

func classify(share float64) (model.Verdict, string) {
	switch {
	case share <= ComfortableMaxShare:
		return model.VerdictComfortable, noteComfortable
	case share <= StretchMaxShare:
		return model.VerdictStretch, noteStretch
	default:
		return model.VerdictRisky, noteRisky
	}
}

// nonNegative clamps optional amounts: negatives and non-finite values read as 0.
func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
