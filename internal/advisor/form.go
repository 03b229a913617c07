package advisor

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/cashraaga/internal/amount"
)

// NewForm builds an interactive form bound to f. Run it, then pass *f to
// Controller.Evaluate.
func NewForm(f *Form) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Can I afford this?").
				Description("Amounts in ₹. Commas are fine."),
			huh.NewInput().
				Title("Monthly income").
				Value(&f.Income).
				Validate(requiredAmount("monthly income")),
			huh.NewInput().
				Title("Existing EMIs per month").
				Placeholder("0").
				Value(&f.ExistingEMI).
				Validate(optionalAmount),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Loan amount").
				Value(&f.LoanAmount).
				Validate(requiredAmount("loan amount")),
			huh.NewInput().
				Title("Interest rate (% per year)").
				Value(&f.Rate).
				Validate(optionalAmount),
			huh.NewInput().
				Title("Tenure (years)").
				Value(&f.TenureYears).
				Validate(requiredAmount("tenure")),
			huh.NewInput().
				Title("Upcoming one-time expense").
				Placeholder("optional").
				Value(&f.OneTimeExpense).
				Validate(optionalAmount),
		),
	).WithTheme(huh.ThemeCharm())
}

func requiredAmount(name string) func(string) error {
	return func(s string) error {
		if amount.Normalize(s) <= 0 {
			return fmt.Errorf("enter a %s greater than zero", name)
		}
		return nil
	}
}

func optionalAmount(s string) error {
	if isBlank(s) {
		return nil
	}
	if amount.Normalize(s) < 0 {
		return errors.New("cannot be negative")
	}
	return nil
}
