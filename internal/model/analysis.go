// Package model defines the analysis and loan affordability data types.
package model

// AnalysisResult is the statement analysis returned by the backend.
// Sections the backend may omit are pointers; a nil section resolves through
// the projection defaults below.
type AnalysisResult struct {
	Summary         *Summary          `json:"summary,omitempty" yaml:"summary,omitempty"`
	UPI             *UPIInfo          `json:"upi,omitempty" yaml:"upi,omitempty"`
	EMI             *EMIInfo          `json:"emi,omitempty" yaml:"emi,omitempty"`
	MonthlySavings  []MonthlySaving   `json:"monthly_savings" yaml:"monthly_savings,omitempty" validate:"dive"`
	CategorySummary []CategorySummary `json:"category_summary" yaml:"category_summary,omitempty" validate:"dive"`
	CleanedCSV      string            `json:"cleaned_csv,omitempty" yaml:"-"`
	FutureBlock     *FutureBlock      `json:"future_block,omitempty" yaml:"future_block,omitempty"`
}

// Summary holds the headline inflow/outflow figures.
type Summary struct {
	Inflow         float64           `json:"inflow" yaml:"inflow"`
	Outflow        float64           `json:"outflow" yaml:"outflow"`
	NetSavings     float64           `json:"net_savings" yaml:"net_savings"`
	ThisMonth      *ThisMonthSummary `json:"this_month,omitempty" yaml:"this_month,omitempty"`
	SafeDailySpend float64           `json:"safe_daily_spend" yaml:"safe_daily_spend"`
}

// ThisMonthSummary compares the current month's savings with the previous one.
type ThisMonthSummary struct {
	Month       string  `json:"month" yaml:"month"`
	Savings     float64 `json:"savings" yaml:"savings"`
	PrevSavings float64 `json:"prev_savings" yaml:"prev_savings"`
	MomChange   float64 `json:"mom_change" yaml:"mom_change"`
}

// UPIInfo summarizes UPI transfers.
type UPIInfo struct {
	ThisMonth float64 `json:"this_month" yaml:"this_month"`
	TopHandle *string `json:"top_handle" yaml:"top_handle"`
	TotalUPI  float64 `json:"total_upi" yaml:"total_upi"`
}

// EMIInfo summarizes the EMI debits detected in the statement.
type EMIInfo struct {
	ThisMonth     float64 `json:"this_month" yaml:"this_month"`
	MonthsTracked int     `json:"months_tracked" yaml:"months_tracked" validate:"gte=0"`
}

// MonthlySaving is one month's net savings.
type MonthlySaving struct {
	Month        string  `json:"month" yaml:"month" validate:"required"`
	SignedAmount float64 `json:"signed_amount" yaml:"signed_amount"`
}

// CategorySummary is the net amount spent or received per category.
type CategorySummary struct {
	Category     string  `json:"category" yaml:"category" validate:"required"`
	SignedAmount float64 `json:"signed_amount" yaml:"signed_amount"`
}

// FutureBlock is the backend's month-end forecast.
type FutureBlock struct {
	PredictedEOMSavings float64         `json:"predicted_eom_savings" yaml:"predicted_eom_savings"`
	PredictedEOMRange   [2]float64      `json:"predicted_eom_range" yaml:"predicted_eom_range"`
	OverspendRisk       OverspendRisk   `json:"overspend_risk" yaml:"overspend_risk"`
	RiskyCategories     []RiskyCategory `json:"risky_categories" yaml:"risky_categories" validate:"dive"`
}

// OverspendRisk is the probability of overspending this month.
type OverspendRisk struct {
	Level       string  `json:"level" yaml:"level" validate:"oneof=low medium high"`
	Probability float64 `json:"probability" yaml:"probability" validate:"gte=0,lte=1"`
}

// RiskyCategory is a category projected to exceed its baseline.
type RiskyCategory struct {
	Name            string  `json:"name" yaml:"name" validate:"required"`
	ProjectedAmount float64 `json:"projected_amount" yaml:"projected_amount"`
	BaselineAmount  float64 `json:"baseline_amount" yaml:"baseline_amount"`
}

// Projection is the part of an analysis the affordability advisor reads.
type Projection struct {
	Income             float64
	ExistingMonthlyEMI float64
}

// projectionFields is the single default-resolution table for Projection.
// Each entry reads one backend field and falls back when it is absent.
var projectionFields = []struct {
	name     string
	fallback float64
	read     func(*AnalysisResult) (float64, bool)
	assign   func(*Projection, float64)
}{
	{
		name:     "summary.inflow",
		fallback: 0,
		read: func(a *AnalysisResult) (float64, bool) {
			if a.Summary == nil {
				return 0, false
			}
			return a.Summary.Inflow, true
		},
		assign: func(p *Projection, v float64) { p.Income = v },
	},
	{
		name:     "emi.this_month",
		fallback: 0,
		read: func(a *AnalysisResult) (float64, bool) {
			if a.EMI == nil {
				return 0, false
			}
			return a.EMI.ThisMonth, true
		},
		assign: func(p *Projection, v float64) { p.ExistingMonthlyEMI = v },
	},
}

// Project resolves the advisor's inputs. A nil analysis yields the fallbacks.
func (a *AnalysisResult) Project() Projection {
	var p Projection
	for _, f := range projectionFields {
		v := f.fallback
		if a != nil {
			if got, ok := f.read(a); ok {
				v = got
			}
		}
		f.assign(&p, v)
	}
	return p
}

// Clone returns a deep copy of a. Clone of nil is nil.
func (a *AnalysisResult) Clone() *AnalysisResult {
	if a == nil {
		return nil
	}

	c := *a
	if a.Summary != nil {
		s := *a.Summary
		if a.Summary.ThisMonth != nil {
			tm := *a.Summary.ThisMonth
			s.ThisMonth = &tm
		}
		c.Summary = &s
	}
	if a.UPI != nil {
		u := *a.UPI
		if a.UPI.TopHandle != nil {
			h := *a.UPI.TopHandle
			u.TopHandle = &h
		}
		c.UPI = &u
	}
	if a.EMI != nil {
		e := *a.EMI
		c.EMI = &e
	}
	if a.MonthlySavings != nil {
		c.MonthlySavings = make([]MonthlySaving, len(a.MonthlySavings))
		copy(c.MonthlySavings, a.MonthlySavings)
	}
	if a.CategorySummary != nil {
		c.CategorySummary = make([]CategorySummary, len(a.CategorySummary))
		copy(c.CategorySummary, a.CategorySummary)
	}
	if a.FutureBlock != nil {
		fb := *a.FutureBlock
		if a.FutureBlock.RiskyCategories != nil {
			fb.RiskyCategories = make([]RiskyCategory, len(a.FutureBlock.RiskyCategories))
			copy(fb.RiskyCategories, a.FutureBlock.RiskyCategories)
		}
		c.FutureBlock = &fb
	}
	return &c
}
