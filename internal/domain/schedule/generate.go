package schedule

import (
	"time"

	"pawnloan-ledger/internal/domain/errs"
	"pawnloan-ledger/internal/domain/money"

	"github.com/shopspring/decimal"
)

// MaxDurationMonths bounds a single contract; longer terms are almost certainly input mistakes.
const MaxDurationMonths = 600

// Rate limits match the stored column, decimal(9,4).
const (
	RateScale             int32 = 4
	MaxMonthlyRatePercent       = 100
)

// Terms are the inputs of a flat-rate, principal-at-maturity schedule.
type Terms struct {
	Principal          money.Money
	MonthlyRatePercent decimal.Decimal
	DurationMonths     int
	StartDate          time.Time
}

func (t Terms) Validate() error {
	if !t.Principal.Currency.Valid() {
		return errs.Invalid("currency", "must be one of USD, KHR, THB")
	}
	if !t.Principal.IsPositive() {
		return errs.Invalid("principal", "must be greater than 0")
	}
	if !t.Principal.Amount.Equal(t.Principal.Amount.Round(money.Scale)) {
		return errs.Invalid("principal", "must have at most 2 decimal places")
	}
	if t.MonthlyRatePercent.IsNegative() {
		return errs.Invalid("monthly_rate_percent", "must not be negative")
	}
	if t.MonthlyRatePercent.GreaterThan(decimal.NewFromInt(MaxMonthlyRatePercent)) {
		return errs.Invalid("monthly_rate_percent", "must not exceed 100")
	}
	if !t.MonthlyRatePercent.Equal(t.MonthlyRatePercent.Round(RateScale)) {
		return errs.Invalid("monthly_rate_percent", "must have at most 4 decimal places")
	}
	if t.DurationMonths < 1 {
		return errs.Invalid("duration_months", "must be at least 1")
	}
	if t.DurationMonths > MaxDurationMonths {
		return errs.Invalid("duration_months", "must not exceed 600")
	}
	if t.StartDate.IsZero() {
		return errs.Invalid("start_date", "is required")
	}
	return nil
}

// MonthlyInterest is the constant per-term interest, rounded to the currency scale.
func (t Terms) MonthlyInterest() money.Money {
	return t.Principal.Round().Percent(t.MonthlyRatePercent)
}

// MaturityDate is the due date of the final term.
func (t Terms) MaturityDate() time.Time {
	return AddMonths(t.StartDate, t.DurationMonths)
}

// Generate builds the full schedule for t. It either returns every term or an error.
func Generate(t Terms) ([]Entry, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	principal := t.Principal.Round()
	interest := t.MonthlyInterest()

	out := make([]Entry, 0, t.DurationMonths)
	for term := 1; term <= t.DurationMonths; term++ {
		e := Entry{
			Term:               term,
			DueDate:            AddMonths(t.StartDate, term),
			Currency:           principal.Currency,
			PaymentAmount:      interest.Amount,
			PrincipalComponent: decimal.Zero,
			InterestComponent:  interest.Amount,
			RemainingBalance:   principal.Amount,
			Status:             StatusPending,
			Version:            1,
		}
		if term == t.DurationMonths {
			e.PaymentAmount = principal.Amount.Add(interest.Amount)
			e.PrincipalComponent = principal.Amount
			e.RemainingBalance = decimal.Zero
		}
		out = append(out, e)
	}
	return out, nil
}
