package schedule

import (
	"github.com/shopspring/decimal"

	"pawnloan-ledger/internal/domain/errs"
	"pawnloan-ledger/internal/domain/money"
)

// Summary is derived from a schedule on every request and never stored.
type Summary struct {
	TotalPayments   int
	PaidPayments    int
	PaidAmount      money.Money
	RemainingAmount money.Money
	TotalAmount     money.Money
	MonthlyInterest money.Money
}

// Summarize aggregates paid and outstanding figures for a schedule.
func Summarize(entries []Entry) (Summary, error) {
	if err := CheckIntegrity(entries, 0); err != nil {
		return Summary{}, err
	}
	cur := entries[0].Currency
	interest := entries[0].Interest()

	principal := decimal.Zero
	paid := decimal.Zero
	paidCount := 0
	for _, e := range entries {
		principal = principal.Add(e.PrincipalComponent)
		if e.IsPaid() {
			paidCount++
			paid = paid.Add(e.PaymentAmount)
		}
	}
	total := principal.Add(interest.Amount.Mul(decimal.NewFromInt(int64(len(entries)))))
	remaining := total.Sub(paid)
	if remaining.IsNegative() {
		return Summary{}, errs.Invariant("remaining amount %s is negative", remaining.StringFixed(money.Scale))
	}

	return Summary{
		TotalPayments:   len(entries),
		PaidPayments:    paidCount,
		PaidAmount:      money.New(paid, cur),
		RemainingAmount: money.New(remaining, cur),
		TotalAmount:     money.New(total, cur),
		MonthlyInterest: interest,
	}, nil
}
