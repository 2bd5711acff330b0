package schedule

import (
	"time"

	"pawnloan-ledger/internal/domain/errs"
	"pawnloan-ledger/internal/domain/money"
)

// Settle returns e marked as paid on paidOn. A nil amount settles at the
// scheduled payment; a supplied amount must match it exactly.
func Settle(e Entry, amount *money.Money, paidOn time.Time) (Entry, error) {
	if e.IsPaid() {
		return e, ErrAlreadyPaid
	}
	if paidOn.IsZero() {
		return e, errs.Invalid("payment_date", "is required")
	}
	if amount != nil {
		if amount.Currency != e.Currency {
			return e, errs.Invalid("amount", "currency must be "+string(e.Currency))
		}
		if !amount.Amount.Equal(e.PaymentAmount) {
			return e, errs.Invalid("amount", "must equal the scheduled payment "+e.Payment().String())
		}
	}
	d := Date(paidOn)
	e.Status = StatusPaid
	e.PaidDate = &d
	return e, nil
}

// FullyPaid reports whether every entry is paid. An empty schedule is never paid.
func FullyPaid(entries []Entry) bool {
	if len(entries) == 0 {
		return false
	}
	for _, e := range entries {
		if !e.IsPaid() {
			return false
		}
	}
	return true
}

// Find returns the entry for term, or ErrEntryNotFound.
func Find(entries []Entry, term int) (Entry, error) {
	for _, e := range entries {
		if e.Term == term {
			return e, nil
		}
	}
	return Entry{}, ErrEntryNotFound
}

// Overdue reports whether an unpaid pending entry is past due on asOf.
func Overdue(e Entry, asOf time.Time) bool {
	return e.Status == StatusPending && Date(e.DueDate).Before(Date(asOf))
}

// CheckIntegrity verifies the structural invariants of a stored schedule:
// terms 1..n without gaps, a single currency, non-increasing balance ending at 0.
func CheckIntegrity(entries []Entry, durationMonths int) error {
	if len(entries) == 0 {
		return errs.Invariant("schedule is empty")
	}
	if durationMonths > 0 && len(entries) != durationMonths {
		return errs.Invariant("schedule has %d entries, want %d", len(entries), durationMonths)
	}
	cur := entries[0].Currency
	for i, e := range entries {
		if e.Term != i+1 {
			return errs.Invariant("term %d found at position %d", e.Term, i+1)
		}
		if e.Currency != cur {
			return errs.Invariant("term %d currency %s differs from %s", e.Term, e.Currency, cur)
		}
		if !e.Status.Valid() {
			return errs.Invariant("term %d has unknown status %q", e.Term, e.Status)
		}
		if e.RemainingBalance.IsNegative() || e.PaymentAmount.IsNegative() {
			return errs.Invariant("term %d carries a negative amount", e.Term)
		}
		if i > 0 && e.RemainingBalance.GreaterThan(entries[i-1].RemainingBalance) {
			return errs.Invariant("balance increases at term %d", e.Term)
		}
	}
	if last := entries[len(entries)-1]; !last.RemainingBalance.IsZero() {
		return errs.Invariant("final balance is %s, want 0", last.Balance())
	}
	return nil
}
