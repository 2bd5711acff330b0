package schedule

import (
	"sort"
	"time"

	"pawnloan-ledger/internal/domain/contract"
)

// Scope selects which unpaid entries a due query returns.
type Scope string

const (
	// ScopeToday: entries due exactly on the as-of date.
	ScopeToday Scope = "today"
	// ScopeBacklog: every unpaid entry due on or before the as-of date.
	ScopeBacklog Scope = "backlog"
)

func (s Scope) Valid() bool { return s == ScopeToday || s == ScopeBacklog }

// DueFilter narrows the repository query. A zero From means "no lower bound".
type DueFilter struct {
	From       time.Time
	To         time.Time
	ContractID uint64
}

// FilterFor builds the repository filter for a scope.
func FilterFor(asOf time.Time, scope Scope, contractPK uint64) DueFilter {
	asOf = Date(asOf)
	f := DueFilter{To: asOf, ContractID: contractPK}
	if scope != ScopeBacklog {
		f.From = asOf
	}
	return f
}

// DueRow is one candidate returned by the repository.
type DueRow struct {
	Contract contract.Contract
	Entry    Entry
}

type DueItem struct {
	Contract    contract.Contract
	Entry       Entry
	DaysOverdue int
}

// Qualifies is the due predicate: unpaid, and due on asOf (today scope) or by asOf (backlog).
func Qualifies(e Entry, asOf time.Time, scope Scope) bool {
	if e.IsPaid() {
		return false
	}
	due, day := Date(e.DueDate), Date(asOf)
	if scope == ScopeBacklog {
		return !due.After(day)
	}
	return due.Equal(day)
}

// DaysOverdue is max(0, asOf - due) in whole days; 0 means due today.
func DaysOverdue(due, asOf time.Time) int {
	if d := DaysBetween(due, asOf); d > 0 {
		return d
	}
	return 0
}

// DueItems applies the due predicate to rows, computes overdue days and orders
// the result by due date, then contract id, then term.
func DueItems(asOf time.Time, scope Scope, rows []DueRow) []DueItem {
	out := make([]DueItem, 0, len(rows))
	for _, r := range rows {
		if !Qualifies(r.Entry, asOf, scope) {
			continue
		}
		out = append(out, DueItem{
			Contract:    r.Contract,
			Entry:       r.Entry,
			DaysOverdue: DaysOverdue(r.Entry.DueDate, asOf),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Entry.DueDate.Equal(b.Entry.DueDate) {
			return a.Entry.DueDate.Before(b.Entry.DueDate)
		}
		if a.Contract.ContractID != b.Contract.ContractID {
			return a.Contract.ContractID < b.Contract.ContractID
		}
		return a.Entry.Term < b.Entry.Term
	})
	return out
}
