package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawnloan-ledger/internal/domain/contract"
)

func dueRows() []DueRow {
	mk := func(cid string, term int, due Entry) DueRow {
		due.Term = term
		return DueRow{Contract: contract.Contract{ContractID: cid}, Entry: due}
	}
	return []DueRow{
		mk("bbbb", 1, Entry{DueDate: day(2024, 2, 1), Status: StatusPending}),
		mk("bbbb", 1, Entry{DueDate: day(2024, 1, 15), Status: StatusPending}),
		mk("aaaa", 1, Entry{DueDate: day(2024, 1, 1), Status: StatusOverdue}),
	}
}

func TestDueItems_BacklogExample(t *testing.T) {
	got := DueItems(day(2024, 1, 20), ScopeBacklog, dueRows())
	require.Len(t, got, 2)
	assert.Equal(t, day(2024, 1, 1), got[0].Entry.DueDate)
	assert.Equal(t, 19, got[0].DaysOverdue)
	assert.Equal(t, day(2024, 1, 15), got[1].Entry.DueDate)
	assert.Equal(t, 5, got[1].DaysOverdue)
}

func TestDueItems_TodayScope(t *testing.T) {
	assert.Empty(t, DueItems(day(2024, 1, 20), ScopeToday, dueRows()))

	got := DueItems(day(2024, 1, 15), ScopeToday, dueRows())
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].DaysOverdue)
}

func TestDueItems_SkipsPaidAndOrdersTies(t *testing.T) {
	rows := []DueRow{
		{Contract: contract.Contract{ContractID: "cccc"}, Entry: Entry{Term: 2, DueDate: day(2024, 1, 1)}},
		{Contract: contract.Contract{ContractID: "aaaa"}, Entry: Entry{Term: 1, DueDate: day(2024, 1, 1)}},
		{Contract: contract.Contract{ContractID: "bbbb"}, Entry: Entry{Term: 1, DueDate: day(2024, 1, 1), Status: StatusPaid}},
	}
	got := DueItems(day(2024, 1, 3), ScopeBacklog, rows)
	require.Len(t, got, 2)
	assert.Equal(t, "aaaa", got[0].Contract.ContractID)
	assert.Equal(t, "cccc", got[1].Contract.ContractID)
}

func TestFilterFor(t *testing.T) {
	f := FilterFor(day(2024, 1, 20), ScopeToday, 7)
	assert.Equal(t, day(2024, 1, 20), f.From)
	assert.Equal(t, day(2024, 1, 20), f.To)
	assert.Equal(t, uint64(7), f.ContractID)

	f = FilterFor(day(2024, 1, 20), ScopeBacklog, 0)
	assert.True(t, f.From.IsZero())
}

func TestDaysOverdue(t *testing.T) {
	assert.Equal(t, 0, DaysOverdue(day(2024, 1, 20), day(2024, 1, 20)))
	assert.Equal(t, 0, DaysOverdue(day(2024, 1, 25), day(2024, 1, 20)))
	assert.Equal(t, 31, DaysOverdue(day(2024, 1, 1), day(2024, 2, 1)))
}
