package dto

import (
	"encoding/json"
	"testing"
	"time"

	"pawnloan-ledger/internal/domain/money"
	"pawnloan-ledger/internal/domain/schedule"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_WireShape(t *testing.T) {
	entries, err := schedule.Generate(schedule.Terms{
		Principal:          money.New(decimal.NewFromInt(1000), money.USD),
		MonthlyRatePercent: decimal.NewFromInt(5),
		DurationMonths:     3,
		StartDate:          time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	paid, err := schedule.Settle(entries[0], nil, time.Date(2024, 2, 28, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	got := Entry(paid)
	assert.Equal(t, "2024-02-29", got.DueDate)
	require.NotNil(t, got.PaidDate)
	assert.Equal(t, "2024-02-28", *got.PaidDate)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"term": 1,
		"due_date": "2024-02-29",
		"payment_amount": {"amount": "50.00", "currency": "USD"},
		"principal_component": {"amount": "0.00", "currency": "USD"},
		"interest_component": {"amount": "50.00", "currency": "USD"},
		"remaining_balance": {"amount": "1000.00", "currency": "USD"},
		"status": "paid",
		"paid_date": "2024-02-28"
	}`, string(b))

	assert.Nil(t, Entry(entries[1]).PaidDate)
	assert.Len(t, Entries(entries), 3)
}

func TestSummary_Currency(t *testing.T) {
	entries, err := schedule.Generate(schedule.Terms{
		Principal:          money.New(decimal.NewFromInt(400000), money.KHR),
		MonthlyRatePercent: decimal.RequireFromString("2.5"),
		DurationMonths:     2,
		StartDate:          time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	s, err := schedule.Summarize(entries)
	require.NoError(t, err)

	got := Summary(s)
	assert.Equal(t, "KHR", got.Currency)
	assert.Equal(t, "420000.00 KHR", got.TotalAmount.String())
	assert.Equal(t, "10000.00 KHR", got.MonthlyInterest.String())
}
