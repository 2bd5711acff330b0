package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"pawnloan-ledger/internal/domain/borrower"
	domain "pawnloan-ledger/internal/domain/contract"
	"pawnloan-ledger/internal/domain/errs"
	"pawnloan-ledger/internal/domain/money"
	"pawnloan-ledger/internal/domain/schedule"
	"pawnloan-ledger/internal/domain/uow"
	"pawnloan-ledger/internal/logger"
	"pawnloan-ledger/internal/testutil/contractmock"
	"pawnloan-ledger/internal/testutil/memstore"
	"pawnloan-ledger/internal/testutil/schedulemock"
	"pawnloan-ledger/internal/testutil/uowmock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func newUsecase(st *memstore.Store) *Usecase {
	r := st.Repos()
	return NewUsecase(r.Borrowers, r.Contracts, r.Schedules, st.UoW(), logger.Discard()).
		WithClock(func() time.Time { return fixedNow })
}

func seedBorrower(t *testing.T, st *memstore.Store) string {
	t.Helper()
	b := &borrower.Borrower{BorrowerID: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", Name: "Dara", Phone: "011"}
	require.NoError(t, st.Repos().Borrowers.Create(context.Background(), b))
	return b.BorrowerID
}

func loanTerms() TermsInput {
	return TermsInput{
		Principal:          decimal.NewFromInt(1000),
		Currency:           money.USD,
		MonthlyRatePercent: decimal.NewFromInt(5),
		DurationMonths:     3,
		StartDate:          time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestPreview(t *testing.T) {
	uc := newUsecase(memstore.New())
	got, err := uc.Preview(loanTerms())
	require.NoError(t, err)

	assert.Equal(t, "2024-04-10", got.MaturityDate)
	require.Len(t, got.Schedule, 3)
	assert.Equal(t, "1050.00 USD", got.Schedule[2].PaymentAmount.String())
	assert.Equal(t, "1150.00 USD", got.Summary.TotalAmount.String())
	assert.Equal(t, 0, got.Summary.PaidPayments)
}

func TestPreview_Validation(t *testing.T) {
	uc := newUsecase(memstore.New())

	bad := loanTerms()
	bad.DurationMonths = 0
	_, err := uc.Preview(bad)
	assert.ErrorIs(t, err, errs.ErrValidation)

	bad = loanTerms()
	bad.Principal = decimal.RequireFromString("10.005")
	_, err = uc.Preview(bad)
	assert.ErrorIs(t, err, errs.ErrValidation)

	bad = loanTerms()
	bad.MonthlyRatePercent = decimal.RequireFromString("5.12345")
	_, err = uc.Preview(bad)
	assert.ErrorIs(t, err, errs.ErrValidation)

	bad = loanTerms()
	bad.Currency = "EUR"
	_, err = uc.Preview(bad)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestOpen_PersistsContractAndSchedule(t *testing.T) {
	st := memstore.New()
	bid := seedBorrower(t, st)
	uc := newUsecase(st)

	got, err := uc.Open(context.Background(), OpenInput{BorrowerID: bid, Terms: loanTerms(), CreatedBy: "teller-1"})
	require.NoError(t, err)

	assert.Len(t, got.Contract.ContractID, 32)
	assert.Equal(t, "active", got.Contract.Status)
	assert.Equal(t, "loan", got.Contract.Kind)
	assert.Equal(t, "2024-04-10", got.Contract.EndDate)
	assert.Equal(t, "teller-1", got.Contract.CreatedBy)
	assert.Len(t, got.Schedule, 3)

	stored, err := uc.Schedule(context.Background(), got.Contract.ContractID)
	require.NoError(t, err)
	assert.Equal(t, got.Schedule, stored.Schedule)
}

func TestOpen_Rejections(t *testing.T) {
	st := memstore.New()
	bid := seedBorrower(t, st)
	uc := newUsecase(st)
	ctx := context.Background()

	_, err := uc.Open(ctx, OpenInput{BorrowerID: "missing", Terms: loanTerms()})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	pawn := loanTerms()
	pawn.Kind = domain.KindPawn
	_, err = uc.Open(ctx, OpenInput{BorrowerID: bid, Terms: pawn})
	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "item_pawned", ve.Field)

	page, err := uc.List(ctx, ListInput{})
	require.NoError(t, err)
	assert.Zero(t, page.Total, "nothing is written when input is rejected")
}

func TestOpen_SurfacesScheduleWriteError(t *testing.T) {
	created := false
	contracts := &contractmock.Repo{CreateFn: func(context.Context, *domain.Contract) error {
		created = true
		return nil
	}}
	boom := errors.New("disk full")
	schedules := &schedulemock.Repo{CreateFn: func(context.Context, uint64, []schedule.Entry) error { return boom }}
	st := memstore.New()
	bid := seedBorrower(t, st)

	tx := uowmock.New().WithWithinTx(func(_ context.Context, fn func(uow.Repos) error) error {
		return fn(uow.Repos{Borrowers: st.Repos().Borrowers, Contracts: contracts, Schedules: schedules})
	})
	uc := NewUsecase(st.Repos().Borrowers, contracts, schedules, tx, logger.Discard())

	_, err := uc.Open(context.Background(), OpenInput{BorrowerID: bid, Terms: loanTerms()})
	assert.ErrorIs(t, err, boom)
	assert.True(t, created)
}

func TestTopUp_KeepsPriorContractUntouched(t *testing.T) {
	st := memstore.New()
	bid := seedBorrower(t, st)
	uc := newUsecase(st)
	ctx := context.Background()

	// first contract, fully paid and completed
	first, err := uc.Open(ctx, OpenInput{BorrowerID: bid, Terms: loanTerms()})
	require.NoError(t, err)
	c, err := st.Repos().Contracts.GetByContractID(ctx, first.Contract.ContractID)
	require.NoError(t, err)
	for term := 1; term <= 3; term++ {
		paid := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
		require.NoError(t, st.Repos().Schedules.UpdateEntry(ctx, c.ID, term, schedule.StatusPaid, &paid, 1))
	}
	_, err = uc.ChangeStatus(ctx, StatusInput{ContractID: c.ContractID, Status: domain.StatusCompleted})
	require.NoError(t, err)

	topTerms := loanTerms()
	topTerms.Currency = money.KHR
	topTerms.Principal = decimal.NewFromInt(2_000_000)
	top, err := uc.TopUp(ctx, TopUpInput{BorrowerID: bid, Terms: topTerms})
	require.NoError(t, err)
	require.NotNil(t, top.Contract.TopUpOf)
	assert.Equal(t, first.Contract.ContractID, *top.Contract.TopUpOf)
	assert.Equal(t, money.KHR, top.Contract.Principal.Currency)

	hist, err := uc.History(ctx, bid)
	require.NoError(t, err)
	require.Len(t, hist.Contracts, 2)
	assert.Equal(t, Portfolio{Total: 2, Active: 1, Completed: 1}, hist.Portfolio)
	assert.Equal(t, "completed", hist.Contracts[0].Contract.Status)
	for _, e := range hist.Contracts[0].Schedule {
		assert.Equal(t, "paid", e.Status)
	}
	assert.True(t, hist.Contracts[0].Summary.RemainingAmount.IsZero())
	assert.Equal(t, 0, hist.Contracts[1].Summary.PaidPayments)
}

func TestTopUp_RequiresExistingContract(t *testing.T) {
	st := memstore.New()
	bid := seedBorrower(t, st)
	uc := newUsecase(st)

	_, err := uc.TopUp(context.Background(), TopUpInput{BorrowerID: bid, Terms: loanTerms()})
	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "borrower_id", ve.Field)

	_, err = uc.TopUp(context.Background(), TopUpInput{BorrowerID: "nobody", Terms: loanTerms()})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSummary_TracksPayments(t *testing.T) {
	st := memstore.New()
	bid := seedBorrower(t, st)
	uc := newUsecase(st)
	ctx := context.Background()

	opened, err := uc.Open(ctx, OpenInput{BorrowerID: bid, Terms: loanTerms()})
	require.NoError(t, err)
	c, err := st.Repos().Contracts.GetByContractID(ctx, opened.Contract.ContractID)
	require.NoError(t, err)
	paid := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.Repos().Schedules.UpdateEntry(ctx, c.ID, 1, schedule.StatusPaid, &paid, 1))

	got, err := uc.Summary(ctx, c.ContractID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Summary.PaidPayments)
	assert.Equal(t, "50.00 USD", got.Summary.PaidAmount.String())
	assert.Equal(t, "1100.00 USD", got.Summary.RemainingAmount.String())

	_, err = uc.Summary(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSummary_CorruptScheduleIsInvariantViolation(t *testing.T) {
	c := &domain.Contract{ID: 1, ContractID: "c1", DurationMonths: 2}
	uc := NewUsecase(nil,
		&contractmock.Repo{GetByContractIDFn: func(context.Context, string) (*domain.Contract, error) { return c, nil }},
		&schedulemock.Repo{GetScheduleFn: func(context.Context, uint64) ([]schedule.Entry, error) {
			return []schedule.Entry{{Term: 2, Currency: money.USD, Status: schedule.StatusPending}}, nil
		}},
		uowmock.New(), logger.Discard())

	_, err := uc.Summary(context.Background(), "c1")
	assert.ErrorIs(t, err, errs.ErrInvariantViolation)
	_, err = uc.Schedule(context.Background(), "c1")
	assert.ErrorIs(t, err, errs.ErrInvariantViolation)
}

func TestChangeStatus(t *testing.T) {
	st := memstore.New()
	bid := seedBorrower(t, st)
	uc := newUsecase(st)
	ctx := context.Background()

	opened, err := uc.Open(ctx, OpenInput{BorrowerID: bid, Terms: loanTerms()})
	require.NoError(t, err)
	cid := opened.Contract.ContractID

	_, err = uc.ChangeStatus(ctx, StatusInput{ContractID: cid, Status: domain.StatusCompleted})
	assert.ErrorIs(t, err, errs.ErrInvalidTransition, "cannot complete with unpaid entries")

	got, err := uc.ChangeStatus(ctx, StatusInput{ContractID: cid, Status: domain.StatusDefaulted})
	require.NoError(t, err)
	assert.Equal(t, "defaulted", got.Status)
	assert.Equal(t, fixedNow, got.StatusUpdatedAt)

	_, err = uc.ChangeStatus(ctx, StatusInput{ContractID: cid, Status: domain.StatusActive})
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)

	got, err = uc.ChangeStatus(ctx, StatusInput{ContractID: cid, Status: domain.StatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)

	_, err = uc.ChangeStatus(ctx, StatusInput{ContractID: cid, Status: "frozen"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = uc.ChangeStatus(ctx, StatusInput{ContractID: "missing", Status: domain.StatusCancelled})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestList_Filters(t *testing.T) {
	st := memstore.New()
	bid := seedBorrower(t, st)
	uc := newUsecase(st)
	ctx := context.Background()

	_, err := uc.Open(ctx, OpenInput{BorrowerID: bid, Terms: loanTerms()})
	require.NoError(t, err)
	pawn := loanTerms()
	pawn.Kind = domain.KindPawn
	pawn.ItemPawned = "gold ring"
	_, err = uc.Open(ctx, OpenInput{BorrowerID: bid, Terms: pawn})
	require.NoError(t, err)

	page, err := uc.List(ctx, ListInput{Kind: "PAWN"})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, "gold ring", page.Items[0].ItemPawned)

	page, err = uc.List(ctx, ListInput{Status: "active", BorrowerID: bid})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	_, err = uc.List(ctx, ListInput{Status: "lost"})
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = uc.List(ctx, ListInput{Kind: "lease"})
	assert.ErrorIs(t, err, errs.ErrValidation)
}
