package due

import (
	"context"
	"strings"
	"time"

	"pawnloan-ledger/internal/domain/borrower"
	"pawnloan-ledger/internal/domain/contract"
	"pawnloan-ledger/internal/domain/errs"
	"pawnloan-ledger/internal/domain/schedule"
	"pawnloan-ledger/internal/usecase/dto"

	"github.com/sirupsen/logrus"
)

type Usecase struct {
	borrowers borrower.Repository
	contracts contract.Repository
	schedules schedule.Repository
	log       logrus.FieldLogger
	now       func() time.Time
	loc       *time.Location
}

func NewUsecase(b borrower.Repository, c contract.Repository, s schedule.Repository, log logrus.FieldLogger) *Usecase {
	return &Usecase{borrowers: b, contracts: c, schedules: s, log: log, now: time.Now, loc: time.UTC}
}

// WithClock sets the clock and the business time zone that decides "today".
func (u *Usecase) WithClock(now func() time.Time, loc *time.Location) *Usecase {
	u.now, u.loc = now, loc
	return u
}

func (u *Usecase) asOf(t time.Time) time.Time {
	if t.IsZero() {
		return schedule.Today(u.now(), u.loc)
	}
	return schedule.Date(t)
}

// List returns unpaid installments due on (today scope) or by (backlog scope)
// the as-of date across every collectable contract.
func (u *Usecase) List(ctx context.Context, in ListInput) (*DueListDTO, error) {
	scope := schedule.Scope(strings.ToLower(strings.TrimSpace(in.Scope)))
	if scope == "" {
		scope = schedule.ScopeToday
	}
	if !scope.Valid() {
		return nil, errs.Invalid("scope", "must be today or backlog")
	}
	asOf := u.asOf(in.AsOf)

	var contractPK uint64
	if in.ContractID != "" {
		c, err := u.contracts.GetByContractID(ctx, in.ContractID)
		if err != nil {
			return nil, err
		}
		contractPK = c.ID
	}

	rows, err := u.schedules.ListDue(ctx, schedule.FilterFor(asOf, scope, contractPK))
	if err != nil {
		return nil, err
	}
	items := schedule.DueItems(asOf, scope, rows)

	names, err := u.borrowerIndex(ctx, items)
	if err != nil {
		return nil, err
	}

	out := &DueListDTO{AsOf: dto.FormatDate(asOf), Scope: string(scope), Count: len(items), Items: make([]DueItemDTO, 0, len(items))}
	for _, it := range items {
		b := names[it.Contract.BorrowerID]
		out.Items = append(out.Items, DueItemDTO{
			ContractID:    it.Contract.ContractID,
			Kind:          string(it.Contract.Kind),
			BorrowerID:    it.Contract.BorrowerID,
			BorrowerName:  b.Name,
			BorrowerPhone: b.Phone,
			ItemPawned:    it.Contract.ItemPawned,
			Term:          it.Entry.Term,
			DueDate:       dto.FormatDate(it.Entry.DueDate),
			PaymentAmount: it.Entry.Payment().Round(),
			Status:        string(it.Entry.Status),
			DaysOverdue:   it.DaysOverdue,
		})
	}
	return out, nil
}

func (u *Usecase) borrowerIndex(ctx context.Context, items []schedule.DueItem) (map[string]borrower.Borrower, error) {
	ids := make([]string, 0, len(items))
	seen := map[string]bool{}
	for _, it := range items {
		if id := it.Contract.BorrowerID; !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	found, err := u.borrowers.ListByBorrowerIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]borrower.Borrower, len(found))
	for _, b := range found {
		out[b.BorrowerID] = b
	}
	return out, nil
}

// MarkOverdue flags pending entries that fell due before asOf.
func (u *Usecase) MarkOverdue(ctx context.Context, asOf time.Time) (*SweepDTO, error) {
	day := u.asOf(asOf)
	n, err := u.schedules.MarkOverdue(ctx, day)
	if err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{"as_of": dto.FormatDate(day), "marked": n}).Info("overdue sweep finished")
	return &SweepDTO{AsOf: dto.FormatDate(day), Marked: n}, nil
}
