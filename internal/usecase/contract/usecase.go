package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pawnloan-ledger/internal/domain/borrower"
	"pawnloan-ledger/internal/domain/contract"
	"pawnloan-ledger/internal/domain/errs"
	"pawnloan-ledger/internal/domain/money"
	"pawnloan-ledger/internal/domain/schedule"
	"pawnloan-ledger/internal/domain/uow"
	"pawnloan-ledger/internal/usecase/dto"
	"pawnloan-ledger/pkg/id"

	"github.com/sirupsen/logrus"
)

type Usecase struct {
	borrowers borrower.Repository
	contracts contract.Repository
	schedules schedule.Repository
	uow       uow.UnitOfWork
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewUsecase: read paths use the plain repos, writes go through the UoW.
func NewUsecase(b borrower.Repository, c contract.Repository, s schedule.Repository, tx uow.UnitOfWork, log logrus.FieldLogger) *Usecase {
	return &Usecase{borrowers: b, contracts: c, schedules: s, uow: tx, log: log, now: time.Now}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// Preview generates a schedule without storing anything.
func (u *Usecase) Preview(in TermsInput) (*PreviewDTO, error) {
	terms, err := scheduleTerms(in)
	if err != nil {
		return nil, err
	}
	entries, err := schedule.Generate(terms)
	if err != nil {
		return nil, err
	}
	sum, err := schedule.Summarize(entries)
	if err != nil {
		return nil, err
	}
	return &PreviewDTO{
		MaturityDate: dto.FormatDate(terms.MaturityDate()),
		Schedule:     dto.Entries(entries),
		Summary:      dto.Summary(sum),
	}, nil
}

// Open creates a contract and its full schedule in one transaction.
func (u *Usecase) Open(ctx context.Context, in OpenInput) (*ScheduleDTO, error) {
	c, entries, err := u.build(in.BorrowerID, in.Terms, in.CreatedBy)
	if err != nil {
		return nil, err
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Borrowers.GetByBorrowerID(ctx, in.BorrowerID); err != nil {
			return err
		}
		return persist(ctx, r, c, entries)
	})
	if err != nil {
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"contract_id": c.ContractID,
		"borrower_id": c.BorrowerID,
		"kind":        c.Kind,
		"principal":   c.PrincipalMoney().String(),
	}).Info("contract opened")
	return &ScheduleDTO{Contract: dto.Contract(c), Schedule: dto.Entries(entries)}, nil
}

// TopUp issues an additional contract to a borrower who already has one.
// Earlier contracts and their schedules are left untouched.
func (u *Usecase) TopUp(ctx context.Context, in TopUpInput) (*ScheduleDTO, error) {
	c, entries, err := u.build(in.BorrowerID, in.Terms, in.CreatedBy)
	if err != nil {
		return nil, err
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Borrowers.GetByBorrowerID(ctx, in.BorrowerID); err != nil {
			return err
		}
		prior, err := r.Contracts.ListByBorrowerID(ctx, in.BorrowerID)
		if err != nil {
			return err
		}
		if len(prior) == 0 {
			return errs.Invalid("borrower_id", "borrower has no contract to top up")
		}
		latest := prior[len(prior)-1].ContractID
		c.TopUpOf = &latest
		return persist(ctx, r, c, entries)
	})
	if err != nil {
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"contract_id": c.ContractID,
		"borrower_id": c.BorrowerID,
		"top_up_of":   *c.TopUpOf,
	}).Info("top-up contract opened")
	return &ScheduleDTO{Contract: dto.Contract(c), Schedule: dto.Entries(entries)}, nil
}

func (u *Usecase) Get(ctx context.Context, contractID string) (*dto.ContractDTO, error) {
	c, err := u.contracts.GetByContractID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	out := dto.Contract(c)
	return &out, nil
}

func (u *Usecase) Schedule(ctx context.Context, contractID string) (*ScheduleDTO, error) {
	c, err := u.contracts.GetByContractID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	entries, err := u.schedules.GetSchedule(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if err := schedule.CheckIntegrity(entries, c.DurationMonths); err != nil {
		return nil, u.invariant(c.ContractID, err)
	}
	return &ScheduleDTO{Contract: dto.Contract(c), Schedule: dto.Entries(entries)}, nil
}

// Summary is recomputed from the stored schedule on every call.
func (u *Usecase) Summary(ctx context.Context, contractID string) (*ContractSummaryDTO, error) {
	c, err := u.contracts.GetByContractID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	entries, err := u.schedules.GetSchedule(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	sum, err := schedule.Summarize(entries)
	if err != nil {
		return nil, u.invariant(c.ContractID, err)
	}
	return &ContractSummaryDTO{ContractID: c.ContractID, Status: string(c.Status), Summary: dto.Summary(sum)}, nil
}

// History lists every contract of a borrower, oldest first, with schedule and summary.
func (u *Usecase) History(ctx context.Context, borrowerID string) (*HistoryDTO, error) {
	b, err := u.borrowers.GetByBorrowerID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	contracts, err := u.contracts.ListByBorrowerID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	out := &HistoryDTO{Borrower: dto.Borrower(b), Contracts: make([]HistoryItem, 0, len(contracts))}
	for i := range contracts {
		c := &contracts[i]
		entries, err := u.schedules.GetSchedule(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		sum, err := schedule.Summarize(entries)
		if err != nil {
			return nil, u.invariant(c.ContractID, err)
		}
		out.Contracts = append(out.Contracts, HistoryItem{
			Contract: dto.Contract(c),
			Schedule: dto.Entries(entries),
			Summary:  dto.Summary(sum),
		})
		out.Portfolio.count(c.Status)
	}
	return out, nil
}

func (p *Portfolio) count(s contract.Status) {
	p.Total++
	switch s {
	case contract.StatusActive:
		p.Active++
	case contract.StatusCompleted:
		p.Completed++
	case contract.StatusDefaulted:
		p.Defaulted++
	case contract.StatusCancelled:
		p.Cancelled++
	}
}

func (u *Usecase) List(ctx context.Context, in ListInput) (*ContractPage, error) {
	f := contract.ListFilter{BorrowerID: in.BorrowerID, Limit: in.Limit, Offset: in.Offset}
	if in.Status != "" {
		f.Status = contract.Status(strings.ToLower(in.Status))
		if !f.Status.Valid() {
			return nil, errs.Invalid("status", "must be one of active, completed, defaulted, cancelled")
		}
	}
	if in.Kind != "" {
		f.Kind = contract.Kind(strings.ToLower(in.Kind))
		if !f.Kind.Valid() {
			return nil, errs.Invalid("kind", "must be loan or pawn")
		}
	}
	if in.Limit < 0 || in.Offset < 0 {
		return nil, errs.Invalid("limit", "limit and offset must not be negative")
	}

	found, total, err := u.contracts.List(ctx, f)
	if err != nil {
		return nil, err
	}
	page := &ContractPage{Items: make([]dto.ContractDTO, 0, len(found)), Total: total, Limit: in.Limit, Offset: in.Offset}
	for i := range found {
		page.Items = append(page.Items, dto.Contract(&found[i]))
	}
	return page, nil
}

// ChangeStatus applies an administrative status change. Completing by hand is
// only allowed once every entry is paid.
func (u *Usecase) ChangeStatus(ctx context.Context, in StatusInput) (*dto.ContractDTO, error) {
	if !in.Status.Valid() {
		return nil, errs.Invalid("status", "must be one of active, completed, defaulted, cancelled")
	}

	var out dto.ContractDTO
	var from contract.Status
	err := u.uow.WithinContractTx(ctx, in.ContractID, func(r uow.Repos, c *contract.Contract) error {
		from = c.Status
		if in.Status == contract.StatusCompleted {
			entries, err := r.Schedules.GetSchedule(ctx, c.ID)
			if err != nil {
				return err
			}
			if !schedule.FullyPaid(entries) {
				return fmt.Errorf("%w: schedule has unpaid entries", contract.ErrInvalidTransition)
			}
		}
		if err := c.Transition(in.Status, u.now()); err != nil {
			return err
		}
		if err := r.Contracts.Save(ctx, c); err != nil {
			return err
		}
		out = dto.Contract(c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"contract_id": in.ContractID,
		"from":        from,
		"to":          in.Status,
	}).Info("contract status changed")
	return &out, nil
}

// build validates terms and generates the contract with its schedule, without touching storage.
func (u *Usecase) build(borrowerID string, in TermsInput, createdBy string) (*contract.Contract, []schedule.Entry, error) {
	if strings.TrimSpace(borrowerID) == "" {
		return nil, nil, errs.Invalid("borrower_id", "is required")
	}
	kind := in.Kind
	if kind == "" {
		kind = contract.KindLoan
	}
	if !kind.Valid() {
		return nil, nil, errs.Invalid("kind", "must be loan or pawn")
	}
	if kind == contract.KindPawn && strings.TrimSpace(in.ItemPawned) == "" {
		return nil, nil, errs.Invalid("item_pawned", "is required for a pawn")
	}

	terms, err := scheduleTerms(in)
	if err != nil {
		return nil, nil, err
	}
	entries, err := schedule.Generate(terms)
	if err != nil {
		return nil, nil, err
	}

	principal := terms.Principal.Round()
	c := &contract.Contract{
		ContractID:         id.NewID32(),
		BorrowerID:         borrowerID,
		Kind:               kind,
		Principal:          principal.Amount,
		Currency:           principal.Currency,
		MonthlyRatePercent: terms.MonthlyRatePercent,
		DurationMonths:     terms.DurationMonths,
		StartDate:          schedule.Date(terms.StartDate),
		EndDate:            terms.MaturityDate(),
		Status:             contract.StatusActive,
		ItemPawned:         strings.TrimSpace(in.ItemPawned),
		Description:        strings.TrimSpace(in.Description),
		CreatedBy:          createdBy,
		StatusUpdatedAt:    u.now().UTC(),
	}
	return c, entries, nil
}

func scheduleTerms(in TermsInput) (schedule.Terms, error) {
	if !in.Currency.Valid() {
		return schedule.Terms{}, errs.Invalid("currency", "must be one of USD, KHR, THB")
	}
	if !in.Principal.Equal(in.Principal.Round(money.Scale)) {
		return schedule.Terms{}, errs.Invalid("principal", "must have at most 2 decimal places")
	}
	return schedule.Terms{
		Principal:          money.New(in.Principal, in.Currency),
		MonthlyRatePercent: in.MonthlyRatePercent,
		DurationMonths:     in.DurationMonths,
		StartDate:          schedule.Date(in.StartDate),
	}, nil
}

func persist(ctx context.Context, r uow.Repos, c *contract.Contract, entries []schedule.Entry) error {
	if err := r.Contracts.Create(ctx, c); err != nil {
		return err
	}
	return r.Schedules.Create(ctx, c.ID, entries)
}

func (u *Usecase) invariant(contractID string, err error) error {
	if errors.Is(err, errs.ErrInvariantViolation) {
		u.log.WithField("contract_id", contractID).WithError(err).Error("ledger invariant violated")
	}
	return err
}
