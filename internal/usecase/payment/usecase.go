package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pawnloan-ledger/internal/domain/contract"
	"pawnloan-ledger/internal/domain/errs"
	"pawnloan-ledger/internal/domain/money"
	"pawnloan-ledger/internal/domain/schedule"
	"pawnloan-ledger/internal/domain/uow"
	"pawnloan-ledger/internal/usecase/dto"

	"github.com/sirupsen/logrus"
)

type Usecase struct {
	uow uow.UnitOfWork
	log logrus.FieldLogger
	now func() time.Time
	loc *time.Location
}

func NewUsecase(tx uow.UnitOfWork, log logrus.FieldLogger) *Usecase {
	return &Usecase{uow: tx, log: log, now: time.Now, loc: time.UTC}
}

// WithClock sets the clock and the business time zone used for default payment dates.
func (u *Usecase) WithClock(now func() time.Time, loc *time.Location) *Usecase {
	u.now, u.loc = now, loc
	return u
}

// RecordPayment settles one schedule entry. The contract row stays locked for
// the whole transaction; paying the last open entry completes the contract.
func (u *Usecase) RecordPayment(ctx context.Context, in RecordPaymentInput) (*PaymentDTO, error) {
	if in.Term < 1 {
		return nil, errs.Invalid("term", "must be at least 1")
	}
	if in.Amount != nil && in.Currency != "" && !in.Currency.Valid() {
		return nil, errs.Invalid("currency", "must be one of USD, KHR, THB")
	}
	paidOn := schedule.Date(in.PaymentDate)
	if in.PaymentDate.IsZero() {
		paidOn = schedule.Today(u.now(), u.loc)
	}

	var out *PaymentDTO
	err := u.uow.WithinContractTx(ctx, in.ContractID, func(r uow.Repos, c *contract.Contract) error {
		if !c.Status.AcceptsPayments() {
			return fmt.Errorf("%w (status %s)", contract.ErrClosed, c.Status)
		}
		if paidOn.Before(schedule.Date(c.StartDate)) {
			return errs.Invalid("payment_date", "must not precede the contract start date")
		}

		entries, err := r.Schedules.GetSchedule(ctx, c.ID)
		if err != nil {
			return err
		}
		if err := schedule.CheckIntegrity(entries, c.DurationMonths); err != nil {
			return u.invariant(c.ContractID, err)
		}
		e, err := schedule.Find(entries, in.Term)
		if err != nil {
			return err
		}

		var amount *money.Money
		if in.Amount != nil {
			cur := in.Currency
			if cur == "" {
				cur = c.Currency
			}
			m := money.New(*in.Amount, cur)
			amount = &m
		}
		paid, err := schedule.Settle(e, amount, paidOn)
		if err != nil {
			return err
		}
		if err := r.Schedules.UpdateEntry(ctx, c.ID, paid.Term, paid.Status, paid.PaidDate, e.Version); err != nil {
			return err
		}
		paid.Version = e.Version + 1
		entries[paid.Term-1] = paid

		completed := false
		if schedule.FullyPaid(entries) {
			if err := c.Transition(contract.StatusCompleted, u.now()); err != nil {
				return err
			}
			if err := r.Contracts.Save(ctx, c); err != nil {
				return err
			}
			completed = true
		}

		sum, err := schedule.Summarize(entries)
		if err != nil {
			return u.invariant(c.ContractID, err)
		}
		out = &PaymentDTO{
			ContractID:        c.ContractID,
			Entry:             dto.Entry(paid),
			ContractStatus:    string(c.Status),
			ContractCompleted: completed,
			Summary:           dto.Summary(sum),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{
		"contract_id": out.ContractID,
		"term":        in.Term,
		"amount":      out.Entry.PaymentAmount.String(),
		"paid_on":     dto.FormatDate(paidOn),
	}
	u.log.WithFields(fields).Info("payment recorded")
	if out.ContractCompleted {
		u.log.WithField("contract_id", out.ContractID).Info("contract completed")
	}
	return out, nil
}

func (u *Usecase) invariant(contractID string, err error) error {
	if errors.Is(err, errs.ErrInvariantViolation) {
		u.log.WithField("contract_id", contractID).WithError(err).Error("ledger invariant violated")
	}
	return err
}
