package borrower

import (
	"context"
	"strings"

	"pawnloan-ledger/internal/domain/borrower"
	"pawnloan-ledger/internal/domain/errs"
	"pawnloan-ledger/internal/usecase/dto"
	"pawnloan-ledger/pkg/id"

	"github.com/sirupsen/logrus"
)

type Usecase struct {
	repo borrower.Repository
	log  logrus.FieldLogger
}

func NewUsecase(r borrower.Repository, log logrus.FieldLogger) *Usecase {
	return &Usecase{repo: r, log: log}
}

func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*dto.BorrowerDTO, error) {
	b := &borrower.Borrower{
		BorrowerID: id.NewID32(),
		Name:       strings.TrimSpace(in.Name),
		Phone:      strings.TrimSpace(in.Phone),
		Address:    strings.TrimSpace(in.Address),
		Gender:     borrower.Gender(strings.ToLower(strings.TrimSpace(in.Gender))),
		Version:    1,
	}
	if err := validate(b); err != nil {
		return nil, err
	}
	if err := u.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	u.log.WithField("borrower_id", b.BorrowerID).Info("borrower registered")

	out := dto.Borrower(b)
	return &out, nil
}

// Update edits a borrower's details. A stale Version fails with
// borrower.ErrConcurrencyConflict and nothing is written.
func (u *Usecase) Update(ctx context.Context, borrowerID string, in UpdateInput) (*dto.BorrowerDTO, error) {
	if in.Version < 1 {
		return nil, errs.Invalid("version", "is required")
	}
	b, err := u.repo.GetByBorrowerID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if b.Version != in.Version {
		return nil, borrower.ErrConcurrencyConflict
	}
	if in.Name != nil {
		b.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		b.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		b.Address = strings.TrimSpace(*in.Address)
	}
	if in.Gender != nil {
		b.Gender = borrower.Gender(strings.ToLower(strings.TrimSpace(*in.Gender)))
	}
	if err := validate(b); err != nil {
		return nil, err
	}
	if err := u.repo.Update(ctx, b, in.Version); err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{"borrower_id": b.BorrowerID, "version": b.Version}).Info("borrower updated")

	out := dto.Borrower(b)
	return &out, nil
}

func validate(b *borrower.Borrower) error {
	if b.Name == "" {
		return errs.Invalid("name", "is required")
	}
	if b.Phone == "" {
		return errs.Invalid("phone", "is required")
	}
	switch b.Gender {
	case borrower.GenderUnspecified, borrower.GenderMale, borrower.GenderFemale:
	default:
		return errs.Invalid("gender", "must be male or female")
	}
	return nil
}

func (u *Usecase) Get(ctx context.Context, borrowerID string) (*dto.BorrowerDTO, error) {
	b, err := u.repo.GetByBorrowerID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	out := dto.Borrower(b)
	return &out, nil
}

func (u *Usecase) Search(ctx context.Context, in SearchInput) (*BorrowerPage, error) {
	if in.Limit < 0 || in.Offset < 0 {
		return nil, errs.Invalid("limit", "limit and offset must not be negative")
	}
	found, total, err := u.repo.Search(ctx, borrower.SearchFilter{Query: in.Query, Limit: in.Limit, Offset: in.Offset})
	if err != nil {
		return nil, err
	}
	page := &BorrowerPage{Items: make([]dto.BorrowerDTO, 0, len(found)), Total: total, Limit: in.Limit, Offset: in.Offset}
	for i := range found {
		page.Items = append(page.Items, dto.Borrower(&found[i]))
	}
	return page, nil
}
