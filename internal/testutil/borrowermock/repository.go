package borrowermock

import (
	"context"

	domain "pawnloan-ledger/internal/domain/borrower"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return domain.ErrNotFound; unset writes succeed.
type Repo struct {
	CreateFn            func(ctx context.Context, b *domain.Borrower) error
	GetByBorrowerIDFn   func(ctx context.Context, borrowerID string) (*domain.Borrower, error)
	ListByBorrowerIDsFn func(ctx context.Context, borrowerIDs []string) ([]domain.Borrower, error)
	SearchFn            func(ctx context.Context, f domain.SearchFilter) ([]domain.Borrower, int64, error)
	UpdateFn            func(ctx context.Context, b *domain.Borrower, expectedVersion int) error
}

func (m *Repo) Create(ctx context.Context, b *domain.Borrower) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, b)
	}
	return nil
}

func (m *Repo) GetByBorrowerID(ctx context.Context, borrowerID string) (*domain.Borrower, error) {
	if m.GetByBorrowerIDFn != nil {
		return m.GetByBorrowerIDFn(ctx, borrowerID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByBorrowerIDs(ctx context.Context, borrowerIDs []string) ([]domain.Borrower, error) {
	if m.ListByBorrowerIDsFn != nil {
		return m.ListByBorrowerIDsFn(ctx, borrowerIDs)
	}
	return nil, nil
}

func (m *Repo) Search(ctx context.Context, f domain.SearchFilter) ([]domain.Borrower, int64, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, f)
	}
	return nil, 0, nil
}

func (m *Repo) Update(ctx context.Context, b *domain.Borrower, expectedVersion int) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, b, expectedVersion)
	}
	b.Version = expectedVersion + 1
	return nil
}
