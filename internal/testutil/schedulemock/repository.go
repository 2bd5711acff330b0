package schedulemock

import (
	"context"
	"time"

	domain "pawnloan-ledger/internal/domain/schedule"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn      func(ctx context.Context, contractPK uint64, entries []domain.Entry) error
	GetScheduleFn func(ctx context.Context, contractPK uint64) ([]domain.Entry, error)
	UpdateEntryFn func(ctx context.Context, contractPK uint64, term int, status domain.Status, paidDate *time.Time, expectedVersion int) error
	ListDueFn     func(ctx context.Context, f domain.DueFilter) ([]domain.DueRow, error)
	MarkOverdueFn func(ctx context.Context, asOf time.Time) (int64, error)
}

func (m *Repo) Create(ctx context.Context, contractPK uint64, entries []domain.Entry) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, contractPK, entries)
	}
	return nil
}

func (m *Repo) GetSchedule(ctx context.Context, contractPK uint64) ([]domain.Entry, error) {
	if m.GetScheduleFn != nil {
		return m.GetScheduleFn(ctx, contractPK)
	}
	return nil, nil
}

func (m *Repo) UpdateEntry(ctx context.Context, contractPK uint64, term int, status domain.Status, paidDate *time.Time, expectedVersion int) error {
	if m.UpdateEntryFn != nil {
		return m.UpdateEntryFn(ctx, contractPK, term, status, paidDate, expectedVersion)
	}
	return nil
}

func (m *Repo) ListDue(ctx context.Context, f domain.DueFilter) ([]domain.DueRow, error) {
	if m.ListDueFn != nil {
		return m.ListDueFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	if m.MarkOverdueFn != nil {
		return m.MarkOverdueFn(ctx, asOf)
	}
	return 0, nil
}
