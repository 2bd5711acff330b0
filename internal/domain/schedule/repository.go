package schedule

import (
	"context"
	"time"
)

type Repository interface {
	// Create stores a freshly generated schedule; it refuses to overwrite an existing one.
	Create(ctx context.Context, contractPK uint64, entries []Entry) error
	// GetSchedule returns the entries of a contract ordered by term.
	GetSchedule(ctx context.Context, contractPK uint64) ([]Entry, error)
	// UpdateEntry writes a status change if the stored version still equals
	// expectedVersion, otherwise it returns ErrConcurrencyConflict.
	UpdateEntry(ctx context.Context, contractPK uint64, term int, status Status, paidDate *time.Time, expectedVersion int) error
	// ListDue returns unpaid entries of collectable contracts inside the filter window,
	// ordered by due date, contract id and term.
	ListDue(ctx context.Context, f DueFilter) ([]DueRow, error)
	// MarkOverdue flags pending entries due before asOf and returns how many changed.
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}
