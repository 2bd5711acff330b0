package borrower

import "context"

type SearchFilter struct {
	// Query matches name, phone or address (substring, case-insensitive where the DB allows).
	Query  string
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, b *Borrower) error
	GetByBorrowerID(ctx context.Context, borrowerID string) (*Borrower, error)
	// ListByBorrowerIDs returns the borrowers found; unknown ids are skipped.
	ListByBorrowerIDs(ctx context.Context, borrowerIDs []string) ([]Borrower, error)
	Search(ctx context.Context, f SearchFilter) ([]Borrower, int64, error)
	// Update writes the editable details of b if its stored version still equals
	// expectedVersion, otherwise it returns ErrConcurrencyConflict. On success
	// b.Version is the new version.
	Update(ctx context.Context, b *Borrower, expectedVersion int) error
}
