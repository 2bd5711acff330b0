package contract

import "context"

type ListFilter struct {
	BorrowerID string
	Status     Status
	Kind       Kind
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, c *Contract) error
	Save(ctx context.Context, c *Contract) error
	GetByContractID(ctx context.Context, contractID string) (*Contract, error)
	// GetByContractIDForUpdate locks the contract row for the surrounding transaction.
	GetByContractIDForUpdate(ctx context.Context, contractID string) (*Contract, error)
	// ListByBorrowerID returns every contract of the borrower, oldest first.
	ListByBorrowerID(ctx context.Context, borrowerID string) ([]Contract, error)
	ListByIDs(ctx context.Context, ids []uint64) ([]Contract, error)
	List(ctx context.Context, f ListFilter) ([]Contract, int64, error)
}
