package uow

import (
	"context"

	"pawnloan-ledger/internal/domain/borrower"
	"pawnloan-ledger/internal/domain/contract"
	"pawnloan-ledger/internal/domain/schedule"
)

// Repos are bound to the same transaction inside a unit of work.
type Repos struct {
	Borrowers borrower.Repository
	Contracts contract.Repository
	Schedules schedule.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the contract row first, then pass it in; every ledger write for
	// one contract goes through here so writers serialize on the row.
	WithinContractTx(ctx context.Context, contractID string, fn func(r Repos, c *contract.Contract) error) error
}
