// Package memstore is an in-memory ledger store for usecase tests. It follows
// the gorm repositories closely enough to exercise full flows without a DB.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pawnloan-ledger/internal/domain/borrower"
	"pawnloan-ledger/internal/domain/contract"
	"pawnloan-ledger/internal/domain/schedule"
	"pawnloan-ledger/internal/domain/uow"
	"pawnloan-ledger/internal/testutil/uowmock"
)

type Store struct {
	mu        sync.Mutex
	nextID    uint64
	borrowers []borrower.Borrower
	contracts []contract.Contract
	entries   map[uint64][]schedule.Entry
}

func New() *Store { return &Store{entries: map[uint64][]schedule.Entry{}} }

func (s *Store) Repos() uow.Repos {
	return uow.Repos{Borrowers: borrowers{s}, Contracts: contracts{s}, Schedules: schedules{s}}
}

// UoW runs units of work directly against the store.
func (s *Store) UoW() *uowmock.UoW { return uowmock.Direct(s.Repos()) }

func (s *Store) id() uint64 {
	s.nextID++
	return s.nextID
}

type borrowers struct{ s *Store }

func (r borrowers) Create(_ context.Context, b *borrower.Borrower) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b.ID = r.s.id()
	b.CreatedAt = time.Now().UTC()
	if b.Version == 0 {
		b.Version = 1
	}
	r.s.borrowers = append(r.s.borrowers, *b)
	return nil
}

func (r borrowers) Update(_ context.Context, b *borrower.Borrower, expectedVersion int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.borrowers {
		cur := &r.s.borrowers[i]
		if cur.BorrowerID != b.BorrowerID {
			continue
		}
		if cur.Version != expectedVersion {
			return borrower.ErrConcurrencyConflict
		}
		cur.Name, cur.Phone, cur.Address, cur.Gender = b.Name, b.Phone, b.Address, b.Gender
		cur.Version++
		cur.UpdatedAt = time.Now().UTC()
		b.Version = cur.Version
		return nil
	}
	return borrower.ErrNotFound
}

func (r borrowers) GetByBorrowerID(_ context.Context, borrowerID string) (*borrower.Borrower, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.borrowers {
		if b.BorrowerID == borrowerID {
			return &b, nil
		}
	}
	return nil, borrower.ErrNotFound
}

func (r borrowers) ListByBorrowerIDs(_ context.Context, ids []string) ([]borrower.Borrower, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []borrower.Borrower
	for _, b := range r.s.borrowers {
		for _, id := range ids {
			if b.BorrowerID == id {
				out = append(out, b)
				break
			}
		}
	}
	return out, nil
}

func (r borrowers) Search(_ context.Context, f borrower.SearchFilter) ([]borrower.Borrower, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := strings.ToLower(f.Query)
	var out []borrower.Borrower
	for _, b := range r.s.borrowers {
		if q == "" || strings.Contains(strings.ToLower(b.Name+" "+b.Phone+" "+b.Address), q) {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

type contracts struct{ s *Store }

func (r contracts) Create(_ context.Context, c *contract.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.id()
	c.CreatedAt = time.Now().UTC()
	r.s.contracts = append(r.s.contracts, *c)
	return nil
}

func (r contracts) Save(_ context.Context, c *contract.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.contracts {
		if r.s.contracts[i].ID == c.ID {
			r.s.contracts[i] = *c
			return nil
		}
	}
	return contract.ErrNotFound
}

func (r contracts) GetByContractID(_ context.Context, contractID string) (*contract.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.contracts {
		if c.ContractID == contractID {
			return &c, nil
		}
	}
	return nil, contract.ErrNotFound
}

func (r contracts) GetByContractIDForUpdate(ctx context.Context, contractID string) (*contract.Contract, error) {
	return r.GetByContractID(ctx, contractID)
}

func (r contracts) ListByBorrowerID(_ context.Context, borrowerID string) ([]contract.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []contract.Contract
	for _, c := range r.s.contracts {
		if c.BorrowerID == borrowerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r contracts) ListByIDs(_ context.Context, ids []uint64) ([]contract.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []contract.Contract
	for _, c := range r.s.contracts {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (r contracts) List(_ context.Context, f contract.ListFilter) ([]contract.Contract, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []contract.Contract
	for _, c := range r.s.contracts {
		if (f.BorrowerID == "" || c.BorrowerID == f.BorrowerID) &&
			(f.Status == "" || c.Status == f.Status) &&
			(f.Kind == "" || c.Kind == f.Kind) {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

type schedules struct{ s *Store }

func (r schedules) Create(_ context.Context, contractPK uint64, entries []schedule.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.entries[contractPK]) > 0 {
		return schedule.ErrScheduleExists
	}
	stored := make([]schedule.Entry, len(entries))
	for i, e := range entries {
		e.ID = r.s.id()
		e.ContractID = contractPK
		stored[i] = e
		entries[i] = e
	}
	r.s.entries[contractPK] = stored
	return nil
}

func (r schedules) GetSchedule(_ context.Context, contractPK uint64) ([]schedule.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]schedule.Entry(nil), r.s.entries[contractPK]...), nil
}

func (r schedules) UpdateEntry(_ context.Context, contractPK uint64, term int, status schedule.Status, paidDate *time.Time, expectedVersion int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, e := range r.s.entries[contractPK] {
		if e.Term != term {
			continue
		}
		switch {
		case e.IsPaid():
			return schedule.ErrAlreadyPaid
		case e.Version != expectedVersion:
			return schedule.ErrConcurrencyConflict
		}
		e.Status, e.PaidDate, e.Version = status, paidDate, e.Version+1
		r.s.entries[contractPK][i] = e
		return nil
	}
	return schedule.ErrEntryNotFound
}

func (r schedules) collectable(pk uint64) (contract.Contract, bool) {
	for _, c := range r.s.contracts {
		if c.ID == pk {
			return c, c.Status == contract.StatusActive || c.Status == contract.StatusDefaulted
		}
	}
	return contract.Contract{}, false
}

func (r schedules) ListDue(_ context.Context, f schedule.DueFilter) ([]schedule.DueRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []schedule.DueRow
	for pk, entries := range r.s.entries {
		if f.ContractID != 0 && f.ContractID != pk {
			continue
		}
		c, ok := r.collectable(pk)
		if !ok {
			continue
		}
		for _, e := range entries {
			if e.IsPaid() || e.DueDate.After(f.To) || (!f.From.IsZero() && e.DueDate.Before(f.From)) {
				continue
			}
			out = append(out, schedule.DueRow{Contract: c, Entry: e})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Entry.DueDate.Equal(out[j].Entry.DueDate) {
			return out[i].Entry.DueDate.Before(out[j].Entry.DueDate)
		}
		if out[i].Contract.ContractID != out[j].Contract.ContractID {
			return out[i].Contract.ContractID < out[j].Contract.ContractID
		}
		return out[i].Entry.Term < out[j].Entry.Term
	})
	return out, nil
}

func (r schedules) MarkOverdue(_ context.Context, asOf time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for pk, entries := range r.s.entries {
		if _, ok := r.collectable(pk); !ok {
			continue
		}
		for i, e := range entries {
			if schedule.Overdue(e, asOf) {
				e.Status, e.Version = schedule.StatusOverdue, e.Version+1
				entries[i] = e
				n++
			}
		}
	}
	return n, nil
}

var (
	_ borrower.Repository = borrowers{}
	_ contract.Repository = contracts{}
	_ schedule.Repository = schedules{}
)
