package mysql

import (
	"context"
	"errors"
	"time"

	contractDomain "pawnloan-ledger/internal/domain/contract"
	scheduleDomain "pawnloan-ledger/internal/domain/schedule"

	"gorm.io/gorm"
)

type ScheduleRepository struct{ db *gorm.DB }

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository { return &ScheduleRepository{db: db} }

// collectable contracts still take part in due lists and overdue sweeps.
var collectable = []contractDomain.Status{contractDomain.StatusActive, contractDomain.StatusDefaulted}

func (r *ScheduleRepository) Create(ctx context.Context, contractPK uint64, entries []scheduleDomain.Entry) error {
	db := r.db.WithContext(ctx)

	var n int64
	if err := db.Model(&scheduleDomain.Entry{}).Where("contract_id = ?", contractPK).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return scheduleDomain.ErrScheduleExists
	}
	for i := range entries {
		entries[i].ContractID = contractPK
	}
	return db.CreateInBatches(entries, 100).Error
}

func (r *ScheduleRepository) GetSchedule(ctx context.Context, contractPK uint64) ([]scheduleDomain.Entry, error) {
	var out []scheduleDomain.Entry
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractPK).
		Order("term ASC").
		Find(&out).Error
	return out, err
}

func (r *ScheduleRepository) UpdateEntry(ctx context.Context, contractPK uint64, term int, status scheduleDomain.Status, paidDate *time.Time, expectedVersion int) error {
	db := r.db.WithContext(ctx)
	res := db.Model(&scheduleDomain.Entry{}).
		Where("contract_id = ? AND term = ? AND version = ? AND status <> ?", contractPK, term, expectedVersion, scheduleDomain.StatusPaid).
		Updates(map[string]any{
			"status":    status,
			"paid_date": paidDate,
			"version":   gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// nothing matched: tell the caller why
	var cur scheduleDomain.Entry
	err := db.Where("contract_id = ? AND term = ?", contractPK, term).First(&cur).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return scheduleDomain.ErrEntryNotFound
	case err != nil:
		return err
	case cur.IsPaid():
		return scheduleDomain.ErrAlreadyPaid
	}
	return scheduleDomain.ErrConcurrencyConflict
}

func (r *ScheduleRepository) ListDue(ctx context.Context, f scheduleDomain.DueFilter) ([]scheduleDomain.DueRow, error) {
	db := r.db.WithContext(ctx)
	q := db.Model(&scheduleDomain.Entry{}).
		Select("schedule_entries.*").
		Joins("JOIN contracts ON contracts.id = schedule_entries.contract_id").
		Where("schedule_entries.status <> ?", scheduleDomain.StatusPaid).
		Where("contracts.status IN ?", collectable).
		Where("schedule_entries.due_date <= ?", scheduleDomain.Date(f.To))
	if !f.From.IsZero() {
		q = q.Where("schedule_entries.due_date >= ?", scheduleDomain.Date(f.From))
	}
	if f.ContractID != 0 {
		q = q.Where("schedule_entries.contract_id = ?", f.ContractID)
	}

	var entries []scheduleDomain.Entry
	if err := q.Order("schedule_entries.due_date ASC, contracts.contract_id ASC, schedule_entries.term ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	ids := make([]uint64, 0, len(entries))
	seen := make(map[uint64]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ContractID]; !ok {
			seen[e.ContractID] = struct{}{}
			ids = append(ids, e.ContractID)
		}
	}
	contracts, err := (&ContractRepository{db: r.db}).ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]contractDomain.Contract, len(contracts))
	for _, c := range contracts {
		byID[c.ID] = c
	}

	out := make([]scheduleDomain.DueRow, 0, len(entries))
	for _, e := range entries {
		out = append(out, scheduleDomain.DueRow{Contract: byID[e.ContractID], Entry: e})
	}
	return out, nil
}

func (r *ScheduleRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&scheduleDomain.Entry{}).
		Where("status = ? AND due_date < ?", scheduleDomain.StatusPending, scheduleDomain.Date(asOf)).
		Where("contract_id IN (?)", db.Model(&contractDomain.Contract{}).Select("id").Where("status IN ?", collectable)).
		Updates(map[string]any{
			"status":  scheduleDomain.StatusOverdue,
			"version": gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}
