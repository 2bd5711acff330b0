package mysql

import (
	"context"
	"errors"

	contractDomain "pawnloan-ledger/internal/domain/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContractRepository struct{ db *gorm.DB }

func NewContractRepository(db *gorm.DB) *ContractRepository { return &ContractRepository{db: db} }

func (r *ContractRepository) Create(ctx context.Context, c *contractDomain.Contract) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ContractRepository) Save(ctx context.Context, c *contractDomain.Contract) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *ContractRepository) GetByContractID(ctx context.Context, contractID string) (*contractDomain.Contract, error) {
	return r.first(r.db.WithContext(ctx), contractID)
}

// GetByContractIDForUpdate issues SELECT ... FOR UPDATE. SQLite drops the
// locking clause and relies on its database-level write lock instead.
func (r *ContractRepository) GetByContractIDForUpdate(ctx context.Context, contractID string) (*contractDomain.Contract, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), contractID)
}

func (r *ContractRepository) first(q *gorm.DB, contractID string) (*contractDomain.Contract, error) {
	var out contractDomain.Contract
	res := q.Where("contract_id = ?", contractID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, contractDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *ContractRepository) ListByBorrowerID(ctx context.Context, borrowerID string) ([]contractDomain.Contract, error) {
	var out []contractDomain.Contract
	err := r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *ContractRepository) ListByIDs(ctx context.Context, ids []uint64) ([]contractDomain.Contract, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []contractDomain.Contract
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *ContractRepository) List(ctx context.Context, f contractDomain.ListFilter) ([]contractDomain.Contract, int64, error) {
	q := r.db.WithContext(ctx).Model(&contractDomain.Contract{})
	if f.BorrowerID != "" {
		q = q.Where("borrower_id = ?", f.BorrowerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []contractDomain.Contract
	err := q.Session(&gorm.Session{}).Order("created_at DESC, id DESC").Limit(limitOrDefault(f.Limit)).Offset(f.Offset).Find(&out).Error
	return out, total, err
}
