package mysql

import (
	"context"
	"errors"
	"strings"

	borrowerDomain "pawnloan-ledger/internal/domain/borrower"

	"gorm.io/gorm"
)

type BorrowerRepository struct{ db *gorm.DB }

func NewBorrowerRepository(db *gorm.DB) *BorrowerRepository { return &BorrowerRepository{db: db} }

func (r *BorrowerRepository) Create(ctx context.Context, b *borrowerDomain.Borrower) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BorrowerRepository) GetByBorrowerID(ctx context.Context, borrowerID string) (*borrowerDomain.Borrower, error) {
	var out borrowerDomain.Borrower
	res := r.db.WithContext(ctx).Where("borrower_id = ?", borrowerID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, borrowerDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *BorrowerRepository) ListByBorrowerIDs(ctx context.Context, borrowerIDs []string) ([]borrowerDomain.Borrower, error) {
	if len(borrowerIDs) == 0 {
		return nil, nil
	}
	var out []borrowerDomain.Borrower
	err := r.db.WithContext(ctx).Where("borrower_id IN ?", borrowerIDs).Find(&out).Error
	return out, err
}

func (r *BorrowerRepository) Search(ctx context.Context, f borrowerDomain.SearchFilter) ([]borrowerDomain.Borrower, int64, error) {
	q := r.db.WithContext(ctx).Model(&borrowerDomain.Borrower{})
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where("LOWER(name) LIKE ? ESCAPE '!' OR phone LIKE ? ESCAPE '!' OR LOWER(address) LIKE ? ESCAPE '!'", like, like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []borrowerDomain.Borrower
	err := q.Session(&gorm.Session{}).Order("name ASC, id ASC").Limit(limitOrDefault(f.Limit)).Offset(f.Offset).Find(&out).Error
	return out, total, err
}

func (r *BorrowerRepository) Update(ctx context.Context, b *borrowerDomain.Borrower, expectedVersion int) error {
	db := r.db.WithContext(ctx)
	res := db.Model(&borrowerDomain.Borrower{}).
		Where("borrower_id = ? AND version = ?", b.BorrowerID, expectedVersion).
		Updates(map[string]any{
			"name":    b.Name,
			"phone":   b.Phone,
			"address": b.Address,
			"gender":  b.Gender,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := db.Model(&borrowerDomain.Borrower{}).Where("borrower_id = ?", b.BorrowerID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return borrowerDomain.ErrNotFound
		}
		return borrowerDomain.ErrConcurrencyConflict
	}
	b.Version = expectedVersion + 1
	return nil
}

// '!' works as an escape character on both MySQL and SQLite; a backslash
// does not.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string { return likeEscaper.Replace(s) }

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func limitOrDefault(n int) int {
	switch {
	case n <= 0:
		return defaultPageSize
	case n > maxPageSize:
		return maxPageSize
	}
	return n
}
