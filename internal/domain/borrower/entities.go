package borrower

import (
	"fmt"
	"time"

	"pawnloan-ledger/internal/domain/errs"
)

var (
	ErrNotFound            = fmt.Errorf("borrower %w", errs.ErrNotFound)
	ErrConcurrencyConflict = fmt.Errorf("borrower modified by another user: %w", errs.ErrConcurrencyConflict)
)

type Gender string

const (
	GenderUnspecified Gender = ""
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
)

// Borrower is the person behind one or more loan or pawn contracts.
type Borrower struct {
	ID         uint64    `gorm:"primaryKey;column:id" json:"-"`
	BorrowerID string    `gorm:"size:32;uniqueIndex:ux_borrowers_borrower_id" json:"borrower_id"`
	Name       string    `gorm:"size:128;not null;index:idx_borrowers_name" json:"name"`
	Phone      string    `gorm:"size:32;not null;index:idx_borrowers_phone" json:"phone"`
	Address    string    `gorm:"size:255" json:"address,omitempty"`
	Gender     Gender    `gorm:"size:8" json:"gender,omitempty"`
	Version    int       `gorm:"not null;default:1" json:"version"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Borrower) TableName() string { return "borrowers" }
