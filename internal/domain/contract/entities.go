package contract

import (
	"fmt"
	"time"

	"pawnloan-ledger/internal/domain/errs"
	"pawnloan-ledger/internal/domain/money"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = fmt.Errorf("contract %w", errs.ErrNotFound)
	ErrInvalidTransition = fmt.Errorf("contract: %w", errs.ErrInvalidTransition)
	// ErrClosed rejects ledger mutations on a completed or cancelled contract.
	ErrClosed = fmt.Errorf("contract is closed: %w", errs.ErrInvalidTransition)
)

type Kind string

const (
	KindLoan Kind = "loan"
	KindPawn Kind = "pawn"
)

func (k Kind) Valid() bool { return k == KindLoan || k == KindPawn }

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusDefaulted Status = "defaulted"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusDefaulted, StatusCancelled:
		return true
	}
	return false
}

// transitions lists every legal status change. Completion is only reachable
// through the ledger once the schedule is fully paid.
var transitions = map[Status][]Status{
	StatusActive:    {StatusCompleted, StatusDefaulted, StatusCancelled},
	StatusDefaulted: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AcceptsPayments reports whether the ledger may still settle entries.
func (s Status) AcceptsPayments() bool {
	return s == StatusActive || s == StatusDefaulted
}

// Contract is a loan or pawn agreement. Everything except Status is fixed at creation.
type Contract struct {
	ID                 uint64          `gorm:"primaryKey;column:id" json:"-"`
	ContractID         string          `gorm:"size:32;uniqueIndex:ux_contracts_contract_id" json:"contract_id"`
	BorrowerID         string          `gorm:"size:32;not null;index:idx_contracts_borrower" json:"borrower_id"`
	Kind               Kind            `gorm:"size:8;not null;default:'loan'" json:"kind"`
	Principal          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"principal"`
	Currency           money.Currency  `gorm:"size:3;not null" json:"currency"`
	MonthlyRatePercent decimal.Decimal `gorm:"type:decimal(9,4);not null" json:"monthly_rate_percent"`
	DurationMonths     int             `gorm:"not null" json:"duration_months"`
	StartDate          time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate            time.Time       `gorm:"type:date;not null" json:"end_date"`
	Status             Status          `gorm:"size:16;not null;default:'active';index:idx_contracts_status" json:"status"`
	TopUpOf            *string         `gorm:"size:32" json:"top_up_of,omitempty"`
	ItemPawned         string          `gorm:"size:255" json:"item_pawned,omitempty"`
	Description        string          `gorm:"type:text" json:"description,omitempty"`
	CreatedBy          string          `gorm:"size:64" json:"created_by,omitempty"`
	StatusUpdatedAt    time.Time       `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Contract) TableName() string { return "contracts" }

func (c Contract) PrincipalMoney() money.Money {
	return money.New(c.Principal, c.Currency)
}

// Transition moves the contract to status `to`, stamping the change time.
func (c *Contract) Transition(to Status, at time.Time) error {
	if !CanTransition(c.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, to)
	}
	c.Status = to
	c.StatusUpdatedAt = at.UTC()
	return nil
}
