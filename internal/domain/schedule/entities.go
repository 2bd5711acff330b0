package schedule

import (
	"fmt"
	"time"

	"pawnloan-ledger/internal/domain/errs"
	"pawnloan-ledger/internal/domain/money"

	"github.com/shopspring/decimal"
)

var (
	ErrEntryNotFound       = fmt.Errorf("schedule entry %w", errs.ErrNotFound)
	ErrAlreadyPaid         = fmt.Errorf("schedule entry %w", errs.ErrAlreadyPaid)
	ErrConcurrencyConflict = fmt.Errorf("schedule entry: %w", errs.ErrConcurrencyConflict)
	ErrScheduleExists      = fmt.Errorf("schedule already generated: %w", errs.ErrInvariantViolation)
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusPaid || s == StatusOverdue
}

// Entry is one monthly installment of a contract. After generation only
// Status, PaidDate and Version change.
type Entry struct {
	ID                 uint64          `gorm:"primaryKey;column:id" json:"-"`
	ContractID         uint64          `gorm:"column:contract_id;not null;uniqueIndex:ux_schedule_contract_term" json:"-"`
	Term               int             `gorm:"not null;uniqueIndex:ux_schedule_contract_term" json:"term"`
	DueDate            time.Time       `gorm:"type:date;not null;index:idx_schedule_due" json:"due_date"`
	Currency           money.Currency  `gorm:"size:3;not null" json:"currency"`
	PaymentAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"payment_amount"`
	PrincipalComponent decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"principal_component"`
	InterestComponent  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"interest_component"`
	RemainingBalance   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"remaining_balance"`
	Status             Status          `gorm:"size:16;not null;default:'pending';index:idx_schedule_due" json:"status"`
	PaidDate           *time.Time      `gorm:"type:date" json:"paid_date,omitempty"`
	Version            int             `gorm:"not null;default:1" json:"-"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"-"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"-"`
}

func (Entry) TableName() string { return "schedule_entries" }

func (e Entry) Payment() money.Money   { return money.New(e.PaymentAmount, e.Currency) }
func (e Entry) Principal() money.Money { return money.New(e.PrincipalComponent, e.Currency) }
func (e Entry) Interest() money.Money  { return money.New(e.InterestComponent, e.Currency) }
func (e Entry) Balance() money.Money   { return money.New(e.RemainingBalance, e.Currency) }

func (e Entry) IsPaid() bool { return e.Status == StatusPaid }
