package contract

import (
	"time"

	"pawnloan-ledger/internal/domain/contract"
	"pawnloan-ledger/internal/domain/money"
	"pawnloan-ledger/internal/usecase/dto"

	"github.com/shopspring/decimal"
)

// TermsInput carries the economic terms of a new contract.
type TermsInput struct {
	Kind               contract.Kind
	Principal          decimal.Decimal
	Currency           money.Currency
	MonthlyRatePercent decimal.Decimal
	DurationMonths     int
	StartDate          time.Time
	ItemPawned         string
	Description        string
}

type OpenInput struct {
	BorrowerID string
	Terms      TermsInput
	CreatedBy  string
}

type TopUpInput struct {
	BorrowerID string
	Terms      TermsInput
	CreatedBy  string
}

type ListInput struct {
	BorrowerID string
	Status     string
	Kind       string
	Limit      int
	Offset     int
}

type StatusInput struct {
	ContractID string
	Status     contract.Status
}

type PreviewDTO struct {
	MaturityDate string         `json:"maturity_date"`
	Schedule     []dto.EntryDTO `json:"schedule"`
	Summary      dto.SummaryDTO `json:"summary"`
}

type ScheduleDTO struct {
	Contract dto.ContractDTO `json:"contract"`
	Schedule []dto.EntryDTO  `json:"schedule"`
}

type ContractSummaryDTO struct {
	ContractID string         `json:"contract_id"`
	Status     string         `json:"status"`
	Summary    dto.SummaryDTO `json:"summary"`
}

type HistoryItem struct {
	Contract dto.ContractDTO `json:"contract"`
	Schedule []dto.EntryDTO  `json:"schedule"`
	Summary  dto.SummaryDTO  `json:"summary"`
}

// Portfolio counts a borrower's contracts by status.
type Portfolio struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Defaulted int `json:"defaulted"`
	Cancelled int `json:"cancelled"`
}

type HistoryDTO struct {
	Borrower  dto.BorrowerDTO `json:"borrower"`
	Portfolio Portfolio       `json:"portfolio"`
	Contracts []HistoryItem   `json:"contracts"`
}

type ContractPage struct {
	Items  []dto.ContractDTO `json:"items"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}
