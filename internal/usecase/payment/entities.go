package payment

import (
	"time"

	"pawnloan-ledger/internal/domain/money"
	"pawnloan-ledger/internal/usecase/dto"

	"github.com/shopspring/decimal"
)

type RecordPaymentInput struct {
	ContractID string
	Term       int
	// Amount is optional; when set it must equal the scheduled payment.
	Amount *decimal.Decimal
	// Currency defaults to the contract currency.
	Currency money.Currency
	// PaymentDate defaults to today in the business time zone.
	PaymentDate time.Time
}

type PaymentDTO struct {
	ContractID        string         `json:"contract_id"`
	Entry             dto.EntryDTO   `json:"entry"`
	ContractStatus    string         `json:"contract_status"`
	ContractCompleted bool           `json:"contract_completed"`
	Summary           dto.SummaryDTO `json:"summary"`
}
