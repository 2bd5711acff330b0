package due

import (
	"time"

	"pawnloan-ledger/internal/domain/money"
)

type ListInput struct {
	// AsOf defaults to today in the business time zone.
	AsOf time.Time
	// Scope is "today" (default) or "backlog".
	Scope      string
	ContractID string
}

type DueItemDTO struct {
	ContractID    string      `json:"contract_id"`
	Kind          string      `json:"kind"`
	BorrowerID    string      `json:"borrower_id"`
	BorrowerName  string      `json:"borrower_name,omitempty"`
	BorrowerPhone string      `json:"borrower_phone,omitempty"`
	ItemPawned    string      `json:"item_pawned,omitempty"`
	Term          int         `json:"term"`
	DueDate       string      `json:"due_date"`
	PaymentAmount money.Money `json:"payment_amount"`
	Status        string      `json:"status"`
	DaysOverdue   int         `json:"days_overdue"`
}

type DueListDTO struct {
	AsOf  string       `json:"as_of"`
	Scope string       `json:"scope"`
	Count int          `json:"count"`
	Items []DueItemDTO `json:"items"`
}

type SweepDTO struct {
	AsOf   string `json:"as_of"`
	Marked int64  `json:"marked"`
}
