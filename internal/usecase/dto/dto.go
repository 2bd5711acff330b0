// Package dto holds the JSON views shared by the ledger usecases.
package dto

import (
	"time"

	"pawnloan-ledger/internal/domain/borrower"
	"pawnloan-ledger/internal/domain/contract"
	"pawnloan-ledger/internal/domain/money"
	"pawnloan-ledger/internal/domain/schedule"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

func FormatDate(t time.Time) string { return t.Format(DateLayout) }

type BorrowerDTO struct {
	BorrowerID string    `json:"borrower_id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address,omitempty"`
	Gender     string    `json:"gender,omitempty"`
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func Borrower(b *borrower.Borrower) BorrowerDTO {
	return BorrowerDTO{
		BorrowerID: b.BorrowerID,
		Name:       b.Name,
		Phone:      b.Phone,
		Address:    b.Address,
		Gender:     string(b.Gender),
		Version:    b.Version,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

type ContractDTO struct {
	ContractID         string          `json:"contract_id"`
	BorrowerID         string          `json:"borrower_id"`
	Kind               string          `json:"kind"`
	Principal          money.Money     `json:"principal"`
	MonthlyRatePercent decimal.Decimal `json:"monthly_rate_percent"`
	DurationMonths     int             `json:"duration_months"`
	StartDate          string          `json:"start_date"`
	EndDate            string          `json:"end_date"`
	Status             string          `json:"status"`
	TopUpOf            *string         `json:"top_up_of,omitempty"`
	ItemPawned         string          `json:"item_pawned,omitempty"`
	Description        string          `json:"description,omitempty"`
	CreatedBy          string          `json:"created_by,omitempty"`
	StatusUpdatedAt    time.Time       `json:"status_updated_at"`
	CreatedAt          time.Time       `json:"created_at"`
}

func Contract(c *contract.Contract) ContractDTO {
	return ContractDTO{
		ContractID:         c.ContractID,
		BorrowerID:         c.BorrowerID,
		Kind:               string(c.Kind),
		Principal:          c.PrincipalMoney().Round(),
		MonthlyRatePercent: c.MonthlyRatePercent,
		DurationMonths:     c.DurationMonths,
		StartDate:          FormatDate(c.StartDate),
		EndDate:            FormatDate(c.EndDate),
		Status:             string(c.Status),
		TopUpOf:            c.TopUpOf,
		ItemPawned:         c.ItemPawned,
		Description:        c.Description,
		CreatedBy:          c.CreatedBy,
		StatusUpdatedAt:    c.StatusUpdatedAt,
		CreatedAt:          c.CreatedAt,
	}
}

type EntryDTO struct {
	Term               int         `json:"term"`
	DueDate            string      `json:"due_date"`
	PaymentAmount      money.Money `json:"payment_amount"`
	PrincipalComponent money.Money `json:"principal_component"`
	InterestComponent  money.Money `json:"interest_component"`
	RemainingBalance   money.Money `json:"remaining_balance"`
	Status             string      `json:"status"`
	PaidDate           *string     `json:"paid_date,omitempty"`
}

func Entry(e schedule.Entry) EntryDTO {
	out := EntryDTO{
		Term:               e.Term,
		DueDate:            FormatDate(e.DueDate),
		PaymentAmount:      e.Payment().Round(),
		PrincipalComponent: e.Principal().Round(),
		InterestComponent:  e.Interest().Round(),
		RemainingBalance:   e.Balance().Round(),
		Status:             string(e.Status),
	}
	if e.PaidDate != nil {
		d := FormatDate(*e.PaidDate)
		out.PaidDate = &d
	}
	return out
}

func Entries(entries []schedule.Entry) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, Entry(e))
	}
	return out
}

type SummaryDTO struct {
	TotalPayments   int         `json:"total_payments"`
	PaidPayments    int         `json:"paid_payments"`
	PaidAmount      money.Money `json:"paid_amount"`
	RemainingAmount money.Money `json:"remaining_amount"`
	TotalAmount     money.Money `json:"total_amount"`
	MonthlyInterest money.Money `json:"monthly_interest"`
	Currency        string      `json:"currency"`
}

func Summary(s schedule.Summary) SummaryDTO {
	return SummaryDTO{
		TotalPayments:   s.TotalPayments,
		PaidPayments:    s.PaidPayments,
		PaidAmount:      s.PaidAmount.Round(),
		RemainingAmount: s.RemainingAmount.Round(),
		TotalAmount:     s.TotalAmount.Round(),
		MonthlyInterest: s.MonthlyInterest.Round(),
		Currency:        string(s.TotalAmount.Currency),
	}
}
