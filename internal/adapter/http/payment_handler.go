package http

import (
	"net/http"
	"strconv"

	"pawnloan-ledger/internal/domain/errs"
	"pawnloan-ledger/internal/domain/money"
	"pawnloan-ledger/internal/usecase/payment"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct{ uc *payment.Usecase }

func NewPaymentHandler(uc *payment.Usecase) *PaymentHandler { return &PaymentHandler{uc: uc} }

// All fields optional: an empty body settles the entry at its scheduled amount today.
type recordPaymentReq struct {
	Amount      *decimal.Decimal `json:"amount"       validate:"omitempty,gt=0,dec2"`
	Currency    string           `json:"currency"     validate:"omitempty,currency"`
	PaymentDate string           `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
}

func (h *PaymentHandler) RecordPayment(c echo.Context) error {
	contractID, ok := pathID(c, "contract_id")
	if !ok {
		return badRequest(c, "invalid contract_id path param")
	}
	term, err := strconv.Atoi(c.Param("term"))
	if err != nil {
		return badRequest(c, "invalid term path param")
	}

	var req recordPaymentReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	in := payment.RecordPaymentInput{ContractID: contractID, Term: term, Amount: req.Amount}
	if req.Currency != "" {
		cur, err := money.ParseCurrency(req.Currency)
		if err != nil {
			return writeError(c, errs.Invalid("currency", err.Error()))
		}
		in.Currency = cur
	}
	if in.PaymentDate, err = parseDate(req.PaymentDate); err != nil {
		return writeError(c, errs.Invalid("payment_date", "must be YYYY-MM-DD"))
	}

	out, err := h.uc.RecordPayment(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
