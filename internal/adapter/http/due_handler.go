package http

import (
	"net/http"

	"pawnloan-ledger/internal/domain/errs"
	"pawnloan-ledger/internal/usecase/due"

	"github.com/labstack/echo/v4"
)

type DueHandler struct{ uc *due.Usecase }

func NewDueHandler(uc *due.Usecase) *DueHandler { return &DueHandler{uc: uc} }

// List serves ?date=YYYY-MM-DD&scope=today|backlog&contract_id=.
func (h *DueHandler) List(c echo.Context) error {
	asOf, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return writeError(c, errs.Invalid("date", "must be YYYY-MM-DD"))
	}
	contractID := c.QueryParam("contract_id")
	if contractID != "" && !reHex32.MatchString(contractID) {
		return badRequest(c, "invalid contract_id")
	}
	out, err := h.uc.List(c.Request().Context(), due.ListInput{
		AsOf:       asOf,
		Scope:      c.QueryParam("scope"),
		ContractID: contractID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Sweep marks pending entries due before ?date= (default today) as overdue.
func (h *DueHandler) Sweep(c echo.Context) error {
	asOf, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return writeError(c, errs.Invalid("date", "must be YYYY-MM-DD"))
	}
	out, err := h.uc.MarkOverdue(c.Request().Context(), asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
