package http

import (
	"net/http"

	"pawnloan-ledger/internal/domain/contract"
	"pawnloan-ledger/internal/domain/errs"
	"pawnloan-ledger/internal/domain/money"
	uc "pawnloan-ledger/internal/usecase/contract"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ContractHandler struct{ uc *uc.Usecase }

func NewContractHandler(u *uc.Usecase) *ContractHandler { return &ContractHandler{uc: u} }

type termsReq struct {
	Kind               string          `json:"kind"                 validate:"omitempty,oneof=loan pawn"`
	Principal          decimal.Decimal `json:"principal"            validate:"gt=0,dec2"`
	Currency           string          `json:"currency"             validate:"required,currency"`
	MonthlyRatePercent decimal.Decimal `json:"monthly_rate_percent" validate:"gte=0,lte=100,dec4"`
	DurationMonths     int             `json:"duration_months"      validate:"required,gte=1,lte=600"`
	// Accept canonical date `YYYY-MM-DD`
	StartDate   string `json:"start_date"  validate:"required,datetime=2006-01-02"`
	ItemPawned  string `json:"item_pawned" validate:"omitempty,max=255"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

func (r termsReq) input() (uc.TermsInput, error) {
	cur, err := money.ParseCurrency(r.Currency)
	if err != nil {
		return uc.TermsInput{}, errs.Invalid("currency", err.Error())
	}
	start, err := parseDate(r.StartDate)
	if err != nil {
		return uc.TermsInput{}, errs.Invalid("start_date", "must be YYYY-MM-DD")
	}
	return uc.TermsInput{
		Kind:               contract.Kind(r.Kind),
		Principal:          r.Principal,
		Currency:           cur,
		MonthlyRatePercent: r.MonthlyRatePercent,
		DurationMonths:     r.DurationMonths,
		StartDate:          start,
		ItemPawned:         r.ItemPawned,
		Description:        r.Description,
	}, nil
}

type openContractReq struct {
	BorrowerID string `json:"borrower_id" validate:"required,hex32"`
	termsReq
}

type changeStatusReq struct {
	Status string `json:"status" validate:"required,oneof=active completed defaulted cancelled"`
}

// Preview returns the schedule for the given terms without storing it.
func (h *ContractHandler) Preview(c echo.Context) error {
	var req termsReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	in, err := req.input()
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Preview(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ContractHandler) Open(c echo.Context) error {
	var req openContractReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	terms, err := req.input()
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Open(c.Request().Context(), uc.OpenInput{
		BorrowerID: req.BorrowerID,
		Terms:      terms,
		CreatedBy:  operator(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ContractHandler) TopUp(c echo.Context) error {
	borrowerID, ok := pathID(c, "borrower_id")
	if !ok {
		return badRequest(c, "invalid borrower_id path param")
	}
	var req termsReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	terms, err := req.input()
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.TopUp(c.Request().Context(), uc.TopUpInput{
		BorrowerID: borrowerID,
		Terms:      terms,
		CreatedBy:  operator(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ContractHandler) Get(c echo.Context) error {
	contractID, ok := pathID(c, "contract_id")
	if !ok {
		return badRequest(c, "invalid contract_id path param")
	}
	out, err := h.uc.Get(c.Request().Context(), contractID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ContractHandler) Schedule(c echo.Context) error {
	contractID, ok := pathID(c, "contract_id")
	if !ok {
		return badRequest(c, "invalid contract_id path param")
	}
	out, err := h.uc.Schedule(c.Request().Context(), contractID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ContractHandler) Summary(c echo.Context) error {
	contractID, ok := pathID(c, "contract_id")
	if !ok {
		return badRequest(c, "invalid contract_id path param")
	}
	out, err := h.uc.Summary(c.Request().Context(), contractID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// History lists every contract of a borrower, oldest first, with schedules and summaries.
func (h *ContractHandler) History(c echo.Context) error {
	borrowerID, ok := pathID(c, "borrower_id")
	if !ok {
		return badRequest(c, "invalid borrower_id path param")
	}
	out, err := h.uc.History(c.Request().Context(), borrowerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ContractHandler) List(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return badRequest(c, "invalid limit")
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return badRequest(c, "invalid offset")
	}
	out, err := h.uc.List(c.Request().Context(), uc.ListInput{
		BorrowerID: c.QueryParam("borrower_id"),
		Status:     c.QueryParam("status"),
		Kind:       c.QueryParam("kind"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ContractHandler) ChangeStatus(c echo.Context) error {
	contractID, ok := pathID(c, "contract_id")
	if !ok {
		return badRequest(c, "invalid contract_id path param")
	}
	var req changeStatusReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.uc.ChangeStatus(c.Request().Context(), uc.StatusInput{
		ContractID: contractID,
		Status:     contract.Status(req.Status),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
