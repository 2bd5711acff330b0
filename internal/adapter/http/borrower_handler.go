package http

import (
	"net/http"

	"pawnloan-ledger/internal/usecase/borrower"

	"github.com/labstack/echo/v4"
)

type BorrowerHandler struct{ uc *borrower.Usecase }

func NewBorrowerHandler(uc *borrower.Usecase) *BorrowerHandler { return &BorrowerHandler{uc: uc} }

type registerBorrowerReq struct {
	Name    string `json:"name"    validate:"required,max=120"`
	Phone   string `json:"phone"   validate:"required,max=32"`
	Address string `json:"address" validate:"omitempty,max=255"`
	Gender  string `json:"gender"  validate:"omitempty,oneof=male female"`
}

func (h *BorrowerHandler) Register(c echo.Context) error {
	var req registerBorrowerReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.uc.Register(c.Request().Context(), borrower.RegisterInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

type updateBorrowerReq struct {
	Name    *string `json:"name"    validate:"omitempty,min=1,max=120"`
	Phone   *string `json:"phone"   validate:"omitempty,min=1,max=32"`
	Address *string `json:"address" validate:"omitempty,max=255"`
	Gender  *string `json:"gender"  validate:"omitempty,oneof=male female"`
	Version int     `json:"version" validate:"required,gte=1"`
}

// Update edits a borrower. A stale version answers 409.
func (h *BorrowerHandler) Update(c echo.Context) error {
	borrowerID, ok := pathID(c, "borrower_id")
	if !ok {
		return badRequest(c, "invalid borrower_id path param")
	}
	var req updateBorrowerReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.uc.Update(c.Request().Context(), borrowerID, borrower.UpdateInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BorrowerHandler) Get(c echo.Context) error {
	borrowerID, ok := pathID(c, "borrower_id")
	if !ok {
		return badRequest(c, "invalid borrower_id path param")
	}
	out, err := h.uc.Get(c.Request().Context(), borrowerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Search lists borrowers matching ?search= on name, phone or address.
func (h *BorrowerHandler) Search(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return badRequest(c, "invalid limit")
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return badRequest(c, "invalid offset")
	}
	out, err := h.uc.Search(c.Request().Context(), borrower.SearchInput{
		Query:  c.QueryParam("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
