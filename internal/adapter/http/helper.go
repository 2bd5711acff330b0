package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pawnloan-ledger/internal/adapter/middleware"
	"pawnloan-ledger/internal/domain/errs"
	"pawnloan-ledger/internal/usecase/dto"

	"github.com/labstack/echo/v4"
)

// statusFor maps the ledger error taxonomy onto HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrAlreadyPaid),
		errors.Is(err, errs.ErrConcurrencyConflict),
		errors.Is(err, errs.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a usecase error. Internal failures never leak their text.
func writeError(c echo.Context, err error) error {
	code := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}

	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		resp.Error = "validation failed"
		resp.Details = []FieldError{{Field: ve.Field, Message: ve.Reason}}
	}
	if code == http.StatusInternalServerError {
		middleware.LoggerFrom(c).WithError(err).Error("request failed")
		resp.Error = "internal error"
	}
	return c.JSON(code, resp)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// bindAndValidate binds the body and runs the struct validator.
// ok=false means a response has already been written.
func bindAndValidate(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, badRequest(c, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// pathID reads a 32-hex identifier from the route.
func pathID(c echo.Context, name string) (string, bool) {
	v := strings.TrimSpace(c.Param(name))
	return v, reHex32.MatchString(v)
}

// parseDate accepts an empty string as the zero time.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(dto.DateLayout, raw)
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// operator is the authenticated caller recorded on created contracts.
func operator(c echo.Context) string {
	if sub := middleware.OperatorFrom(c); sub != "" {
		return sub
	}
	return "anonymous"
}
