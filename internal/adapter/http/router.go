package http

import "github.com/labstack/echo/v4"

// Routes bundles the handlers and the middleware the API is mounted with.
// Auth and Idempotency may be nil.
type Routes struct {
	Health    *Handler
	Borrowers *BorrowerHandler
	Contracts *ContractHandler
	Payments  *PaymentHandler
	Due       *DueHandler

	Auth        echo.MiddlewareFunc
	Idempotency echo.MiddlewareFunc
}

func Register(e *echo.Echo, r Routes) {
	e.GET("/health", r.Health.Health)

	var groupMW, idem []echo.MiddlewareFunc
	if r.Auth != nil {
		groupMW = append(groupMW, r.Auth)
	}
	if r.Idempotency != nil {
		idem = append(idem, r.Idempotency)
	}

	api := e.Group("/api/v1", groupMW...)

	api.POST("/schedules/preview", r.Contracts.Preview)

	api.POST("/borrowers", r.Borrowers.Register, idem...)
	api.GET("/borrowers", r.Borrowers.Search)
	api.GET("/borrowers/:borrower_id", r.Borrowers.Get)
	api.PATCH("/borrowers/:borrower_id", r.Borrowers.Update)
	api.GET("/borrowers/:borrower_id/contracts", r.Contracts.History)
	api.POST("/borrowers/:borrower_id/top-ups", r.Contracts.TopUp, idem...)

	api.POST("/contracts", r.Contracts.Open, idem...)
	api.GET("/contracts", r.Contracts.List)
	api.GET("/contracts/:contract_id", r.Contracts.Get)
	api.GET("/contracts/:contract_id/schedule", r.Contracts.Schedule)
	api.GET("/contracts/:contract_id/summary", r.Contracts.Summary)
	api.PATCH("/contracts/:contract_id/status", r.Contracts.ChangeStatus)
	api.POST("/contracts/:contract_id/schedule/:term/payments", r.Payments.RecordPayment, idem...)

	api.GET("/due-payments", r.Due.List)
	api.POST("/due-payments/overdue-sweep", r.Due.Sweep)
}
