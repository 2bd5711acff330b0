package borrower

import "pawnloan-ledger/internal/usecase/dto"

type RegisterInput struct {
	Name    string
	Phone   string
	Address string
	Gender  string
}

// UpdateInput patches the fields that are set. Version is the version the
// client last read.
type UpdateInput struct {
	Name    *string
	Phone   *string
	Address *string
	Gender  *string
	Version int
}

type SearchInput struct {
	Query  string
	Limit  int
	Offset int
}

type BorrowerPage struct {
	Items  []dto.BorrowerDTO `json:"items"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}
