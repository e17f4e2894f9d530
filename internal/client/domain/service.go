package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gstbill/pkg/db/pagination"
)

type ListClientRequest struct {
	PageToken string
	PageSize  int32
	Name      string
	State     string
}

type ListClientFilter struct {
	Name  string
	State string
}

type ListClientResponse struct {
	pagination.PageInfo
	Clients []Client `json:"clients"`
}

type CreateClientRequest struct {
	ClientNumber    string
	Name            string
	Email           string
	Phone           string
	GSTIN           string
	BillingAddress  string
	ShippingAddress string
	State           string
	OpeningBalance  *decimal.Decimal
	Metadata        map[string]any
}

// UpdateClientRequest is a partial update; nil fields are left unchanged.
type UpdateClientRequest struct {
	ID              string
	Name            *string
	Email           *string
	Phone           *string
	GSTIN           *string
	BillingAddress  *string
	ShippingAddress *string
	State           *string
	OpeningBalance  *decimal.Decimal
}

type Service interface {
	Create(context.Context, CreateClientRequest) (Client, error)
	Update(context.Context, UpdateClientRequest) (Client, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Client, error)
	List(context.Context, ListClientRequest) (ListClientResponse, error)
}

var (
	ErrInvalidOrganization   = errors.New("invalid_organization")
	ErrInvalidName           = errors.New("invalid_name")
	ErrInvalidEmail          = errors.New("invalid_email")
	ErrInvalidGSTIN          = errors.New("invalid_gstin")
	ErrInvalidOpeningBalance = errors.New("invalid_opening_balance")
	ErrInvalidID             = errors.New("invalid_id")
	ErrNotFound              = errors.New("not_found")
	ErrHasInvoices           = errors.New("client_has_invoices")
)
