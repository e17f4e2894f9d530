package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gstbill/pkg/db/pagination"
)

type CreateInvoiceLineRequest struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit"`
	UnitPrice   string `json:"unit_price"`
	HSNSAC      string `json:"hsn_sac"`
	TaxRateID   string `json:"tax_rate_id"`
}

type CreateInvoiceRequest struct {
	ClientID         string                     `json:"client_id"`
	CompanyProfileID string                     `json:"company_profile_id"`
	InvoiceNumber    string                     `json:"invoice_number"`
	IssueDate        *time.Time                 `json:"issue_date"`
	DueDate          *time.Time                 `json:"due_date"`
	PlaceOfSupply    string                     `json:"place_of_supply"`
	Template         string                     `json:"template"`
	Notes            string                     `json:"notes"`
	Metadata         map[string]any             `json:"metadata"`
	Lines            []CreateInvoiceLineRequest `json:"lines"`
}

type ListInvoiceRequest struct {
	PageToken string
	PageSize  int32
	Status    string
	ClientID  string
}

type ListInvoiceFilter struct {
	Status   InvoiceStatus
	ClientID snowflake.ID
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	GetByPublicUUID(ctx context.Context, publicUUID string) (Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	Delete(ctx context.Context, id string) error
	MarkSent(ctx context.Context, id string) (Invoice, error)

	Document(ctx context.Context, id string) (DocumentView, error)
	PublicDocument(ctx context.Context, publicUUID string) (DocumentView, error)
	RenderHTML(ctx context.Context, id string) (string, error)
	RenderPublicHTML(ctx context.Context, publicUUID string) (string, error)
}
