// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gstbill/pkg/db/numeric"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusSent          InvoiceStatus = "SENT"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
)

// Template selects the document layout.
type Template string

const (
	TemplateClassic       Template = "classic"
	TemplateModern        Template = "modern"
	TemplateCompact       Template = "compact"
	TemplateTransportSlip Template = "transport_slip"
)

// ParseTemplate defaults an empty name to classic.
func ParseTemplate(value string) (Template, bool) {
	switch Template(value) {
	case "":
		return TemplateClassic, true
	case TemplateClassic, TemplateModern, TemplateCompact, TemplateTransportSlip:
		return Template(value), true
	default:
		return "", false
	}
}

// Invoice carries totals frozen at creation. They are never recomputed from
// lines afterwards.
type Invoice struct {
	ID               snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID            snowflake.ID      `gorm:"not null;index;uniqueIndex:ux_invoices_org_number" json:"organization_id"`
	ClientID         snowflake.ID      `gorm:"not null;index" json:"client_id"`
	CompanyProfileID *snowflake.ID     `json:"company_profile_id,omitempty"`
	InvoiceNumber    string            `gorm:"not null;uniqueIndex:ux_invoices_org_number" json:"invoice_number"`
	PublicUUID       string            `gorm:"column:public_uuid;not null;uniqueIndex" json:"public_uuid"`
	IssueDate        time.Time         `gorm:"not null" json:"issue_date"`
	DueDate          *time.Time        `json:"due_date,omitempty"`
	PlaceOfSupply    string            `json:"place_of_supply,omitempty"`
	Status           InvoiceStatus     `gorm:"type:text;not null" json:"status"`
	Template         Template          `gorm:"type:text;not null" json:"template"`
	Notes            string            `json:"notes,omitempty"`
	Subtotal         numeric.Decimal   `gorm:"not null" json:"subtotal"`
	TaxTotal         numeric.Decimal   `gorm:"not null" json:"tax_total"`
	TotalAmount      numeric.Decimal   `gorm:"not null" json:"total_amount"`
	RoundedTotal     numeric.Decimal   `gorm:"not null" json:"rounded_total"`
	Metadata         datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt        time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"not null" json:"updated_at"`

	Lines []InvoiceLine `gorm:"-" json:"lines,omitempty"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Input scale limits for invoice lines. With tax rates capped at four
// decimal places a line tax carries at most 6+6+4+2 fractional digits, which
// numeric.Scale holds exactly.
const (
	MaxQuantityScale  = 6
	MaxUnitPriceScale = 6
)

// InvoiceLine snapshots the tax rate percent used when the invoice was
// created, so later edits to the rate do not change issued documents.
type InvoiceLine struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID          snowflake.ID    `gorm:"not null;index" json:"-"`
	InvoiceID      snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	Position       int             `gorm:"not null" json:"position"`
	Description    string          `gorm:"type:text;not null" json:"description"`
	Quantity       numeric.Decimal `gorm:"not null" json:"quantity"`
	Unit           string          `json:"unit,omitempty"`
	UnitPrice      numeric.Decimal `gorm:"not null" json:"unit_price"`
	HSNSAC         string          `gorm:"column:hsn_sac" json:"hsn_sac,omitempty"`
	TaxRateID      *snowflake.ID   `json:"tax_rate_id,omitempty"`
	TaxRatePercent numeric.Decimal `gorm:"not null" json:"tax_rate_percent"`
	LineTotal      numeric.Decimal `gorm:"not null" json:"line_total"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceLine) TableName() string { return "invoice_lines" }

// InvoiceSequence is the per-organization counter behind generated
// invoice numbers.
type InvoiceSequence struct {
	OrgID     snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	LastValue int64        `gorm:"not null"`
	UpdatedAt time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (InvoiceSequence) TableName() string { return "invoice_sequences" }
