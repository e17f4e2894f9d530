package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gstbill/pkg/db/numeric"
	"gorm.io/datatypes"
)

// Client is a buyer. State drives the CGST/SGST vs IGST decision on every
// document rendered for this client.
type Client struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID           snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	ClientNumber    string            `gorm:"not null" json:"client_number"`
	Name            string            `gorm:"not null" json:"name"`
	Email           string            `json:"email,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	GSTIN           string            `gorm:"column:gstin" json:"gstin,omitempty"`
	BillingAddress  string            `json:"billing_address,omitempty"`
	ShippingAddress string            `json:"shipping_address,omitempty"`
	State           string            `json:"state,omitempty"`
	OpeningBalance  numeric.Decimal   `gorm:"not null;default:0" json:"opening_balance"`
	Metadata        datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt       time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }
