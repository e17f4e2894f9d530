package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gstbill/pkg/db/numeric"
)

// MaxRateScale is the number of decimal places a rate percent may carry.
const MaxRateScale = 4

var maxRate = decimal.NewFromInt(100)

// TaxRate is an org-scoped GST rate. Rate is a percent (18 means 18%), and
// invoice lines snapshot it at creation.
type TaxRate struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	OrgID snowflake.ID `gorm:"column:org_id;not null;index"`

	Name string          `gorm:"type:text;not null"`
	Rate numeric.Decimal `gorm:"not null"`

	Description *string `gorm:"type:text"`

	IsEnabled bool `gorm:"column:is_enabled;not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (TaxRate) TableName() string { return "tax_rates" }

func (t *TaxRate) Validate() error {
	if t.Name == "" {
		return ErrInvalidName
	}
	if t.Rate.IsNegative() || t.Rate.GreaterThan(maxRate) || !numeric.ScaleAtMost(t.Rate.Decimal, MaxRateScale) {
		return ErrInvalidTaxRate
	}
	return nil
}
