package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gstbill/pkg/db/numeric"
)

type Method string

const (
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
	MethodUPI          Method = "upi"
	MethodCheque       Method = "cheque"
	MethodCard         Method = "card"
	MethodOther        Method = "other"
)

// ParseMethod defaults an empty method to cash.
func ParseMethod(value string) (Method, bool) {
	switch Method(value) {
	case "":
		return MethodCash, true
	case MethodCash, MethodBankTransfer, MethodUPI, MethodCheque, MethodCard, MethodOther:
		return Method(value), true
	default:
		return "", false
	}
}

type Payment struct {
	ID        snowflake.ID    `json:"id" gorm:"primaryKey"`
	OrgID     snowflake.ID    `json:"organization_id" gorm:"not null;index"`
	InvoiceID snowflake.ID    `json:"invoice_id" gorm:"not null;index"`
	Amount    numeric.Decimal `json:"amount" gorm:"not null"`
	PaidAt    time.Time       `json:"paid_at" gorm:"not null"`
	Method    Method          `json:"method" gorm:"type:text;not null"`
	Reference string          `json:"reference,omitempty" gorm:"type:text"`
	Notes     string          `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }
