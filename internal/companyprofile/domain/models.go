package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CompanyProfile is a seller identity. State decides whether tax on a
// document splits into CGST/SGST or stays IGST.
type CompanyProfile struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID              snowflake.ID `gorm:"not null;index" json:"organization_id"`
	Name               string       `gorm:"not null" json:"name"`
	Address            string       `json:"address,omitempty"`
	State              string       `json:"state,omitempty"`
	GSTIN              string       `gorm:"column:gstin" json:"gstin,omitempty"`
	BankName           string       `json:"bank_name,omitempty"`
	BankBranch         string       `json:"bank_branch,omitempty"`
	BankAccountNo      string       `json:"bank_account_no,omitempty"`
	BankIFSC           string       `gorm:"column:bank_ifsc" json:"bank_ifsc,omitempty"`
	SealURL            string       `json:"seal_url,omitempty"`
	SignatureURL       string       `json:"signature_url,omitempty"`
	UPIQRURL           string       `gorm:"column:upi_qr_url" json:"upi_qr_url,omitempty"`
	LogoURL            string       `json:"logo_url,omitempty"`
	PaymentTerms       string       `json:"payment_terms,omitempty"`
	TermsAndConditions string       `json:"terms_and_conditions,omitempty"`
	Currency           string       `gorm:"not null" json:"currency"`
	IsDefault          bool         `gorm:"not null" json:"is_default"`
	CreatedAt          time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time    `gorm:"not null" json:"updated_at"`
}

func (CompanyProfile) TableName() string { return "company_profiles" }

// IsFallback reports whether the profile came from process configuration
// rather than the database.
func (p CompanyProfile) IsFallback() bool { return p.ID == 0 }
