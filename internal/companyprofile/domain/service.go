package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateRequest struct {
	Name               string `json:"name"`
	Address            string `json:"address"`
	State              string `json:"state"`
	GSTIN              string `json:"gstin"`
	BankName           string `json:"bank_name"`
	BankBranch         string `json:"bank_branch"`
	BankAccountNo      string `json:"bank_account_no"`
	BankIFSC           string `json:"bank_ifsc"`
	SealURL            string `json:"seal_url"`
	SignatureURL       string `json:"signature_url"`
	UPIQRURL           string `json:"upi_qr_url"`
	LogoURL            string `json:"logo_url"`
	PaymentTerms       string `json:"payment_terms"`
	TermsAndConditions string `json:"terms_and_conditions"`
	Currency           string `json:"currency"`
	IsDefault          bool   `json:"is_default"`
}

// UpdateRequest is a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	ID                 string  `json:"-"`
	Name               *string `json:"name"`
	Address            *string `json:"address"`
	State              *string `json:"state"`
	GSTIN              *string `json:"gstin"`
	BankName           *string `json:"bank_name"`
	BankBranch         *string `json:"bank_branch"`
	BankAccountNo      *string `json:"bank_account_no"`
	BankIFSC           *string `json:"bank_ifsc"`
	SealURL            *string `json:"seal_url"`
	SignatureURL       *string `json:"signature_url"`
	UPIQRURL           *string `json:"upi_qr_url"`
	LogoURL            *string `json:"logo_url"`
	PaymentTerms       *string `json:"payment_terms"`
	TermsAndConditions *string `json:"terms_and_conditions"`
	Currency           *string `json:"currency"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (CompanyProfile, error)
	Update(ctx context.Context, req UpdateRequest) (CompanyProfile, error)
	GetByID(ctx context.Context, id string) (CompanyProfile, error)
	List(ctx context.Context) ([]CompanyProfile, error)
	SetDefault(ctx context.Context, id string) (CompanyProfile, error)
	// Resolve picks the seller for a document: the given profile, else the
	// organization default, else its first profile, else configured defaults.
	Resolve(ctx context.Context, id *snowflake.ID) (CompanyProfile, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
