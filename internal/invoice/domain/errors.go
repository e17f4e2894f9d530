package domain

import "errors"

var (
	ErrInvalidOrganization    = errors.New("invalid_organization")
	ErrInvalidInvoiceID       = errors.New("invalid_invoice_id")
	ErrInvalidClient          = errors.New("invalid_client")
	ErrInvalidLines           = errors.New("invalid_lines")
	ErrInvalidDescription     = errors.New("invalid_description")
	ErrInvalidTemplate        = errors.New("invalid_template")
	ErrInvalidStatus          = errors.New("invalid_status")
	ErrInvalidTaxRateID       = errors.New("invalid_tax_rate_id")
	ErrInvalidCompanyProfile  = errors.New("invalid_company_profile")
	ErrInvalidDueDate         = errors.New("invalid_due_date")
	ErrInvalidQuantity        = errors.New("invalid_quantity")
	ErrInvalidUnitPrice       = errors.New("invalid_unit_price")
	ErrInvalidAmount          = errors.New("invalid_amount")
	ErrInvoiceNotFound        = errors.New("invoice_not_found")
	ErrClientNotFound         = errors.New("client_not_found")
	ErrTaxRateNotFound        = errors.New("tax_rate_not_found")
	ErrCompanyProfileNotFound = errors.New("company_profile_not_found")
	ErrDuplicateInvoiceNumber = errors.New("duplicate_invoice_number")
	ErrInvoiceNotDraft        = errors.New("invoice_not_draft")
	ErrRendererNotConfigured  = errors.New("renderer_not_configured")
)
