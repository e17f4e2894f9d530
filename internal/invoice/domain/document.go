package domain

import (
	"time"

	"github.com/smallbiznis/gstbill/internal/gst"
)

// DocumentView is everything a printed invoice shows. It is rebuilt on every
// request: the tax split uses the seller's current state and the buyer's
// stored state against the persisted tax total.
type DocumentView struct {
	Template Template     `json:"template"`
	Invoice  InvoiceView  `json:"invoice"`
	Seller   PartyView    `json:"seller"`
	Buyer    PartyView    `json:"buyer"`
	Bank     BankView     `json:"bank"`
	Lines    []LineView   `json:"lines"`
	Totals   TotalsView   `json:"totals"`
	Split    gst.TaxSplit `json:"tax_split"`
	// Words is empty when the amount cannot be worded.
	Words string `json:"amount_in_words,omitempty"`

	Currency           string `json:"currency"`
	PaymentTerms       string `json:"payment_terms,omitempty"`
	TermsAndConditions string `json:"terms_and_conditions,omitempty"`
	SealURL            string `json:"seal_url,omitempty"`
	SignatureURL       string `json:"signature_url,omitempty"`
	UPIQRURL           string `json:"upi_qr_url,omitempty"`
	LogoURL            string `json:"logo_url,omitempty"`
}

type InvoiceView struct {
	ID            string     `json:"id"`
	Number        string     `json:"number"`
	PublicUUID    string     `json:"public_uuid"`
	Status        string     `json:"status"`
	IssueDate     time.Time  `json:"issue_date"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	PlaceOfSupply string     `json:"place_of_supply,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

type PartyView struct {
	Name            string `json:"name"`
	Address         string `json:"address,omitempty"`
	ShippingAddress string `json:"shipping_address,omitempty"`
	State           string `json:"state,omitempty"`
	GSTIN           string `json:"gstin,omitempty"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
}

type BankView struct {
	Name      string `json:"name,omitempty"`
	Branch    string `json:"branch,omitempty"`
	AccountNo string `json:"account_no,omitempty"`
	IFSC      string `json:"ifsc,omitempty"`
}

type LineView struct {
	Position       int    `json:"position"`
	Description    string `json:"description"`
	HSNSAC         string `json:"hsn_sac,omitempty"`
	Quantity       string `json:"quantity"`
	Unit           string `json:"unit,omitempty"`
	UnitPrice      string `json:"unit_price"`
	TaxRatePercent string `json:"tax_rate_percent"`
	TaxAmount      string `json:"tax_amount"`
	LineTotal      string `json:"line_total"`
}

// TotalsView holds display strings with two decimals.
type TotalsView struct {
	Subtotal     string `json:"subtotal"`
	TaxTotal     string `json:"tax_total"`
	CGST         string `json:"cgst"`
	SGST         string `json:"sgst"`
	IGST         string `json:"igst"`
	TotalAmount  string `json:"total_amount"`
	RoundOff     string `json:"round_off"`
	RoundedTotal string `json:"rounded_total"`
}
