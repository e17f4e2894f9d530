package gst

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SplitMode tells how the tax total is presented on a document.
type SplitMode string

const (
	SplitIntraState SplitMode = "CGST_SGST"
	SplitInterState SplitMode = "IGST"
	SplitUnknown    SplitMode = "UNKNOWN"
)

// TaxSplit is the CGST/SGST/IGST breakdown of a tax total.
// CGST + SGST + IGST always equals the tax total it was derived from.
type TaxSplit struct {
	Mode SplitMode `json:"mode"`
	CGST Money     `json:"cgst"`
	SGST Money     `json:"sgst"`
	IGST Money     `json:"igst"`
}

// Total returns CGST + SGST + IGST.
func (s TaxSplit) Total() Money {
	return s.CGST.Add(s.SGST).Add(s.IGST)
}

// SplitTax decides between intra-state and inter-state GST. States are
// compared case-insensitively after trimming. A missing state on either side
// yields SplitUnknown with the whole amount reported as IGST.
//
// Intra-state halves are exact: 0.01 splits into 0.005 and 0.005.
func SplitTax(totalTax Money, sellerState, buyerState string) TaxSplit {
	seller := normalizeState(sellerState)
	buyer := normalizeState(buyerState)

	if seller == "" || buyer == "" {
		return TaxSplit{
			Mode: SplitUnknown,
			CGST: decimal.Zero,
			SGST: decimal.Zero,
			IGST: totalTax,
		}
	}

	if seller == buyer {
		h := totalTax.Mul(half)
		return TaxSplit{
			Mode: SplitIntraState,
			CGST: h,
			SGST: h,
			IGST: decimal.Zero,
		}
	}

	return TaxSplit{
		Mode: SplitInterState,
		CGST: decimal.Zero,
		SGST: decimal.Zero,
		IGST: totalTax,
	}
}

func normalizeState(state string) string {
	return strings.ToLower(strings.TrimSpace(state))
}
