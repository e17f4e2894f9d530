package render

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gstbill/internal/gst"
	"github.com/smallbiznis/gstbill/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument(tpl domain.Template, split gst.TaxSplit) domain.DocumentView {
	return domain.DocumentView{
		Template: tpl,
		Invoice: domain.InvoiceView{
			Number:    "INV-20260301-0001",
			IssueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		Seller:   domain.PartyView{Name: "Demo Company", State: "Tamil Nadu", GSTIN: "29ABCDE1234F1Z5"},
		Buyer:    domain.PartyView{Name: "Acme <Traders>", State: "Tamil Nadu"},
		Currency: "₹",
		Lines: []domain.LineView{
			{Position: 1, Description: "Widget", Quantity: "2", UnitPrice: "100.00", TaxRatePercent: "18", TaxAmount: "36.00", LineTotal: "200.00"},
		},
		Totals: domain.TotalsView{
			Subtotal:     "200.00",
			TaxTotal:     "36.00",
			CGST:         "18.00",
			SGST:         "18.00",
			IGST:         "0.00",
			TotalAmount:  "236.00",
			RoundOff:     "0.00",
			RoundedTotal: "236.00",
		},
		Split: split,
		Words: "Rupees Two Hundred and Thirty Six Only",
	}
}

func TestRenderAllTemplates(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	intra := gst.SplitTax(decimal.NewFromInt(36), "Tamil Nadu", "Tamil Nadu")
	for _, tpl := range []domain.Template{
		domain.TemplateClassic,
		domain.TemplateModern,
		domain.TemplateCompact,
		domain.TemplateTransportSlip,
	} {
		html, err := r.RenderHTML(sampleDocument(tpl, intra))
		require.NoError(t, err, tpl)
		assert.Contains(t, html, "INV-20260301-0001", tpl)
		assert.Contains(t, html, "Widget", tpl)
		assert.Contains(t, html, "Rupees Two Hundred and Thirty Six Only", tpl)
		assert.Contains(t, html, "Acme &lt;Traders&gt;", tpl)
	}
}

func TestRenderShowsSplitRows(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	html, err := r.RenderHTML(sampleDocument(domain.TemplateClassic, gst.SplitTax(decimal.NewFromInt(36), "Tamil Nadu", "tamil nadu")))
	require.NoError(t, err)
	assert.Contains(t, html, "CGST")
	assert.Contains(t, html, "SGST")
	assert.NotContains(t, html, "IGST")

	html, err = r.RenderHTML(sampleDocument(domain.TemplateClassic, gst.SplitTax(decimal.NewFromInt(36), "Tamil Nadu", "Kerala")))
	require.NoError(t, err)
	assert.Contains(t, html, "IGST")
	assert.NotContains(t, html, "CGST")
}

func TestRenderOmitsWordsWhenEmpty(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	doc := sampleDocument(domain.TemplateModern, gst.SplitTax(decimal.NewFromInt(36), "", ""))
	doc.Words = ""
	html, err := r.RenderHTML(doc)
	require.NoError(t, err)
	assert.NotContains(t, html, `class="words"`)
}

func TestRenderFallsBackToClassic(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	html, err := r.RenderHTML(sampleDocument("unknown", gst.SplitTax(decimal.Zero, "a", "a")))
	require.NoError(t, err)
	assert.Contains(t, html, "TAX INVOICE")
}
