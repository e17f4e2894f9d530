package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/gstbill/internal/gst"
)

type calculateLineRequest struct {
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	TaxRate   string `json:"tax_rate"`
}

type calculateRequest struct {
	Lines       []calculateLineRequest `json:"lines"`
	SellerState string                 `json:"seller_state"`
	BuyerState  string                 `json:"buyer_state"`
}

type calculateLineResponse struct {
	Amount gst.Money `json:"amount"`
	Tax    gst.Money `json:"tax"`
}

type calculateResponse struct {
	gst.Totals
	RoundOff gst.Money               `json:"round_off"`
	Lines    []calculateLineResponse `json:"lines"`
	Split    gst.TaxSplit            `json:"tax_split"`
	Words    string                  `json:"amount_in_words,omitempty"`
}

// Calculate previews invoice totals without persisting anything. It needs no
// organization.
func (s *Server) Calculate(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	lines := make([]gst.LineInput, 0, len(req.Lines))
	lineResp := make([]calculateLineResponse, 0, len(req.Lines))
	for i, raw := range req.Lines {
		line, err := gst.ParseLine(raw.Quantity, raw.UnitPrice, defaultRate(raw.TaxRate))
		if err != nil {
			AbortWithError(c, indexLineError(i, err))
			return
		}
		if err := line.Validate(); err != nil {
			AbortWithError(c, err)
			return
		}
		amount := gst.LineAmount(line.Quantity, line.UnitPrice)
		lines = append(lines, line)
		lineResp = append(lineResp, calculateLineResponse{
			Amount: amount,
			Tax:    gst.LineTax(amount, line.TaxRatePercent),
		})
	}

	totals, err := gst.ComputeTotals(lines)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := calculateResponse{
		Totals:   totals,
		RoundOff: totals.RoundOff(),
		Lines:    lineResp,
		Split:    gst.SplitTax(totals.TaxTotal, req.SellerState, req.BuyerState),
	}
	if words := gst.WordsOrSentinel(totals.RoundedTotal); words != gst.OverflowSentinel {
		resp.Words = words
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func defaultRate(raw string) string {
	if raw == "" {
		return "0"
	}
	return raw
}

func indexLineError(index int, err error) error {
	var parseErr *gst.ParseError
	if errors.As(err, &parseErr) {
		return &gst.ParseError{
			Field: fmt.Sprintf("lines[%d].%s", index, parseErr.Field),
			Value: parseErr.Value,
			Err:   parseErr.Err,
		}
	}
	return err
}
