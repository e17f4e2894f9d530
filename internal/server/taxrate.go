package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gstbill/internal/gst"
	taxratedomain "github.com/smallbiznis/gstbill/internal/taxrate/domain"
)

type createTaxRateRequest struct {
	Name        string  `json:"name"`
	Rate        string  `json:"rate"`
	Description *string `json:"description"`
	IsEnabled   *bool   `json:"is_enabled"`
}

type updateTaxRateRequest struct {
	Name        *string `json:"name,omitempty"`
	Rate        *string `json:"rate,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (s *Server) CreateTaxRate(c *gin.Context) {
	var req createTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rate, err := gst.ParseField("rate", req.Rate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.taxRateSvc.Create(c.Request.Context(), taxratedomain.CreateRequest{
		Name:        strings.TrimSpace(req.Name),
		Rate:        rate,
		Description: trimOptionalString(req.Description),
		IsEnabled:   req.IsEnabled,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTaxRates(c *gin.Context) {
	var query struct {
		Name      string `form:"name"`
		IsEnabled string `form:"is_enabled"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	isEnabled, err := parseOptionalBool(query.IsEnabled)
	if err != nil {
		AbortWithError(c, newValidationError("is_enabled", "invalid_is_enabled", "invalid is_enabled"))
		return
	}

	resp, err := s.taxRateSvc.List(c.Request.Context(), taxratedomain.ListRequest{
		Name:      strings.TrimSpace(query.Name),
		IsEnabled: isEnabled,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTaxRate(c *gin.Context) {
	var req updateTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var rate *decimal.Decimal
	if req.Rate != nil {
		parsed, err := gst.ParseField("rate", *req.Rate)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		rate = &parsed
	}

	resp, err := s.taxRateSvc.Update(c.Request.Context(), taxratedomain.UpdateRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		Name:        trimOptionalString(req.Name),
		Rate:        rate,
		Description: trimOptionalString(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DisableTaxRate(c *gin.Context) {
	resp, err := s.taxRateSvc.Disable(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func trimOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}

func isTaxRateValidationError(err error) bool {
	switch err {
	case taxratedomain.ErrInvalidName,
		taxratedomain.ErrInvalidID,
		taxratedomain.ErrInvalidTaxRate:
		return true
	default:
		return false
	}
}
