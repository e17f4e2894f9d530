package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	clientdomain "github.com/smallbiznis/gstbill/internal/client/domain"
	"github.com/smallbiznis/gstbill/internal/gst"
	"github.com/smallbiznis/gstbill/pkg/db/pagination"
)

type createClientRequest struct {
	ClientNumber    string         `json:"client_number"`
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone"`
	GSTIN           string         `json:"gstin"`
	BillingAddress  string         `json:"billing_address"`
	ShippingAddress string         `json:"shipping_address"`
	State           string         `json:"state"`
	OpeningBalance  *string        `json:"opening_balance"`
	Metadata        map[string]any `json:"metadata"`
}

type updateClientRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	GSTIN           *string `json:"gstin"`
	BillingAddress  *string `json:"billing_address"`
	ShippingAddress *string `json:"shipping_address"`
	State           *string `json:"state"`
	OpeningBalance  *string `json:"opening_balance"`
}

func (s *Server) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	openingBalance, err := parseOptionalMoney("opening_balance", req.OpeningBalance)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.clientSvc.Create(c.Request.Context(), clientdomain.CreateClientRequest{
		ClientNumber:    strings.TrimSpace(req.ClientNumber),
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		GSTIN:           strings.TrimSpace(req.GSTIN),
		BillingAddress:  strings.TrimSpace(req.BillingAddress),
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		State:           strings.TrimSpace(req.State),
		OpeningBalance:  openingBalance,
		Metadata:        req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListClients(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name  string `form:"name"`
		State string `form:"state"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clientSvc.List(c.Request.Context(), clientdomain.ListClientRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		Name:      strings.TrimSpace(query.Name),
		State:     strings.TrimSpace(query.State),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetClientByID(c *gin.Context) {
	resp, err := s.clientSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateClient(c *gin.Context) {
	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	openingBalance, err := parseOptionalMoney("opening_balance", req.OpeningBalance)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.clientSvc.Update(c.Request.Context(), clientdomain.UpdateClientRequest{
		ID:              strings.TrimSpace(c.Param("id")),
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		GSTIN:           req.GSTIN,
		BillingAddress:  req.BillingAddress,
		ShippingAddress: req.ShippingAddress,
		State:           req.State,
		OpeningBalance:  openingBalance,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteClient(c *gin.Context) {
	if err := s.clientSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseOptionalMoney(field string, value *string) (*decimal.Decimal, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	amount, err := gst.ParseField(field, *value)
	if err != nil {
		return nil, err
	}
	return &amount, nil
}

func isClientValidationError(err error) bool {
	switch err {
	case clientdomain.ErrInvalidName,
		clientdomain.ErrInvalidEmail,
		clientdomain.ErrInvalidGSTIN,
		clientdomain.ErrInvalidOpeningBalance,
		clientdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
