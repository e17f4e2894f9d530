package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/smallbiznis/gstbill/internal/ledger/domain"
)

func (s *Server) GetClientLedger(c *gin.Context) {
	resp, err := s.ledgerSvc.ClientLedger(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isLedgerValidationError(err error) bool {
	return err == ledgerdomain.ErrInvalidClientID
}
