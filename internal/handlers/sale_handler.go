package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/pkg/timeutil"
)

type postSaleRequest struct {
	SaleID          string  `json:"sale_id" binding:"required"`
	ProductCode     string  `json:"product_code"`
	ProductCategory string  `json:"product_category" binding:"required"`
	Amount          int64   `json:"amount" binding:"required"`
	AgentID         string  `json:"agent_id" binding:"required"`
	ManagerID       *string `json:"manager_id"`
	SaleDate        string  `json:"sale_date" binding:"required"` // RFC 3339
	Status          string  `json:"status" binding:"required"`
}

// PostSale ingests a sale-completion event and posts its commission lines.
// Retries of the same event return the already-posted lines with 200.
func (h *Handlers) PostSale(c *gin.Context) {
	var req postSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.ErrValidationFailed.WithDetail("reason", err.Error()))
		return
	}
	saleDate, err := timeutil.ParseDate(time.RFC3339, req.SaleDate)
	if err != nil {
		writeError(c, domain.ErrValidationFailed.
			WithDetail("field", "sale_date").
			WithDetail("reason", "expected RFC 3339 timestamp"))
		return
	}

	sale := &models.Sale{
		ID:              req.SaleID,
		ProductCode:     req.ProductCode,
		ProductCategory: req.ProductCategory,
		Amount:          req.Amount,
		AgentID:         req.AgentID,
		ManagerID:       req.ManagerID,
		SaleDate:        saleDate,
		Status:          models.SaleStatus(req.Status),
	}

	lines, err := h.Ledger.PostSale(c.Request.Context(), sale)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sale_id": sale.ID,
		"lines":   toLedgerLineResponses(lines),
	})
}
