package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
)

type ledgerLineResponse struct {
	ID                string    `json:"id"`
	SaleID            string    `json:"sale_id"`
	ProfileID         string    `json:"profile_id"`
	Role              string    `json:"role"`
	GrossAmount       int64     `json:"gross_amount"`
	CommissionRate    string    `json:"commission_rate"`
	WithholdingRate   string    `json:"withholding_rate"`
	WithholdingAmount int64     `json:"withholding_amount"`
	NetAmount         int64     `json:"net_amount"`
	IsSettled         bool      `json:"is_settled"`
	CreatedAt         time.Time `json:"created_at"`
}

func toLedgerLineResponse(l *models.LedgerLine) ledgerLineResponse {
	return ledgerLineResponse{
		ID:                l.ID,
		SaleID:            l.SaleID,
		ProfileID:         l.ProfileID,
		Role:              string(l.Role),
		GrossAmount:       l.GrossAmount,
		CommissionRate:    l.CommissionRate.String(),
		WithholdingRate:   l.WithholdingRate.String(),
		WithholdingAmount: l.WithholdingAmount,
		NetAmount:         l.NetAmount,
		IsSettled:         l.IsSettled,
		CreatedAt:         l.CreatedAt,
	}
}

func toLedgerLineResponses(lines []*models.LedgerLine) []ledgerLineResponse {
	out := make([]ledgerLineResponse, len(lines))
	for i, l := range lines {
		out[i] = toLedgerLineResponse(l)
	}
	return out
}

// LinesForSale returns the commission lines posted for one sale
func (h *Handlers) LinesForSale(c *gin.Context) {
	saleID := c.Param("sale_id")
	lines, err := h.Ledger.LinesForSale(c.Request.Context(), saleID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sale_id": saleID, "lines": toLedgerLineResponses(lines)})
}

// LinesForProfile returns a profile's commission lines, newest first
func (h *Handlers) LinesForProfile(c *gin.Context) {
	profileID := c.Param("profile_id")
	limit, offset, err := pagination(c)
	if err != nil {
		writeError(c, err)
		return
	}
	lines, err := h.Ledger.LinesForProfile(c.Request.Context(), profileID, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile_id": profileID, "lines": toLedgerLineResponses(lines)})
}

func pagination(c *gin.Context) (limit, offset int32, err error) {
	limit = 50
	offset = 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || v <= 0 || v > 500 {
			return 0, 0, domain.ErrValidationFailed.WithDetail("field", "limit")
		}
		limit = int32(v)
	}
	if raw := c.Query("offset"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || v < 0 {
			return 0, 0, domain.ErrValidationFailed.WithDetail("field", "offset")
		}
		offset = int32(v)
	}
	return limit, offset, nil
}
