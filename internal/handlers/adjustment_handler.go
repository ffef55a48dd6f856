package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tourvia/commission-service/internal/auth"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
)

type adjustmentResponse struct {
	ID              string     `json:"id"`
	LedgerLineID    string     `json:"ledger_line_id"`
	RequestedAmount int64      `json:"requested_amount"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	RequestedBy     string     `json:"requested_by"`
	ApprovedBy      *string    `json:"approved_by,omitempty"`
	RequestedAt     time.Time  `json:"requested_at"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
}

func toAdjustmentResponse(a *models.Adjustment) adjustmentResponse {
	return adjustmentResponse{
		ID:              a.ID,
		LedgerLineID:    a.LedgerLineID,
		RequestedAmount: a.RequestedAmount,
		Reason:          a.Reason,
		Status:          string(a.Status),
		RequestedBy:     a.RequestedBy,
		ApprovedBy:      a.ApprovedBy,
		RequestedAt:     a.RequestedAt,
		DecidedAt:       a.DecidedAt,
	}
}

type requestAdjustmentBody struct {
	Delta  int64  `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// RequestAdjustment opens a PENDING adjustment against a ledger line. The
// requester is taken from the verified token, never the body.
func (h *Handlers) RequestAdjustment(c *gin.Context) {
	lineID := c.Param("line_id")
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		writeError(c, domain.ErrAuthInvalid)
		return
	}

	var body requestAdjustmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, domain.ErrValidationFailed.WithDetail("reason", err.Error()))
		return
	}

	adj, err := h.Adjustments.Request(c.Request.Context(), lineID, body.Delta, body.Reason, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAdjustmentResponse(adj))
}

type decideAdjustmentBody struct {
	Outcome string `json:"outcome" binding:"required"` // APPROVE or REJECT
}

// DecideAdjustment applies a terminal outcome to a pending adjustment
func (h *Handlers) DecideAdjustment(c *gin.Context) {
	adjustmentID := c.Param("adjustment_id")
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		writeError(c, domain.ErrAuthInvalid)
		return
	}

	var body decideAdjustmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, domain.ErrValidationFailed.WithDetail("reason", err.Error()))
		return
	}

	adj, err := h.Adjustments.Decide(c.Request.Context(), adjustmentID, models.AdjustmentOutcome(body.Outcome), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAdjustmentResponse(adj))
}

// AdjustmentHistory returns every adjustment ever requested against a line
func (h *Handlers) AdjustmentHistory(c *gin.Context) {
	lineID := c.Param("line_id")
	history, err := h.Adjustments.HistoryForLine(c.Request.Context(), lineID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]adjustmentResponse, len(history))
	for i, a := range history {
		out[i] = toAdjustmentResponse(a)
	}
	c.JSON(http.StatusOK, gin.H{"ledger_line_id": lineID, "adjustments": out})
}
