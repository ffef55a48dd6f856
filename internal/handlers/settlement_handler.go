package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tourvia/commission-service/internal/auth"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
)

type statementResponse struct {
	ID               string                 `json:"id"`
	ProfileID        string                 `json:"profile_id"`
	Period           string                 `json:"period"`
	TotalGross       int64                  `json:"total_gross"`
	TotalWithholding int64                  `json:"total_withholding"`
	TotalNet         int64                  `json:"total_net"`
	LineCount        int32                  `json:"line_count"`
	LineDetails      []models.StatementLine `json:"line_details,omitempty"`
	Status           string                 `json:"status"`
	PaidAt           *time.Time             `json:"paid_at,omitempty"`
}

func toStatementResponse(s *models.SettlementStatement, includeLines bool) statementResponse {
	resp := statementResponse{
		ID:               s.ID,
		ProfileID:        s.ProfileID,
		Period:           s.Period.String(),
		TotalGross:       s.TotalGross,
		TotalWithholding: s.TotalWithholding,
		TotalNet:         s.TotalNet,
		LineCount:        s.LineCount,
		Status:           string(s.Status),
		PaidAt:           s.PaidAt,
	}
	if includeLines {
		resp.LineDetails = s.LineDetails
	}
	return resp
}

type runSettlementBody struct {
	Period string `json:"period" binding:"required"` // YYYY-MM
}

type profileResultResponse struct {
	ProfileID   string `json:"profile_id"`
	StatementID string `json:"statement_id,omitempty"`
	LineCount   int32  `json:"line_count,omitempty"`
	TotalNet    int64  `json:"total_net,omitempty"`
	Error       string `json:"error,omitempty"`
}

// RunSettlement triggers the aggregation batch for one period. A partially
// failed batch returns 207 with the failed subset listed for retry.
func (h *Handlers) RunSettlement(c *gin.Context) {
	var body runSettlementBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, domain.ErrValidationFailed.WithDetail("reason", err.Error()))
		return
	}
	period, err := models.ParsePeriod(body.Period)
	if err != nil {
		writeError(c, domain.ErrValidationFailed.
			WithDetail("field", "period").
			WithDetail("reason", "expected YYYY-MM"))
		return
	}

	batch, err := h.Settlements.Run(c.Request.Context(), period)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{
		"period":    period.String(),
		"succeeded": toProfileResults(batch.Succeeded),
		"failed":    toProfileResults(batch.Failed),
	}
	if len(batch.Failed) > 0 {
		c.JSON(http.StatusMultiStatus, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func toProfileResults(results []ports.ProfileResult) []profileResultResponse {
	out := make([]profileResultResponse, len(results))
	for i, r := range results {
		out[i] = profileResultResponse{
			ProfileID:   r.ProfileID,
			StatementID: r.StatementID,
			LineCount:   r.LineCount,
			TotalNet:    r.TotalNet,
		}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}
	return out
}

// MarkStatementPaid records disbursement of a pending statement
func (h *Handlers) MarkStatementPaid(c *gin.Context) {
	statementID := c.Param("statement_id")
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		writeError(c, domain.ErrAuthInvalid)
		return
	}
	if err := h.Settlements.MarkPaid(c.Request.Context(), statementID, userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statement_id": statementID, "status": string(models.StatementPaid)})
}

// StatementForProfile returns one profile's statement for one period,
// including the line snapshot
func (h *Handlers) StatementForProfile(c *gin.Context) {
	profileID := c.Param("profile_id")
	period, err := models.ParsePeriod(c.Param("period"))
	if err != nil {
		writeError(c, domain.ErrValidationFailed.
			WithDetail("field", "period").
			WithDetail("reason", "expected YYYY-MM"))
		return
	}
	statement, err := h.Settlements.StatementForProfile(c.Request.Context(), profileID, period)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStatementResponse(statement, true))
}

// StatementsForProfile lists a profile's statements, newest period first
func (h *Handlers) StatementsForProfile(c *gin.Context) {
	profileID := c.Param("profile_id")
	limit, offset, err := pagination(c)
	if err != nil {
		writeError(c, err)
		return
	}
	statements, err := h.Settlements.StatementsByProfile(c.Request.Context(), profileID, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]statementResponse, len(statements))
	for i, s := range statements {
		out[i] = toStatementResponse(s, false)
	}
	c.JSON(http.StatusOK, gin.H{"profile_id": profileID, "statements": out})
}
