package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tourvia/commission-service/internal/auth"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
)

type relationResponse struct {
	ID             string     `json:"id"`
	ManagerID      string     `json:"manager_id"`
	AgentID        string     `json:"agent_id"`
	Status         string     `json:"status"`
	EffectiveFrom  time.Time  `json:"effective_from"`
	EffectiveUntil *time.Time `json:"effective_until,omitempty"`
}

func toRelationResponse(r *models.AffiliateRelation) relationResponse {
	return relationResponse{
		ID:             r.ID,
		ManagerID:      r.ManagerID,
		AgentID:        r.AgentID,
		Status:         string(r.Status),
		EffectiveFrom:  r.EffectiveFrom,
		EffectiveUntil: r.EffectiveUntil,
	}
}

type relationBody struct {
	ManagerID     string `json:"manager_id" binding:"required"`
	AgentID       string `json:"agent_id" binding:"required"`
	EffectiveFrom string `json:"effective_from"` // RFC 3339, defaults to now
}

// OpenRelation starts a new manager-agent supervision episode
func (h *Handlers) OpenRelation(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		writeError(c, domain.ErrAuthInvalid)
		return
	}
	var body relationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, domain.ErrValidationFailed.WithDetail("reason", err.Error()))
		return
	}
	from := time.Now().UTC()
	if body.EffectiveFrom != "" {
		from, err = time.Parse(time.RFC3339, body.EffectiveFrom)
		if err != nil {
			writeError(c, domain.ErrValidationFailed.
				WithDetail("field", "effective_from").
				WithDetail("reason", "expected RFC 3339 timestamp"))
			return
		}
		from = from.UTC()
	}

	relation, err := h.Relationships.OpenRelation(c.Request.Context(), body.ManagerID, body.AgentID, userID, from)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRelationResponse(relation))
}

// CloseRelation ends the open episode between a manager and an agent
func (h *Handlers) CloseRelation(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		writeError(c, domain.ErrAuthInvalid)
		return
	}
	var body relationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, domain.ErrValidationFailed.WithDetail("reason", err.Error()))
		return
	}
	if err := h.Relationships.CloseRelation(c.Request.Context(), body.ManagerID, body.AgentID, userID, time.Now().UTC()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RelationHistory returns an agent's supervision interval log
func (h *Handlers) RelationHistory(c *gin.Context) {
	agentID := c.Param("agent_id")
	history, err := h.Relationships.HistoryForAgent(c.Request.Context(), agentID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]relationResponse, len(history))
	for i, r := range history {
		out[i] = toRelationResponse(r)
	}
	c.JSON(http.StatusOK, gin.H{"agent_id": agentID, "relations": out})
}
