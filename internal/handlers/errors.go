package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tourvia/commission-service/internal/domain"
)

// httpStatus maps a DomainError code to an HTTP status. The mapping lives
// here and nowhere else; services never know about HTTP.
func httpStatus(code domain.ErrorCode) int {
	switch code {
	case domain.ErrorCodeValidationFailed,
		domain.ErrorCodeValidationAmountInvalid,
		domain.ErrorCodeValidationMissingField:
		return http.StatusBadRequest
	case domain.ErrorCodeAuthMissing, domain.ErrorCodeAuthInvalid:
		return http.StatusUnauthorized
	case domain.ErrorCodeAuthInsufficientCaps,
		domain.ErrorCodeSelfApprovalForbidden:
		return http.StatusForbidden
	case domain.ErrorCodeProfileNotFound,
		domain.ErrorCodeSaleNotFound,
		domain.ErrorCodeLineNotFound,
		domain.ErrorCodeAdjustmentNotFound,
		domain.ErrorCodeStatementNotFound,
		domain.ErrorCodeRelationNotFound:
		return http.StatusNotFound
	case domain.ErrorCodeAlreadyDecided,
		domain.ErrorCodeLineSettled,
		domain.ErrorCodeStatementNotPending,
		domain.ErrorCodeConcurrentModification:
		return http.StatusConflict
	case domain.ErrorCodeRateNotConfigured,
		domain.ErrorCodeRateLookupTimeout:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps any error to the uniform JSON error envelope
func writeError(c *gin.Context, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		body := gin.H{
			"code":    string(de.Code),
			"message": de.Message,
		}
		if len(de.Details) > 0 {
			body["details"] = de.Details
		}
		c.AbortWithStatusJSON(httpStatus(de.Code), body)
		return
	}
	c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"code":    string(domain.ErrorCodeInternalError),
		"message": "internal server error",
	})
}
