package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/service/analytics"
	"github.com/mamadbah2/feedlot/internal/service/reports"
)

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// respondError logs the failure and writes the mapped status with a generic message.
// Validation failures also name the offending field.
func respondError(c *gin.Context, logger *zap.Logger, action string, err error) {
	status, code := mapError(err)
	resp := errorResponse{
		Error: fmt.Sprintf("Failed to %s. Please try again.", action),
		Code:  code,
	}

	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		resp.Field = vErr.Field
		resp.Message = vErr.Message
	}

	fields := []zap.Field{
		zap.String("action", action),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", fields...)
	} else {
		logger.Info("request rejected", fields...)
	}

	c.AbortWithStatusJSON(status, resp)
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, reports.ErrPublishingDisabled), errors.Is(err, analytics.ErrSnapshotsDisabled):
		return http.StatusServiceUnavailable, "service_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// invalidBody reports a request body that could not be decoded.
func invalidBody(err error) error {
	return fmt.Errorf("%w: %v", &models.ValidationError{Field: "body", Message: "malformed request body"}, err)
}
