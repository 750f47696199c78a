package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	callerKey = "caller"
)

// RequireCaller reads the upstream identity headers into a models.Caller.
// Requests without a user id or with an unknown role are rejected with 401.
func RequireCaller(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		role, ok := models.ParseRole(c.GetHeader(HeaderUserRole))
		if userID == "" || !ok {
			respondError(c, logger, "authenticate request", models.ErrUnauthenticated)
			return
		}
		c.Set(callerKey, models.Caller{UserID: userID, Role: role})
		c.Next()
	}
}

func callerFrom(c *gin.Context) models.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(models.Caller); ok {
			return caller
		}
	}
	return models.Caller{}
}
