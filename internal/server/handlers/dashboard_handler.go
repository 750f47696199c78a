package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/service/analytics"
)

// DashboardHandler serves the herd metrics.
type DashboardHandler struct {
	svc    *analytics.Service
	logger *zap.Logger
}

func NewDashboardHandler(svc *analytics.Service, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{svc: svc, logger: logger}
}

func (h *DashboardHandler) Dashboard(c *gin.Context) {
	serveMetric(c, h.logger, "load dashboard", h.svc.Dashboard)
}

func (h *DashboardHandler) Population(c *gin.Context) {
	serveMetric(c, h.logger, "load population", h.svc.Population)
}

func (h *DashboardHandler) Growth(c *gin.Context) {
	serveMetric(c, h.logger, "load growth metrics", h.svc.Growth)
}

func (h *DashboardHandler) Health(c *gin.Context) {
	serveMetric(c, h.logger, "load health metrics", h.svc.Health)
}

func (h *DashboardHandler) Financial(c *gin.Context) {
	serveMetric(c, h.logger, "load financial metrics", h.svc.Financial)
}

// FeedEfficiency covers the whole herd, or one pen when ?group= is given.
func (h *DashboardHandler) FeedEfficiency(c *gin.Context) {
	group, ok := c.GetQuery("group")
	if !ok {
		serveMetric(c, h.logger, "load feed efficiency", h.svc.FeedEfficiency)
		return
	}

	fe, err := h.svc.GroupFeedEfficiency(c.Request.Context(), callerFrom(c), group)
	if err != nil {
		respondError(c, h.logger, "load feed efficiency", err)
		return
	}
	c.JSON(http.StatusOK, fe)
}

func (h *DashboardHandler) RecentActivities(c *gin.Context) {
	limit, err := intQuery("limit", c.Query("limit"), analytics.DefaultActivityLimit)
	if err != nil {
		respondError(c, h.logger, "load recent activities", err)
		return
	}

	activities, err := h.svc.RecentActivities(c.Request.Context(), callerFrom(c), limit)
	if err != nil {
		respondError(c, h.logger, "load recent activities", err)
		return
	}
	c.JSON(http.StatusOK, activities)
}

func (h *DashboardHandler) Snapshots(c *gin.Context) {
	limit, err := intQuery("limit", c.Query("limit"), analytics.DefaultSnapshotLimit)
	if err != nil {
		respondError(c, h.logger, "list snapshots", err)
		return
	}

	snapshots, err := h.svc.Snapshots(c.Request.Context(), callerFrom(c), limit)
	if err != nil {
		respondError(c, h.logger, "list snapshots", err)
		return
	}
	c.JSON(http.StatusOK, snapshots)
}

func serveMetric[T any](c *gin.Context, logger *zap.Logger, action string, load func(context.Context, models.Caller) (T, error)) {
	value, err := load(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, logger, action, err)
		return
	}
	c.JSON(http.StatusOK, value)
}
