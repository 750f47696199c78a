package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/domain/models"
	healthsvc "github.com/mamadbah2/feedlot/internal/service/health"
)

// HealthHandler serves health records.
type HealthHandler struct {
	svc    *healthsvc.Service
	logger *zap.Logger
}

func NewHealthHandler(svc *healthsvc.Service, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{svc: svc, logger: logger}
}

func (h *HealthHandler) List(c *gin.Context) {
	from, to, err := dateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, h.logger, "list health records", err)
		return
	}
	filter := models.HealthFilter{CattleID: c.Query("cattleId"), From: from, To: to}
	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseHealthStatus(raw)
		if !ok {
			respondError(c, h.logger, "list health records", models.Invalid("status", "unknown health status"))
			return
		}
		filter.Status = status
	}

	records, err := h.svc.List(c.Request.Context(), callerFrom(c), filter)
	if err != nil {
		respondError(c, h.logger, "list health records", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *HealthHandler) Create(c *gin.Context) {
	var req healthsvc.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "create health record", invalidBody(err))
		return
	}

	record, err := h.svc.Create(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		respondError(c, h.logger, "create health record", err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *HealthHandler) Get(c *gin.Context) {
	record, err := h.svc.Get(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "load health record", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *HealthHandler) Update(c *gin.Context) {
	var req healthsvc.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "update health record", invalidBody(err))
		return
	}

	record, err := h.svc.Update(c.Request.Context(), callerFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, "update health record", err)
		return
	}
	c.JSON(http.StatusOK, record)
}
