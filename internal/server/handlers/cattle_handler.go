package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/domain/models"
	cattlesvc "github.com/mamadbah2/feedlot/internal/service/cattle"
	healthsvc "github.com/mamadbah2/feedlot/internal/service/health"
)

// CattleHandler serves the herd register, weigh-ins, inductions and purchases.
type CattleHandler struct {
	svc    *cattlesvc.Service
	health *healthsvc.Service
	logger *zap.Logger
}

// NewCattleHandler constructs the HTTP handler adapter.
func NewCattleHandler(svc *cattlesvc.Service, health *healthsvc.Service, logger *zap.Logger) *CattleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CattleHandler{svc: svc, health: health, logger: logger}
}

func (h *CattleHandler) List(c *gin.Context) {
	filter := models.CattleFilter{
		Location: strings.TrimSpace(c.Query("location")),
		Breed:    strings.TrimSpace(c.Query("breed")),
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseCattleStatus(raw)
		if !ok {
			respondError(c, h.logger, "list cattle", models.Invalid("status", "unknown cattle status"))
			return
		}
		filter.Status = status
	}

	cattle, err := h.svc.List(c.Request.Context(), callerFrom(c), filter)
	if err != nil {
		respondError(c, h.logger, "list cattle", err)
		return
	}
	c.JSON(http.StatusOK, cattle)
}

func (h *CattleHandler) Create(c *gin.Context) {
	var req cattlesvc.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "create cattle", invalidBody(err))
		return
	}

	cattle, err := h.svc.Create(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		respondError(c, h.logger, "create cattle", err)
		return
	}
	c.JSON(http.StatusCreated, cattle)
}

func (h *CattleHandler) Purchase(c *gin.Context) {
	var req cattlesvc.PurchaseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "record cattle purchase", invalidBody(err))
		return
	}

	cattle, purchase, err := h.svc.Purchase(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		respondError(c, h.logger, "record cattle purchase", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"cattle": cattle, "purchase": purchase})
}

func (h *CattleHandler) Get(c *gin.Context) {
	cattle, err := h.svc.Get(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "load cattle", err)
		return
	}
	c.JSON(http.StatusOK, cattle)
}

func (h *CattleHandler) GetByTag(c *gin.Context) {
	cattle, err := h.svc.GetByTag(c.Request.Context(), callerFrom(c), c.Param("tag"))
	if err != nil {
		respondError(c, h.logger, "load cattle", err)
		return
	}
	c.JSON(http.StatusOK, cattle)
}

func (h *CattleHandler) Update(c *gin.Context) {
	var req cattlesvc.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "update cattle", invalidBody(err))
		return
	}

	cattle, err := h.svc.Update(c.Request.Context(), callerFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, "update cattle", err)
		return
	}
	c.JSON(http.StatusOK, cattle)
}

// RecordWeight stores a weigh-in for the animal in the path.
func (h *CattleHandler) RecordWeight(c *gin.Context) {
	var req cattlesvc.WeightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "record weight", invalidBody(err))
		return
	}
	req.CattleID = c.Param("id")

	record, err := h.svc.RecordWeight(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		respondError(c, h.logger, "record weight", err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *CattleHandler) WeightHistory(c *gin.Context) {
	records, err := h.svc.WeightHistory(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "load weight history", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// AverageDailyGain returns the series ADG; adg is null with fewer than two weigh-ins.
func (h *CattleHandler) AverageDailyGain(c *gin.Context) {
	id := c.Param("id")
	adg, err := h.svc.AverageDailyGain(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, h.logger, "calculate daily gain", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cattleId": id, "adg": adg})
}

func (h *CattleHandler) RecordInduction(c *gin.Context) {
	var req cattlesvc.InductionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "record induction", invalidBody(err))
		return
	}
	req.CattleID = c.Param("id")

	induction, err := h.svc.RecordInduction(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		respondError(c, h.logger, "record induction", err)
		return
	}
	c.JSON(http.StatusCreated, induction)
}

func (h *CattleHandler) Inductions(c *gin.Context) {
	inductions, err := h.svc.Inductions(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "list inductions", err)
		return
	}
	c.JSON(http.StatusOK, inductions)
}

func (h *CattleHandler) HealthMetrics(c *gin.Context) {
	metrics, err := h.health.CattleHealthMetrics(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "load health metrics", err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}
