package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/domain/models"
	salessvc "github.com/mamadbah2/feedlot/internal/service/sales"
)

// SalesHandler serves sales and their summaries.
type SalesHandler struct {
	svc    *salessvc.Service
	logger *zap.Logger
}

func NewSalesHandler(svc *salessvc.Service, logger *zap.Logger) *SalesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesHandler{svc: svc, logger: logger}
}

func (h *SalesHandler) Create(c *gin.Context) {
	var req salessvc.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "record sale", invalidBody(err))
		return
	}

	sale, err := h.svc.Create(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		respondError(c, h.logger, "record sale", err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (h *SalesHandler) Get(c *gin.Context) {
	sale, err := h.svc.Get(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "load sale", err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *SalesHandler) List(c *gin.Context) {
	from, to, err := dateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, h.logger, "list sales", err)
		return
	}

	sales, err := h.svc.List(c.Request.Context(), callerFrom(c), models.SaleFilter{
		CattleID:  c.Query("cattleId"),
		BuyerName: c.Query("buyer"),
		From:      from,
		To:        to,
	})
	if err != nil {
		respondError(c, h.logger, "list sales", err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func (h *SalesHandler) Summary(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, h.logger, "load sales summary", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *SalesHandler) Profit(c *gin.Context) {
	profit, err := h.svc.Profit(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "calculate sale profit", err)
		return
	}
	c.JSON(http.StatusOK, profit)
}
