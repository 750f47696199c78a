package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/domain/models"
	feedsvc "github.com/mamadbah2/feedlot/internal/service/feed"
)

// FeedHandler serves suppliers, raw materials, stock movements and rations.
type FeedHandler struct {
	svc    *feedsvc.Service
	logger *zap.Logger
}

func NewFeedHandler(svc *feedsvc.Service, logger *zap.Logger) *FeedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedHandler{svc: svc, logger: logger}
}

type stockAdjustmentRequest struct {
	Quantity  decimal.Decimal       `json:"quantity"`
	Operation models.StockOperation `json:"operation"`
}

func (h *FeedHandler) CreateSupplier(c *gin.Context) {
	var req feedsvc.SupplierInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "create supplier", invalidBody(err))
		return
	}

	supplier, err := h.svc.CreateSupplier(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		respondError(c, h.logger, "create supplier", err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func (h *FeedHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.svc.ListSuppliers(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, h.logger, "list suppliers", err)
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

func (h *FeedHandler) CreateRawMaterial(c *gin.Context) {
	var req feedsvc.RawMaterialInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "create raw material", invalidBody(err))
		return
	}

	material, err := h.svc.CreateRawMaterial(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		respondError(c, h.logger, "create raw material", err)
		return
	}
	c.JSON(http.StatusCreated, material)
}

func (h *FeedHandler) GetRawMaterial(c *gin.Context) {
	material, err := h.svc.GetRawMaterial(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "load raw material", err)
		return
	}
	c.JSON(http.StatusOK, material)
}

func (h *FeedHandler) ListRawMaterials(c *gin.Context) {
	lowStock, err := boolQuery("lowStock", c.Query("lowStock"))
	if err != nil {
		respondError(c, h.logger, "list raw materials", err)
		return
	}
	filter := models.RawMaterialFilter{LowStock: lowStock != nil && *lowStock}
	if raw := c.Query("category"); raw != "" {
		category, ok := models.ParseMaterialCategory(raw)
		if !ok {
			respondError(c, h.logger, "list raw materials", models.Invalid("category", "unknown category"))
			return
		}
		filter.Category = category
	}

	materials, err := h.svc.ListRawMaterials(c.Request.Context(), callerFrom(c), filter)
	if err != nil {
		respondError(c, h.logger, "list raw materials", err)
		return
	}
	c.JSON(http.StatusOK, materials)
}

func (h *FeedHandler) LowStock(c *gin.Context) {
	materials, err := h.svc.LowStock(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, h.logger, "list low stock", err)
		return
	}
	c.JSON(http.StatusOK, materials)
}

func (h *FeedHandler) AdjustStock(c *gin.Context) {
	var req stockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "adjust stock", invalidBody(err))
		return
	}

	material, err := h.svc.AdjustStock(c.Request.Context(), callerFrom(c), c.Param("id"), req.Quantity, req.Operation)
	if err != nil {
		respondError(c, h.logger, "adjust stock", err)
		return
	}
	c.JSON(http.StatusOK, material)
}

func (h *FeedHandler) RecordPurchase(c *gin.Context) {
	var req feedsvc.PurchaseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "record feed purchase", invalidBody(err))
		return
	}
	req.RawMaterialID = c.Param("id")

	purchase, err := h.svc.RecordPurchase(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		respondError(c, h.logger, "record feed purchase", err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func (h *FeedHandler) ListPurchases(c *gin.Context) {
	purchases, err := h.svc.ListPurchases(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "list feed purchases", err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}

func (h *FeedHandler) RecordUsage(c *gin.Context) {
	var req feedsvc.UsageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "record feed usage", invalidBody(err))
		return
	}

	usage, err := h.svc.RecordUsage(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		respondError(c, h.logger, "record feed usage", err)
		return
	}
	c.JSON(http.StatusCreated, usage)
}

func (h *FeedHandler) ListUsage(c *gin.Context) {
	from, to, err := dateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, h.logger, "list feed usage", err)
		return
	}

	usage, err := h.svc.ListUsage(c.Request.Context(), callerFrom(c), models.UsageFilter{
		RawMaterialID: c.Query("rawMaterialId"),
		CattleGroupID: c.Query("cattleGroupId"),
		From:          from,
		To:            to,
	})
	if err != nil {
		respondError(c, h.logger, "list feed usage", err)
		return
	}
	c.JSON(http.StatusOK, usage)
}

func (h *FeedHandler) CreateRation(c *gin.Context) {
	var req feedsvc.RationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "create ration", invalidBody(err))
		return
	}

	ration, err := h.svc.CreateRation(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		respondError(c, h.logger, "create ration", err)
		return
	}
	c.JSON(http.StatusCreated, ration)
}

func (h *FeedHandler) GetRation(c *gin.Context) {
	ration, err := h.svc.GetRation(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "load ration", err)
		return
	}
	c.JSON(http.StatusOK, ration)
}

func (h *FeedHandler) ListRations(c *gin.Context) {
	active, err := boolQuery("active", c.Query("active"))
	if err != nil {
		respondError(c, h.logger, "list rations", err)
		return
	}

	rations, err := h.svc.ListRations(c.Request.Context(), callerFrom(c), models.RationFilter{
		IsActive:    active,
		TargetGroup: c.Query("targetGroup"),
	})
	if err != nil {
		respondError(c, h.logger, "list rations", err)
		return
	}
	c.JSON(http.StatusOK, rations)
}
