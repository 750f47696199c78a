package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/service/reports"
)

// ReportHandler serves report downloads and Sheets publishing.
type ReportHandler struct {
	svc    *reports.Service
	logger *zap.Logger
}

func NewReportHandler(svc *reports.Service, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, logger: logger}
}

// Download renders /api/reports/:type?format=csv|json|pdf as an attachment. Format defaults to csv.
func (h *ReportHandler) Download(c *gin.Context) {
	reportType, ok := models.ParseReportType(c.Param("type"))
	if !ok {
		respondError(c, h.logger, "generate report", models.Invalid("type", "must be cattle, sales, health or feed"))
		return
	}
	format, ok := models.ParseReportFormat(c.DefaultQuery("format", string(models.FormatCSV)))
	if !ok {
		respondError(c, h.logger, "generate report", models.Invalid("format", "must be csv, json or pdf"))
		return
	}

	doc, err := h.svc.Generate(c.Request.Context(), callerFrom(c), reportType, format)
	if err != nil {
		respondError(c, h.logger, "generate report", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

func (h *ReportHandler) Publish(c *gin.Context) {
	reportType, ok := models.ParseReportType(c.Param("type"))
	if !ok {
		respondError(c, h.logger, "publish report", models.Invalid("type", "must be cattle, sales, health or feed"))
		return
	}

	table, err := h.svc.Publish(c.Request.Context(), callerFrom(c), reportType)
	if err != nil {
		respondError(c, h.logger, "publish report", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sheet": table.Title, "rows": len(table.Rows)})
}
