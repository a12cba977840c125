package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"colisflow/internal/infrastructure/export"
	"colisflow/internal/infrastructure/http/v1/dto"
)

// ReportHandler serves the cash reconciliation report.
type ReportHandler struct {
	*BaseHandler
	service CashService
}

// NewReportHandler creates a new report handler.
func NewReportHandler(base *BaseHandler, service CashService) *ReportHandler {
	return &ReportHandler{BaseHandler: base, service: service}
}

// Cash handles GET /reports/cash
func (h *ReportHandler) Cash(c *gin.Context) {
	var q dto.ReportQuery
	if !h.BindQuery(c, &q) {
		return
	}
	req, err := q.ToRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.Report(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// Export handles GET /reports/cash/export and returns an .xlsx workbook.
func (h *ReportHandler) Export(c *gin.Context) {
	var q dto.ReportQuery
	if !h.BindQuery(c, &q) {
		return
	}
	req, err := q.ToRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	report, movements, err := h.service.ReportDetail(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}

	// Buffered so a write failure still yields a JSON error.
	var buf bytes.Buffer
	title := fmt.Sprintf("Rapport de caisse du %s au %s", report.From, report.To)
	if err := export.WriteCashReport(&buf, title, report, movements); err != nil {
		h.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(report)))
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}
