package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	financeapp "github.com/smberp/backend/internal/application/finance"
)

// ReportHandler handles reporting rollup endpoints
type ReportHandler struct {
	BaseHandler
	reportService *financeapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *financeapp.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Receivables returns the outstanding receivables rollup
func (h *ReportHandler) Receivables(c *gin.Context) {
	summary, err := h.reportService.GetReceivablesSummary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Payables returns the outstanding payables rollup
func (h *ReportHandler) Payables(c *gin.Context) {
	summary, err := h.reportService.GetPayablesSummary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// PaymentsQuery holds the date range for the payments rollup
type PaymentsQuery struct {
	From time.Time `form:"from" time_format:"2006-01-02"`
	To   time.Time `form:"to" time_format:"2006-01-02"`
}

// Payments returns payment totals grouped by method for a date range.
// Defaults to the trailing 30 days when no range is given.
func (h *ReportHandler) Payments(c *gin.Context) {
	var query PaymentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	to := query.To
	if to.IsZero() {
		to = time.Now()
	}
	from := query.From
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	if from.After(to) {
		h.BadRequest(c, "from must not be after to")
		return
	}

	summary, err := h.reportService.GetPaymentsSummary(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
