package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/report"
)

// ReportHandler exposes the salon reports. Every call is recomputed from
// the current rows of the caller's salon.
type ReportHandler struct {
	reports *report.Reports
}

func NewReportHandler(reports *report.Reports) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	out, err := h.reports.Dashboard(c.Request.Context(), salonIDFrom(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, out)
}

func (h *ReportHandler) StatusBreakdown(c *gin.Context) {
	out, err := h.reports.StatusBreakdown(c.Request.Context(), salonIDFrom(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}

func (h *ReportHandler) PopularServices(c *gin.Context) {
	out, err := h.reports.PopularServices(c.Request.Context(), salonIDFrom(c), queryInt(c, "limit", 0))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}

func (h *ReportHandler) DailyRevenue(c *gin.Context) {
	out, err := h.reports.DailyRevenue(c.Request.Context(), salonIDFrom(c), queryInt(c, "days", 0))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}

func (h *ReportHandler) MonthlyRevenue(c *gin.Context) {
	out, err := h.reports.MonthlyRevenue(c.Request.Context(), salonIDFrom(c), queryInt(c, "months", 0))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}

func (h *ReportHandler) NewClients(c *gin.Context) {
	out, err := h.reports.NewClients(c.Request.Context(), salonIDFrom(c), queryInt(c, "days", 0))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}

func (h *ReportHandler) Performance(c *gin.Context) {
	out, err := h.reports.Performance(c.Request.Context(), salonIDFrom(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}
