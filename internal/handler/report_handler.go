package handler

import (
	"net/http"
	"time"

	"compras-backend/internal/middleware"
	"compras-backend/internal/model"
	"compras-backend/internal/service"
	"compras-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ReportHandler struct {
	reportService service.ReportService
	log           *logrus.Logger
}

func NewReportHandler(reportService service.ReportService, log *logrus.Logger) *ReportHandler {
	return &ReportHandler{reportService: reportService, log: log}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleBuyer)
	reportes := router.Group("/api/reportes")
	{
		reportes.GET("/dashboard", staff, h.Dashboard)
		reportes.GET("/ordenes/excel", staff, h.OrdersExcel)
	}
}

// parseRange reads desde/hasta query params (YYYY-MM-DD); defaults to the
// last 12 months.
func parseRange(c *gin.Context) (time.Time, time.Time) {
	to := time.Now()
	from := to.AddDate(-1, 0, 0)
	if raw := c.Query("desde"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			from = parsed
		}
	}
	if raw := c.Query("hasta"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			to = parsed.Add(24*time.Hour - time.Second)
		}
	}
	return from, to
}

// Dashboard returns aggregated order metrics
// @Summary      Purchase-order dashboard
// @Tags         reportes
// @Security     BearerAuth
// @Produce      json
// @Param        desde  query  string  false  "Start date (YYYY-MM-DD)"
// @Param        hasta  query  string  false  "End date (YYYY-MM-DD)"
// @Success      200  {object}  response.Response
// @Router       /api/reportes/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	from, to := parseRange(c)
	dashboard, err := h.reportService.GetDashboard(c.Request.Context(), from, to)
	if err != nil {
		h.log.WithError(err).Error("dashboard query failed")
		c.JSON(http.StatusInternalServerError, response.Err(service.CodeServerError))
		return
	}
	c.JSON(http.StatusOK, response.OK(dashboard))
}

// OrdersExcel exports orders in the range as an XLSX file
// @Summary      Orders XLSX export
// @Tags         reportes
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        desde  query  string  false  "Start date (YYYY-MM-DD)"
// @Param        hasta  query  string  false  "End date (YYYY-MM-DD)"
// @Success      200
// @Router       /api/reportes/ordenes/excel [get]
func (h *ReportHandler) OrdersExcel(c *gin.Context) {
	from, to := parseRange(c)
	data, err := h.reportService.ExportOrdersExcel(c.Request.Context(), from, to)
	if err != nil {
		h.log.WithError(err).Error("orders excel export failed")
		c.JSON(http.StatusInternalServerError, response.Err(service.CodeServerError))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="ordenes.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
