package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/internal/service"
	"github.com/noah-isme/okr-performance-api/pkg/response"
)

type departmentReportService interface {
	Regenerate(ctx context.Context, month time.Time) (*models.MonthlyReport, error)
	MonthReport(ctx context.Context, month time.Time) (*models.MonthlyReport, error)
	DepartmentSummary(ctx context.Context, dept models.Department, month time.Time) (*models.DepartmentSummary, error)
	Export(ctx context.Context, month time.Time, format models.ReportFormat) (*service.ExportFile, error)
}

// DepartmentReportHandler exposes monthly department rollups.
type DepartmentReportHandler struct {
	reports departmentReportService
}

// NewDepartmentReportHandler constructs handler.
func NewDepartmentReportHandler(reports departmentReportService) *DepartmentReportHandler {
	return &DepartmentReportHandler{reports: reports}
}

// Regenerate godoc
// @Summary Rebuild the department rollup of a month
// @Tags Reports
// @Produce json
// @Param month path string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /reports/{month}/departments/regenerate [post]
func (h *DepartmentReportHandler) Regenerate(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	report, err := h.reports.Regenerate(c.Request.Context(), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// List godoc
// @Summary Department rollup of a month
// @Tags Reports
// @Produce json
// @Param month path string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{month}/departments [get]
func (h *DepartmentReportHandler) List(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	report, err := h.reports.MonthReport(c.Request.Context(), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Department godoc
// @Summary One department's rollup and top performer
// @Tags Reports
// @Produce json
// @Param month path string true "Month (YYYY-MM)"
// @Param department path string true "Department" Enums(hardware, software, marketing)
// @Success 200 {object} response.Envelope
// @Router /reports/{month}/departments/{department} [get]
func (h *DepartmentReportHandler) Department(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	dept := models.Department(strings.ToLower(c.Param("department")))
	summary, err := h.reports.DepartmentSummary(c.Request.Context(), dept, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Export godoc
// @Summary Download the department rollup
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param month path string true "Month (YYYY-MM)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /reports/{month}/export [get]
func (h *DepartmentReportHandler) Export(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	format := models.ReportFormat(strings.ToLower(c.DefaultQuery("format", string(models.ReportFormatCSV))))
	file, err := h.reports.Export(c.Request.Context(), month, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
