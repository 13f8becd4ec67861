package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusops/ccrm-api/internal/service"
	"github.com/campusops/ccrm-api/pkg/response"
)

// ReportHandler exposes report download endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Transcript godoc
// @Summary Download a student transcript
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /reports/transcript/{id} [get]
func (h *ReportHandler) Transcript(c *gin.Context) {
	report, err := h.reports.Transcript(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, report)
}

// Roster godoc
// @Summary Download a course roster
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param code path string true "Course code"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /reports/roster/{code} [get]
func (h *ReportHandler) Roster(c *gin.Context) {
	report, err := h.reports.Roster(c.Request.Context(), c.Param("code"), c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, report)
}

// Catalog godoc
// @Summary Download the course catalog
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /reports/catalog [get]
func (h *ReportHandler) Catalog(c *gin.Context) {
	report, err := h.reports.Catalog(c.Request.Context(), c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, report)
}

// GradeDistribution godoc
// @Summary Download the grade distribution report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /reports/grades [get]
func (h *ReportHandler) GradeDistribution(c *gin.Context) {
	report, err := h.reports.GradeDistribution(c.Request.Context(), c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, report)
}

// TopStudents godoc
// @Summary Download the top-students report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param n query int false "How many students"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /reports/top-students [get]
func (h *ReportHandler) TopStudents(c *gin.Context) {
	n, _ := strconv.Atoi(c.DefaultQuery("n", "5"))
	report, err := h.reports.TopStudents(c.Request.Context(), n, c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, report)
}

func serveReport(c *gin.Context, report *service.Report) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Data(200, report.ContentType, report.Data)
}
