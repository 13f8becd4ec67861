package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/ccrm-api/internal/models"
	"github.com/campusops/ccrm-api/internal/service"
	appErrors "github.com/campusops/ccrm-api/pkg/errors"
	"github.com/campusops/ccrm-api/pkg/response"
)

// EnrollRequest holds payload for the enroll operation.
type EnrollRequest struct {
	StudentID  string `json:"student_id" binding:"required"`
	CourseCode string `json:"course_code" binding:"required"`
}

// GradeRequest holds payload for recording a grade.
type GradeRequest struct {
	Grade string `json:"grade" binding:"required"`
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
	stats       *service.StatsService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService, stats *service.StatsService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, stats: stats}
}

// Enroll godoc
// @Summary Enroll student in course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), req.StudentID, req.CourseCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stats.Invalidate(c.Request.Context())
	response.Created(c, enrollment)
}

// Unenroll godoc
// @Summary Remove student from course
// @Tags Enrollments
// @Produce json
// @Param studentId path string true "Student ID"
// @Param courseCode path string true "Course code"
// @Success 204
// @Router /enrollments/{studentId}/{courseCode} [delete]
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	removed, err := h.enrollments.Unenroll(c.Request.Context(), c.Param("studentId"), c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !removed {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found"))
		return
	}
	h.stats.Invalidate(c.Request.Context())
	response.NoContent(c)
}

// Get godoc
// @Summary Get enrollment record
// @Tags Enrollments
// @Produce json
// @Param studentId path string true "Student ID"
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{studentId}/{courseCode} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollment, err := h.enrollments.Get(c.Request.Context(), c.Param("studentId"), c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// List godoc
// @Summary List enrollment records
// @Tags Enrollments
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param courseCode query string false "Filter by course"
// @Param grade query string false "Filter by grade (S/A/B/C/D/E/F)"
// @Param active query bool false "Only active enrollments"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	var enrollments []models.Enrollment
	switch {
	case c.Query("studentId") != "":
		enrollments = h.enrollments.ByStudent(ctx, c.Query("studentId"))
	case c.Query("courseCode") != "":
		enrollments = h.enrollments.ByCourse(ctx, c.Query("courseCode"))
	case c.Query("grade") != "":
		grade, err := models.ParseGrade(c.Query("grade"))
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown grade value"))
			return
		}
		enrollments = h.enrollments.ListByGrade(ctx, grade)
	case c.Query("active") == "true":
		enrollments = h.enrollments.ListActive(ctx)
	default:
		enrollments = h.enrollments.List(ctx)
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// RecordGrade godoc
// @Summary Record grade for enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param courseCode path string true "Course code"
// @Param payload body GradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{studentId}/{courseCode}/grade [put]
func (h *EnrollmentHandler) RecordGrade(c *gin.Context) {
	var req GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := models.ParseGrade(req.Grade)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown grade value"))
		return
	}
	enrollment, err := h.enrollments.RecordGrade(c.Request.Context(), c.Param("studentId"), c.Param("courseCode"), grade)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stats.Invalidate(c.Request.Context())
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// WithdrawStudent godoc
// @Summary Withdraw student from all active courses
// @Tags Enrollments
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/students/{studentId}/withdraw [post]
func (h *EnrollmentHandler) WithdrawStudent(c *gin.Context) {
	withdrawn, err := h.enrollments.WithdrawStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stats.Invalidate(c.Request.Context())
	response.JSON(c, http.StatusOK, gin.H{"withdrawn": withdrawn}, nil)
}

// CancelCourse godoc
// @Summary Withdraw all students from a course
// @Tags Enrollments
// @Produce json
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /enrollments/courses/{courseCode}/cancel [post]
func (h *EnrollmentHandler) CancelCourse(c *gin.Context) {
	withdrawn, err := h.enrollments.CancelCourse(c.Request.Context(), c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stats.Invalidate(c.Request.Context())
	response.JSON(c, http.StatusOK, gin.H{"withdrawn": withdrawn}, nil)
}
