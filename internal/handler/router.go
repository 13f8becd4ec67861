package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/ccrm-api/internal/middleware"
	"github.com/campusops/ccrm-api/internal/models"
	"github.com/campusops/ccrm-api/internal/service"
)

// Handlers bundles every route handler for registration.
type Handlers struct {
	Students    *StudentHandler
	Courses     *CourseHandler
	Enrollments *EnrollmentHandler
	Data        *DataHandler
	Backups     *BackupHandler
	Reports     *ReportHandler
	Stats       *StatsHandler
	Auth        *AuthHandler
}

// RouterOptions tunes route registration.
type RouterOptions struct {
	APIPrefix   string
	AuthEnabled bool
	AuthService *service.AuthService
}

// RegisterRoutes mounts all endpoints on the engine. When auth is enabled,
// mutating routes require a valid token and admin-only routes an ADMIN role.
func RegisterRoutes(r *gin.Engine, h Handlers, opts RouterOptions) {
	prefix := opts.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group(prefix)

	protected := api.Group("")
	admin := api.Group("")
	if opts.AuthEnabled && opts.AuthService != nil {
		jwt := middleware.JWT(opts.AuthService)
		protected.Use(jwt)
		admin.Use(jwt, middleware.RequireRole(models.RoleAdmin))

		auth := api.Group("/auth")
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", jwt, h.Auth.Logout)
		auth.PUT("/password", jwt, h.Auth.ChangePassword)
		auth.GET("/me", jwt, h.Auth.Me)
	}

	api.GET("/students", h.Students.List)
	api.GET("/students/:id", h.Students.Get)
	api.GET("/students/:id/gpa", h.Students.GPA)
	api.GET("/students/reg/:regNo", h.Students.GetByRegNo)
	protected.POST("/students", h.Students.Create)
	protected.PUT("/students/:id", h.Students.Update)
	protected.DELETE("/students/:id", h.Students.Deactivate)
	protected.POST("/students/:id/activate", h.Students.Activate)

	api.GET("/courses", h.Courses.List)
	api.GET("/courses/:code", h.Courses.Get)
	protected.POST("/courses", h.Courses.Create)
	protected.PUT("/courses/:code", h.Courses.Update)
	protected.DELETE("/courses/:code", h.Courses.Deactivate)
	protected.POST("/courses/:code/activate", h.Courses.Activate)

	api.GET("/enrollments", h.Enrollments.List)
	api.GET("/enrollments/:studentId/:courseCode", h.Enrollments.Get)
	protected.POST("/enrollments", h.Enrollments.Enroll)
	protected.DELETE("/enrollments/:studentId/:courseCode", h.Enrollments.Unenroll)
	protected.PUT("/enrollments/:studentId/:courseCode/grade", h.Enrollments.RecordGrade)
	protected.POST("/enrollments/students/:studentId/withdraw", h.Enrollments.WithdrawStudent)
	protected.POST("/enrollments/courses/:courseCode/cancel", h.Enrollments.CancelCourse)

	admin.POST("/data/save", h.Data.Save)
	admin.POST("/data/load", h.Data.Load)
	admin.GET("/data/files", h.Data.Files)

	admin.POST("/backups", h.Backups.Create)
	admin.GET("/backups", h.Backups.List)
	admin.GET("/backups/:name", h.Backups.Get)
	admin.POST("/backups/prune", h.Backups.Prune)

	api.GET("/reports/transcript/:id", h.Reports.Transcript)
	api.GET("/reports/roster/:code", h.Reports.Roster)
	api.GET("/reports/catalog", h.Reports.Catalog)
	api.GET("/reports/grades", h.Reports.GradeDistribution)
	api.GET("/reports/top-students", h.Reports.TopStudents)

	api.GET("/stats", h.Stats.Overview)
	api.GET("/stats/system", h.Stats.System)
}
