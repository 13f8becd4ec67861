package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/ccrm-api/internal/models"
	"github.com/campusops/ccrm-api/internal/repository"
	"github.com/campusops/ccrm-api/internal/service"
	"github.com/campusops/ccrm-api/pkg/response"
)

type enrollmentRouterFixture struct {
	router      *gin.Engine
	students    *repository.StudentRepository
	courses     *repository.CourseRepository
	enrollments *service.EnrollmentService
}

func newEnrollmentRouter(t *testing.T) *enrollmentRouterFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	students := repository.NewStudentRepository()
	courses := repository.NewCourseRepository()
	enrollmentRepo := repository.NewEnrollmentRepository()

	studentSvc := service.NewStudentService(students, nil, nil)
	courseSvc := service.NewCourseService(courses, nil, nil)
	enrollmentSvc := service.NewEnrollmentService(students, courses, enrollmentRepo, nil)
	cacheSvc := service.NewCacheService(nil, nil, 0, nil, false)
	statsSvc := service.NewStatsService(studentSvc, courseSvc, enrollmentSvc, cacheSvc, nil)

	handler := NewEnrollmentHandler(enrollmentSvc, statsSvc)
	router := gin.New()
	router.GET("/enrollments", handler.List)
	router.POST("/enrollments", handler.Enroll)
	router.DELETE("/enrollments/:studentId/:courseCode", handler.Unenroll)
	router.PUT("/enrollments/:studentId/:courseCode/grade", handler.RecordGrade)

	return &enrollmentRouterFixture{
		router:      router,
		students:    students,
		courses:     courses,
		enrollments: enrollmentSvc,
	}
}

func (f *enrollmentRouterFixture) seedStudent(t *testing.T, id string) {
	t.Helper()
	err := f.students.Save(context.Background(), models.Student{
		Person: models.Person{
			ID:          id,
			FirstName:   "Test",
			LastName:    "Student",
			Email:       id + "@campus.example",
			DateOfBirth: time.Date(2004, 6, 1, 0, 0, 0, 0, time.UTC),
			Active:      true,
		},
		RegNo:           "24BCE1" + id[len(id)-4:],
		EnrolledCourses: models.NewStringSet(),
		Grades:          make(map[string]models.Grade),
		EnrollmentDate:  time.Now().UTC(),
		MaxCredits:      models.DefaultMaxCredits,
	})
	require.NoError(t, err)
}

func (f *enrollmentRouterFixture) seedCourse(t *testing.T, code string) {
	t.Helper()
	course, err := models.NewCourse(models.CourseParams{Code: code, Title: "Course " + code})
	require.NoError(t, err)
	require.NoError(t, f.courses.Save(context.Background(), course))
}

func listEnrollments(t *testing.T, f *enrollmentRouterFixture, query string) []models.Enrollment {
	t.Helper()
	w := doJSON(t, f.router, http.MethodGet, "/enrollments"+query, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var enrollments []models.Enrollment
	require.NoError(t, json.Unmarshal(raw, &enrollments))
	return enrollments
}

func TestEnrollmentListForStudentAndCourse(t *testing.T) {
	f := newEnrollmentRouter(t)
	f.seedStudent(t, "s-0001")
	f.seedStudent(t, "s-0002")
	f.seedCourse(t, "CSE101")
	f.seedCourse(t, "MAT201")

	for _, pair := range [][2]string{
		{"s-0001", "CSE101"},
		{"s-0001", "MAT201"},
		{"s-0002", "CSE101"},
	} {
		w := doJSON(t, f.router, http.MethodPost, "/enrollments", map[string]string{
			"student_id":  pair[0],
			"course_code": pair[1],
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	assert.Len(t, listEnrollments(t, f, ""), 3)
	assert.Len(t, listEnrollments(t, f, "?studentId=s-0001"), 2)
	assert.Len(t, listEnrollments(t, f, "?courseCode=CSE101"), 2)
}

func TestEnrollmentListFiltersByGrade(t *testing.T) {
	f := newEnrollmentRouter(t)
	f.seedStudent(t, "s-0001")
	f.seedStudent(t, "s-0002")
	f.seedCourse(t, "CSE101")

	for _, id := range []string{"s-0001", "s-0002"} {
		w := doJSON(t, f.router, http.MethodPost, "/enrollments", map[string]string{
			"student_id":  id,
			"course_code": "CSE101",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := doJSON(t, f.router, http.MethodPut, "/enrollments/s-0001/CSE101/grade", map[string]string{"grade": "A"})
	require.Equal(t, http.StatusOK, w.Code)

	graded := listEnrollments(t, f, "?grade=A")
	require.Len(t, graded, 1)
	assert.Equal(t, "s-0001", graded[0].StudentID)

	assert.Empty(t, listEnrollments(t, f, "?grade=F"))

	w = doJSON(t, f.router, http.MethodGet, "/enrollments?grade=X", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentListFiltersActive(t *testing.T) {
	f := newEnrollmentRouter(t)
	f.seedStudent(t, "s-0001")
	f.seedStudent(t, "s-0002")
	f.seedCourse(t, "CSE101")

	for _, id := range []string{"s-0001", "s-0002"} {
		w := doJSON(t, f.router, http.MethodPost, "/enrollments", map[string]string{
			"student_id":  id,
			"course_code": "CSE101",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}
	_, err := f.enrollments.WithdrawStudent(context.Background(), "s-0002")
	require.NoError(t, err)

	active := listEnrollments(t, f, "?active=true")
	require.Len(t, active, 1)
	assert.Equal(t, "s-0001", active[0].StudentID)

	// withdrawn records stay listed without the filter
	assert.Len(t, listEnrollments(t, f, ""), 2)
}

func TestEnrollmentUnenrollUnknownPair(t *testing.T) {
	f := newEnrollmentRouter(t)

	w := doJSON(t, f.router, http.MethodDelete, "/enrollments/s-0001/CSE101", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
