package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/ccrm-api/internal/models"
	"github.com/campusops/ccrm-api/internal/repository"
	appErrors "github.com/campusops/ccrm-api/pkg/errors"
)

func newCourseService() (*CourseService, *repository.CourseRepository) {
	repo := repository.NewCourseRepository()
	return NewCourseService(repo, nil, nil), repo
}

func TestCreateCourseAppliesDefaults(t *testing.T) {
	svc, _ := newCourseService()

	course, err := svc.Create(context.Background(), CreateCourseRequest{
		Code:  "CSE101",
		Title: "Programming Fundamentals",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCourseCredits, course.Credits)
	assert.Equal(t, models.DefaultCourseSemester, course.Semester)
	assert.Equal(t, models.DefaultCourseCapacity, course.MaxCapacity)
	assert.True(t, course.Active)
	assert.Equal(t, 0, course.CurrentEnrollment())
}

func TestCreateCourseRejectsBadCode(t *testing.T) {
	svc, _ := newCourseService()

	for _, code := range []string{"cse101", "CS101", "CSELO101", "CSE1", ""} {
		_, err := svc.Create(context.Background(), CreateCourseRequest{Code: code, Title: "X"})
		require.Error(t, err, "code %q should be rejected", code)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	}
}

func TestCreateCourseRejectsDuplicateCode(t *testing.T) {
	svc, _ := newCourseService()

	_, err := svc.Create(context.Background(), CreateCourseRequest{Code: "CSE101", Title: "A"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateCourseRequest{Code: "CSE101", Title: "B"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateKey))
}

func TestCreateCourseRejectsUnknownSemester(t *testing.T) {
	svc, _ := newCourseService()

	_, err := svc.Create(context.Background(), CreateCourseRequest{
		Code:     "CSE101",
		Title:    "A",
		Semester: "WINTER",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestUpdateCourseRejectsCapacityBelowEnrollment(t *testing.T) {
	svc, repo := newCourseService()

	_, err := svc.Create(context.Background(), CreateCourseRequest{Code: "CSE101", Title: "A", MaxCapacity: 10})
	require.NoError(t, err)
	require.NoError(t, repo.AddStudent(context.Background(), "CSE101", "s-0001"))
	require.NoError(t, repo.AddStudent(context.Background(), "CSE101", "s-0002"))

	_, err = svc.Update(context.Background(), "CSE101", UpdateCourseRequest{Title: "A", MaxCapacity: 1})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestListCoursesBySemesterAndDepartment(t *testing.T) {
	svc, _ := newCourseService()

	seed := []CreateCourseRequest{
		{Code: "CSE101", Title: "Programming", Semester: "FALL", Department: "CSE"},
		{Code: "CSE205", Title: "Data Structures", Semester: "SPRING", Department: "CSE"},
		{Code: "MAT102", Title: "Linear Algebra", Semester: "FALL", Department: "MAT"},
	}
	for _, req := range seed {
		_, err := svc.Create(context.Background(), req)
		require.NoError(t, err)
	}

	courses, _, err := svc.List(context.Background(), models.CourseFilter{Semester: models.SemesterFall})
	require.NoError(t, err)
	assert.Len(t, courses, 2)

	courses, _, err = svc.List(context.Background(), models.CourseFilter{Department: "MAT"})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "MAT102", courses[0].Code)

	courses, _, err = svc.List(context.Background(), models.CourseFilter{Semester: models.SemesterFall, Department: "CSE"})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "CSE101", courses[0].Code)
}

func TestCourseStats(t *testing.T) {
	svc, repo := newCourseService()

	_, err := svc.Create(context.Background(), CreateCourseRequest{Code: "CSE101", Title: "A", Credits: 4, Department: "CSE"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateCourseRequest{Code: "MAT102", Title: "B", Department: "MAT"})
	require.NoError(t, err)
	require.NoError(t, repo.AddStudent(context.Background(), "CSE101", "s-0001"))

	stats := svc.Stats(context.Background())
	assert.Equal(t, 2, stats.TotalCount)
	assert.Equal(t, 2, stats.ActiveCount)
	assert.Equal(t, 4+models.DefaultCourseCredits, stats.TotalCreditsOffered)
	assert.Equal(t, 1, stats.DepartmentDistribution["CSE"])
	assert.InDelta(t, 0.5, stats.AverageEnrollment, 0.001)
}
