package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/ccrm-api/internal/models"
)

func TestEnrollmentPutGetDelete(t *testing.T) {
	repo := NewEnrollmentRepository()
	ctx := context.Background()

	e := models.NewEnrollment("s-001", "CSE101")
	repo.Put(ctx, e)

	assert.True(t, repo.Exists(ctx, "s-001", "CSE101"))
	got, err := repo.Get(ctx, "s-001", "CSE101")
	require.NoError(t, err)
	assert.Equal(t, "s-001", got.StudentID)

	assert.True(t, repo.Delete(ctx, "s-001", "CSE101"))
	assert.False(t, repo.Delete(ctx, "s-001", "CSE101"))
	assert.False(t, repo.Exists(ctx, "s-001", "CSE101"))
}

func TestEnrollmentSnapshotDetachesGradePointer(t *testing.T) {
	repo := NewEnrollmentRepository()
	ctx := context.Background()

	gradeA := models.GradeA
	e := models.NewEnrollment("s-001", "CSE101")
	e.Grade = &gradeA
	repo.Put(ctx, e)

	snapshot, err := repo.Get(ctx, "s-001", "CSE101")
	require.NoError(t, err)
	*snapshot.Grade = models.GradeF

	fresh, err := repo.Get(ctx, "s-001", "CSE101")
	require.NoError(t, err)
	assert.Equal(t, models.GradeA, *fresh.Grade)
}

func TestEnrollmentQueries(t *testing.T) {
	repo := NewEnrollmentRepository()
	ctx := context.Background()

	gradeB := models.GradeB
	records := []models.Enrollment{
		{StudentID: "s-001", CourseCode: "CSE101", Active: true, Grade: &gradeB},
		{StudentID: "s-001", CourseCode: "MAT102", Active: true},
		{StudentID: "s-002", CourseCode: "CSE101", Active: false},
	}
	for _, e := range records {
		repo.Put(ctx, e)
	}

	assert.Len(t, repo.ByStudent(ctx, "s-001"), 2)
	assert.Len(t, repo.ByCourse(ctx, "CSE101"), 2)
	assert.Len(t, repo.Active(ctx), 2)
	assert.Len(t, repo.ByGrade(ctx, models.GradeB), 1)
	assert.Equal(t, 3, repo.Count(ctx))
}

func TestCourseAddRemoveStudent(t *testing.T) {
	repo := NewCourseRepository()
	ctx := context.Background()

	course, err := models.NewCourse(models.CourseParams{Code: "CSE101", Title: "Programming"})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, course))

	require.NoError(t, repo.AddStudent(ctx, "CSE101", "s-001"))
	require.NoError(t, repo.AddStudent(ctx, "CSE101", "s-002"))

	loaded, err := repo.FindByCode(ctx, "CSE101")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.CurrentEnrollment())

	require.NoError(t, repo.RemoveStudent(ctx, "CSE101", "s-001"))
	loaded, _ = repo.FindByCode(ctx, "CSE101")
	assert.Equal(t, 1, loaded.CurrentEnrollment())

	assert.Error(t, repo.AddStudent(ctx, "NOPE999", "s-001"))
}
