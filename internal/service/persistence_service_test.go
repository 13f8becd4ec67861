package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/ccrm-api/internal/codec"
	"github.com/campusops/ccrm-api/internal/models"
)

type persistenceFixture struct {
	*enrollmentFixture
	svc *PersistenceService
}

func newPersistenceFixture(t *testing.T) *persistenceFixture {
	t.Helper()
	ef := newEnrollmentFixture(t)
	c := codec.NewCSVCodec(t.TempDir(), nil)
	return &persistenceFixture{
		enrollmentFixture: ef,
		svc:               NewPersistenceService(c, ef.students, ef.courses, ef.enrollments, ef.svc, nil),
	}
}

func TestSaveThenLoadRestoresStore(t *testing.T) {
	f := newPersistenceFixture(t)
	f.addStudent(t, "s-0001", 24)
	f.addStudent(t, "s-0002", 24)
	f.addCourse(t, "CSE101", 4, 50)
	f.addCourse(t, "MAT201", 3, 50)

	ctx := context.Background()
	_, err := f.enrollmentFixture.svc.Enroll(ctx, "s-0001", "CSE101")
	require.NoError(t, err)
	_, err = f.enrollmentFixture.svc.Enroll(ctx, "s-0001", "MAT201")
	require.NoError(t, err)
	_, err = f.enrollmentFixture.svc.Enroll(ctx, "s-0002", "CSE101")
	require.NoError(t, err)
	_, err = f.enrollmentFixture.svc.RecordGrade(ctx, "s-0001", "CSE101", models.GradeA)
	require.NoError(t, err)

	saved, err := f.svc.SaveAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Students)
	assert.Equal(t, 2, saved.Courses)
	assert.Equal(t, 3, saved.Enrollments)

	// wipe the in-memory store, then load it back from disk
	f.students.DeleteAll(ctx)
	f.courses.DeleteAll(ctx)
	f.enrollments.DeleteAll(ctx)

	loaded, err := f.svc.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Students)
	assert.Equal(t, 2, loaded.Courses)
	assert.Equal(t, 3, loaded.Enrollments)
	assert.Zero(t, loaded.Skipped)

	student, err := f.students.FindByID(ctx, "s-0001")
	require.NoError(t, err)
	assert.True(t, student.IsEnrolledIn("CSE101"))
	assert.True(t, student.IsEnrolledIn("MAT201"))
	assert.Equal(t, models.GradeA, student.Grades["CSE101"])

	course, err := f.courses.FindByCode(ctx, "CSE101")
	require.NoError(t, err)
	assert.Equal(t, 2, course.CurrentEnrollment())

	enrollment, err := f.enrollments.Get(ctx, "s-0001", "CSE101")
	require.NoError(t, err)
	require.NotNil(t, enrollment.Grade)
	assert.Equal(t, models.GradeA, *enrollment.Grade)
}

func TestLoadSkipsOrphanEnrollments(t *testing.T) {
	f := newPersistenceFixture(t)
	f.addStudent(t, "s-0001", 24)
	f.addCourse(t, "CSE101", 4, 50)

	ctx := context.Background()
	_, err := f.enrollmentFixture.svc.Enroll(ctx, "s-0001", "CSE101")
	require.NoError(t, err)

	_, err = f.svc.SaveAll(ctx)
	require.NoError(t, err)

	// remove the course so the saved enrollment loses an endpoint
	f.courses.DeleteAll(ctx)
	_, err = f.svc.SaveAll(ctx)
	require.NoError(t, err)

	loaded, err := f.svc.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Students)
	assert.Zero(t, loaded.Courses)
	assert.Zero(t, loaded.Enrollments)
	assert.Equal(t, 1, loaded.Skipped)
}

func TestDataFilesListsWrittenCSVs(t *testing.T) {
	f := newPersistenceFixture(t)
	f.addStudent(t, "s-0001", 24)

	ctx := context.Background()
	_, err := f.svc.SaveAll(ctx)
	require.NoError(t, err)

	files, err := f.svc.DataFiles(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Name)
	}
	assert.Contains(t, names, "students.csv")
	assert.Contains(t, names, "courses.csv")
	assert.Contains(t, names, "enrollments.csv")
}
