package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/ccrm-api/internal/models"
)

func testStudent(id, regNo, first string) models.Student {
	return models.Student{
		Person: models.Person{
			ID:          id,
			FirstName:   first,
			LastName:    "Tester",
			Email:       first + "@campus.example",
			DateOfBirth: time.Date(2004, 1, 1, 0, 0, 0, 0, time.UTC),
			Active:      true,
		},
		RegNo:           regNo,
		EnrolledCourses: models.NewStringSet(),
		Grades:          make(map[string]models.Grade),
		EnrollmentDate:  time.Now().UTC(),
		MaxCredits:      24,
	}
}

func TestStudentSaveRejectsDuplicateID(t *testing.T) {
	repo := NewStudentRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testStudent("s-001", "24BCE10001", "Aarav")))
	err := repo.Save(ctx, testStudent("s-001", "24BCE10099", "Other"))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestStudentSnapshotsDoNotAliasStore(t *testing.T) {
	repo := NewStudentRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testStudent("s-001", "24BCE10001", "Aarav")))

	snapshot, err := repo.FindByID(ctx, "s-001")
	require.NoError(t, err)
	snapshot.EnrolledCourses.Add("CSE101")
	snapshot.Grades["CSE101"] = models.GradeA
	snapshot.FirstName = "Mutated"

	fresh, err := repo.FindByID(ctx, "s-001")
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.EnrolledCourses.Len())
	assert.Empty(t, fresh.Grades)
	assert.Equal(t, "Aarav", fresh.FirstName)
}

func TestStudentSearchMatchesNameRegNoAndEmail(t *testing.T) {
	repo := NewStudentRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testStudent("s-001", "24BCE10001", "Aarav")))
	require.NoError(t, repo.Save(ctx, testStudent("s-002", "24BEC20002", "Diya")))

	assert.Len(t, repo.Search(ctx, "aarav"), 1)
	assert.Len(t, repo.Search(ctx, "24BEC"), 1)
	assert.Len(t, repo.Search(ctx, "campus.example"), 2)
	assert.Len(t, repo.Search(ctx, ""), 2)
	assert.Empty(t, repo.Search(ctx, "zzz"))
}

func TestRemoveCourseDropsGrade(t *testing.T) {
	repo := NewStudentRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testStudent("s-001", "24BCE10001", "Aarav")))
	require.NoError(t, repo.AddCourse(ctx, "s-001", "CSE101"))
	require.NoError(t, repo.SetGrade(ctx, "s-001", "CSE101", models.GradeA))

	require.NoError(t, repo.RemoveCourse(ctx, "s-001", "CSE101"))

	student, err := repo.FindByID(ctx, "s-001")
	require.NoError(t, err)
	assert.False(t, student.IsEnrolledIn("CSE101"))
	assert.NotContains(t, student.Grades, "CSE101")
}

func TestFindAllSortedByID(t *testing.T) {
	repo := NewStudentRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testStudent("s-003", "24BCE10003", "C")))
	require.NoError(t, repo.Save(ctx, testStudent("s-001", "24BCE10001", "A")))
	require.NoError(t, repo.Save(ctx, testStudent("s-002", "24BCE10002", "B")))

	all := repo.FindAll(ctx)
	require.Len(t, all, 3)
	assert.Equal(t, "s-001", all[0].ID)
	assert.Equal(t, "s-002", all[1].ID)
	assert.Equal(t, "s-003", all[2].ID)
}
