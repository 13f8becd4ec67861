package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradePoints(t *testing.T) {
	expected := map[Grade]float64{
		GradeS: 10, GradeA: 9, GradeB: 8, GradeC: 7, GradeD: 6, GradeE: 5, GradeF: 0,
	}
	for grade, points := range expected {
		assert.Equal(t, points, grade.Points(), "grade %s", grade)
	}
}

func TestOnlyFFails(t *testing.T) {
	for _, grade := range AllGrades {
		if grade == GradeF {
			assert.False(t, grade.IsPassing())
		} else {
			assert.True(t, grade.IsPassing(), "grade %s", grade)
		}
	}
}

func TestParseGrade(t *testing.T) {
	grade, err := ParseGrade("A")
	require.NoError(t, err)
	assert.Equal(t, GradeA, grade)

	grade, err = ParseGrade("s")
	require.NoError(t, err)
	assert.Equal(t, GradeS, grade)

	_, err = ParseGrade("Z")
	assert.Error(t, err)

	_, err = ParseGrade("")
	assert.Error(t, err)
}

func TestGradeFromPercentage(t *testing.T) {
	cases := []struct {
		percentage float64
		expected   Grade
	}{
		{95, GradeS},
		{90, GradeS},
		{85, GradeA},
		{72, GradeB},
		{65, GradeC},
		{55, GradeD},
		{45, GradeE},
		{39.9, GradeF},
		{0, GradeF},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, GradeFromPercentage(tc.percentage), "%.1f%%", tc.percentage)
	}
}

func TestStudentGPAIsMeanOfGradedCourses(t *testing.T) {
	student := Student{
		Grades: map[string]Grade{
			"CSE101": GradeA,
			"MAT102": GradeB,
		},
	}
	assert.InDelta(t, 8.5, student.GPA(), 0.001)

	assert.Zero(t, Student{}.GPA())
}

func TestEnrollmentWithdrawKeepsRecord(t *testing.T) {
	e := NewEnrollment("s-001", "CSE101")
	require.True(t, e.Active)

	e.Withdraw()
	assert.False(t, e.Active)
	assert.Contains(t, e.Notes, "Withdrawn on")
}

func TestEnrollmentKeyFormat(t *testing.T) {
	assert.Equal(t, "s-001-CSE101", EnrollmentKey("s-001", "CSE101"))
}

func TestCourseDefaultsAndCapacity(t *testing.T) {
	course, err := NewCourse(CourseParams{Code: "CSE101", Title: "Programming"})
	require.NoError(t, err)
	assert.Equal(t, DefaultCourseCredits, course.Credits)
	assert.Equal(t, DefaultCourseSemester, course.Semester)
	assert.Equal(t, DefaultCourseCapacity, course.MaxCapacity)

	course.EnrolledStudents.Add("s-001")
	assert.Equal(t, DefaultCourseCapacity-1, course.AvailableSeats())
	assert.False(t, course.IsFull())
}

func TestCloneDetachesCollections(t *testing.T) {
	student := Student{
		EnrolledCourses: NewStringSet("CSE101"),
		Grades:          map[string]Grade{"CSE101": GradeA},
	}
	clone := student.Clone()
	clone.EnrolledCourses.Add("MAT102")
	clone.Grades["MAT102"] = GradeB

	assert.Equal(t, 1, student.EnrolledCourses.Len())
	assert.Len(t, student.Grades, 1)
}
