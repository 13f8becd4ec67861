package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/ccrm-api/internal/models"
)

type archiveSpy struct {
	saved []string
}

func (a *archiveSpy) Save(filename string, data []byte) (string, error) {
	a.saved = append(a.saved, filename)
	return filename, nil
}

type reportFixture struct {
	*enrollmentFixture
	archive *archiveSpy
	svc     *ReportService
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	ef := newEnrollmentFixture(t)
	archive := &archiveSpy{}
	return &reportFixture{
		enrollmentFixture: ef,
		archive:           archive,
		svc:               NewReportService(ef.students, ef.courses, ef.enrollments, archive, nil),
	}
}

func TestTranscriptRendersGradesAndGPA(t *testing.T) {
	f := newReportFixture(t)
	f.addStudent(t, "s-0001", 24)
	f.addCourse(t, "CSE101", 4, 50)
	f.addCourse(t, "MAT201", 3, 50)

	ctx := context.Background()
	_, err := f.enrollmentFixture.svc.Enroll(ctx, "s-0001", "CSE101")
	require.NoError(t, err)
	_, err = f.enrollmentFixture.svc.Enroll(ctx, "s-0001", "MAT201")
	require.NoError(t, err)
	_, err = f.enrollmentFixture.svc.RecordGrade(ctx, "s-0001", "CSE101", models.GradeA)
	require.NoError(t, err)
	_, err = f.enrollmentFixture.svc.RecordGrade(ctx, "s-0001", "MAT201", models.GradeB)
	require.NoError(t, err)

	report, err := f.svc.Transcript(ctx, "s-0001", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", report.ContentType)
	assert.True(t, strings.HasPrefix(report.Filename, "transcript-"))

	body := string(report.Data)
	assert.Contains(t, body, "CSE101")
	assert.Contains(t, body, "MAT201")
	assert.Contains(t, body, "A")
	// mean of A (9) and B (8)
	assert.Contains(t, body, "GPA: 8.50")

	require.Len(t, f.archive.saved, 1)
	assert.Equal(t, report.Filename, f.archive.saved[0])
}

func TestTranscriptUnknownStudent(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.svc.Transcript(context.Background(), "missing", FormatCSV)
	require.Error(t, err)
}

func TestTranscriptPDFFormat(t *testing.T) {
	f := newReportFixture(t)
	f.addStudent(t, "s-0001", 24)

	report, err := f.svc.Transcript(context.Background(), "s-0001", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", report.ContentType)
	assert.True(t, strings.HasSuffix(report.Filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(report.Data), "%PDF"))
}

func TestTranscriptRejectsUnknownFormat(t *testing.T) {
	f := newReportFixture(t)
	f.addStudent(t, "s-0001", 24)

	_, err := f.svc.Transcript(context.Background(), "s-0001", "xlsx")
	require.Error(t, err)
}

func TestRosterListsEnrolledStudents(t *testing.T) {
	f := newReportFixture(t)
	f.addStudent(t, "s-0001", 24)
	f.addStudent(t, "s-0002", 24)
	f.addCourse(t, "CSE101", 4, 50)

	ctx := context.Background()
	_, err := f.enrollmentFixture.svc.Enroll(ctx, "s-0001", "CSE101")
	require.NoError(t, err)
	_, err = f.enrollmentFixture.svc.Enroll(ctx, "s-0002", "CSE101")
	require.NoError(t, err)

	report, err := f.svc.Roster(ctx, "CSE101", FormatCSV)
	require.NoError(t, err)

	body := string(report.Data)
	assert.Contains(t, body, "Enrolled: 2 / 50")
}

func TestGradeDistributionCountsAndRate(t *testing.T) {
	f := newReportFixture(t)
	f.addStudent(t, "s-0001", 24)
	f.addStudent(t, "s-0002", 24)
	f.addCourse(t, "CSE101", 4, 50)

	ctx := context.Background()
	_, err := f.enrollmentFixture.svc.Enroll(ctx, "s-0001", "CSE101")
	require.NoError(t, err)
	_, err = f.enrollmentFixture.svc.Enroll(ctx, "s-0002", "CSE101")
	require.NoError(t, err)
	_, err = f.enrollmentFixture.svc.RecordGrade(ctx, "s-0001", "CSE101", models.GradeA)
	require.NoError(t, err)
	_, err = f.enrollmentFixture.svc.RecordGrade(ctx, "s-0002", "CSE101", models.GradeF)
	require.NoError(t, err)

	report, err := f.svc.GradeDistribution(ctx, FormatCSV)
	require.NoError(t, err)

	body := string(report.Data)
	assert.Contains(t, body, "Graded enrollments: 2")
	assert.Contains(t, body, "Passing rate: 50.0%")
}

func TestTopStudentsRanksByGPA(t *testing.T) {
	f := newReportFixture(t)
	f.addStudent(t, "s-0001", 24)
	f.addStudent(t, "s-0002", 24)
	f.addStudent(t, "s-0003", 24)
	f.addCourse(t, "CSE101", 4, 50)

	ctx := context.Background()
	for id, grade := range map[string]models.Grade{
		"s-0001": models.GradeB,
		"s-0002": models.GradeS,
	} {
		_, err := f.enrollmentFixture.svc.Enroll(ctx, id, "CSE101")
		require.NoError(t, err)
		_, err = f.enrollmentFixture.svc.RecordGrade(ctx, id, "CSE101", grade)
		require.NoError(t, err)
	}

	report, err := f.svc.TopStudents(ctx, 5, FormatCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(report.Data)), "\n")
	// header, then the two graded students ranked by GPA
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[1], "1")
	assert.Contains(t, lines[1], "10.00")
	assert.Contains(t, lines[2], "8.00")
}
