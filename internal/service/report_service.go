package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusops/ccrm-api/internal/models"
	appErrors "github.com/campusops/ccrm-api/pkg/errors"
	"github.com/campusops/ccrm-api/pkg/export"
)

// Report formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type reportArchive interface {
	Save(filename string, data []byte) (string, error)
}

// Report bundles rendered content with download metadata.
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService renders transcripts, rosters and catalog summaries, and
// archives a copy of each generated file.
type ReportService struct {
	students    studentRepository
	courses     courseRepository
	enrollments enrollmentRepository
	archive     reportArchive
	csv         *export.CSVRenderer
	pdf         *export.PDFRenderer
	logger      *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(
	students studentRepository,
	courses courseRepository,
	enrollments enrollmentRepository,
	archive reportArchive,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		students:    students,
		courses:     courses,
		enrollments: enrollments,
		archive:     archive,
		csv:         export.NewCSVRenderer(),
		pdf:         export.NewPDFRenderer(),
		logger:      logger,
	}
}

// Transcript renders a student's course history with grades and GPA.
func (s *ReportService) Transcript(ctx context.Context, studentID, format string) (*Report, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	dataset := export.Dataset{
		Headers: []string{"Course Code", "Title", "Credits", "Grade", "Points"},
	}
	for _, code := range student.EnrolledCourses.Values() {
		title := ""
		credits := models.DefaultCourseCredits
		if course, err := s.courses.FindByCode(ctx, code); err == nil {
			title = course.Title
			credits = course.Credits
		}
		gradeText, pointsText := "-", "-"
		if grade, ok := student.Grades[code]; ok {
			gradeText = string(grade)
			pointsText = fmt.Sprintf("%.1f", grade.Points())
		}
		dataset.Rows = append(dataset.Rows, []string{
			code, title, strconv.Itoa(credits), gradeText, pointsText,
		})
	}
	dataset.Summary = []string{
		fmt.Sprintf("Student: %s (%s)", student.FullName(), student.RegNo),
		fmt.Sprintf("GPA: %.2f", student.GPA()),
	}

	title := fmt.Sprintf("Transcript - %s", student.RegNo)
	return s.render(dataset, title, fmt.Sprintf("transcript-%s", student.RegNo), format)
}

// Roster renders the student list of one course.
func (s *ReportService) Roster(ctx context.Context, courseCode, format string) (*Report, error) {
	course, err := s.courses.FindByCode(ctx, courseCode)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	dataset := export.Dataset{
		Headers: []string{"Reg No", "Name", "Email", "Grade"},
	}
	for _, studentID := range course.EnrolledStudents.Values() {
		student, err := s.students.FindByID(ctx, studentID)
		if err != nil {
			continue
		}
		gradeText := "-"
		if grade, ok := student.Grades[courseCode]; ok {
			gradeText = string(grade)
		}
		dataset.Rows = append(dataset.Rows, []string{
			student.RegNo, student.FullName(), student.Email, gradeText,
		})
	}
	dataset.Summary = []string{
		fmt.Sprintf("Course: %s - %s", course.Code, course.Title),
		fmt.Sprintf("Enrolled: %d / %d", course.CurrentEnrollment(), course.MaxCapacity),
	}

	title := fmt.Sprintf("Roster - %s", course.Code)
	return s.render(dataset, title, fmt.Sprintf("roster-%s", course.Code), format)
}

// Catalog renders the full course catalog.
func (s *ReportService) Catalog(ctx context.Context, format string) (*Report, error) {
	courses := s.courses.FindAll(ctx)

	dataset := export.Dataset{
		Headers: []string{"Code", "Title", "Credits", "Semester", "Department", "Enrolled", "Capacity"},
	}
	for _, c := range courses {
		dataset.Rows = append(dataset.Rows, []string{
			c.Code, c.Title, strconv.Itoa(c.Credits), string(c.Semester), c.Department,
			strconv.Itoa(c.CurrentEnrollment()), strconv.Itoa(c.MaxCapacity),
		})
	}
	dataset.Summary = []string{fmt.Sprintf("Courses: %d", len(courses))}

	return s.render(dataset, "Course Catalog", "catalog", format)
}

// GradeDistribution renders the grade counts across all enrollments.
func (s *ReportService) GradeDistribution(ctx context.Context, format string) (*Report, error) {
	distribution := make(map[models.Grade]int)
	graded, passing := 0, 0
	for _, e := range s.enrollments.All(ctx) {
		if e.Grade == nil {
			continue
		}
		distribution[*e.Grade]++
		graded++
		if e.IsPassing() {
			passing++
		}
	}

	dataset := export.Dataset{Headers: []string{"Grade", "Points", "Count"}}
	for _, grade := range models.AllGrades {
		dataset.Rows = append(dataset.Rows, []string{
			string(grade),
			fmt.Sprintf("%.0f", grade.Points()),
			strconv.Itoa(distribution[grade]),
		})
	}
	rate := 0.0
	if graded > 0 {
		rate = float64(passing) / float64(graded) * 100
	}
	dataset.Summary = []string{
		fmt.Sprintf("Graded enrollments: %d", graded),
		fmt.Sprintf("Passing rate: %.1f%%", rate),
	}

	return s.render(dataset, "Grade Distribution", "grade-distribution", format)
}

// TopStudents renders the highest-GPA students.
func (s *ReportService) TopStudents(ctx context.Context, n int, format string) (*Report, error) {
	if n <= 0 {
		n = 5
	}
	students := s.students.FindAll(ctx)
	graded := make([]models.Student, 0, len(students))
	for _, st := range students {
		if len(st.Grades) > 0 {
			graded = append(graded, st)
		}
	}
	sort.SliceStable(graded, func(i, j int) bool { return graded[i].GPA() > graded[j].GPA() })
	if len(graded) > n {
		graded = graded[:n]
	}

	dataset := export.Dataset{Headers: []string{"Rank", "Reg No", "Name", "GPA"}}
	for i, st := range graded {
		dataset.Rows = append(dataset.Rows, []string{
			strconv.Itoa(i + 1), st.RegNo, st.FullName(), fmt.Sprintf("%.2f", st.GPA()),
		})
	}

	return s.render(dataset, "Top Students", "top-students", format)
}

func (s *ReportService) render(dataset export.Dataset, title, stem, format string) (*Report, error) {
	var (
		data        []byte
		err         error
		contentType string
		ext         string
	)
	switch strings.ToLower(format) {
	case FormatPDF:
		data, err = s.pdf.Render(dataset, title)
		contentType, ext = "application/pdf", "pdf"
	case FormatCSV, "":
		data, err = s.csv.Render(dataset)
		contentType, ext = "text/csv", "csv"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	filename := fmt.Sprintf("%s-%s.%s", stem, time.Now().Format("20060102-150405"), ext)
	if s.archive != nil {
		if _, err := s.archive.Save(filename, data); err != nil {
			s.logger.Warn("failed to archive report", zap.String("filename", filename), zap.Error(err))
		}
	}

	return &Report{Filename: filename, ContentType: contentType, Data: data}, nil
}
