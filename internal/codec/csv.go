// Package codec persists the record store as line-oriented CSV files: header
// row, one record per line, comma-separated, no quoting or escaping. Field
// values must not contain the separator; round-tripping a title or note that
// does is out of contract.
package codec

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusops/ccrm-api/internal/models"
)

const (
	separator = ","

	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"

	studentsFile    = "students.csv"
	coursesFile     = "courses.csv"
	enrollmentsFile = "enrollments.csv"
)

const (
	studentHeader    = "ID,RegNo,FirstName,LastName,Email,DateOfBirth,Active,EnrollmentDate,MaxCredits"
	courseHeader     = "Code,Title,Credits,InstructorId,Semester,Department,MaxCapacity,Active"
	enrollmentHeader = "StudentId,CourseCode,EnrollmentDate,Grade,Active,Notes"
)

// CSVCodec reads and writes the data directory.
type CSVCodec struct {
	dataDir string
	logger  *zap.Logger
}

// NewCSVCodec constructs a codec rooted at dataDir.
func NewCSVCodec(dataDir string, logger *zap.Logger) *CSVCodec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVCodec{dataDir: dataDir, logger: logger}
}

// StudentsPath returns the students file location.
func (c *CSVCodec) StudentsPath() string { return filepath.Join(c.dataDir, studentsFile) }

// CoursesPath returns the courses file location.
func (c *CSVCodec) CoursesPath() string { return filepath.Join(c.dataDir, coursesFile) }

// EnrollmentsPath returns the enrollments file location.
func (c *CSVCodec) EnrollmentsPath() string { return filepath.Join(c.dataDir, enrollmentsFile) }

// ExportStudents writes the student collection, replacing any existing file
// atomically (write to temp, then rename).
func (c *CSVCodec) ExportStudents(students []models.Student) error {
	lines := make([]string, 0, len(students)+1)
	lines = append(lines, studentHeader)
	for _, s := range students {
		lines = append(lines, strings.Join([]string{
			s.ID,
			s.RegNo,
			s.FirstName,
			s.LastName,
			s.Email,
			s.DateOfBirth.Format(dateLayout),
			strconv.FormatBool(s.Active),
			s.EnrollmentDate.Format(dateLayout),
			strconv.Itoa(s.MaxCredits),
		}, separator))
	}
	return c.writeFile(c.StudentsPath(), lines)
}

// ImportStudents reads the student file. A missing file yields an empty
// collection; a malformed line is skipped with a warning.
func (c *CSVCodec) ImportStudents() ([]models.Student, error) {
	lines, err := c.readLines(c.StudentsPath())
	if err != nil {
		return nil, err
	}

	students := make([]models.Student, 0, len(lines))
	for _, line := range lines {
		student, err := parseStudent(line)
		if err != nil {
			c.logger.Warn("skipping malformed student line", zap.String("line", line), zap.Error(err))
			continue
		}
		students = append(students, student)
	}
	return students, nil
}

func parseStudent(line string) (models.Student, error) {
	fields := strings.Split(line, separator)
	if len(fields) < 9 {
		return models.Student{}, fmt.Errorf("expected 9 fields, got %d", len(fields))
	}

	dob, err := time.Parse(dateLayout, strings.TrimSpace(fields[5]))
	if err != nil {
		return models.Student{}, fmt.Errorf("date of birth: %w", err)
	}
	active, err := strconv.ParseBool(strings.TrimSpace(fields[6]))
	if err != nil {
		return models.Student{}, fmt.Errorf("active flag: %w", err)
	}
	enrolled, err := time.Parse(dateLayout, strings.TrimSpace(fields[7]))
	if err != nil {
		return models.Student{}, fmt.Errorf("enrollment date: %w", err)
	}
	maxCredits, err := strconv.Atoi(strings.TrimSpace(fields[8]))
	if err != nil {
		return models.Student{}, fmt.Errorf("max credits: %w", err)
	}
	if maxCredits <= 0 {
		return models.Student{}, fmt.Errorf("max credits must be positive, got %d", maxCredits)
	}

	return models.Student{
		Person: models.Person{
			ID:          strings.TrimSpace(fields[0]),
			FirstName:   strings.TrimSpace(fields[2]),
			LastName:    strings.TrimSpace(fields[3]),
			Email:       strings.TrimSpace(fields[4]),
			DateOfBirth: dob,
			Active:      active,
		},
		RegNo:           strings.TrimSpace(fields[1]),
		EnrolledCourses: models.NewStringSet(),
		Grades:          make(map[string]models.Grade),
		EnrollmentDate:  enrolled,
		MaxCredits:      maxCredits,
	}, nil
}

// ExportCourses writes the course catalog.
func (c *CSVCodec) ExportCourses(courses []models.Course) error {
	lines := make([]string, 0, len(courses)+1)
	lines = append(lines, courseHeader)
	for _, course := range courses {
		lines = append(lines, strings.Join([]string{
			course.Code,
			course.Title,
			strconv.Itoa(course.Credits),
			course.InstructorID,
			string(course.Semester),
			course.Department,
			strconv.Itoa(course.MaxCapacity),
			strconv.FormatBool(course.Active),
		}, separator))
	}
	return c.writeFile(c.CoursesPath(), lines)
}

// ImportCourses reads the course file with the same skip-and-continue policy.
func (c *CSVCodec) ImportCourses() ([]models.Course, error) {
	lines, err := c.readLines(c.CoursesPath())
	if err != nil {
		return nil, err
	}

	courses := make([]models.Course, 0, len(lines))
	for _, line := range lines {
		course, err := parseCourse(line)
		if err != nil {
			c.logger.Warn("skipping malformed course line", zap.String("line", line), zap.Error(err))
			continue
		}
		courses = append(courses, course)
	}
	return courses, nil
}

func parseCourse(line string) (models.Course, error) {
	fields := strings.Split(line, separator)
	if len(fields) < 8 {
		return models.Course{}, fmt.Errorf("expected 8 fields, got %d", len(fields))
	}

	credits, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return models.Course{}, fmt.Errorf("credits: %w", err)
	}
	semester, err := models.ParseSemester(strings.TrimSpace(fields[4]))
	if err != nil {
		return models.Course{}, err
	}
	capacity, err := strconv.Atoi(strings.TrimSpace(fields[6]))
	if err != nil {
		return models.Course{}, fmt.Errorf("max capacity: %w", err)
	}
	active, err := strconv.ParseBool(strings.TrimSpace(fields[7]))
	if err != nil {
		return models.Course{}, fmt.Errorf("active flag: %w", err)
	}

	course, err := models.NewCourse(models.CourseParams{
		Code:         strings.TrimSpace(fields[0]),
		Title:        strings.TrimSpace(fields[1]),
		Credits:      credits,
		InstructorID: strings.TrimSpace(fields[3]),
		Semester:     semester,
		Department:   strings.TrimSpace(fields[5]),
		MaxCapacity:  capacity,
	})
	if err != nil {
		return models.Course{}, err
	}
	course.Active = active
	return course, nil
}

// ExportEnrollments writes the enrollment index.
func (c *CSVCodec) ExportEnrollments(enrollments []models.Enrollment) error {
	lines := make([]string, 0, len(enrollments)+1)
	lines = append(lines, enrollmentHeader)
	for _, e := range enrollments {
		grade := ""
		if e.Grade != nil {
			grade = string(*e.Grade)
		}
		lines = append(lines, strings.Join([]string{
			e.StudentID,
			e.CourseCode,
			e.EnrolledAt.Format(dateTimeLayout),
			grade,
			strconv.FormatBool(e.Active),
			e.Notes,
		}, separator))
	}
	return c.writeFile(c.EnrollmentsPath(), lines)
}

// ImportEnrollments reads the enrollment file. An unknown grade value is
// dropped (field left unset) rather than failing the line.
func (c *CSVCodec) ImportEnrollments() ([]models.Enrollment, error) {
	lines, err := c.readLines(c.EnrollmentsPath())
	if err != nil {
		return nil, err
	}

	enrollments := make([]models.Enrollment, 0, len(lines))
	for _, line := range lines {
		enrollment, err := parseEnrollment(line)
		if err != nil {
			c.logger.Warn("skipping malformed enrollment line", zap.String("line", line), zap.Error(err))
			continue
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, nil
}

func parseEnrollment(line string) (models.Enrollment, error) {
	fields := strings.Split(line, separator)
	if len(fields) < 6 {
		return models.Enrollment{}, fmt.Errorf("expected 6 fields, got %d", len(fields))
	}

	enrolledAt, err := time.Parse(dateTimeLayout, strings.TrimSpace(fields[2]))
	if err != nil {
		return models.Enrollment{}, fmt.Errorf("enrollment date: %w", err)
	}
	active, err := strconv.ParseBool(strings.TrimSpace(fields[4]))
	if err != nil {
		return models.Enrollment{}, fmt.Errorf("active flag: %w", err)
	}

	enrollment := models.Enrollment{
		StudentID:  strings.TrimSpace(fields[0]),
		CourseCode: strings.TrimSpace(fields[1]),
		EnrolledAt: enrolledAt,
		Active:     active,
		Notes:      strings.TrimSpace(fields[5]),
	}

	if raw := strings.TrimSpace(fields[3]); raw != "" {
		if grade, err := models.ParseGrade(raw); err == nil {
			enrollment.Grade = &grade
		}
	}

	return enrollment, nil
}

// DataFile describes one file in the data directory.
type DataFile struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// ListDataFiles enumerates CSV files currently in the data directory.
func (c *CSVCodec) ListDataFiles() ([]DataFile, error) {
	entries, err := os.ReadDir(c.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []DataFile{}, nil
		}
		return nil, fmt.Errorf("read data directory: %w", err)
	}

	files := make([]DataFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		files = append(files, DataFile{Name: entry.Name(), Size: info.Size(), Modified: info.ModTime()})
	}
	return files, nil
}

// readLines returns the non-blank data lines of the file, header excluded. A
// missing file is not an error.
func (c *CSVCodec) readLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	all := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(all))
	for i, line := range all {
		if i == 0 {
			continue // header
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// writeFile writes lines to a temp file in the data dir and renames it over
// the target, so readers never observe a partial file.
func (c *CSVCodec) writeFile(path string, lines []string) error {
	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(c.dataDir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
