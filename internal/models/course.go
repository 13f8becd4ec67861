package models

import (
	"fmt"
	"time"
)

// Semester tags a course offering. The zero-based order matches the academic
// calendar.
type Semester string

const (
	SemesterSpring Semester = "SPRING"
	SemesterSummer Semester = "SUMMER"
	SemesterFall   Semester = "FALL"
)

var semesterOrder = map[Semester]int{
	SemesterSpring: 0,
	SemesterSummer: 1,
	SemesterFall:   2,
}

// ParseSemester validates a raw semester tag.
func ParseSemester(raw string) (Semester, error) {
	s := Semester(raw)
	if _, ok := semesterOrder[s]; !ok {
		return "", fmt.Errorf("invalid semester %q", raw)
	}
	return s, nil
}

// Order returns the position in the academic calendar.
func (s Semester) Order() int {
	return semesterOrder[s]
}

// Valid reports whether s is a known semester tag.
func (s Semester) Valid() bool {
	_, ok := semesterOrder[s]
	return ok
}

// Course construction defaults.
const (
	DefaultCourseCredits  = 3
	DefaultCourseCapacity = 50
	DefaultCourseSemester = SemesterFall
)

// Course is an offering students enroll in, keyed by its unique code.
type Course struct {
	Code             string    `json:"code"`
	Title            string    `json:"title"`
	Credits          int       `json:"credits"`
	InstructorID     string    `json:"instructor_id,omitempty"`
	Semester         Semester  `json:"semester"`
	Department       string    `json:"department,omitempty"`
	MaxCapacity      int       `json:"max_capacity"`
	EnrolledStudents StringSet `json:"enrolled_students"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
}

// CourseParams is the construction input for a Course. Zero-valued optional
// fields fall back to the documented defaults.
type CourseParams struct {
	Code         string
	Title        string
	Credits      int
	InstructorID string
	Semester     Semester
	Department   string
	MaxCapacity  int
}

// NewCourse validates params, applies defaults and returns the course.
func NewCourse(params CourseParams) (Course, error) {
	if params.Code == "" {
		return Course{}, fmt.Errorf("course code cannot be empty")
	}
	if params.Title == "" {
		return Course{}, fmt.Errorf("course title cannot be empty")
	}
	if params.Credits == 0 {
		params.Credits = DefaultCourseCredits
	}
	if params.Credits < 0 {
		return Course{}, fmt.Errorf("credits must be positive")
	}
	if params.Semester == "" {
		params.Semester = DefaultCourseSemester
	}
	if !params.Semester.Valid() {
		return Course{}, fmt.Errorf("invalid semester %q", params.Semester)
	}
	if params.MaxCapacity == 0 {
		params.MaxCapacity = DefaultCourseCapacity
	}
	if params.MaxCapacity < 0 {
		return Course{}, fmt.Errorf("max capacity must be positive")
	}

	return Course{
		Code:             params.Code,
		Title:            params.Title,
		Credits:          params.Credits,
		InstructorID:     params.InstructorID,
		Semester:         params.Semester,
		Department:       params.Department,
		MaxCapacity:      params.MaxCapacity,
		EnrolledStudents: NewStringSet(),
		Active:           true,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// CurrentEnrollment returns the enrolled-student count.
func (c Course) CurrentEnrollment() int {
	return c.EnrolledStudents.Len()
}

// AvailableSeats returns the remaining capacity.
func (c Course) AvailableSeats() int {
	return c.MaxCapacity - c.EnrolledStudents.Len()
}

// IsFull reports whether enrollment has reached capacity.
func (c Course) IsFull() bool {
	return c.EnrolledStudents.Len() >= c.MaxCapacity
}

// Clone returns a deep copy.
func (c Course) Clone() Course {
	clone := c
	clone.EnrolledStudents = c.EnrolledStudents.Clone()
	return clone
}

// CourseFilter encapsulates allowed search parameters for listing courses.
type CourseFilter struct {
	Search       string
	Semester     Semester
	Department   string
	InstructorID string
	Active       *bool
	Page         int
	PageSize     int
}

// CourseStats aggregates collection-wide course figures.
type CourseStats struct {
	TotalCount             int              `json:"total_count"`
	ActiveCount            int              `json:"active_count"`
	TotalCreditsOffered    int              `json:"total_credits_offered"`
	DepartmentDistribution map[string]int   `json:"department_distribution"`
	SemesterDistribution   map[Semester]int `json:"semester_distribution"`
	AverageEnrollment      float64          `json:"average_enrollment"`
}
