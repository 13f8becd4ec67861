package models

import (
	"fmt"
	"time"
)

// DefaultMaxCredits is the per-semester credit cap applied when none is set.
const DefaultMaxCredits = 24

// Student is a learner registered in the institution.
type Student struct {
	Person
	RegNo           string           `json:"reg_no"`
	EnrolledCourses StringSet        `json:"enrolled_courses"`
	Grades          map[string]Grade `json:"grades"`
	EnrollmentDate  time.Time        `json:"enrollment_date"`
	MaxCredits      int              `json:"max_credits"`
}

// Role identifies the person variant.
func (s Student) Role() string { return "Student" }

// DisplayInfo renders a one-line summary.
func (s Student) DisplayInfo() string {
	return fmt.Sprintf("Student: %s (Reg: %s) - %d courses enrolled",
		s.FullName(), s.RegNo, s.EnrolledCourses.Len())
}

// GPA is the arithmetic mean of grade points over graded courses, 0.0 when
// nothing is graded yet.
func (s Student) GPA() float64 {
	if len(s.Grades) == 0 {
		return 0.0
	}
	var total float64
	for _, g := range s.Grades {
		total += g.Points()
	}
	return total / float64(len(s.Grades))
}

// IsEnrolledIn reports whether the student holds the course code.
func (s Student) IsEnrolledIn(courseCode string) bool {
	return s.EnrolledCourses.Has(courseCode)
}

// Clone returns a deep copy so repository snapshots do not alias internal
// collections.
func (s Student) Clone() Student {
	clone := s
	clone.EnrolledCourses = s.EnrolledCourses.Clone()
	clone.Grades = make(map[string]Grade, len(s.Grades))
	for code, grade := range s.Grades {
		clone.Grades[code] = grade
	}
	return clone
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StudentStats aggregates collection-wide student figures.
type StudentStats struct {
	TotalCount             int         `json:"total_count"`
	ActiveCount            int         `json:"active_count"`
	AverageGPA             float64     `json:"average_gpa"`
	EnrollmentDistribution map[int]int `json:"enrollment_distribution"`
}
