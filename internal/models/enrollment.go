package models

import (
	"fmt"
	"time"
)

// Enrollment links one student to one course. At most one live record exists
// per (StudentID, CourseCode) pair.
type Enrollment struct {
	StudentID  string    `json:"student_id"`
	CourseCode string    `json:"course_code"`
	EnrolledAt time.Time `json:"enrolled_at"`
	Grade      *Grade    `json:"grade,omitempty"`
	Active     bool      `json:"active"`
	Notes      string    `json:"notes,omitempty"`
}

// NewEnrollment creates an active, ungraded enrollment stamped now.
func NewEnrollment(studentID, courseCode string) Enrollment {
	return Enrollment{
		StudentID:  studentID,
		CourseCode: courseCode,
		EnrolledAt: time.Now().UTC(),
		Active:     true,
	}
}

// Key returns the composite index key for the pair.
func (e Enrollment) Key() string {
	return EnrollmentKey(e.StudentID, e.CourseCode)
}

// EnrollmentKey builds the composite index key.
func EnrollmentKey(studentID, courseCode string) string {
	return studentID + "-" + courseCode
}

// HasGrade reports whether a grade has been recorded.
func (e Enrollment) HasGrade() bool {
	return e.Grade != nil
}

// IsPassing reports whether the recorded grade passes.
func (e Enrollment) IsPassing() bool {
	return e.Grade != nil && e.Grade.IsPassing()
}

// Withdraw deactivates the enrollment, keeping the record.
func (e *Enrollment) Withdraw() {
	e.Active = false
	e.Notes = fmt.Sprintf("Withdrawn on %s", time.Now().UTC().Format(time.RFC3339))
}

// EnrollmentStats summarises the enrollment index.
type EnrollmentStats struct {
	TotalCount        int           `json:"total_count"`
	ActiveCount       int           `json:"active_count"`
	GradeDistribution map[Grade]int `json:"grade_distribution"`
	PassingRate       float64       `json:"passing_rate"`
}
