package models

import (
	"fmt"
	"time"
)

// Person is the identity and contact record shared by students and
// instructors. The concrete kinds embed it and carry their role-specific
// fields; role-dependent behaviour is a method on each variant rather than
// virtual dispatch.
type Person struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Active      bool      `json:"active"`
}

// FullName renders "First Last".
func (p Person) FullName() string {
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}

// Instructor teaches courses. Referenced from Course by ID only (weak, no
// ownership).
type Instructor struct {
	Person
	EmployeeID      string    `json:"employee_id"`
	Department      string    `json:"department"`
	AssignedCourses StringSet `json:"assigned_courses"`
}

// Role identifies the person variant.
func (i Instructor) Role() string { return "Instructor" }

// DisplayInfo renders a one-line summary.
func (i Instructor) DisplayInfo() string {
	return fmt.Sprintf("Instructor: %s (%s) - %s", i.FullName(), i.EmployeeID, i.Department)
}

// Clone returns a deep copy.
func (i Instructor) Clone() Instructor {
	clone := i
	clone.AssignedCourses = i.AssignedCourses.Clone()
	return clone
}
