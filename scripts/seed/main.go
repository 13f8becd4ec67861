// Command seed writes a small demo dataset into the data directory so the
// server has something to load on first run.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/campusops/ccrm-api/internal/codec"
	"github.com/campusops/ccrm-api/internal/models"
)

func main() {
	dataDir := flag.String("data-dir", "data", "target data directory")
	flag.Parse()

	c := codec.NewCSVCodec(*dataDir, nil)

	students := []models.Student{
		student("s-001", "24BCE10001", "Aarav", "Sharma", "aarav.sharma@campus.example", "2005-03-14"),
		student("s-002", "24BCE10002", "Diya", "Patel", "diya.patel@campus.example", "2004-11-02"),
		student("s-003", "24BEC10003", "Rohan", "Gupta", "rohan.gupta@campus.example", "2005-07-21"),
		student("s-004", "23BCE10044", "Isha", "Nair", "isha.nair@campus.example", "2004-01-30"),
	}

	courses := []models.Course{
		course("CSE101", "Programming Fundamentals", 4, "CSE", models.SemesterFall),
		course("CSE205", "Data Structures", 4, "CSE", models.SemesterSpring),
		course("MAT102", "Linear Algebra", 3, "MAT", models.SemesterFall),
		course("PHY101", "Mechanics", 3, "PHY", models.SemesterSummer),
	}

	gradeA := models.GradeA
	enrollments := []models.Enrollment{
		{StudentID: "s-001", CourseCode: "CSE101", EnrolledAt: time.Now().UTC(), Grade: &gradeA, Active: true},
		{StudentID: "s-001", CourseCode: "MAT102", EnrolledAt: time.Now().UTC(), Active: true},
		{StudentID: "s-002", CourseCode: "CSE101", EnrolledAt: time.Now().UTC(), Active: true},
		{StudentID: "s-003", CourseCode: "PHY101", EnrolledAt: time.Now().UTC(), Active: true},
	}

	if err := c.ExportStudents(students); err != nil {
		log.Fatalf("write students: %v", err)
	}
	if err := c.ExportCourses(courses); err != nil {
		log.Fatalf("write courses: %v", err)
	}
	if err := c.ExportEnrollments(enrollments); err != nil {
		log.Fatalf("write enrollments: %v", err)
	}

	fmt.Printf("seeded %d students, %d courses, %d enrollments into %s\n",
		len(students), len(courses), len(enrollments), *dataDir)
}

func student(id, regNo, first, last, email, dob string) models.Student {
	birth, err := time.Parse("2006-01-02", dob)
	if err != nil {
		log.Fatalf("bad date %s: %v", dob, err)
	}
	return models.Student{
		Person: models.Person{
			ID:          id,
			FirstName:   first,
			LastName:    last,
			Email:       email,
			DateOfBirth: birth,
			Active:      true,
		},
		RegNo:           regNo,
		EnrolledCourses: models.NewStringSet(),
		Grades:          make(map[string]models.Grade),
		EnrollmentDate:  time.Now().UTC(),
		MaxCredits:      models.DefaultMaxCredits,
	}
}

func course(code, title string, credits int, department string, semester models.Semester) models.Course {
	c, err := models.NewCourse(models.CourseParams{
		Code:       code,
		Title:      title,
		Credits:    credits,
		Semester:   semester,
		Department: department,
	})
	if err != nil {
		log.Fatalf("bad course %s: %v", code, err)
	}
	return c
}
