package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/campusops/ccrm-api/internal/models"
)

// StudentRepository keeps the student collection keyed by ID.
type StudentRepository struct {
	mu       sync.RWMutex
	students map[string]models.Student
}

// NewStudentRepository constructs an empty StudentRepository.
func NewStudentRepository() *StudentRepository {
	return &StudentRepository{students: make(map[string]models.Student)}
}

// Save inserts a new student. It fails with ErrDuplicate when the ID is
// already taken.
func (r *StudentRepository) Save(ctx context.Context, student models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.students[student.ID]; exists {
		return ErrDuplicate
	}
	r.students[student.ID] = student.Clone()
	return nil
}

// Update replaces an existing student record.
func (r *StudentRepository) Update(ctx context.Context, student models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.students[student.ID]; !exists {
		return ErrNotFound
	}
	r.students[student.ID] = student.Clone()
	return nil
}

// FindByID returns a snapshot copy of the student.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	student, ok := r.students[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := student.Clone()
	return &clone, nil
}

// FindByRegNo scans for a student by registration number.
func (r *StudentRepository) FindByRegNo(ctx context.Context, regNo string) (*models.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, student := range r.students {
		if student.RegNo == regNo {
			clone := student.Clone()
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

// FindAll returns snapshot copies of every student, sorted by ID.
func (r *StudentRepository) FindAll(ctx context.Context) []models.Student {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]models.Student, 0, len(r.students))
	for _, student := range r.students {
		all = append(all, student.Clone())
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Search performs a case-insensitive substring match over name, registration
// number and email. A blank query returns every student.
func (r *StudentRepository) Search(ctx context.Context, query string) []models.Student {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return r.FindAll(ctx)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]models.Student, 0)
	for _, student := range r.students {
		if strings.Contains(strings.ToLower(student.FullName()), query) ||
			strings.Contains(strings.ToLower(student.RegNo), query) ||
			strings.Contains(strings.ToLower(student.Email), query) {
			matches = append(matches, student.Clone())
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches
}

// Delete removes the student unconditionally. Dependent enrollments are the
// caller's responsibility.
func (r *StudentRepository) Delete(ctx context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.students, id)
}

// DeleteAll clears the collection.
func (r *StudentRepository) DeleteAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students = make(map[string]models.Student)
}

// Count returns the collection size.
func (r *StudentRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.students)
}

// SetActive flips the active flag.
func (r *StudentRepository) SetActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[id]
	if !ok {
		return ErrNotFound
	}
	student.Active = active
	r.students[id] = student
	return nil
}

// AddCourse records a course code in the student's enrolled set.
func (r *StudentRepository) AddCourse(ctx context.Context, id, courseCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[id]
	if !ok {
		return ErrNotFound
	}
	student.EnrolledCourses.Add(courseCode)
	r.students[id] = student
	return nil
}

// RemoveCourse drops a course code from the enrolled set along with any
// recorded grade for it.
func (r *StudentRepository) RemoveCourse(ctx context.Context, id, courseCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[id]
	if !ok {
		return ErrNotFound
	}
	if student.EnrolledCourses.Remove(courseCode) {
		delete(student.Grades, courseCode)
	}
	r.students[id] = student
	return nil
}

// SetGrade records the grade for a course in the student's grade map.
func (r *StudentRepository) SetGrade(ctx context.Context, id, courseCode string, grade models.Grade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[id]
	if !ok {
		return ErrNotFound
	}
	if student.Grades == nil {
		student.Grades = make(map[string]models.Grade)
	}
	student.Grades[courseCode] = grade
	r.students[id] = student
	return nil
}
