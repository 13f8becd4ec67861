package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/campusops/ccrm-api/internal/models"
)

// CourseRepository keeps the course catalog keyed by course code.
type CourseRepository struct {
	mu      sync.RWMutex
	courses map[string]models.Course
}

// NewCourseRepository constructs an empty CourseRepository.
func NewCourseRepository() *CourseRepository {
	return &CourseRepository{courses: make(map[string]models.Course)}
}

// Save inserts a new course. It fails with ErrDuplicate when the code is
// already taken.
func (r *CourseRepository) Save(ctx context.Context, course models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.courses[course.Code]; exists {
		return ErrDuplicate
	}
	r.courses[course.Code] = course.Clone()
	return nil
}

// Update replaces an existing course record.
func (r *CourseRepository) Update(ctx context.Context, course models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.courses[course.Code]; !exists {
		return ErrNotFound
	}
	r.courses[course.Code] = course.Clone()
	return nil
}

// FindByCode returns a snapshot copy of the course.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	course, ok := r.courses[code]
	if !ok {
		return nil, ErrNotFound
	}
	clone := course.Clone()
	return &clone, nil
}

// FindAll returns snapshot copies of every course, sorted by code.
func (r *CourseRepository) FindAll(ctx context.Context) []models.Course {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]models.Course, 0, len(r.courses))
	for _, course := range r.courses {
		all = append(all, course.Clone())
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return all
}

// Search performs a case-insensitive substring match over code, title and
// department. A blank query returns every course.
func (r *CourseRepository) Search(ctx context.Context, query string) []models.Course {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return r.FindAll(ctx)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]models.Course, 0)
	for _, course := range r.courses {
		if strings.Contains(strings.ToLower(course.Code), query) ||
			strings.Contains(strings.ToLower(course.Title), query) ||
			strings.Contains(strings.ToLower(course.Department), query) {
			matches = append(matches, course.Clone())
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Code < matches[j].Code })
	return matches
}

// Filter returns snapshot copies of courses satisfying the predicate.
func (r *CourseRepository) Filter(ctx context.Context, predicate func(models.Course) bool) []models.Course {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]models.Course, 0)
	for _, course := range r.courses {
		if predicate(course) {
			matches = append(matches, course.Clone())
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Code < matches[j].Code })
	return matches
}

// Delete removes the course unconditionally.
func (r *CourseRepository) Delete(ctx context.Context, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.courses, code)
}

// DeleteAll clears the catalog.
func (r *CourseRepository) DeleteAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses = make(map[string]models.Course)
}

// Count returns the catalog size.
func (r *CourseRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.courses)
}

// SetActive flips the active flag.
func (r *CourseRepository) SetActive(ctx context.Context, code string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	course, ok := r.courses[code]
	if !ok {
		return ErrNotFound
	}
	course.Active = active
	r.courses[code] = course
	return nil
}

// AddStudent records a student ID in the course's enrolled set. Capacity is
// not checked here: the enrollment service enforces it up front, and restore
// deliberately tolerates overflow.
func (r *CourseRepository) AddStudent(ctx context.Context, code, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	course, ok := r.courses[code]
	if !ok {
		return ErrNotFound
	}
	course.EnrolledStudents.Add(studentID)
	r.courses[code] = course
	return nil
}

// RemoveStudent drops a student ID from the course's enrolled set.
func (r *CourseRepository) RemoveStudent(ctx context.Context, code, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	course, ok := r.courses[code]
	if !ok {
		return ErrNotFound
	}
	course.EnrolledStudents.Remove(studentID)
	r.courses[code] = course
	return nil
}
