package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/campusops/ccrm-api/internal/models"
)

// EnrollmentRepository indexes enrollments by their composite
// (studentID, courseCode) key.
type EnrollmentRepository struct {
	mu          sync.RWMutex
	enrollments map[string]models.Enrollment
}

// NewEnrollmentRepository constructs an empty EnrollmentRepository.
func NewEnrollmentRepository() *EnrollmentRepository {
	return &EnrollmentRepository{enrollments: make(map[string]models.Enrollment)}
}

// Put inserts or replaces the enrollment for its pair. Duplicate detection is
// the enrollment service's job; restore relies on upsert semantics.
func (r *EnrollmentRepository) Put(ctx context.Context, enrollment models.Enrollment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enrollments[enrollment.Key()] = enrollment
}

// Get returns the enrollment for the pair, if present.
func (r *EnrollmentRepository) Get(ctx context.Context, studentID, courseCode string) (*models.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	enrollment, ok := r.enrollments[models.EnrollmentKey(studentID, courseCode)]
	if !ok {
		return nil, ErrNotFound
	}
	clone := cloneEnrollment(enrollment)
	return &clone, nil
}

// Exists reports whether the pair has an enrollment.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseCode string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.enrollments[models.EnrollmentKey(studentID, courseCode)]
	return ok
}

// Delete removes the enrollment for the pair, reporting whether it existed.
func (r *EnrollmentRepository) Delete(ctx context.Context, studentID, courseCode string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := models.EnrollmentKey(studentID, courseCode)
	if _, ok := r.enrollments[key]; !ok {
		return false
	}
	delete(r.enrollments, key)
	return true
}

// All returns every enrollment sorted by key.
func (r *EnrollmentRepository) All(ctx context.Context) []models.Enrollment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]models.Enrollment, 0, len(r.enrollments))
	for _, enrollment := range r.enrollments {
		all = append(all, cloneEnrollment(enrollment))
	}
	sortEnrollments(all)
	return all
}

// ByStudent returns the student's enrollments.
func (r *EnrollmentRepository) ByStudent(ctx context.Context, studentID string) []models.Enrollment {
	return r.filter(func(e models.Enrollment) bool { return e.StudentID == studentID })
}

// ByCourse returns the course's enrollments.
func (r *EnrollmentRepository) ByCourse(ctx context.Context, courseCode string) []models.Enrollment {
	return r.filter(func(e models.Enrollment) bool { return e.CourseCode == courseCode })
}

// Active returns enrollments that have not been withdrawn or cancelled.
func (r *EnrollmentRepository) Active(ctx context.Context) []models.Enrollment {
	return r.filter(func(e models.Enrollment) bool { return e.Active })
}

// ByGrade returns enrollments carrying the given grade.
func (r *EnrollmentRepository) ByGrade(ctx context.Context, grade models.Grade) []models.Enrollment {
	return r.filter(func(e models.Enrollment) bool { return e.Grade != nil && *e.Grade == grade })
}

// Count returns the index size.
func (r *EnrollmentRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.enrollments)
}

// DeleteAll clears the index.
func (r *EnrollmentRepository) DeleteAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enrollments = make(map[string]models.Enrollment)
}

func (r *EnrollmentRepository) filter(predicate func(models.Enrollment) bool) []models.Enrollment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]models.Enrollment, 0)
	for _, enrollment := range r.enrollments {
		if predicate(enrollment) {
			matches = append(matches, cloneEnrollment(enrollment))
		}
	}
	sortEnrollments(matches)
	return matches
}

// cloneEnrollment detaches the optional grade pointer so snapshots never
// alias stored state.
func cloneEnrollment(e models.Enrollment) models.Enrollment {
	if e.Grade != nil {
		grade := *e.Grade
		e.Grade = &grade
	}
	return e
}

func sortEnrollments(list []models.Enrollment) {
	sort.Slice(list, func(i, j int) bool { return list[i].Key() < list[j].Key() })
}
