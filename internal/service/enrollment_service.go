package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/campusops/ccrm-api/internal/models"
	appErrors "github.com/campusops/ccrm-api/pkg/errors"
)

type enrollmentStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	AddCourse(ctx context.Context, id, courseCode string) error
	RemoveCourse(ctx context.Context, id, courseCode string) error
	SetGrade(ctx context.Context, id, courseCode string, grade models.Grade) error
}

type enrollmentCourseRepository interface {
	FindByCode(ctx context.Context, code string) (*models.Course, error)
	AddStudent(ctx context.Context, code, studentID string) error
	RemoveStudent(ctx context.Context, code, studentID string) error
}

type enrollmentRepository interface {
	Put(ctx context.Context, enrollment models.Enrollment)
	Get(ctx context.Context, studentID, courseCode string) (*models.Enrollment, error)
	Exists(ctx context.Context, studentID, courseCode string) bool
	Delete(ctx context.Context, studentID, courseCode string) bool
	All(ctx context.Context) []models.Enrollment
	ByStudent(ctx context.Context, studentID string) []models.Enrollment
	ByCourse(ctx context.Context, courseCode string) []models.Enrollment
	Active(ctx context.Context) []models.Enrollment
	ByGrade(ctx context.Context, grade models.Grade) []models.Enrollment
	Count(ctx context.Context) int
}

// EnrollmentService coordinates the three record collections. Every
// multi-step mutation runs under its mutex so concurrent requests cannot
// interleave between the rule checks and the writes.
type EnrollmentService struct {
	students    enrollmentStudentRepository
	courses     enrollmentCourseRepository
	enrollments enrollmentRepository
	logger      *zap.Logger

	mu sync.Mutex
}

// NewEnrollmentService constructs the enrollment coordinator.
func NewEnrollmentService(
	students enrollmentStudentRepository,
	courses enrollmentCourseRepository,
	enrollments enrollmentRepository,
	logger *zap.Logger,
) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		students:    students,
		courses:     courses,
		enrollments: enrollments,
		logger:      logger,
	}
}

// Enroll links a student to a course after running every business rule, in
// order: both records must exist, the pair must not already be enrolled, the
// course must have a free seat, and the student's credit load after adding
// the course must stay within their limit. No state changes unless all
// checks pass.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, courseCode string) (*models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	course, err := s.courses.FindByCode(ctx, courseCode)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	if s.enrollments.Exists(ctx, studentID, courseCode) {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEnrollment, "student already enrolled in course")
	}
	if course.IsFull() {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrCourseFull, "course is at maximum capacity"),
			map[string]interface{}{
				"course_code":  course.Code,
				"max_capacity": course.MaxCapacity,
			})
	}

	current := s.creditLoad(ctx, student)
	if current+course.Credits > student.MaxCredits {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrCreditLimitExceeded, "enrollment would exceed credit limit"),
			map[string]interface{}{
				"current_credits":   current,
				"attempted_credits": course.Credits,
				"max_credits":       student.MaxCredits,
				"overage":           current + course.Credits - student.MaxCredits,
			})
	}

	enrollment := models.NewEnrollment(studentID, courseCode)
	s.enrollments.Put(ctx, enrollment)

	if err := s.students.AddCourse(ctx, studentID, courseCode); err != nil {
		s.enrollments.Delete(ctx, studentID, courseCode)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record enrollment")
	}
	if err := s.courses.AddStudent(ctx, courseCode, studentID); err != nil {
		s.enrollments.Delete(ctx, studentID, courseCode)
		_ = s.students.RemoveCourse(ctx, studentID, courseCode)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record enrollment")
	}

	s.logger.Info("student enrolled",
		zap.String("student_id", studentID),
		zap.String("course_code", courseCode))
	return &enrollment, nil
}

// Unenroll removes the link and any recorded grade from both sides. It
// reports whether a record existed.
func (s *EnrollmentService) Unenroll(ctx context.Context, studentID, courseCode string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enrollments.Delete(ctx, studentID, courseCode) {
		return false, nil
	}
	if err := s.students.RemoveCourse(ctx, studentID, courseCode); err != nil {
		s.logger.Warn("student record missing during unenroll",
			zap.String("student_id", studentID),
			zap.Error(err))
	}
	if err := s.courses.RemoveStudent(ctx, courseCode, studentID); err != nil {
		s.logger.Warn("course record missing during unenroll",
			zap.String("course_code", courseCode),
			zap.Error(err))
	}

	s.logger.Info("student unenrolled",
		zap.String("student_id", studentID),
		zap.String("course_code", courseCode))
	return true, nil
}

// RecordGrade sets the grade on an existing enrollment and mirrors it onto
// the student's record.
func (s *EnrollmentService) RecordGrade(ctx context.Context, studentID, courseCode string, grade models.Grade) (*models.Enrollment, error) {
	if !grade.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown grade value")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	enrollment, err := s.enrollments.Get(ctx, studentID, courseCode)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}

	enrollment.Grade = &grade
	s.enrollments.Put(ctx, *enrollment)
	if err := s.students.SetGrade(ctx, studentID, courseCode, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
	}

	s.logger.Info("grade recorded",
		zap.String("student_id", studentID),
		zap.String("course_code", courseCode),
		zap.String("grade", string(grade)))
	return enrollment, nil
}

// Restore re-links an enrollment loaded from disk, bypassing the business
// rules. A course past capacity is kept and logged rather than rejected, so
// a reload never loses records that were valid when saved.
func (s *EnrollmentService) Restore(ctx context.Context, enrollment models.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.students.FindByID(ctx, enrollment.StudentID); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found for enrollment")
	}
	course, err := s.courses.FindByCode(ctx, enrollment.CourseCode)
	if err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "course not found for enrollment")
	}

	s.enrollments.Put(ctx, enrollment)
	if err := s.students.AddCourse(ctx, enrollment.StudentID, enrollment.CourseCode); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore enrollment")
	}
	if err := s.courses.AddStudent(ctx, enrollment.CourseCode, enrollment.StudentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore enrollment")
	}
	if enrollment.Grade != nil {
		if err := s.students.SetGrade(ctx, enrollment.StudentID, enrollment.CourseCode, *enrollment.Grade); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore grade")
		}
	}

	if course.CurrentEnrollment()+1 > course.MaxCapacity {
		s.logger.Warn("restored enrollment exceeds course capacity",
			zap.String("course_code", course.Code),
			zap.Int("max_capacity", course.MaxCapacity))
	}
	return nil
}

// WithdrawStudent deactivates every active enrollment the student holds and
// returns how many were withdrawn. Records stay for transcript history.
func (s *EnrollmentService) WithdrawStudent(ctx context.Context, studentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	withdrawn := 0
	for _, e := range s.enrollments.ByStudent(ctx, studentID) {
		if !e.Active {
			continue
		}
		e.Withdraw()
		s.enrollments.Put(ctx, e)
		_ = s.students.RemoveCourse(ctx, e.StudentID, e.CourseCode)
		_ = s.courses.RemoveStudent(ctx, e.CourseCode, e.StudentID)
		withdrawn++
	}

	s.logger.Info("student withdrawn from all courses",
		zap.String("student_id", studentID),
		zap.Int("withdrawn", withdrawn))
	return withdrawn, nil
}

// CancelCourse withdraws every active enrollment in the course and returns
// how many students were affected.
func (s *EnrollmentService) CancelCourse(ctx context.Context, courseCode string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.courses.FindByCode(ctx, courseCode); err != nil {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	withdrawn := 0
	for _, e := range s.enrollments.ByCourse(ctx, courseCode) {
		if !e.Active {
			continue
		}
		e.Withdraw()
		s.enrollments.Put(ctx, e)
		_ = s.students.RemoveCourse(ctx, e.StudentID, e.CourseCode)
		_ = s.courses.RemoveStudent(ctx, e.CourseCode, e.StudentID)
		withdrawn++
	}

	s.logger.Info("course cancelled",
		zap.String("course_code", courseCode),
		zap.Int("withdrawn", withdrawn))
	return withdrawn, nil
}

// Get returns one enrollment record.
func (s *EnrollmentService) Get(ctx context.Context, studentID, courseCode string) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.Get(ctx, studentID, courseCode)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	return enrollment, nil
}

// List returns all enrollment records.
func (s *EnrollmentService) List(ctx context.Context) []models.Enrollment {
	return s.enrollments.All(ctx)
}

// ByStudent returns a student's enrollment records.
func (s *EnrollmentService) ByStudent(ctx context.Context, studentID string) []models.Enrollment {
	return s.enrollments.ByStudent(ctx, studentID)
}

// ByCourse returns a course's enrollment records.
func (s *EnrollmentService) ByCourse(ctx context.Context, courseCode string) []models.Enrollment {
	return s.enrollments.ByCourse(ctx, courseCode)
}

// ListActive returns enrollments that have not been withdrawn or cancelled.
func (s *EnrollmentService) ListActive(ctx context.Context) []models.Enrollment {
	return s.enrollments.Active(ctx)
}

// ListByGrade returns enrollments carrying the given grade.
func (s *EnrollmentService) ListByGrade(ctx context.Context, grade models.Grade) []models.Enrollment {
	return s.enrollments.ByGrade(ctx, grade)
}

// Stats summarises the enrollment index, including the passing rate over
// graded records.
func (s *EnrollmentService) Stats(ctx context.Context) models.EnrollmentStats {
	all := s.enrollments.All(ctx)

	stats := models.EnrollmentStats{
		TotalCount:        len(all),
		GradeDistribution: make(map[models.Grade]int),
	}
	var graded, passing int
	for _, e := range all {
		if e.Active {
			stats.ActiveCount++
		}
		if e.Grade != nil {
			stats.GradeDistribution[*e.Grade]++
			graded++
			if e.IsPassing() {
				passing++
			}
		}
	}
	if graded > 0 {
		stats.PassingRate = float64(passing) / float64(graded) * 100
	}
	return stats
}

// creditLoad sums the credits of the student's current courses. A course
// that vanished from the catalog still counts at the default credit weight.
func (s *EnrollmentService) creditLoad(ctx context.Context, student *models.Student) int {
	total := 0
	for _, code := range student.EnrolledCourses.Values() {
		course, err := s.courses.FindByCode(ctx, code)
		if err != nil {
			total += models.DefaultCourseCredits
			continue
		}
		total += course.Credits
	}
	return total
}
