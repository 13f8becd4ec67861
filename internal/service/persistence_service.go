package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campusops/ccrm-api/internal/codec"
	"github.com/campusops/ccrm-api/internal/models"
	appErrors "github.com/campusops/ccrm-api/pkg/errors"
)

type persistenceCodec interface {
	ExportStudents(students []models.Student) error
	ExportCourses(courses []models.Course) error
	ExportEnrollments(enrollments []models.Enrollment) error
	ImportStudents() ([]models.Student, error)
	ImportCourses() ([]models.Course, error)
	ImportEnrollments() ([]models.Enrollment, error)
	ListDataFiles() ([]codec.DataFile, error)
}

type persistentStudentRepository interface {
	FindAll(ctx context.Context) []models.Student
	Save(ctx context.Context, student models.Student) error
	DeleteAll(ctx context.Context)
}

type persistentCourseRepository interface {
	FindAll(ctx context.Context) []models.Course
	Save(ctx context.Context, course models.Course) error
	DeleteAll(ctx context.Context)
}

type persistentEnrollmentRepository interface {
	All(ctx context.Context) []models.Enrollment
	DeleteAll(ctx context.Context)
}

type enrollmentRestorer interface {
	Restore(ctx context.Context, enrollment models.Enrollment) error
}

// LoadResult reports what a data load brought in.
type LoadResult struct {
	Students    int `json:"students"`
	Courses     int `json:"courses"`
	Enrollments int `json:"enrollments"`
	Skipped     int `json:"skipped"`
}

// SaveResult reports what a data save wrote out.
type SaveResult struct {
	Students    int `json:"students"`
	Courses     int `json:"courses"`
	Enrollments int `json:"enrollments"`
}

// PersistenceService moves the record store to and from the data directory.
type PersistenceService struct {
	codec       persistenceCodec
	students    persistentStudentRepository
	courses     persistentCourseRepository
	enrollments persistentEnrollmentRepository
	restorer    enrollmentRestorer
	logger      *zap.Logger
}

// NewPersistenceService constructs the persistence coordinator.
func NewPersistenceService(
	c persistenceCodec,
	students persistentStudentRepository,
	courses persistentCourseRepository,
	enrollments persistentEnrollmentRepository,
	restorer enrollmentRestorer,
	logger *zap.Logger,
) *PersistenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersistenceService{
		codec:       c,
		students:    students,
		courses:     courses,
		enrollments: enrollments,
		restorer:    restorer,
		logger:      logger,
	}
}

// SaveAll writes every collection to the data directory. Each file is
// replaced atomically; a failure on one file leaves the others untouched.
func (s *PersistenceService) SaveAll(ctx context.Context) (*SaveResult, error) {
	students := s.students.FindAll(ctx)
	courses := s.courses.FindAll(ctx)
	enrollments := s.enrollments.All(ctx)

	if err := s.codec.ExportStudents(students); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrIO.Code, appErrors.ErrIO.Status, "failed to save students")
	}
	if err := s.codec.ExportCourses(courses); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrIO.Code, appErrors.ErrIO.Status, "failed to save courses")
	}
	if err := s.codec.ExportEnrollments(enrollments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrIO.Code, appErrors.ErrIO.Status, "failed to save enrollments")
	}

	result := &SaveResult{Students: len(students), Courses: len(courses), Enrollments: len(enrollments)}
	s.logger.Info("data saved",
		zap.Int("students", result.Students),
		zap.Int("courses", result.Courses),
		zap.Int("enrollments", result.Enrollments))
	return result, nil
}

// LoadAll replaces the in-memory store with the data directory's contents.
// Students and courses load first so enrollment links can be re-established;
// an enrollment whose endpoints are missing is skipped and counted.
func (s *PersistenceService) LoadAll(ctx context.Context) (*LoadResult, error) {
	students, err := s.codec.ImportStudents()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrIO.Code, appErrors.ErrIO.Status, "failed to load students")
	}
	courses, err := s.codec.ImportCourses()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrIO.Code, appErrors.ErrIO.Status, "failed to load courses")
	}
	enrollments, err := s.codec.ImportEnrollments()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrIO.Code, appErrors.ErrIO.Status, "failed to load enrollments")
	}

	s.students.DeleteAll(ctx)
	s.courses.DeleteAll(ctx)
	s.enrollments.DeleteAll(ctx)

	result := &LoadResult{}
	for _, st := range students {
		if err := s.students.Save(ctx, st); err != nil {
			s.logger.Warn("skipping duplicate student on load", zap.String("student_id", st.ID))
			result.Skipped++
			continue
		}
		result.Students++
	}
	for _, c := range courses {
		if err := s.courses.Save(ctx, c); err != nil {
			s.logger.Warn("skipping duplicate course on load", zap.String("course_code", c.Code))
			result.Skipped++
			continue
		}
		result.Courses++
	}
	for _, e := range enrollments {
		if err := s.restorer.Restore(ctx, e); err != nil {
			s.logger.Warn("skipping orphan enrollment on load",
				zap.String("student_id", e.StudentID),
				zap.String("course_code", e.CourseCode),
				zap.Error(err))
			result.Skipped++
			continue
		}
		result.Enrollments++
	}

	s.logger.Info("data loaded",
		zap.Int("students", result.Students),
		zap.Int("courses", result.Courses),
		zap.Int("enrollments", result.Enrollments),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// DataFiles lists the CSV files currently on disk.
func (s *PersistenceService) DataFiles(ctx context.Context) ([]codec.DataFile, error) {
	files, err := s.codec.ListDataFiles()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrIO.Code, appErrors.ErrIO.Status, "failed to list data files")
	}
	return files, nil
}
