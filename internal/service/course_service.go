package service

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusops/ccrm-api/internal/models"
	"github.com/campusops/ccrm-api/internal/repository"
	appErrors "github.com/campusops/ccrm-api/pkg/errors"
)

var courseCodePattern = regexp.MustCompile(`^[A-Z]{3,4}\d{3}$`)

type courseRepository interface {
	Save(ctx context.Context, course models.Course) error
	Update(ctx context.Context, course models.Course) error
	FindByCode(ctx context.Context, code string) (*models.Course, error)
	FindAll(ctx context.Context) []models.Course
	Search(ctx context.Context, query string) []models.Course
	Filter(ctx context.Context, predicate func(models.Course) bool) []models.Course
	Count(ctx context.Context) int
	SetActive(ctx context.Context, code string, active bool) error
}

// CreateCourseRequest holds payload for adding catalog entries. Credits,
// semester and capacity fall back to catalog defaults when omitted.
type CreateCourseRequest struct {
	Code         string `json:"code" validate:"required,coursecode"`
	Title        string `json:"title" validate:"required"`
	Credits      int    `json:"credits" validate:"omitempty,gt=0"`
	InstructorID string `json:"instructor_id"`
	Semester     string `json:"semester"`
	Department   string `json:"department"`
	MaxCapacity  int    `json:"max_capacity" validate:"omitempty,gt=0"`
}

// UpdateCourseRequest holds payload for editing a catalog entry. The code is
// immutable once created.
type UpdateCourseRequest struct {
	Title        string `json:"title" validate:"required"`
	Credits      int    `json:"credits" validate:"omitempty,gt=0"`
	InstructorID string `json:"instructor_id"`
	Semester     string `json:"semester"`
	Department   string `json:"department"`
	MaxCapacity  int    `json:"max_capacity" validate:"omitempty,gt=0"`
}

// CourseService handles catalog use-cases.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service and registers the course
// code validation tag.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	_ = validate.RegisterValidation("coursecode", func(fl validator.FieldLevel) bool {
		return courseCodePattern.MatchString(fl.Field().String())
	})
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// Create adds a catalog entry. The course code must be unique.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	semester := models.Semester(strings.ToUpper(req.Semester))
	if req.Semester != "" && !semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester must be SPRING, SUMMER or FALL")
	}

	course, err := models.NewCourse(models.CourseParams{
		Code:         req.Code,
		Title:        req.Title,
		Credits:      req.Credits,
		InstructorID: req.InstructorID,
		Semester:     semester,
		Department:   req.Department,
		MaxCapacity:  req.MaxCapacity,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	if err := s.repo.Save(ctx, course); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "course code already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save course")
	}

	s.logger.Info("course added", zap.String("course_code", course.Code))
	return &course, nil
}

// Get returns a course by code.
func (s *CourseService) Get(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return course, nil
}

// List returns catalog entries matching the filter plus pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses := s.repo.Search(ctx, filter.Search)

	filtered := courses[:0]
	for _, c := range courses {
		if filter.Semester != "" && c.Semester != filter.Semester {
			continue
		}
		if filter.Department != "" && !strings.EqualFold(c.Department, filter.Department) {
			continue
		}
		if filter.InstructorID != "" && c.InstructorID != filter.InstructorID {
			continue
		}
		if filter.Active != nil && c.Active != *filter.Active {
			continue
		}
		filtered = append(filtered, c)
	}
	courses = filtered

	sort.SliceStable(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })

	total := len(courses)
	page, size := normalizePage(filter.Page, filter.PageSize)
	courses = paginate(courses, page, size)

	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Update edits a catalog entry in place, keeping its enrollment roster.
func (s *CourseService) Update(ctx context.Context, code string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	if req.Semester != "" {
		semester := models.Semester(strings.ToUpper(req.Semester))
		if !semester.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "semester must be SPRING, SUMMER or FALL")
		}
		course.Semester = semester
	}
	course.Title = req.Title
	course.InstructorID = req.InstructorID
	course.Department = req.Department
	if req.Credits > 0 {
		course.Credits = req.Credits
	}
	if req.MaxCapacity > 0 {
		if req.MaxCapacity < course.CurrentEnrollment() {
			return nil, appErrors.WithDetails(
				appErrors.Clone(appErrors.ErrConflict, "capacity below current enrollment"),
				map[string]interface{}{
					"current_enrollment": course.CurrentEnrollment(),
					"requested_capacity": req.MaxCapacity,
				})
		}
		course.MaxCapacity = req.MaxCapacity
	}

	if err := s.repo.Update(ctx, *course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.logger.Info("course updated", zap.String("course_code", code))
	return course, nil
}

// Deactivate closes a course to new enrollments without deleting history.
func (s *CourseService) Deactivate(ctx context.Context, code string) error {
	if err := s.repo.SetActive(ctx, code, false); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	s.logger.Info("course deactivated", zap.String("course_code", code))
	return nil
}

// Activate reopens a course.
func (s *CourseService) Activate(ctx context.Context, code string) error {
	if err := s.repo.SetActive(ctx, code, true); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	s.logger.Info("course activated", zap.String("course_code", code))
	return nil
}

// ByInstructor returns the courses taught by the given instructor.
func (s *CourseService) ByInstructor(ctx context.Context, instructorID string) []models.Course {
	return s.repo.Filter(ctx, func(c models.Course) bool {
		return c.InstructorID == instructorID
	})
}

// BySemester returns the courses offered in the given semester.
func (s *CourseService) BySemester(ctx context.Context, semester models.Semester) []models.Course {
	return s.repo.Filter(ctx, func(c models.Course) bool {
		return c.Semester == semester
	})
}

// Stats aggregates collection-wide catalog figures.
func (s *CourseService) Stats(ctx context.Context) models.CourseStats {
	courses := s.repo.FindAll(ctx)

	stats := models.CourseStats{
		TotalCount:             len(courses),
		DepartmentDistribution: make(map[string]int),
		SemesterDistribution:   make(map[models.Semester]int),
	}
	var enrolled int
	for _, c := range courses {
		if c.Active {
			stats.ActiveCount++
		}
		stats.TotalCreditsOffered += c.Credits
		if c.Department != "" {
			stats.DepartmentDistribution[c.Department]++
		}
		stats.SemesterDistribution[c.Semester]++
		enrolled += c.CurrentEnrollment()
	}
	if len(courses) > 0 {
		stats.AverageEnrollment = float64(enrolled) / float64(len(courses))
	}
	return stats
}
