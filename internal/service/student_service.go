package service

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusops/ccrm-api/internal/models"
	"github.com/campusops/ccrm-api/internal/repository"
	appErrors "github.com/campusops/ccrm-api/pkg/errors"
)

var regNoPattern = regexp.MustCompile(`^\d{2}[a-zA-Z]{3}\d{5}$`)

type studentRepository interface {
	Save(ctx context.Context, student models.Student) error
	Update(ctx context.Context, student models.Student) error
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByRegNo(ctx context.Context, regNo string) (*models.Student, error)
	FindAll(ctx context.Context) []models.Student
	Search(ctx context.Context, query string) []models.Student
	Delete(ctx context.Context, id string)
	Count(ctx context.Context) int
	SetActive(ctx context.Context, id string, active bool) error
}

// CreateStudentRequest holds payload for registering students.
type CreateStudentRequest struct {
	ID          string `json:"id"`
	RegNo       string `json:"reg_no" validate:"required,regno"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	DateOfBirth string `json:"date_of_birth" validate:"required"`
	MaxCredits  int    `json:"max_credits" validate:"omitempty,gt=0"`
}

// UpdateStudentRequest holds payload for updating student profile fields.
// Registration number and enrollment records are not editable here.
type UpdateStudentRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	DateOfBirth string `json:"date_of_birth" validate:"required"`
	MaxCredits  int    `json:"max_credits" validate:"omitempty,gt=0"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service and registers the
// registration-number validation tag.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	_ = validate.RegisterValidation("regno", func(fl validator.FieldLevel) bool {
		return regNoPattern.MatchString(fl.Field().String())
	})
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// Create registers a new student. The registration number must be unique.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date_of_birth must be YYYY-MM-DD")
	}
	if err := validBirthDate(dob); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	if existing, _ := s.repo.FindByRegNo(ctx, req.RegNo); existing != nil {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "registration number already in use")
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	maxCredits := req.MaxCredits
	if maxCredits == 0 {
		maxCredits = models.DefaultMaxCredits
	}

	student := models.Student{
		Person: models.Person{
			ID:          id,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       req.Email,
			DateOfBirth: dob,
			Active:      true,
		},
		RegNo:           req.RegNo,
		EnrolledCourses: models.NewStringSet(),
		Grades:          make(map[string]models.Grade),
		EnrollmentDate:  time.Now().UTC(),
		MaxCredits:      maxCredits,
	}

	if err := s.repo.Save(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "student id already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}

	s.logger.Info("student registered",
		zap.String("student_id", student.ID),
		zap.String("reg_no", student.RegNo))
	return &student, nil
}

// Get returns a student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student, nil
}

// GetByRegNo returns a student by registration number.
func (s *StudentService) GetByRegNo(ctx context.Context, regNo string) (*models.Student, error) {
	student, err := s.repo.FindByRegNo(ctx, regNo)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student, nil
}

// List returns students matching the filter plus pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students := s.repo.Search(ctx, filter.Search)

	if filter.Active != nil {
		filtered := students[:0]
		for _, st := range students {
			if st.Active == *filter.Active {
				filtered = append(filtered, st)
			}
		}
		students = filtered
	}

	sortStudents(students, filter.SortBy, filter.SortOrder)

	total := len(students)
	page, size := normalizePage(filter.Page, filter.PageSize)
	students = paginate(students, page, size)

	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Update replaces a student's editable profile fields.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date_of_birth must be YYYY-MM-DD")
	}
	if err := validBirthDate(dob); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.Email = req.Email
	student.DateOfBirth = dob
	if req.MaxCredits > 0 {
		student.MaxCredits = req.MaxCredits
	}

	if err := s.repo.Update(ctx, *student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	s.logger.Info("student updated", zap.String("student_id", id))
	return student, nil
}

// Deactivate marks a student inactive without touching enrollment records.
func (s *StudentService) Deactivate(ctx context.Context, id string) error {
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	s.logger.Info("student deactivated", zap.String("student_id", id))
	return nil
}

// Activate marks a student active again.
func (s *StudentService) Activate(ctx context.Context, id string) error {
	if err := s.repo.SetActive(ctx, id, true); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	s.logger.Info("student activated", zap.String("student_id", id))
	return nil
}

// GPA computes the student's grade point average.
func (s *StudentService) GPA(ctx context.Context, id string) (float64, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student.GPA(), nil
}

// Stats aggregates collection-wide student figures.
func (s *StudentService) Stats(ctx context.Context) models.StudentStats {
	students := s.repo.FindAll(ctx)

	stats := models.StudentStats{
		TotalCount:             len(students),
		EnrollmentDistribution: make(map[int]int),
	}
	var gpaSum float64
	var graded int
	for _, st := range students {
		if st.Active {
			stats.ActiveCount++
		}
		stats.EnrollmentDistribution[st.EnrolledCourses.Len()]++
		if len(st.Grades) > 0 {
			gpaSum += st.GPA()
			graded++
		}
	}
	if graded > 0 {
		stats.AverageGPA = gpaSum / float64(graded)
	}
	return stats
}

// TopByGPA returns the n highest-GPA students among those with grades.
func (s *StudentService) TopByGPA(ctx context.Context, n int) []models.Student {
	if n <= 0 {
		n = 5
	}
	students := s.repo.FindAll(ctx)
	graded := make([]models.Student, 0, len(students))
	for _, st := range students {
		if len(st.Grades) > 0 {
			graded = append(graded, st)
		}
	}
	sort.SliceStable(graded, func(i, j int) bool {
		return graded[i].GPA() > graded[j].GPA()
	})
	if len(graded) > n {
		graded = graded[:n]
	}
	return graded
}

func sortStudents(students []models.Student, sortBy, order string) {
	desc := strings.EqualFold(order, "desc")
	less := func(a, b models.Student) bool { return a.ID < b.ID }
	switch strings.ToLower(sortBy) {
	case "reg_no":
		less = func(a, b models.Student) bool { return a.RegNo < b.RegNo }
	case "name":
		less = func(a, b models.Student) bool { return a.FullName() < b.FullName() }
	case "gpa":
		less = func(a, b models.Student) bool { return a.GPA() < b.GPA() }
	case "enrollment_date":
		less = func(a, b models.Student) bool { return a.EnrollmentDate.Before(b.EnrollmentDate) }
	}
	sort.SliceStable(students, func(i, j int) bool {
		if desc {
			return less(students[j], students[i])
		}
		return less(students[i], students[j])
	})
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func validBirthDate(dob time.Time) error {
	now := time.Now()
	if dob.After(now) {
		return errors.New("date of birth cannot be in the future")
	}
	if dob.Before(now.AddDate(-100, 0, 0)) {
		return errors.New("date of birth is too far in the past")
	}
	return nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return page, size
}

func paginate[T any](items []T, page, size int) []T {
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
