package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campusops/ccrm-api/internal/models"
)

const statsCacheKey = "ccrm:stats:overview"

// Overview bundles the collection-wide statistics into one payload.
type Overview struct {
	Students    models.StudentStats    `json:"students"`
	Courses     models.CourseStats     `json:"courses"`
	Enrollments models.EnrollmentStats `json:"enrollments"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// StatsService aggregates cross-collection statistics, optionally serving
// them from cache.
type StatsService struct {
	students    *StudentService
	courses     *CourseService
	enrollments *EnrollmentService
	cache       *CacheService
	logger      *zap.Logger
}

// NewStatsService constructs the statistics aggregator.
func NewStatsService(students *StudentService, courses *CourseService, enrollments *EnrollmentService, cache *CacheService, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		students:    students,
		courses:     courses,
		enrollments: enrollments,
		cache:       cache,
		logger:      logger,
	}
}

// Overview computes the aggregate snapshot, consulting the cache first.
func (s *StatsService) Overview(ctx context.Context) Overview {
	var cached Overview
	if hit, _ := s.cache.Get(ctx, statsCacheKey, &cached); hit {
		return cached
	}

	overview := Overview{
		Students:    s.students.Stats(ctx),
		Courses:     s.courses.Stats(ctx),
		Enrollments: s.enrollments.Stats(ctx),
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.cache.Set(ctx, statsCacheKey, overview, 0); err != nil {
		s.logger.Debug("stats cache write skipped", zap.Error(err))
	}
	return overview
}

// Invalidate drops the cached snapshot after a mutation.
func (s *StatsService) Invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, statsCacheKey)
}
