package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kgarud95/LearningX-version-10/internal/dto"
	"github.com/kgarud95/LearningX-version-10/internal/models"
	appErrors "github.com/kgarud95/LearningX-version-10/pkg/errors"
)

const catalogCachePrefix = "catalog"

type courseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id string) (*models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type courseUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CourseService provides course catalog use cases. The published catalog is
// served through Redis with writes invalidating the whole prefix.
type CourseService struct {
	courses   courseRepository
	users     courseUserRepository
	cache     catalogCache
	cacheTTL  time.Duration
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(courses courseRepository, users courseUserRepository, cache catalogCache, cacheTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &CourseService{courses: courses, users: users, cache: cache, cacheTTL: cacheTTL, metrics: metrics, validator: validate, logger: logger}
}

// Create registers a new draft course owned by the instructor.
func (s *CourseService) Create(ctx context.Context, instructorID string, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	language := req.Language
	if language == "" {
		language = "en"
	}
	level := req.Level
	if level == "" {
		level = "beginner"
	}

	course := &models.Course{
		Title:            req.Title,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		InstructorID:     instructorID,
		Category:         req.Category,
		Price:            req.Price,
		ThumbnailURL:     req.ThumbnailURL,
		Status:           models.CourseStatusDraft,
		Language:         language,
		Level:            level,
		Tags:             req.Tags,
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.invalidateCatalog(ctx)
	return course, nil
}

// List returns the published catalog matching the filter.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]dto.CourseItem, error) {
	key := catalogCacheKey(filter)

	if s.cache != nil {
		var cached []dto.CourseItem
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("catalog cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}

	courses, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	items := make([]dto.CourseItem, 0, len(courses))
	for i := range courses {
		items = append(items, s.enrich(ctx, &courses[i]))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, items, s.cacheTTL); err != nil {
			s.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}

	return items, nil
}

// Get returns a single course with derived totals.
func (s *CourseService) Get(ctx context.Context, id string) (*dto.CourseItem, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	item := s.enrich(ctx, course)
	return &item, nil
}

// Update applies a partial update to a course owned by the caller.
func (s *CourseService) Update(ctx context.Context, userID string, role models.UserRole, courseID string, req dto.UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.loadOwned(ctx, userID, role, courseID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.ShortDescription != nil {
		course.ShortDescription = req.ShortDescription
	}
	if req.Category != nil {
		course.Category = *req.Category
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.ThumbnailURL != nil {
		course.ThumbnailURL = req.ThumbnailURL
	}
	if req.Language != nil {
		course.Language = *req.Language
	}
	if req.Level != nil {
		course.Level = *req.Level
	}
	if req.Tags != nil {
		course.Tags = req.Tags
	}
	if req.Status != nil {
		course.Status = *req.Status
	}

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.invalidateCatalog(ctx)
	return course, nil
}

// Delete removes a course owned by the caller.
func (s *CourseService) Delete(ctx context.Context, userID string, role models.UserRole, courseID string) error {
	if _, err := s.loadOwned(ctx, userID, role, courseID); err != nil {
		return err
	}

	if err := s.courses.Delete(ctx, courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}

	s.invalidateCatalog(ctx)
	return nil
}

func (s *CourseService) loadOwned(ctx context.Context, userID string, role models.UserRole, courseID string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if course.InstructorID != userID && role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not the course instructor")
	}
	return course, nil
}

func (s *CourseService) enrich(ctx context.Context, course *models.Course) dto.CourseItem {
	item := dto.CourseItem{
		Course:               *course,
		TotalModules:         len(course.Modules),
		TotalLessons:         course.TotalLessons(),
		TotalDurationMinutes: course.TotalDurationMinutes(),
	}
	if instructor, err := s.users.FindByID(ctx, course.InstructorID); err == nil {
		item.InstructorName = instructor.Name
	}
	return item
}

func (s *CourseService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, catalogCachePrefix+":*"); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

func catalogCacheKey(filter models.CourseFilter) string {
	return fmt.Sprintf("%s:%s:%s:%s:%d:%d", catalogCachePrefix, filter.Category, filter.Level, filter.Search, filter.Limit, filter.Skip)
}
